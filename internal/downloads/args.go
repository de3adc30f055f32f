package downloads

import (
	"strconv"
	"strings"

	"zeku/internal/config"
	"zeku/internal/domain/command"
	"zeku/internal/domain/logger"
	"zeku/internal/domain/templates"
	"zeku/internal/enums"
	"zeku/internal/models"
)

// ArgOptions hold the per-run inputs of BuildArgs.
type ArgOptions struct {
	Settings   config.Settings
	CacheDir   string
	CookieFile string
}

// BuildArgs returns the yt-dlp arguments for item. The URL is always last.
func BuildArgs(item *models.DownloadItem, opts ArgOptions) []string {
	s := opts.Settings
	args := make([]string, 0, 32)

	args = append(args, command.Newline, command.NoColors)

	// Print filename to console upon completion
	args = append(args, command.Print, command.AfterMove)

	// Output locations
	home := item.DownloadPath
	if home == "" {
		home = s.DownloadDir
	}
	if home != "" {
		args = append(args, command.P, command.PathHome+home)
	}
	if opts.CacheDir != "" {
		args = append(args, command.P, command.PathTemp+opts.CacheDir)
	}
	args = append(args, command.Output, outputTemplate(item, s))

	if opts.CookieFile != "" {
		args = append(args, command.CookiePath, opts.CookieFile)
	}

	// Retry download X times
	if s.Retries > 0 {
		args = append(args, command.Retries, strconv.Itoa(s.Retries))
	}

	if item.PlaylistIndex != nil {
		args = append(args, command.PlaylistItems, strconv.Itoa(*item.PlaylistIndex))
	} else {
		args = append(args, command.NoPlaylist)
	}

	if item.DownloadSections != "" {
		for _, section := range strings.Fields(item.DownloadSections) {
			args = append(args, command.Sections, section)
		}
	}

	switch item.Type {
	case enums.MediaTypeAudio:
		args = append(args, audioArgs(item)...)
	case enums.MediaTypeVideo:
		args = append(args, videoArgs(item)...)
	case enums.MediaTypeAuto:
		if item.Format.FormatID != "" {
			args = append(args, command.Format, item.Format.FormatID+command.BestFallback)
		}
	}

	if (item.SaveThumb || s.SaveThumbnail) && item.Type != enums.MediaTypeCommand {
		args = append(args, command.WriteThumbnail)
	}

	// Extra commands pass through unchanged
	extra := item.ExtraCommands
	if extra == "" {
		extra = s.ExtraCommands
	}
	args = append(args, SplitArgs(extra)...)

	// Add target URL [ MUST GO LAST !! ]
	args = append(args, item.URL)
	return args
}

// outputTemplate picks the item template, then the configured one. Invalid
// templates fall back to the default syntax.
func outputTemplate(item *models.DownloadItem, s config.Settings) string {
	tmpl := item.CustomFileNameTemplate
	if tmpl == "" {
		tmpl = s.Template(item.Type)
	}
	if !templates.IsValidFileTemplate(tmpl) {
		logger.Pl.W("Output template %q for download %d is invalid, using %q", tmpl, item.ID, command.FilenameSyntax)
		return command.FilenameSyntax
	}
	return tmpl
}

func audioArgs(item *models.DownloadItem) []string {
	p := item.AudioPreferences
	args := []string{command.ExtractAudio}

	format := p.Quality.Arg()
	if item.Format.FormatID != "" {
		format = item.Format.FormatID
	}
	args = append(args, command.Format, format+command.BestFallback)
	args = append(args, command.AudioFormat, p.Format.Arg())

	if p.Encoding != enums.AudioEncodingDefault {
		args = append(args, command.FormatSort, "aext:"+p.Encoding.Arg())
	}
	if p.EmbedThumb {
		args = append(args, command.EmbedThumbnail)
		if p.CropThumb {
			args = append(args,
				command.ConvertThumbnails, command.ThumbnailJPG,
				command.PostProcessorArgs, command.CropThumbnail)
		}
	}
	if p.SplitByChapters {
		args = append(args, command.SplitChapters)
	}
	return append(args, sponsorBlockArgs(p.SponsorBlock)...)
}

func videoArgs(item *models.DownloadItem) []string {
	p := item.VideoPreferences
	args := make([]string, 0, 16)

	args = append(args, command.Format, videoFormatSelector(item))

	container := p.Format.Arg()
	if p.Format == enums.VideoFormatDefault && item.Container != "" {
		container = item.Container
	}
	args = append(args, command.MergeOutputFormat, container)

	if vcodec := p.Encoding.Arg(); vcodec != "" {
		args = append(args, command.FormatSort, "vcodec:"+vcodec)
	}

	if p.WriteSubs {
		args = append(args, command.WriteSubs)
	}
	if p.WriteAutoSubs {
		args = append(args, command.WriteAutoSubs)
	}
	if p.EmbedSubs {
		args = append(args, command.EmbedSubs)
	}
	if p.WriteSubs || p.WriteAutoSubs || p.EmbedSubs {
		if p.SubsLanguages != "" {
			args = append(args, command.SubLangs, p.SubsLanguages)
		}
		args = append(args, command.SubFormat, p.SubsFormat.Arg())
	}

	if p.AddChapters {
		args = append(args, command.EmbedChapters)
	}
	if p.SplitByChapters {
		args = append(args, command.SplitChapters)
	}
	return append(args, sponsorBlockArgs(p.SponsorBlock)...)
}

// videoFormatSelector merges the chosen video stream with audio unless audio is removed.
func videoFormatSelector(item *models.DownloadItem) string {
	p := item.VideoPreferences

	video := p.Quality.Arg()
	if f := item.Format; f.FormatID != "" {
		video = f.FormatID
		if strings.Contains(video, "+") || (f.ACodec != "" && f.ACodec != "none") {
			return video + command.BestFallback
		}
	}
	if p.RemoveAudio {
		return video + command.BestFallback
	}

	audio := "bestaudio"
	if len(p.AudioFormatIDs) > 0 {
		audio = strings.Join(p.AudioFormatIDs, "+")
	}
	return video + "+" + audio + command.BestFallback
}

func sponsorBlockArgs(categories []string) []string {
	if len(categories) == 0 {
		return nil
	}
	return []string{command.SponsorBlockRemove, strings.Join(categories, ",")}
}
