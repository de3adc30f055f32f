// Package config turns viper state into one immutable settings snapshot.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"zeku/internal/domain/command"
	"zeku/internal/domain/consts"
	"zeku/internal/domain/errs"
	"zeku/internal/domain/keys"
	"zeku/internal/domain/paths"
	"zeku/internal/domain/templates"
	"zeku/internal/enums"
	"zeku/internal/models"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. ZEKU_DOWNLOAD_DIR.
const EnvPrefix = "ZEKU"

// Settings is the configuration every component reads. It is never mutated
// after Load returns.
type Settings struct {
	// Program files.
	DBPath        string
	CacheDir      string
	LogPath       string
	DebugLevel    int
	LogMaxSizeMB  int
	LogMaxBackups int

	// Downloads.
	DownloadDir           string
	YtDLPPath             string
	PreventDuplicate      enums.PreventDuplicateDownload
	ContinueAfterPriority bool
	KeepCompleted         bool
	LogDownloads          bool
	Incognito             bool
	Retries               int
	SaveThumbnail         bool
	ExtraCommands         string
	AudioFileTemplate     string
	VideoFileTemplate     string

	// Cookies.
	ExportCookies bool
	CookieDomain  string

	// Network policy.
	AllowMetered   bool
	NetworkMetered bool
	NetworkRecheck time.Duration

	ServerAddr string

	Audio models.AudioPreferences
	Video models.VideoPreferences
}

// New returns a viper instance with defaults and environment overrides set.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	home, _ := os.UserHomeDir()
	audio := models.DefaultAudioPreferences()
	video := models.DefaultVideoPreferences()

	defaults := map[string]any{
		keys.DBPath:        paths.DBFilePath,
		keys.CacheDir:      paths.CacheDir,
		keys.LogPath:       paths.LogFilePath,
		keys.DebugLevel:    0,
		keys.LogMaxSizeMB:  1,
		keys.LogMaxBackups: 3,

		keys.DownloadDir:               filepath.Join(home, "Downloads", consts.ProgramName),
		keys.YtDLPPath:                 command.YTDLP,
		keys.PreventDuplicateDownloads: "none",
		keys.ContinueAfterPriority:     true,
		keys.KeepCompleted:             false,
		keys.LogDownloads:              true,
		keys.Incognito:                 false,
		keys.Retries:                   consts.DefaultMaxRetries,
		keys.SaveThumbnail:             false,
		keys.ExtraCommands:             "",
		keys.AudioFileTemplate:         command.FilenameSyntax,
		keys.VideoFileTemplate:         command.FilenameSyntax,

		keys.ExportCookies:               false,
		keys.CookieBrowserDomainOverride: "",

		keys.AllowMetered:   true,
		keys.NetworkMetered: false,
		keys.NetworkRecheck: consts.NetworkRecheckInterval,

		keys.ServerAddr: "127.0.0.1:8585",

		keys.AudioFormat:     string(audio.Format),
		keys.AudioEncoding:   string(audio.Encoding),
		keys.AudioQuality:    string(audio.Quality),
		keys.AudioEmbedThumb: audio.EmbedThumb,
		keys.AudioCropThumb:  audio.CropThumb,
		keys.AudioSplitChaps: audio.SplitByChapters,
		keys.AudioSponsor:    []string{},

		keys.VideoFormat:      string(video.Format),
		keys.VideoEncoding:    string(video.Encoding),
		keys.VideoQuality:     string(video.Quality),
		keys.VideoEmbedSubs:   video.EmbedSubs,
		keys.VideoWriteSubs:   video.WriteSubs,
		keys.VideoAutoSubs:    video.WriteAutoSubs,
		keys.VideoSubsLangs:   video.SubsLanguages,
		keys.VideoSubsFormat:  string(video.SubsFormat),
		keys.VideoAddChapters: video.AddChapters,
		keys.VideoSplitChaps:  video.SplitByChapters,
		keys.VideoSponsor:     []string{},
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// LoadFile reads a config file of any viper-supported format into v.
func LoadFile(v *viper.Viper, file string) error {
	info, err := os.Stat(file)
	if err != nil {
		return fmt.Errorf("failed check for config file path: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("config file %q is a directory, should be a file", file)
	}

	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed loading config file %q: %w", file, err)
	}
	return nil
}

// Load builds the settings snapshot from v. Output templates are validated.
func Load(v *viper.Viper) (Settings, error) {
	s := Settings{
		DBPath:        v.GetString(keys.DBPath),
		CacheDir:      v.GetString(keys.CacheDir),
		LogPath:       v.GetString(keys.LogPath),
		DebugLevel:    clamp(v.GetInt(keys.DebugLevel), 0, 5),
		LogMaxSizeMB:  v.GetInt(keys.LogMaxSizeMB),
		LogMaxBackups: v.GetInt(keys.LogMaxBackups),

		DownloadDir:           v.GetString(keys.DownloadDir),
		YtDLPPath:             v.GetString(keys.YtDLPPath),
		PreventDuplicate:      enums.ParsePreventDuplicate(v.GetString(keys.PreventDuplicateDownloads)),
		ContinueAfterPriority: v.GetBool(keys.ContinueAfterPriority),
		KeepCompleted:         v.GetBool(keys.KeepCompleted),
		LogDownloads:          v.GetBool(keys.LogDownloads),
		Incognito:             v.GetBool(keys.Incognito),
		Retries:               max(v.GetInt(keys.Retries), 0),
		SaveThumbnail:         v.GetBool(keys.SaveThumbnail),
		ExtraCommands:         v.GetString(keys.ExtraCommands),
		AudioFileTemplate:     orDefault(v.GetString(keys.AudioFileTemplate), command.FilenameSyntax),
		VideoFileTemplate:     orDefault(v.GetString(keys.VideoFileTemplate), command.FilenameSyntax),

		ExportCookies: v.GetBool(keys.ExportCookies),
		CookieDomain:  v.GetString(keys.CookieBrowserDomainOverride),

		AllowMetered:   v.GetBool(keys.AllowMetered),
		NetworkMetered: v.GetBool(keys.NetworkMetered),
		NetworkRecheck: v.GetDuration(keys.NetworkRecheck),

		ServerAddr: v.GetString(keys.ServerAddr),
	}

	s.Audio = models.AudioPreferences{
		Format:          enums.ParseAudioFormat(v.GetString(keys.AudioFormat)),
		Encoding:        enums.ParseAudioEncoding(v.GetString(keys.AudioEncoding)),
		Quality:         enums.ParseAudioQuality(v.GetString(keys.AudioQuality)),
		EmbedThumb:      v.GetBool(keys.AudioEmbedThumb),
		CropThumb:       v.GetBool(keys.AudioCropThumb),
		SplitByChapters: v.GetBool(keys.AudioSplitChaps),
		SponsorBlock:    sponsorBlock(v.GetStringSlice(keys.AudioSponsor)),
	}

	def := models.DefaultVideoPreferences()
	s.Video = models.VideoPreferences{
		Format:          enums.ParseVideoFormat(v.GetString(keys.VideoFormat)),
		Encoding:        enums.ParseVideoEncoding(v.GetString(keys.VideoEncoding)),
		Quality:         enums.ParseVideoQuality(v.GetString(keys.VideoQuality)),
		EmbedSubs:       v.GetBool(keys.VideoEmbedSubs),
		WriteSubs:       v.GetBool(keys.VideoWriteSubs),
		WriteAutoSubs:   v.GetBool(keys.VideoAutoSubs),
		SubsLanguages:   orDefault(v.GetString(keys.VideoSubsLangs), def.SubsLanguages),
		SubsFormat:      enums.ParseSubtitlesFormat(v.GetString(keys.VideoSubsFormat)),
		AddChapters:     v.GetBool(keys.VideoAddChapters),
		SplitByChapters: v.GetBool(keys.VideoSplitChaps),
		AudioFormatIDs:  []string{},
		SponsorBlock:    sponsorBlock(v.GetStringSlice(keys.VideoSponsor)),
	}

	if s.NetworkRecheck <= 0 {
		s.NetworkRecheck = consts.NetworkRecheckInterval
	}

	for name, tmpl := range map[string]string{
		keys.AudioFileTemplate: s.AudioFileTemplate,
		keys.VideoFileTemplate: s.VideoFileTemplate,
	} {
		if !templates.IsValidFileTemplate(tmpl) {
			return Settings{}, fmt.Errorf("%s %q: %w", name, tmpl, errs.ErrInvalidTemplate)
		}
	}
	return s, nil
}

// Template returns the configured output template for mediaType.
func (s Settings) Template(mediaType enums.MediaType) string {
	if mediaType == enums.MediaTypeAudio {
		return s.AudioFileTemplate
	}
	return s.VideoFileTemplate
}

func sponsorBlock(in []string) []string {
	out := []string{}
	for _, name := range in {
		if c, ok := enums.ParseSponsorBlockCategory(name); ok {
			out = append(out, string(c))
		}
	}
	return out
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func clamp(n, lo, hi int) int {
	return min(max(n, lo), hi)
}
