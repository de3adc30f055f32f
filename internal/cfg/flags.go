package cfg

import (
	"zeku/internal/domain/keys"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// initProgramFlags sets program file and logging flags.
func initProgramFlags(rootCmd *cobra.Command, v *viper.Viper) error {
	fs := rootCmd.PersistentFlags()

	fs.String(keys.ConfigFile, "", "Config file (TOML, YAML or JSON) to load settings from")
	fs.String(keys.DBPath, "", "Database file")
	fs.String(keys.CacheDir, "", "Directory holding per-download scratch files")
	fs.String(keys.LogPath, "", "Program log file")
	fs.Int(keys.DebugLevel, 0, "Debug level (0-5)")
	fs.Int(keys.LogMaxSizeMB, 0, "Log file size before rotation, in MB")
	fs.Int(keys.LogMaxBackups, 0, "Rotated log files to keep")

	return bindFlags(v, fs,
		keys.ConfigFile, keys.DBPath, keys.CacheDir, keys.LogPath,
		keys.DebugLevel, keys.LogMaxSizeMB, keys.LogMaxBackups,
	)
}

// initDownloadFlags sets flags controlling how downloads are admitted and run.
func initDownloadFlags(rootCmd *cobra.Command, v *viper.Viper) error {
	fs := rootCmd.PersistentFlags()

	fs.String(keys.DownloadDir, "", "Directory finished downloads are moved to")
	fs.String(keys.YtDLPPath, "", "Path of the yt-dlp binary")
	fs.String(keys.PreventDuplicateDownloads, "", "Duplicate policy (none, url, type_and_url, configuration)")
	fs.Bool(keys.ContinueAfterPriority, false, "Keep downloading queued items after the requested ones")
	fs.Bool(keys.KeepCompleted, false, "Keep finished downloads in the queue as Saved")
	fs.Bool(keys.LogDownloads, false, "Store yt-dlp output of each download")
	fs.Bool(keys.Incognito, false, "Do not record history or logs for new downloads")
	fs.Int(keys.Retries, 0, "yt-dlp retries per download")
	fs.Bool(keys.SaveThumbnail, false, "Write thumbnails next to downloads")
	fs.String(keys.ExtraCommands, "", "Extra yt-dlp arguments appended to every download")
	fs.String(keys.AudioFileTemplate, "", "Output template for audio downloads")
	fs.String(keys.VideoFileTemplate, "", "Output template for video downloads")
	fs.Bool(keys.ExportCookies, false, "Export browser cookies for each download")
	fs.String(keys.CookieBrowserDomainOverride, "", "Domain to read browser cookies for instead of the URL's")
	fs.Bool(keys.AllowMetered, false, "Allow downloads on metered networks")
	fs.Bool(keys.NetworkMetered, false, "Treat the current network as metered")

	return bindFlags(v, fs,
		keys.DownloadDir, keys.YtDLPPath, keys.PreventDuplicateDownloads,
		keys.ContinueAfterPriority, keys.KeepCompleted, keys.LogDownloads,
		keys.Incognito, keys.Retries, keys.SaveThumbnail, keys.ExtraCommands,
		keys.AudioFileTemplate, keys.VideoFileTemplate, keys.ExportCookies,
		keys.CookieBrowserDomainOverride, keys.AllowMetered, keys.NetworkMetered,
	)
}

// bindFlags binds each named flag to the viper key of the same name.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, names ...string) error {
	for _, name := range names {
		if err := v.BindPFlag(name, fs.Lookup(name)); err != nil {
			return err
		}
	}
	return nil
}
