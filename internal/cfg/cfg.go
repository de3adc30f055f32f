// Package cfg provides configuration and command-line interface setup for Zeku.
package cfg

import (
	"context"
	"errors"
	"os"

	"zeku/internal/app"
	"zeku/internal/config"
	"zeku/internal/domain/consts"
	"zeku/internal/domain/keys"
	"zeku/internal/domain/paths"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Opener builds the App for loaded settings. daemon is true for commands
// that drain the queue and must own the database.
type Opener func(ctx context.Context, s config.Settings, daemon bool) (*app.App, error)

// env is the state shared by every command of one invocation.
type env struct {
	ctx  context.Context
	v    *viper.Viper
	open Opener

	settings *config.Settings
	app      *app.App
}

var rootCmd *cobra.Command

// InitCommands initializes all commands and their flags.
func InitCommands(ctx context.Context, open Opener) error {
	cmd, err := NewRootCmd(ctx, config.New(), open)
	if err != nil {
		return err
	}
	rootCmd = cmd
	return nil
}

// Execute runs the root command.
func Execute() error {
	if rootCmd == nil {
		return errors.New("commands not initialized")
	}
	return rootCmd.Execute()
}

// NewRootCmd builds the command tree over v.
func NewRootCmd(ctx context.Context, v *viper.Viper, open Opener) (*cobra.Command, error) {
	e := &env{ctx: ctx, v: v, open: open}

	root := &cobra.Command{
		Use:           consts.ProgramName,
		Short:         "Zeku is a download queue for yt-dlp.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.loadConfigFile()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetContext(ctx)

	if err := initProgramFlags(root, v); err != nil {
		return nil, err
	}
	if err := initDownloadFlags(root, v); err != nil {
		return nil, err
	}

	root.AddCommand(
		addCmd(e),
		listCmd(e),
		lifecycleCmd(e, "cancel", "Cancel downloads.", cancelDownloads),
		lifecycleCmd(e, "pause", "Pause downloads.", pauseDownloads),
		lifecycleCmd(e, "resume", "Resume paused downloads.", resumeDownloads),
		lifecycleCmd(e, "retry", "Requeue failed or cancelled downloads.", retryDownloads),
		lifecycleCmd(e, "save", "Keep downloads out of the queue for later.", saveDownloads),
		scheduleCmd(e),
		deleteCmd(e),
		historyCmd(e),
		logsCmd(e),
		watchCmd(e),
		runCmd(e),
		serveCmd(e),
	)
	return root, nil
}

// loadConfigFile reads --config-file, or the default config file when present.
func (e *env) loadConfigFile() error {
	if e.v.IsSet(keys.ConfigFile) {
		if file := e.v.GetString(keys.ConfigFile); file != "" {
			return config.LoadFile(e.v, file)
		}
	}
	if paths.ConfigFilePath == "" {
		return nil
	}
	if _, err := os.Stat(paths.ConfigFilePath); err != nil {
		return nil
	}
	return config.LoadFile(e.v, paths.ConfigFilePath)
}

// Settings returns the settings snapshot, loading it on first use.
func (e *env) Settings() (config.Settings, error) {
	if e.settings != nil {
		return *e.settings, nil
	}
	s, err := config.Load(e.v)
	if err != nil {
		return config.Settings{}, err
	}
	e.settings = &s
	return s, nil
}

// App opens the application once per invocation.
func (e *env) App(daemon bool) (*app.App, error) {
	if e.app != nil {
		return e.app, nil
	}
	s, err := e.Settings()
	if err != nil {
		return nil, err
	}
	a, err := e.open(e.ctx, s, daemon)
	if err != nil {
		return nil, err
	}
	e.app = a
	return a, nil
}
