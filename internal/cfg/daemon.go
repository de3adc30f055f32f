package cfg

import (
	"context"
	"time"

	"zeku/internal/app"
	"zeku/internal/domain/consts"
	"zeku/internal/domain/keys"
	"zeku/internal/domain/logger"
	"zeku/internal/models"
	"zeku/internal/server"

	"github.com/spf13/cobra"
)

// watchCmd prints queue counts whenever they change.
func watchCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print queue counts as they change.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.App(false)
			if err != nil {
				return err
			}

			ctx := e.ctx
			updates := a.Queue.WatchCounts(ctx)
			ticker := time.NewTicker(consts.StatusPollInterval)
			defer ticker.Stop()

			var (
				last    models.ActiveAndQueuedCounts
				printed bool
			)
			show := func(c models.ActiveAndQueuedCounts) {
				if printed && c == last {
					return
				}
				last, printed = c, true
				printCounts(cmd.OutOrStdout(), c)
			}

			for {
				select {
				case <-ctx.Done():
					return nil
				case c, ok := <-updates:
					if !ok {
						return nil
					}
					show(c)
				case <-ticker.C:
					// Rows changed by other processes do not notify
					c, err := a.Queue.Counts(ctx)
					if err != nil {
						if ctx.Err() != nil {
							return nil
						}
						return err
					}
					show(c)
				}
			}
		},
	}
}

// runCmd drains the queue and exits once nothing is left to do.
func runCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Download everything queued, then exit.",
		Long:  "Runs queued and due downloads until none are active, queued or scheduled. Scheduled downloads are waited for.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.startDaemon()
			if err != nil {
				return err
			}

			ticker := time.NewTicker(consts.StatusPollInterval)
			defer ticker.Stop()
			for {
				select {
				case <-e.ctx.Done():
					logger.Pl.I("Interrupted, unfinished downloads stay queued")
					return nil
				case <-ticker.C:
					idle, err := a.Idle(e.ctx)
					if err != nil {
						if e.ctx.Err() != nil {
							continue
						}
						return err
					}
					if idle {
						logger.Pl.S("Queue finished")
						return nil
					}
				}
			}
		},
	}
}

// serveCmd runs the queue behind the HTTP API until interrupted.
func serveCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the download queue with the HTTP API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.startDaemon()
			if err != nil {
				return err
			}
			return server.StartServer(e.ctx, a, a.Settings.ServerAddr)
		},
	}

	cmd.Flags().String(keys.ServerAddr, "", "Address to listen on")
	if err := e.v.BindPFlag(keys.ServerAddr, cmd.Flags().Lookup(keys.ServerAddr)); err != nil {
		logger.Pl.E("Failed to bind flag %q: %v", keys.ServerAddr, err)
	}
	return cmd
}

// startDaemon opens the App as the queue owner and starts dispatching.
func (e *env) startDaemon() (*app.App, error) {
	a, err := e.App(true)
	if err != nil {
		return nil, err
	}
	if err := a.Start(e.ctx); err != nil {
		return nil, err
	}
	go pollQueue(e.ctx, a)
	return a, nil
}

// pollQueue kicks the dispatcher so rows added by other processes are picked up.
func pollQueue(ctx context.Context, a *app.App) {
	ticker := time.NewTicker(consts.QueuePollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, ok := a.Dispatcher.Pending(); ok {
				continue
			}
			if _, ok := a.Dispatcher.Running(); ok {
				continue
			}
			a.Dispatcher.Kick(ctx)
		}
	}
}
