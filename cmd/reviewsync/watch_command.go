package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"reviewsync/internal/daemon"
	"reviewsync/internal/logging"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var skipInitial bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Sync on the configured schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			// Console only; each pass opens its own run log.
			console, _, err := logging.NewFromConfig(cfg, "")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			runner := &passRunner{cfg: cfg, console: console, client: ctx.httpClient()}
			d, err := daemon.New(runner, cfg.LockPath(), cfg.Sync.Schedule, console)
			if err != nil {
				return err
			}
			return d.Watch(signalCtx, skipInitial)
		},
	}

	cmd.Flags().BoolVar(&skipInitial, "skip-initial", false, "Wait for the first scheduled tick instead of syncing immediately")
	return cmd
}
