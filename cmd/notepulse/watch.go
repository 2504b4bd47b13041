package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chaz8081/notepulse/internal/watcher"
)

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Import .txt transcripts dropped into the inbox as notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w, err := watcher.New(a.cfg.Watch.InboxDir, watcher.NewImporter(a.store, a.cfg.Summary.MaxPoints), a.cfg.Watch.MaxConcurrent)
			if err != nil {
				return err
			}
			defer w.Stop()

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for transcripts. Ctrl+C to quit.\n", a.cfg.Watch.InboxDir)
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
