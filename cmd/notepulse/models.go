package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chaz8081/notepulse/internal/models"
)

func (a *app) modelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Manage speech recognition models",
	}

	var url string
	download := &cobra.Command{
		Use:   "download",
		Short: "Download the whisper model to transcribe.model_path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			dest := a.cfg.Transcribe.ModelPath
			fmt.Fprintln(out, "Downloading whisper model...")
			fmt.Fprintf(out, "  URL: %s\n  Destination: %s\n", url, dest)
			if _, err := models.Download(ctx, url, dest, out); err != nil {
				return err
			}
			fmt.Fprintln(out, "Model ready.")
			return nil
		},
	}
	download.Flags().StringVar(&url, "url", models.WhisperModelURL, "model URL")

	cmd.AddCommand(download)
	return cmd
}
