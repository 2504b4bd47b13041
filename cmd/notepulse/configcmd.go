package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/chaz8081/notepulse/internal/config"
)

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
		// Skips loading the config so a broken file can be replaced.
		PersistentPreRunE: func(*cobra.Command, []string) error {
			_ = godotenv.Load()
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the default config file if none exists",
		Long:  "Writes to --config, $NOTEPULSE_CONFIG or ~/.config/notepulse/config.yaml, in that order.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := config.ResolvePath(a.configPath)
			path, err := config.WriteDefault(target)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if path == "" {
				fmt.Fprintf(out, "Config already exists at %s\n", target)
				return nil
			}
			fmt.Fprintf(out, "Wrote default config to %s\n", path)
			return nil
		},
	})
	return cmd
}
