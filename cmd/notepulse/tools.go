package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chaz8081/notepulse/internal/hotkey"
	"github.com/chaz8081/notepulse/internal/inject"
)

// hotkeyCmd prints listener events so the configured combination can be
// checked without recording anything.
func (a *app) hotkeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hotkey",
		Short: "Print events for the configured hotkey",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			listener := hotkey.NewListener(a.cfg.Hotkey.Keys, a.cfg.Hotkey.Mode)
			go listener.Run()

			fmt.Fprintf(out, "Listening for %s in %q mode. Ctrl+C to quit.\n",
				strings.Join(a.cfg.Hotkey.Keys, "+"), a.cfg.Hotkey.Mode)

			events := listener.Events()
			for {
				select {
				case ev, ok := <-events:
					if !ok {
						return nil
					}
					switch ev.Type {
					case hotkey.EventStart:
						fmt.Fprintln(out, ">>> START")
					case hotkey.EventStop:
						fmt.Fprintln(out, "<<< STOP")
					}
				case <-ctx.Done():
					return nil
				}
			}
		},
	}
}

// injectCmd delivers a saved note's highlights into whatever window has
// focus once a short countdown ends.
func (a *app) injectCmd() *cobra.Command {
	var (
		method string
		delay  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "inject <id>",
		Short: "Type or paste a note's highlights into the focused window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			method, err := injectMethod(method, a.cfg.Inject.Method)
			if err != nil {
				return err
			}
			n, err := a.store.Find(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Injecting %d highlights with %q in %s. Focus the target window now.\n",
				len(n.Highlights()), method, delay)
			if err := sleep(cmd.Context(), delay); err != nil {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}

			if err := inject.NewInjector(method).InjectSummary(n.Highlights()); err != nil {
				return err
			}
			fmt.Fprintln(out, "Done.")
			return nil
		},
	}
	cmd.Flags().StringVar(&method, "method", "", "type or paste (default: inject.method, or type when that is none)")
	cmd.Flags().DurationVar(&delay, "delay", 3*time.Second, "countdown before injecting")
	return cmd
}

// injectMethod picks the --method flag, falling back to the configured
// method, and typing when that is none.
func injectMethod(flag, configured string) (string, error) {
	method := flag
	if method == "" {
		method = configured
		if method == "none" {
			method = "type"
		}
	}
	switch method {
	case "type", "paste":
		return method, nil
	default:
		return "", fmt.Errorf("inject method must be \"type\" or \"paste\", got %q", method)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
