package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chaz8081/notepulse/internal/note"
	"github.com/chaz8081/notepulse/internal/summarize"
)

func (a *app) listCmd() *cobra.Command {
	var (
		sortBy string
		full   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mode, err := note.ParseSortMode(sortBy)
			if err != nil {
				return err
			}
			return a.list(cmd.OutOrStdout(), mode, full)
		},
	}
	cmd.Flags().StringVar(&sortBy, "sort", "newest", "order: newest, oldest, alpha or length")
	cmd.Flags().BoolVar(&full, "full", false, "include transcripts")
	return cmd
}

func (a *app) list(out io.Writer, mode note.SortMode, full bool) error {
	notes := note.Sort(a.store.Load(), mode)
	if len(notes) == 0 {
		fmt.Fprintln(out, "No notes yet. Record one with 'notepulse record'.")
		return nil
	}
	for i, n := range notes {
		if i > 0 {
			fmt.Fprintln(out)
		}
		printNote(out, n, full)
	}
	return nil
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a note with its transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.store.Find(args[0])
			if err != nil {
				return err
			}
			printNote(cmd.OutOrStdout(), n, true)
			return nil
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.store.Find(args[0])
			if err != nil {
				return err
			}
			if err := a.store.Delete(n.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted note %s.\n", shortID(n.ID))
			return nil
		},
	}
}

func (a *app) resummarizeCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "resummarize",
		Short: "Fill in missing note summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			notes := a.store.Load()
			changed := resummarize(notes, a.cfg.Summary.MaxPoints, force)
			if changed == 0 {
				fmt.Fprintln(out, "All notes already have summaries.")
				return nil
			}
			if err := a.store.Overwrite(notes); err != nil {
				return err
			}
			fmt.Fprintf(out, "Updated %d of %d notes.\n", changed, len(notes))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "recompute every summary")
	return cmd
}

// resummarize recomputes summaries in place, only for notes without one
// unless force is set. It returns how many notes changed.
func resummarize(notes []note.Note, maxPoints int, force bool) int {
	changed := 0
	for i := range notes {
		if !force && len(notes[i].Summary) > 0 {
			continue
		}
		notes[i].Summary = summarize.SummarizeN(notes[i].Transcript, maxPoints)
		changed++
	}
	return changed
}
