package cmd

import (
	"github.com/msalah0e/notegraph/internal/state"
	"github.com/msalah0e/notegraph/internal/tui"
	"github.com/spf13/cobra"
)

func viewCmd() *cobra.Command {
	var resume bool

	cmd := &cobra.Command{
		Use:     "view",
		Aliases: []string{"ui", "tui"},
		Short:   "Interactive terminal view of groups and their note graphs",
		Long: `Browse groups, then explore a group's notes as a live graph.

  Groups:  arrows move · enter open · n new group · d delete · q quit
  Notes:   / search · n new note · enter edit · d delete · esc back
  Editor:  tab switch field · ctrl+s save · ctrl+d delete · esc close

Hover a node with the mouse to highlight it; click a note to edit it.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			logger = viewLogger()
			st := openStore()
			start := ""
			if resume {
				start = state.LastGroup()
			}
			if err := tui.Run(cmd.Context(), cfg, st, logger, start); err != nil {
				fatal("notegraph: %v", err)
			}
		},
	}

	cmd.Flags().BoolVarP(&resume, "resume", "r", false, "Reopen the group of the last session")
	return cmd
}
