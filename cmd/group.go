package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/msalah0e/notegraph/internal/notes"
	"github.com/msalah0e/notegraph/internal/state"
	"github.com/msalah0e/notegraph/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func groupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "group",
		Aliases: []string{"groups", "g"},
		Short:   "Manage note groups",
		Run: func(cmd *cobra.Command, args []string) {
			printGroups(cmd)
		},
	}

	cmd.AddCommand(
		groupListCmd(),
		groupAddCmd(),
		groupRmCmd(),
	)
	return cmd
}

func groupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List groups with their note counts",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printGroups(cmd)
		},
	}
}

func printGroups(cmd *cobra.Command) {
	st := openStore()
	groups, err := st.LoadGroups(cmd.Context())
	if err != nil {
		ui.Warn.Printf("  %s %v\n", ui.WarnIcon(), err)
	}

	ui.Banner("groups")
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		name := g.Name
		if notes.IsSeed(g.ID) {
			name += ui.Subtle.Sprint(" (default)")
		}
		rows = append(rows, []string{
			ui.Swatch(g.Color) + " " + g.ID,
			name,
			g.Color,
			strconv.Itoa(st.CountNotes(g.ID)),
		})
	}
	ui.Table([]string{"ID", "Name", "Color", "Notes"}, rows)
}

func groupAddCmd() *cobra.Command {
	var colorFlag string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a group",
		Long: `Create a group. The id is derived from the name.

Colors come from a fixed palette:
  ` + strings.Join(notes.Palette, " "),
		Args: cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			name := strings.Join(args, " ")
			g, err := notes.NewGroup(name, colorFlag)
			if err != nil {
				fatal("%v", err)
			}

			st := openStore()
			if _, err := st.AddGroup(cmd.Context(), g); err != nil {
				fatal("%v", err)
			}
			ui.Good.Printf("  %s Created %s %s (%s)\n", ui.StatusIcon(true), ui.Swatch(g.Color), ui.Brand.Sprint(g.Name), g.ID)
		},
	}

	cmd.Flags().StringVar(&colorFlag, "color", notes.Palette[0], "Group color from the palette")
	_ = cmd.RegisterFlagCompletionFunc("color", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return notes.Palette, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func groupRmCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:               "rm <id>",
		Aliases:           []string{"remove", "delete"},
		Short:             "Delete a group and all its notes",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: groupCompletionFunc,
		Run: func(cmd *cobra.Command, args []string) {
			id := args[0]
			st := openStore()
			g := mustGroup(cmd.Context(), st, id)
			if notes.IsSeed(g.ID) {
				fatal("notegraph: %s is a default group and cannot be deleted", g.Name)
			}

			if !yes {
				count := st.CountNotes(g.ID)
				fmt.Printf("  %s %s (%d notes)\n", ui.Swatch(g.Color), ui.Brand.Sprint(g.Name), count)
				if !ui.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Are you sure you want to delete this group? All notes in this group will be deleted.") {
					ui.Subtle.Println("  Cancelled")
					return
				}
			}

			groups, err := st.RemoveGroup(cmd.Context(), g.ID)
			if groups == nil {
				fatal("Failed to delete group: %v", err)
			}
			if err := state.Forget(g.ID); err != nil {
				logger.Debug("forgetting group", zap.Error(err))
			}
			if err != nil {
				ui.Warn.Printf("  %s %v\n", ui.WarnIcon(), err)
			}
			ui.Good.Printf("  %s Deleted %s\n", ui.StatusIcon(true), g.Name)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
