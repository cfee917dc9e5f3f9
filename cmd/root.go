package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/msalah0e/notegraph/internal/store"
	"github.com/msalah0e/notegraph/internal/ui"
	"github.com/spf13/cobra"
)

var version = "0.3.0"

var (
	dataDirFlag  string
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "notegraph",
	Short: "notegraph: notes as a living graph",
	Long: ui.Brand.Sprint(ui.Mark+" notegraph") + ": keep grouped notes and see how they connect\n" +
		ui.Subtle.Sprint("Notes link in time order and through shared #tags"),
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		groups, err := st.LoadGroups(cmd.Context())
		if err != nil && !errors.Is(err, store.ErrRead) {
			fatal("Failed to load groups: %v", err)
		}
		if err != nil {
			ui.Warn.Printf("  %s %v\n", ui.WarnIcon(), err)
		}

		ui.Banner("notes as a living graph")
		total := 0
		for _, g := range groups {
			total += st.CountNotes(g.ID)
		}
		fmt.Printf("  %s  %d\n", ui.Brand.Sprintf("%-8s", "Groups"), len(groups))
		fmt.Printf("  %s  %d\n", ui.Brand.Sprintf("%-8s", "Notes"), total)
		fmt.Println()
		ui.Info.Println("  notegraph view                  # interactive graph")
		ui.Info.Println("  notegraph note add <group> <t>  # jot something down")
		ui.Info.Println("  notegraph graph <group>         # layout stats")
		fmt.Println()
		fmt.Printf("  %s\n", ui.Subtle.Sprint("Data in "+st.Dir()))
	},
}

func init() {
	rootCmd.SetVersionTemplate("notegraph {{ .Version }}\n")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Override the data directory")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		groupCmd(),
		noteCmd(),
		searchCmd(),
		graphCmd(),
		viewCmd(),
		configCmd(),
		completionCmd(),
	)
}

// Execute runs the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
