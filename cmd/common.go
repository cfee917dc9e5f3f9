package cmd

import (
	"context"
	"errors"
	"os"
	"strconv"

	"github.com/msalah0e/notegraph/internal/config"
	"github.com/msalah0e/notegraph/internal/logging"
	"github.com/msalah0e/notegraph/internal/notes"
	"github.com/msalah0e/notegraph/internal/store"
	"github.com/msalah0e/notegraph/internal/ui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg    *config.Config
	logger *zap.Logger
)

// setup loads configuration and builds the logger. Flags win over the file.
func setup() {
	cfg = config.Load()
	if dataDirFlag != "" {
		cfg.Store.Dir = dataDirFlag
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}
	l, err := logging.New(cfg.Log)
	if err != nil {
		ui.Warn.Printf("  %s logging disabled: %v\n", ui.WarnIcon(), err)
		l = zap.NewNop()
	}
	logger = l
}

// viewLogger is the logger for full-screen commands: stderr output would
// corrupt the screen, so only file logging survives.
func viewLogger() *zap.Logger {
	if cfg.Log.File == "" {
		return zap.NewNop()
	}
	return logger
}

func openStore() *store.Store {
	if cfg == nil {
		setup()
	}
	st := store.New(cfg.Store.Dir, logger)
	st.Concurrency = cfg.Store.Concurrency
	return st
}

// fatal prints one error line and exits 1.
func fatal(format string, args ...any) {
	ui.Bad.Printf("  "+format+"\n", args...)
	if logger != nil {
		_ = logger.Sync()
	}
	os.Exit(1)
}

func mustGroup(ctx context.Context, st *store.Store, id string) notes.Group {
	g, err := st.Group(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		fatal("notegraph: unknown group %q (see `notegraph group list`)", id)
	}
	if err != nil {
		fatal("Failed to load groups: %v", err)
	}
	return g
}

func parseNoteID(s string) int64 {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		fatal("notegraph: invalid note id %q", s)
	}
	return id
}

// loadNotes reads a group, warning instead of failing on unreadable files.
func loadNotes(ctx context.Context, st *store.Store, group string) []notes.Note {
	list, err := st.LoadNotes(ctx, group)
	if err != nil {
		ui.Warn.Printf("  %s %v\n", ui.WarnIcon(), err)
	}
	return list
}

// groupCompletionFunc completes group ids.
func groupCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	st := openStore()
	groups, err := st.LoadGroups(cmd.Context())
	if err != nil && len(groups) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var completions []string
	for _, g := range groups {
		completions = append(completions, g.ID+"\t"+g.Name)
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

// noteCompletionFunc completes a group id, then note ids within it.
func noteCompletionFunc(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return groupCompletionFunc(cmd, args, toComplete)
	}
	if len(args) > 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	st := openStore()
	list, _ := st.LoadNotes(cmd.Context(), args[0])
	var completions []string
	for _, n := range list {
		completions = append(completions, strconv.FormatInt(n.ID, 10)+"\t"+notes.Truncate(n.Title, 20))
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}
