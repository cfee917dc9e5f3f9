package cmd

import (
	"fmt"
	"strings"

	"github.com/msalah0e/notegraph/internal/notes"
	"github.com/msalah0e/notegraph/internal/search"
	"github.com/msalah0e/notegraph/internal/ui"
	"github.com/spf13/cobra"
)

func searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "search <group> <query>",
		Aliases: []string{"s", "find"},
		Short:   "Find notes by title, content, or tag",
		Long: `Find notes whose title, content, or tags contain the query, ignoring case.

  notegraph search ideas work     # title or content containing "work"
  notegraph search ideas "#work"  # notes tagged #work`,
		Args:              cobra.MinimumNArgs(2),
		ValidArgsFunction: groupCompletionFunc,
		Run: func(cmd *cobra.Command, args []string) {
			st := openStore()
			g := mustGroup(cmd.Context(), st, args[0])
			query := strings.Join(args[1:], " ")
			list := loadNotes(cmd.Context(), st, g.ID)

			res := search.Filter(list, query)
			ui.Banner(fmt.Sprintf("search %q in %s", query, g.Name))
			if len(res.Visible) == 0 {
				ui.Warn.Println("  No matching notes")
				return
			}
			fmt.Print(formatMatches(newestFirst(res.Visible), query))
			fmt.Println()
			fmt.Printf("  %s\n", ui.Subtle.Sprintf("%d of %d notes", len(res.Visible), len(list)))
		},
	}
}

func formatMatches(list []notes.Note, query string) string {
	var b strings.Builder
	for _, n := range list {
		field, _ := search.MatchField(n, query)
		fmt.Fprintf(&b, "  %s %-20s %s  %s\n",
			ui.Subtle.Sprint("──"),
			notes.Truncate(n.Title, listTitleMax),
			ui.Subtle.Sprint(n.Date()),
			ui.Subtle.Sprintf("[%s]", field))
		if snippet := firstLine(n.Content, 60); snippet != "" {
			fmt.Fprintf(&b, "     %s\n", highlightTags(snippet))
		}
	}
	return b.String()
}

func firstLine(s string, max int) string {
	s, _, _ = strings.Cut(strings.TrimSpace(s), "\n")
	return notes.Truncate(s, max)
}
