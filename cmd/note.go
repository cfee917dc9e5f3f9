package cmd

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/msalah0e/notegraph/internal/notes"
	"github.com/msalah0e/notegraph/internal/store"
	"github.com/msalah0e/notegraph/internal/tags"
	"github.com/msalah0e/notegraph/internal/ui"
	"github.com/spf13/cobra"
)

const listTitleMax = 20

func noteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "note",
		Aliases: []string{"notes", "n"},
		Short:   "Create, edit, and remove notes",
	}

	cmd.AddCommand(
		noteListCmd(),
		noteAddCmd(),
		noteEditCmd(),
		noteShowCmd(),
		noteRmCmd(),
	)
	return cmd
}

func noteListCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "list <group>",
		Aliases:           []string{"ls"},
		Short:             "List a group's notes, newest first",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: groupCompletionFunc,
		Run: func(cmd *cobra.Command, args []string) {
			st := openStore()
			g := mustGroup(cmd.Context(), st, args[0])
			list := loadNotes(cmd.Context(), st, g.ID)

			ui.Banner(g.Name)
			if len(list) == 0 {
				fmt.Println("  No notes yet. Add one:")
				fmt.Println()
				ui.Info.Printf("  notegraph note add %s \"title\" -c \"text with #tags\"\n", g.ID)
				return
			}
			ui.Table([]string{"ID", "Title", "Date", "Tags"}, noteRows(newestFirst(list)))
		},
	}
}

// newestFirst returns list in reverse creation order without modifying it.
func newestFirst(list []notes.Note) []notes.Note {
	out := slices.Clone(list)
	slices.Reverse(out)
	return out
}

func noteRows(list []notes.Note) [][]string {
	rows := make([][]string, 0, len(list))
	for _, n := range list {
		rows = append(rows, []string{
			strconv.FormatInt(n.ID, 10),
			notes.Truncate(n.Title, listTitleMax),
			n.Date(),
			ui.Info.Sprint(tags.Joined(n.Content)),
		})
	}
	return rows
}

func noteAddCmd() *cobra.Command {
	var content string
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "add <group> <title>",
		Short: "Create a note",
		Long: `Create a note. #tags in the content link it to other notes.

  notegraph note add ideas "standup" -c "daily sync #work"
  echo "#groceries milk" | notegraph note add shopping-list "monday" --stdin`,
		Args:              cobra.MinimumNArgs(2),
		ValidArgsFunction: groupCompletionFunc,
		Run: func(cmd *cobra.Command, args []string) {
			if fromStdin {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					fatal("Failed to read stdin: %v", err)
				}
				content = strings.TrimRight(string(data), "\n")
			}

			st := openStore()
			g := mustGroup(cmd.Context(), st, args[0])
			draft := notes.Draft{Title: strings.Join(args[1:], " "), Content: content}
			n, err := st.CreateNote(cmd.Context(), g.ID, draft, time.Now())
			if err != nil {
				fatal("Failed to save note: %v", err)
			}
			ui.Good.Printf("  %s Saved %s to %s (id %d)\n", ui.StatusIcon(true), ui.Brand.Sprint(n.Title), g.Name, n.ID)
		},
	}

	cmd.Flags().StringVarP(&content, "content", "c", "", "Note content")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read content from stdin")
	return cmd
}

func noteEditCmd() *cobra.Command {
	var title, content string

	cmd := &cobra.Command{
		Use:               "edit <group> <id>",
		Short:             "Change a note's title or content",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: noteCompletionFunc,
		Run: func(cmd *cobra.Command, args []string) {
			st := openStore()
			g := mustGroup(cmd.Context(), st, args[0])
			id := parseNoteID(args[1])

			cur, err := st.GetNote(cmd.Context(), g.ID, id)
			if err != nil {
				fatal("%v", err)
			}
			draft := notes.Draft{Title: cur.Title, Content: cur.Content}
			if cmd.Flags().Changed("title") {
				draft.Title = title
			}
			if cmd.Flags().Changed("content") {
				draft.Content = content
			}
			if draft.Title == cur.Title && draft.Content == cur.Content {
				ui.Subtle.Println("  Nothing to change")
				return
			}

			n, err := st.UpdateNote(cmd.Context(), g.ID, id, draft, time.Now())
			if err != nil {
				fatal("Failed to save note: %v", err)
			}
			ui.Good.Printf("  %s Updated %s\n", ui.StatusIcon(true), ui.Brand.Sprint(n.Title))
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "New content")
	return cmd
}

func noteShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "show <group> <id>",
		Aliases:           []string{"cat"},
		Short:             "Print a note",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: noteCompletionFunc,
		Run: func(cmd *cobra.Command, args []string) {
			st := openStore()
			g := mustGroup(cmd.Context(), st, args[0])
			n, err := st.GetNote(cmd.Context(), g.ID, parseNoteID(args[1]))
			if err != nil {
				fatal("%v", err)
			}
			fmt.Print(formatNote(n))
		},
	}
}

func formatNote(n notes.Note) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  %s\n", ui.Brand.Sprint(n.Title))
	fmt.Fprintf(&b, "  %s\n", ui.Subtle.Sprintf("created %s · updated %s",
		n.Created().Format(time.DateTime), time.UnixMilli(n.UpdatedAt).Format(time.DateTime)))
	if n.Content != "" {
		b.WriteString("\n")
		for _, line := range strings.Split(n.Content, "\n") {
			b.WriteString("  " + highlightTags(line) + "\n")
		}
	}
	return b.String()
}

func highlightTags(text string) string {
	return tags.Replace(text, func(marker string) string { return ui.Info.Sprint(marker) })
}

func noteRmCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:               "rm <group> <id>",
		Aliases:           []string{"remove", "delete"},
		Short:             "Delete a note",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: noteCompletionFunc,
		Run: func(cmd *cobra.Command, args []string) {
			st := openStore()
			g := mustGroup(cmd.Context(), st, args[0])
			id := parseNoteID(args[1])

			n, err := st.GetNote(cmd.Context(), g.ID, id)
			if err != nil {
				fatal("%v", err)
			}
			if !yes {
				fmt.Printf("  %s\n", ui.Brand.Sprint(n.Title))
				if !ui.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "Are you sure you want to delete this note?") {
					ui.Subtle.Println("  Cancelled")
					return
				}
			}

			if err := st.DeleteNote(cmd.Context(), g.ID, id); err != nil && !errors.Is(err, store.ErrNotFound) {
				fatal("Failed to delete note: %v", err)
			}
			ui.Good.Printf("  %s Deleted %s\n", ui.StatusIcon(true), n.Title)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
