package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/msalah0e/notegraph/internal/config"
	"github.com/msalah0e/notegraph/internal/graph"
	"github.com/msalah0e/notegraph/internal/layout"
	"github.com/msalah0e/notegraph/internal/notes"
	"github.com/msalah0e/notegraph/internal/render"
	"github.com/msalah0e/notegraph/internal/store"
	"github.com/msalah0e/notegraph/internal/tui"
	"github.com/msalah0e/notegraph/internal/ui"
	"github.com/spf13/cobra"
)

func graphCmd() *cobra.Command {
	var draw bool

	cmd := &cobra.Command{
		Use:               "graph <group>",
		Short:             "Lay out a group's note graph and show its stats",
		Aliases:           []string{"gr"},
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: groupCompletionFunc,
		Run: func(cmd *cobra.Command, args []string) {
			st := openStore()
			g := mustGroup(cmd.Context(), st, args[0])
			gr, res, err := layoutGroup(cmd.Context(), st, g, cfg)
			if err != nil {
				fatal("Layout failed: %v", err)
			}

			stats := gr.GetStats()
			ui.Banner(g.Name + " graph")
			if stats.Notes == 0 {
				fmt.Println("  Empty group. Add notes with #tags to grow the graph:")
				fmt.Println()
				ui.Info.Printf("  notegraph note add %s \"title\" -c \"#tag\"\n", g.ID)
				return
			}

			fmt.Print(formatStats(stats, res))
			if draw {
				fmt.Println()
				fmt.Println(drawCells(gr, cfg, 60, 24))
			}
		},
	}

	cmd.Flags().BoolVar(&draw, "draw", false, "Print the laid-out graph to the terminal")
	cmd.AddCommand(
		graphExportCmd(),
		graphViewCmd(),
	)
	return cmd
}

// layoutGroup loads a group and runs its simulation to completion.
func layoutGroup(ctx context.Context, st *store.Store, g notes.Group, c *config.Config) (*graph.Graph, layout.Result, error) {
	list := loadNotes(ctx, st, g.ID)
	lc := c.Layout
	gr := graph.Build(list, graph.NewRegionSeeder(lc.SeedX, lc.SeedY, lc.SeedSize, lc.Seed))
	res, err := layout.Settle(ctx, gr, lc.Params, float64(c.Render.Width)/2, float64(c.Render.Height)/2)
	return gr, res, err
}

func formatStats(s graph.Stats, res layout.Result) string {
	var b strings.Builder
	row := func(label string, v any) {
		fmt.Fprintf(&b, "  %s  %v\n", ui.Brand.Sprintf("%-20s", label), v)
	}
	row("Notes", s.Notes)
	row("Tags", s.Tags)
	row("Chronological edges", s.ChronologicalEdges)
	row("Tag edges", s.TagEdges)
	b.WriteString("\n")
	state := "finished"
	if res.Settled {
		state = "settled"
	}
	fmt.Fprintf(&b, "  %s\n", ui.Subtle.Sprintf("Layout %s after %d steps, energy %.4f", state, res.Steps, res.Energy))
	return b.String()
}

func style(c *config.Config) render.Style {
	st := render.DefaultStyle()
	if c.Render.LabelBudget > 0 {
		st.LabelBudget = c.Render.LabelBudget
	}
	if c.Render.PickPadding > 0 {
		st.PickPadding = c.Render.PickPadding
	}
	return st
}

func scene(gr *graph.Graph) render.Scene {
	return render.Scene{Nodes: gr.Nodes, Edges: gr.Edges}
}

func drawCells(gr *graph.Graph, c *config.Config, cols, rows int) string {
	st := style(c)
	cells := render.NewCells(c.Render.Width, c.Render.Height, cols, rows, st.Background)
	render.Draw(cells, scene(gr), st)
	return cells.String()
}

// Export formats.
const (
	formatPNG  = "png"
	formatDOT  = "dot"
	formatJSON = "json"
)

// exportFormat picks the format from the flag, falling back to the output
// file extension.
func exportFormat(flag, output string) (string, error) {
	f := strings.ToLower(flag)
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
	}
	switch f {
	case formatPNG, formatDOT, formatJSON:
		return f, nil
	case "gv":
		return formatDOT, nil
	case "":
		return formatJSON, nil
	}
	return "", fmt.Errorf("unknown format %q (use png, dot, or json)", f)
}

func writeExport(w io.Writer, gr *graph.Graph, format, name string, c *config.Config) error {
	switch format {
	case formatPNG:
		st := style(c)
		r := render.NewRaster(c.Render.Width, c.Render.Height, st.Background)
		render.Draw(r, scene(gr), st)
		return r.EncodePNG(w)
	case formatDOT:
		_, err := io.WriteString(w, gr.ExportDOT(name))
		return err
	default:
		data, err := gr.ExportJSON()
		if err != nil {
			return err
		}
		_, err = w.Write(append(data, '\n'))
		return err
	}
}

func graphExportCmd() *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "export <group>",
		Short: "Export the laid-out graph as PNG, DOT, or JSON",
		Long: `Run the layout to completion and export the result.

  notegraph graph export ideas -o ideas.png
  notegraph graph export ideas --format dot | neato -n -Tsvg > ideas.svg
  notegraph graph export ideas --format json`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: groupCompletionFunc,
		Run: func(cmd *cobra.Command, args []string) {
			f, err := exportFormat(format, output)
			if err != nil {
				fatal("notegraph: %v", err)
			}
			if f == formatPNG && output == "" {
				fatal("notegraph: png export needs --output")
			}

			st := openStore()
			g := mustGroup(cmd.Context(), st, args[0])
			gr, _, err := layoutGroup(cmd.Context(), st, g, cfg)
			if err != nil {
				fatal("Layout failed: %v", err)
			}

			if output == "" {
				if err := writeExport(cmd.OutOrStdout(), gr, f, g.ID, cfg); err != nil {
					fatal("Export failed: %v", err)
				}
				return
			}

			file, err := os.Create(output)
			if err != nil {
				fatal("Export failed: %v", err)
			}
			if err := writeExport(file, gr, f, g.ID, cfg); err != nil {
				file.Close()
				fatal("Export failed: %v", err)
			}
			if err := file.Close(); err != nil {
				fatal("Export failed: %v", err)
			}
			ui.Good.Printf("  %s Exported %s (%d nodes) to %s\n", ui.StatusIcon(true), g.Name, gr.Len(), output)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Export format: png, dot, json (default from --output extension, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default stdout)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{formatPNG, formatDOT, formatJSON}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func graphViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "view <group>",
		Short:             "Open a group in the interactive graph view",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: groupCompletionFunc,
		Run: func(cmd *cobra.Command, args []string) {
			logger = viewLogger()
			st := openStore()
			g := mustGroup(cmd.Context(), st, args[0])
			if err := tui.Run(cmd.Context(), cfg, st, logger, g.ID); err != nil {
				fatal("notegraph: %v", err)
			}
		},
	}
}
