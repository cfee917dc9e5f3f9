package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/msalah0e/notegraph/internal/notes"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#64c8ff"))
	subtleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#1f2a44"))
	graphBox      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#1f2a44"))
	panelBox      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#374151")).Padding(0, 1)
	dialogBox     = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#f87171")).Padding(1, 2)
)

func (a *App) View() string {
	var body string
	if a.screen == screenNotes && a.view != nil {
		body = a.viewNotes()
	} else {
		body = a.viewGroups()
	}
	if a.mode == modeConfirm && a.confirm != nil {
		body = lipgloss.JoinVertical(lipgloss.Left, body, a.viewConfirm())
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, a.viewStatus())
}

func (a *App) viewGroups() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("notegraph") + subtleStyle.Render("  groups") + "\n\n")

	cards := make([]string, 0, len(a.groups))
	for i, g := range a.groups {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(g.Color)).Render("■")
		count := a.store.CountNotes(g.ID)
		line := fmt.Sprintf("%s %s %s", swatch, g.Name, subtleStyle.Render(fmt.Sprintf("(%d)", count)))
		card := lipgloss.NewStyle().Width(28).Padding(0, 1).Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(g.Color))
		if i == a.groupCursor {
			card = card.BorderStyle(lipgloss.ThickBorder())
			line = selectedStyle.Render(line)
		}
		cards = append(cards, card.Render(line))
	}
	b.WriteString(grid(cards, 3))
	b.WriteString("\n")

	if a.mode == modeNewGroup {
		b.WriteString(a.viewCreator())
		b.WriteString("\n")
	}
	b.WriteString(subtleStyle.Render("enter open · n new group · d delete · q quit"))
	return b.String()
}

// grid lays cards out in rows of n.
func grid(cards []string, n int) string {
	var rows []string
	for i := 0; i < len(cards); i += n {
		end := min(i+n, len(cards))
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (a *App) viewCreator() string {
	var swatches []string
	for i, c := range notes.Palette {
		mark := "○"
		if i == a.colorIdx {
			mark = "●"
		}
		swatches = append(swatches, lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render(mark))
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("New group"),
		a.groupName.View(),
		strings.Join(swatches, " "),
		subtleStyle.Render("tab color · enter create · esc cancel"),
	)
	return panelBox.Render(content)
}

func (a *App) viewNotes() string {
	g := a.view.Group
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(g.Color)).Render(g.Name) +
		subtleStyle.Render(fmt.Sprintf("  %d notes", len(a.view.Notes())))

	a.view.Draw(a.cells)
	graphPane := graphBox.Render(a.cells.String())
	left := lipgloss.JoinVertical(lipgloss.Left, a.search.View(), graphPane)

	var right string
	if a.mode == modeEditor || (a.mode == modeConfirm && a.editingID != 0) {
		right = a.viewEditor()
	} else {
		right = a.viewList()
	}

	help := subtleStyle.Render("/ search · n new · enter edit · d delete · f unfocus · esc groups")
	if a.mode == modeEditor {
		help = subtleStyle.Render("tab switch field · ctrl+s save · ctrl+d delete · esc close")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
		help,
	)
}

func (a *App) viewList() string {
	visible := a.view.Visible()
	var b strings.Builder
	b.WriteString(titleStyle.Render("Notes") + "\n")
	if len(visible) == 0 {
		if a.view.Query() != "" {
			b.WriteString(subtleStyle.Render("No matching notes"))
		} else {
			b.WriteString(subtleStyle.Render("No notes yet"))
		}
		return panelBox.Width(34).Render(b.String())
	}
	for i, n := range visible {
		line := fmt.Sprintf("%-20s %s", notes.Truncate(n.Title, listTitleMax), subtleStyle.Render(n.Date()))
		if i == a.listCursor {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line + "\n")
		if i >= graphRows-1 {
			b.WriteString(subtleStyle.Render(fmt.Sprintf("… %d more", len(visible)-i-1)))
			break
		}
	}
	return panelBox.Width(34).Render(strings.TrimRight(b.String(), "\n"))
}

func (a *App) viewEditor() string {
	heading := "New note"
	if a.editingID != 0 {
		if n, ok := a.view.Note(a.editingID); ok {
			heading = "Created " + n.Created().Format(time.DateTime)
		}
	}
	return panelBox.Width(48).Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(heading),
		a.title.View(),
		a.body.View(),
	))
}

func (a *App) viewConfirm() string {
	return dialogBox.Render(lipgloss.JoinVertical(lipgloss.Left,
		a.confirm.message,
		"",
		subtleStyle.Render("y confirm · n cancel"),
	))
}

func (a *App) viewStatus() string {
	if a.status == "" {
		return ""
	}
	if a.statusErr {
		return errorStyle.Render("✗ " + a.status)
	}
	return okStyle.Render("✓ " + a.status)
}
