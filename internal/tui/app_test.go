package tui

import (
	"context"
	"os"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/msalah0e/notegraph/internal/config"
	"github.com/msalah0e/notegraph/internal/graph"
	"github.com/msalah0e/notegraph/internal/notes"
	"github.com/msalah0e/notegraph/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newApp(t *testing.T, start string) (*App, *store.Store) {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Watch = false
	cfg.Layout.Iterations = 20
	cfg.Layout.FrameMS = 0
	cfg.Layout.Seed = 3

	st := store.New(t.TempDir(), zaptest.NewLogger(t))
	a := New(context.Background(), cfg, st, zaptest.NewLogger(t), start)
	t.Cleanup(a.closeView)

	msg := a.Init()()
	cmd := send(a, msg)
	if cmd != nil {
		send(a, cmd())
	}
	return a, st
}

func send(a *App, msg tea.Msg) tea.Cmd {
	_, cmd := a.Update(msg)
	return cmd
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func openGroup(t *testing.T, a *App, index int) {
	t.Helper()
	for range index {
		send(a, key("down"))
	}
	cmd := send(a, key("enter"))
	require.NotNil(t, cmd)
	send(a, cmd())
	require.Equal(t, screenNotes, a.screen)
}

func TestGroupsLoadDefaults(t *testing.T) {
	a, _ := newApp(t, "")
	require.Len(t, a.groups, 3)
	out := a.View()
	assert.Contains(t, out, "quick notes")
	assert.Contains(t, out, "shopping list")
	assert.Contains(t, out, "ideas")
}

func TestCorruptGroupListKeepsDefaults(t *testing.T) {
	st := store.New(t.TempDir(), zaptest.NewLogger(t))
	require.NoError(t, os.MkdirAll(st.Dir(), 0o755))
	require.NoError(t, os.WriteFile(st.GroupsPath(), []byte("[{"), 0o644))

	cfg := config.Default()
	cfg.Store.Watch = false
	a := New(context.Background(), cfg, st, zaptest.NewLogger(t), "")
	t.Cleanup(a.closeView)
	send(a, a.Init()())

	assert.Len(t, a.groups, 3)
	assert.True(t, a.statusErr)

	send(a, key("n"))
	send(a, key("Work"))
	send(a, key("enter"))
	assert.True(t, a.statusErr, "adding a group over a corrupt list fails")
	assert.Len(t, a.groups, 3)
	data, err := os.ReadFile(st.GroupsPath())
	require.NoError(t, err)
	assert.Equal(t, "[{", string(data))
}

func TestCreateNoteFromEditor(t *testing.T) {
	a, st := newApp(t, "")
	openGroup(t, a, 2)
	assert.Equal(t, "ideas", a.view.Group.ID)

	send(a, key("n"))
	require.Equal(t, modeEditor, a.mode)
	send(a, key("standup"))
	send(a, key("tab"))
	send(a, key("daily #work"))
	send(a, key("ctrl+s"))

	assert.Equal(t, modeBrowse, a.mode)
	assert.False(t, a.statusErr, a.status)
	require.Len(t, a.view.Notes(), 1)
	n := a.view.Notes()[0]
	assert.Equal(t, "standup", n.Title)
	assert.Equal(t, "daily #work", n.Content)
	assert.Equal(t, 1, st.CountNotes("ideas"))

	a.view.Wait()
	assert.Contains(t, a.View(), "standup")
}

func TestSaveBlankTitleShowsError(t *testing.T) {
	a, st := newApp(t, "ideas")
	send(a, key("n"))
	send(a, key("ctrl+s"))

	assert.Equal(t, modeEditor, a.mode, "editor stays open")
	assert.True(t, a.statusErr)
	assert.Zero(t, st.CountNotes("ideas"))
}

func TestDeleteNoteAsksFirst(t *testing.T) {
	a, st := newApp(t, "")
	_, err := st.CreateNote(context.Background(), "ideas", notes.Draft{Title: "doomed"}, time.UnixMilli(1_000))
	require.NoError(t, err)
	openGroup(t, a, 2)
	require.Len(t, a.view.Notes(), 1)

	send(a, key("d"))
	require.Equal(t, modeConfirm, a.mode)
	assert.Contains(t, a.View(), "Are you sure you want to delete this note?")

	send(a, key("n"))
	assert.Equal(t, modeBrowse, a.mode)
	assert.Len(t, a.view.Notes(), 1)

	send(a, key("d"))
	send(a, key("y"))
	assert.Empty(t, a.view.Notes())
	assert.Zero(t, st.CountNotes("ideas"))
}

func TestCreateAndDeleteGroup(t *testing.T) {
	a, st := newApp(t, "")
	send(a, key("n"))
	require.Equal(t, modeNewGroup, a.mode)
	send(a, key("Reading List"))
	send(a, key("tab"))
	send(a, key("enter"))

	require.Len(t, a.groups, 4)
	g := a.groups[3]
	assert.Equal(t, "reading-list", g.ID)
	assert.Equal(t, notes.Palette[1], g.Color)
	assert.Equal(t, 3, a.groupCursor)

	send(a, key("d"))
	require.Equal(t, modeConfirm, a.mode)
	assert.Contains(t, a.View(), "All notes in this group will be deleted.")
	send(a, key("y"))

	groups, err := st.LoadGroups(context.Background())
	require.NoError(t, err)
	assert.Len(t, groups, 3)
	assert.Len(t, a.groups, 3)
}

func TestSeedGroupIsProtected(t *testing.T) {
	a, _ := newApp(t, "")
	send(a, key("d"))
	assert.Equal(t, modeBrowse, a.mode)
	assert.True(t, a.statusErr)
	assert.Len(t, a.groups, 3)
}

func TestSearchFiltersList(t *testing.T) {
	a, st := newApp(t, "")
	ctx := context.Background()
	_, err := st.CreateNote(ctx, "ideas", notes.Draft{Title: "standup", Content: "#work"}, time.UnixMilli(1_000))
	require.NoError(t, err)
	_, err = st.CreateNote(ctx, "ideas", notes.Draft{Title: "groceries"}, time.UnixMilli(2_000))
	require.NoError(t, err)
	openGroup(t, a, 2)

	send(a, key("/"))
	require.Equal(t, modeSearch, a.mode)
	send(a, key("work"))
	assert.Equal(t, "work", a.view.Query())
	require.Len(t, a.view.Visible(), 1)
	assert.Equal(t, "standup", a.view.Visible()[0].Title)

	send(a, key("esc"))
	assert.Equal(t, modeBrowse, a.mode)
	assert.Len(t, a.view.Visible(), 2)
}

func TestListCursorFocusesNode(t *testing.T) {
	a, st := newApp(t, "")
	ctx := context.Background()
	first, err := st.CreateNote(ctx, "ideas", notes.Draft{Title: "first"}, time.UnixMilli(1_000))
	require.NoError(t, err)
	_, err = st.CreateNote(ctx, "ideas", notes.Draft{Title: "second"}, time.UnixMilli(2_000))
	require.NoError(t, err)
	openGroup(t, a, 2)

	send(a, key("down"))
	assert.Equal(t, 1, a.listCursor)
	assert.Equal(t, graph.NoteNodeID(first.ID), a.view.Focused())
}

func TestEscReturnsToGroups(t *testing.T) {
	a, _ := newApp(t, "ideas")
	require.Equal(t, screenNotes, a.screen)
	cmd := send(a, key("esc"))
	assert.Equal(t, screenGroups, a.screen)
	assert.Nil(t, a.view)
	require.NotNil(t, cmd)
	send(a, cmd())
	assert.Len(t, a.groups, 3)
}

func TestMouseOutsideGraphLeaves(t *testing.T) {
	a, _ := newApp(t, "ideas")
	send(a, tea.MouseMsg{X: 200, Y: 200, Action: tea.MouseActionMotion})
	assert.Empty(t, a.view.Hovered())
}
