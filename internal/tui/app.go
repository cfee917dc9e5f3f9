// Package tui is the interactive terminal shell: a group grid and, per
// group, the live note graph with its list, search, and editor.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/msalah0e/notegraph/internal/config"
	"github.com/msalah0e/notegraph/internal/graph"
	"github.com/msalah0e/notegraph/internal/logging"
	"github.com/msalah0e/notegraph/internal/notes"
	"github.com/msalah0e/notegraph/internal/render"
	"github.com/msalah0e/notegraph/internal/state"
	"github.com/msalah0e/notegraph/internal/store"
	"github.com/msalah0e/notegraph/internal/view"
	"go.uber.org/zap"
)

type screen int

const (
	screenGroups screen = iota
	screenNotes
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeEditor
	modeNewGroup
	modeConfirm
)

const (
	graphCols = 48
	graphRows = 20
	// graphTop and graphLeft locate the first graph cell on screen: a title
	// line, the search line, then the box border.
	graphTop     = 3
	graphLeft    = 1
	fastFrame    = 33 * time.Millisecond
	idleFrame    = 250 * time.Millisecond
	listTitleMax = 20
)

type groupsLoadedMsg struct {
	groups []notes.Group
	err    error
}

type viewOpenedMsg struct {
	view *view.GroupView
	err  error
}

type frameMsg time.Time

type confirmation struct {
	message string
	onYes   func() tea.Cmd
	back    mode
}

// App is the Bubble Tea model.
type App struct {
	cfg   *config.Config
	store *store.Store
	log   *zap.Logger
	ctx   context.Context

	screen screen
	mode   mode
	width  int
	height int

	groups      []notes.Group
	groupCursor int
	startGroup  string

	view       *view.GroupView
	cells      *render.Cells
	listCursor int
	ticking    bool

	search    textinput.Model
	title     textinput.Model
	body      textarea.Model
	groupName textinput.Model
	colorIdx  int
	editingID int64
	bodyFocus bool

	confirm *confirmation

	// onOpen and onRemove observe group navigation; nil in tests.
	onOpen   func(group string)
	onRemove func(group string)

	status    string
	statusErr bool
}

// New returns the shell. A non-empty startGroup opens that group directly.
func New(ctx context.Context, cfg *config.Config, st *store.Store, log *zap.Logger, startGroup string) *App {
	search := textinput.New()
	search.Placeholder = "Search notes, tags..."
	search.Prompt = "/ "

	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 200

	body := textarea.New()
	body.Placeholder = "Write something... use #tags to link notes"
	body.SetWidth(44)
	body.SetHeight(12)

	groupName := textinput.New()
	groupName.Placeholder = "Group name"
	groupName.CharLimit = 60

	style := render.DefaultStyle()
	return &App{
		cfg:        cfg,
		store:      st,
		log:        logging.OrNop(log),
		ctx:        ctx,
		startGroup: startGroup,
		search:     search,
		title:      title,
		body:       body,
		groupName:  groupName,
		cells:      render.NewCells(cfg.Render.Width, cfg.Render.Height, graphCols, graphRows, style.Background),
	}
}

// Run starts the shell and blocks until it exits.
func Run(ctx context.Context, cfg *config.Config, st *store.Store, log *zap.Logger, startGroup string) error {
	app := New(ctx, cfg, st, log, startGroup)
	app.onOpen = func(group string) {
		if err := state.RecordOpen(group, time.Now()); err != nil {
			app.log.Debug("recording open group", zap.Error(err))
		}
	}
	app.onRemove = func(group string) {
		if err := state.Forget(group); err != nil {
			app.log.Debug("forgetting group", zap.Error(err))
		}
	}
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))
	_, err := p.Run()
	app.closeView()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (a *App) Init() tea.Cmd {
	return a.cmdLoadGroups()
}

func (a *App) cmdLoadGroups() tea.Cmd {
	return func() tea.Msg {
		groups, err := a.store.LoadGroups(a.ctx)
		return groupsLoadedMsg{groups: groups, err: err}
	}
}

func (a *App) cmdOpenGroup(g notes.Group) tea.Cmd {
	return func() tea.Msg {
		v, err := view.Open(a.ctx, a.store, g, a.viewOptions())
		return viewOpenedMsg{view: v, err: err}
	}
}

func (a *App) viewOptions() view.Options {
	lc := a.cfg.Layout
	style := render.DefaultStyle()
	style.LabelBudget = a.cfg.Render.LabelBudget
	style.PickPadding = a.cfg.Render.PickPadding
	return view.Options{
		Params:         lc.Params,
		Frame:          lc.Frame(),
		CameraDuration: a.cfg.Camera.Duration(),
		Width:          a.cfg.Render.Width,
		Height:         a.cfg.Render.Height,
		Style:          style,
		Seeder: func() graph.Seeder {
			return graph.NewRegionSeeder(lc.SeedX, lc.SeedY, lc.SeedSize, lc.Seed)
		},
		Watch: a.cfg.Store.Watch,
		Log:   a.log,
	}
}

func (a *App) tick() tea.Cmd {
	if a.ticking {
		return nil
	}
	a.ticking = true
	d := idleFrame
	if a.view != nil && a.view.Animating() {
		d = fastFrame
	}
	return tea.Tick(d, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (a *App) closeView() {
	if a.view != nil {
		if err := a.view.Close(); err != nil {
			a.log.Warn("closing view", zap.Error(err))
		}
		a.view = nil
	}
}

func (a *App) setStatus(msg string, isErr bool) {
	a.status, a.statusErr = msg, isErr
}

func (a *App) fail(err error) {
	a.setStatus(describe(err), true)
}

// describe turns an error into one status line.
func describe(err error) string {
	var ve *notes.ValidationError
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, store.ErrWrite):
		return "Failed to save note: " + err.Error()
	case errors.Is(err, store.ErrDelete):
		return "Failed to delete: " + err.Error()
	}
	return err.Error()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil

	case groupsLoadedMsg:
		if msg.err != nil {
			a.fail(msg.err)
		}
		a.groups = msg.groups
		a.clampGroupCursor()
		if a.startGroup != "" {
			id := a.startGroup
			a.startGroup = ""
			for i, g := range a.groups {
				if g.ID == id {
					a.groupCursor = i
					return a, a.cmdOpenGroup(g)
				}
			}
			a.setStatus(fmt.Sprintf("group %q not found", id), true)
		}
		return a, nil

	case viewOpenedMsg:
		if msg.view == nil {
			a.fail(msg.err)
			return a, nil
		}
		if msg.err != nil {
			a.fail(msg.err)
		}
		a.view = msg.view
		if a.onOpen != nil {
			a.onOpen(a.view.Group.ID)
		}
		a.screen = screenNotes
		a.mode = modeBrowse
		a.listCursor = 0
		a.search.SetValue("")
		return a, a.tick()

	case frameMsg:
		a.ticking = false
		if a.screen != screenNotes || a.view == nil {
			return a, nil
		}
		return a, a.tick()

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.mode {
		case modeConfirm:
			return a.updateConfirm(msg)
		case modeNewGroup:
			return a.updateNewGroup(msg)
		case modeEditor:
			return a.updateEditor(msg)
		case modeSearch:
			return a.updateSearch(msg)
		}
		if a.screen == screenGroups {
			return a.updateGroups(msg)
		}
		return a.updateNotes(msg)
	}

	switch a.mode {
	case modeEditor:
		return a.forwardEditor(msg)
	case modeSearch:
		var cmd tea.Cmd
		a.search, cmd = a.search.Update(msg)
		return a, cmd
	case modeNewGroup:
		var cmd tea.Cmd
		a.groupName, cmd = a.groupName.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) updateGroups(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return a, tea.Quit
	case "up", "k", "left", "h":
		a.groupCursor--
		a.clampGroupCursor()
	case "down", "j", "right", "l":
		a.groupCursor++
		a.clampGroupCursor()
	case "enter":
		if g, ok := a.selectedGroup(); ok {
			a.setStatus("", false)
			return a, a.cmdOpenGroup(g)
		}
	case "n", "+":
		a.mode = modeNewGroup
		a.colorIdx = 0
		a.groupName.SetValue("")
		return a, a.groupName.Focus()
	case "d", "delete":
		g, ok := a.selectedGroup()
		if !ok {
			break
		}
		if notes.IsSeed(g.ID) {
			a.setStatus(fmt.Sprintf("%s is a default group and cannot be deleted", g.Name), true)
			break
		}
		a.ask("Are you sure you want to delete this group? All notes in this group will be deleted.", func() tea.Cmd {
			groups, err := a.store.RemoveGroup(a.ctx, g.ID)
			if groups == nil {
				a.fail(err)
				return nil
			}
			a.groups = groups
			a.clampGroupCursor()
			if a.onRemove != nil {
				a.onRemove(g.ID)
			}
			if err != nil {
				a.fail(err)
				return nil
			}
			a.setStatus("Deleted "+g.Name, false)
			return nil
		})
	}
	return a, nil
}

func (a *App) updateNewGroup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeBrowse
		a.groupName.Blur()
		return a, nil
	case "tab":
		a.colorIdx = (a.colorIdx + 1) % len(notes.Palette)
		return a, nil
	case "shift+tab":
		a.colorIdx = (a.colorIdx + len(notes.Palette) - 1) % len(notes.Palette)
		return a, nil
	case "enter":
		g, err := notes.NewGroup(a.groupName.Value(), notes.Palette[a.colorIdx])
		if err != nil {
			a.fail(err)
			return a, nil
		}
		groups, err := a.store.AddGroup(a.ctx, g)
		if err != nil {
			a.fail(err)
			return a, nil
		}
		a.groups = groups
		a.groupCursor = len(groups) - 1
		a.mode = modeBrowse
		a.groupName.Blur()
		a.setStatus("Created "+g.Name, false)
		return a, nil
	}
	var cmd tea.Cmd
	a.groupName, cmd = a.groupName.Update(msg)
	return a, cmd
}

func (a *App) updateNotes(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := a.view.Visible()
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "esc", "backspace":
		a.closeView()
		a.screen = screenGroups
		a.mode = modeBrowse
		return a, a.cmdLoadGroups()
	case "/":
		a.mode = modeSearch
		return a, a.search.Focus()
	case "up", "k":
		a.moveList(-1, visible)
	case "down", "j":
		a.moveList(1, visible)
	case "n", "+":
		a.openEditor(notes.Note{})
		return a, tea.Batch(a.title.Focus(), a.tick())
	case "enter", "e":
		if n, ok := a.selectedNote(visible); ok {
			a.openEditor(n)
			return a, a.title.Focus()
		}
	case "d", "delete":
		if n, ok := a.selectedNote(visible); ok {
			a.askDeleteNote(n.ID)
		}
	case "f":
		a.view.ClearFocus()
	}
	return a, a.tick()
}

func (a *App) moveList(delta int, visible []notes.Note) {
	if len(visible) == 0 {
		return
	}
	a.listCursor += delta
	if a.listCursor < 0 {
		a.listCursor = 0
	}
	if a.listCursor >= len(visible) {
		a.listCursor = len(visible) - 1
	}
	a.view.FocusNote(visible[a.listCursor].ID)
}

func (a *App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.search.SetValue("")
		a.view.SetQuery("")
		a.search.Blur()
		a.mode = modeBrowse
		return a, nil
	case "enter":
		a.search.Blur()
		a.mode = modeBrowse
		return a, nil
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	a.view.SetQuery(a.search.Value())
	a.listCursor = 0
	return a, cmd
}

func (a *App) openEditor(n notes.Note) {
	a.mode = modeEditor
	a.editingID = n.ID
	a.bodyFocus = false
	a.title.SetValue(n.Title)
	a.body.SetValue(n.Content)
	a.body.Blur()
	if n.ID != 0 {
		a.view.FocusNote(n.ID)
	}
}

func (a *App) closeEditor() {
	a.mode = modeBrowse
	a.editingID = 0
	a.title.Blur()
	a.body.Blur()
}

func (a *App) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.closeEditor()
		return a, nil
	case "tab":
		a.bodyFocus = !a.bodyFocus
		if a.bodyFocus {
			a.title.Blur()
			return a, a.body.Focus()
		}
		a.body.Blur()
		return a, a.title.Focus()
	case "ctrl+s":
		d := notes.Draft{Title: a.title.Value(), Content: a.body.Value()}
		n, err := a.view.Save(a.ctx, a.editingID, d)
		if err != nil {
			a.fail(err)
			return a, nil
		}
		a.closeEditor()
		a.setStatus("Saved "+notes.Truncate(n.Title, listTitleMax), false)
		return a, a.tick()
	case "ctrl+d":
		if a.editingID != 0 {
			a.askDeleteNote(a.editingID)
		}
		return a, nil
	}
	return a.forwardEditor(msg)
}

func (a *App) forwardEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if a.bodyFocus {
		a.body, cmd = a.body.Update(msg)
	} else {
		a.title, cmd = a.title.Update(msg)
	}
	return a, cmd
}

func (a *App) askDeleteNote(id int64) {
	a.ask("Are you sure you want to delete this note?", func() tea.Cmd {
		if err := a.view.Delete(a.ctx, id); err != nil {
			a.fail(err)
			return nil
		}
		a.closeEditor()
		a.setStatus("Note deleted", false)
		return a.tick()
	})
}

func (a *App) ask(message string, onYes func() tea.Cmd) {
	a.confirm = &confirmation{message: message, onYes: onYes, back: a.mode}
	a.title.Blur()
	a.body.Blur()
	a.mode = modeConfirm
}

func (a *App) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := a.confirm
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		a.confirm = nil
		a.mode = modeBrowse
		return a, c.onYes()
	case "n", "esc", "q":
		a.confirm = nil
		a.mode = c.back
		if c.back == modeEditor {
			a.bodyFocus = false
			return a, a.title.Focus()
		}
	}
	return a, nil
}

func (a *App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.screen != screenNotes || a.view == nil {
		return a, nil
	}
	col, row := msg.X-graphLeft, msg.Y-graphTop
	cols, rows := a.cells.Size()
	if col < 0 || row < 0 || col >= cols || row >= rows {
		a.view.Leave()
		return a, nil
	}
	px, py := a.cells.PixelAt(col, row)

	switch {
	case msg.Action == tea.MouseActionMotion:
		a.view.Hover(px, py)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		a.view.Hover(px, py)
		id := a.view.Hovered()
		if id == "" {
			a.view.ClearFocus()
			break
		}
		a.view.Focus(id)
		if n, ok := a.noteForNode(id); ok && a.mode == modeBrowse {
			a.openEditor(n)
			return a, tea.Batch(a.title.Focus(), a.tick())
		}
	}
	return a, a.tick()
}

func (a *App) noteForNode(id string) (notes.Note, bool) {
	node, ok := a.view.Snapshot().Node(id)
	if !ok || node.Kind != graph.KindNote {
		return notes.Note{}, false
	}
	return a.view.Note(node.NoteID)
}

func (a *App) selectedGroup() (notes.Group, bool) {
	if a.groupCursor < 0 || a.groupCursor >= len(a.groups) {
		return notes.Group{}, false
	}
	return a.groups[a.groupCursor], true
}

func (a *App) clampGroupCursor() {
	if a.groupCursor >= len(a.groups) {
		a.groupCursor = len(a.groups) - 1
	}
	if a.groupCursor < 0 {
		a.groupCursor = 0
	}
}

func (a *App) selectedNote(visible []notes.Note) (notes.Note, bool) {
	if a.listCursor < 0 || a.listCursor >= len(visible) {
		return notes.Note{}, false
	}
	return visible[a.listCursor], true
}
