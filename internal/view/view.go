// Package view is the controller behind one open group: it owns the note
// collection, rebuilds and simulates the graph when the collection changes,
// and turns hover, focus, and search input into render scenes.
package view

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/msalah0e/notegraph/internal/camera"
	"github.com/msalah0e/notegraph/internal/graph"
	"github.com/msalah0e/notegraph/internal/layout"
	"github.com/msalah0e/notegraph/internal/logging"
	"github.com/msalah0e/notegraph/internal/notes"
	"github.com/msalah0e/notegraph/internal/render"
	"github.com/msalah0e/notegraph/internal/search"
	"github.com/msalah0e/notegraph/internal/store"
	"go.uber.org/zap"
)

// Options configure a GroupView. Zero fields take defaults.
type Options struct {
	Params layout.Params
	// Frame is the pause between simulation steps.
	Frame time.Duration
	// CameraDuration is the focus transition length.
	CameraDuration time.Duration
	Width, Height  int
	Style          render.Style
	// Seeder returns the seed generator for one rebuild.
	Seeder func() graph.Seeder
	// Watch follows external edits to the group directory.
	Watch    bool
	Debounce time.Duration
	Log      *zap.Logger
	Now      func() time.Time
}

func (o *Options) defaults() {
	if o.Params.Iterations == 0 {
		o.Params = layout.DefaultParams()
	}
	if o.Width <= 0 {
		o.Width = 390
	}
	if o.Height <= 0 {
		o.Height = 390
	}
	if o.Style.LabelBudget == 0 {
		o.Style = render.DefaultStyle()
	}
	if o.Seeder == nil {
		o.Seeder = func() graph.Seeder { return graph.NewRegionSeeder(120, 120, 150, 0) }
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	o.Log = logging.OrNop(o.Log)
}

type snapshot struct {
	gen uint64
	g   *graph.Graph
}

// GroupView is safe for concurrent use. The simulation goroutine is the only
// writer of the live arena; readers get immutable per-frame copies.
type GroupView struct {
	Group notes.Group

	opts   Options
	store  *store.Store
	runner *layout.Runner
	cam    *camera.Camera
	log    *zap.Logger

	mu      sync.Mutex
	notes   []notes.Note
	query   string
	filter  search.Result
	hovered string
	focused string
	cursor  render.Cursor

	snap atomic.Pointer[snapshot]

	ctx     context.Context
	cancel  context.CancelFunc
	sims    sync.WaitGroup
	watcher *store.Watcher
}

// Open loads a group and starts its first simulation. A group directory that
// cannot be read opens empty; the read error is logged and returned
// alongside the usable view.
func Open(ctx context.Context, st *store.Store, g notes.Group, opts Options) (*GroupView, error) {
	opts.defaults()
	vctx, cancel := context.WithCancel(ctx)
	v := &GroupView{
		Group:  g,
		opts:   opts,
		store:  st,
		runner: layout.NewRunner(opts.Params, opts.Frame, opts.Log),
		cam:    camera.New(float64(opts.Width), float64(opts.Height), opts.CameraDuration),
		log:    opts.Log.With(zap.String("group", g.ID)),
		cursor: render.CursorDefault,
		ctx:    vctx,
		cancel: cancel,
	}
	v.cam.SetClock(opts.Now)

	list, loadErr := st.LoadNotes(vctx, g.ID)
	if loadErr != nil && !errors.Is(loadErr, store.ErrRead) {
		cancel()
		return nil, loadErr
	}
	v.mu.Lock()
	v.notes = list
	v.filter = search.Filter(list, "")
	v.rebuildLocked()
	v.mu.Unlock()

	if opts.Watch {
		w, err := st.Watch(vctx, g.ID, opts.Debounce, v.onDiskChange)
		if err != nil {
			v.log.Warn("watch unavailable", zap.Error(err))
		} else {
			v.watcher = w
		}
	}
	return v, loadErr
}

// Close stops the simulation and the watcher.
func (v *GroupView) Close() error {
	v.cancel()
	v.runner.Supersede()
	var err error
	if v.watcher != nil {
		err = v.watcher.Close()
	}
	v.sims.Wait()
	return err
}

// Wait blocks until no simulation is running.
func (v *GroupView) Wait() { v.sims.Wait() }

// Generation returns the generation of the live arena.
func (v *GroupView) Generation() uint64 { return v.runner.Generation() }

// rebuildLocked derives a fresh arena from v.notes and starts simulating it.
// Any run on the previous arena retires on its next step.
func (v *GroupView) rebuildLocked() {
	g := graph.Build(v.notes, v.opts.Seeder())
	gen := v.runner.Supersede()
	v.publish(gen, g.Clone())

	if v.hovered != "" {
		if _, ok := g.Index(v.hovered); !ok {
			v.hovered = ""
			v.cursor = render.CursorDefault
		}
	}
	if v.focused != "" {
		if _, ok := g.Index(v.focused); !ok {
			v.focused = ""
			v.cam.Release()
		}
	}

	cx, cy := float64(v.opts.Width)/2, float64(v.opts.Height)/2
	v.sims.Add(1)
	go func() {
		defer v.sims.Done()
		res, err := v.runner.Run(v.ctx, gen, g, cx, cy, func(live *graph.Graph) {
			v.publish(gen, live.Clone())
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			v.log.Warn("simulation stopped", zap.Uint64("generation", gen), zap.Error(err))
			return
		}
		if res.Stale {
			return
		}
		v.log.Debug("layout settled", zap.Uint64("generation", gen), zap.Int("steps", res.Steps), zap.Float64("energy", res.Energy))
	}()
}

// publish swaps in a snapshot unless a newer generation is already visible.
func (v *GroupView) publish(gen uint64, g *graph.Graph) {
	next := &snapshot{gen: gen, g: g}
	for {
		cur := v.snap.Load()
		if cur != nil && cur.gen > gen {
			return
		}
		if v.snap.CompareAndSwap(cur, next) {
			return
		}
	}
}

// Snapshot returns the latest published arena. Callers must not modify it.
func (v *GroupView) Snapshot() *graph.Graph {
	if s := v.snap.Load(); s != nil {
		return s.g
	}
	return graph.New()
}

// Notes returns the collection in creation order.
func (v *GroupView) Notes() []notes.Note {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]notes.Note(nil), v.notes...)
}

// Note returns one note by id.
func (v *GroupView) Note(id int64) (notes.Note, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, n := range v.notes {
		if n.ID == id {
			return n, true
		}
	}
	return notes.Note{}, false
}

// Visible returns the notes matching the current query, newest first.
func (v *GroupView) Visible() []notes.Note {
	v.mu.Lock()
	defer v.mu.Unlock()
	list := append([]notes.Note(nil), v.filter.Visible...)
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt > list[j].CreatedAt })
	return list
}

// Query returns the current search string.
func (v *GroupView) Query() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.query
}

// SetQuery re-filters the collection. The graph is not rebuilt.
func (v *GroupView) SetQuery(q string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.query = q
	v.filter = search.Filter(v.notes, q)
}

// Hover hit-tests a pointer at frame coordinates and returns the cursor to
// show.
func (v *GroupView) Hover(px, py float64) render.Cursor {
	nodes := v.Snapshot().Nodes
	id, cur := render.Pick(nodes, v.cam.Offset(), px, py, v.opts.Style)
	v.mu.Lock()
	v.hovered, v.cursor = id, cur
	v.mu.Unlock()
	return cur
}

// Leave clears the hover state.
func (v *GroupView) Leave() {
	v.mu.Lock()
	v.hovered, v.cursor = "", render.CursorDefault
	v.mu.Unlock()
}

// Hovered returns the hovered node id, if any.
func (v *GroupView) Hovered() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hovered
}

// Cursor returns the cursor for the last pointer position.
func (v *GroupView) Cursor() render.Cursor {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cursor
}

// Focus centers the camera on a node. Unknown ids release the focus.
func (v *GroupView) Focus(id string) bool {
	n, ok := v.Snapshot().Node(id)
	v.mu.Lock()
	defer v.mu.Unlock()
	if !ok {
		if v.focused != "" {
			v.focused = ""
			v.cam.Release()
		}
		return false
	}
	v.focused = id
	v.cam.Focus(camera.Vec{X: n.X, Y: n.Y})
	return true
}

// FocusNote focuses the node of a note.
func (v *GroupView) FocusNote(id int64) bool { return v.Focus(graph.NoteNodeID(id)) }

// ClearFocus releases the camera back to the origin.
func (v *GroupView) ClearFocus() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.focused == "" {
		return
	}
	v.focused = ""
	v.cam.Release()
}

// Focused returns the focused node id, if any.
func (v *GroupView) Focused() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.focused
}

// Scene assembles the frame at time now.
func (v *GroupView) Scene(now time.Time) render.Scene {
	g := v.Snapshot()
	v.mu.Lock()
	defer v.mu.Unlock()
	var highlight map[string]bool
	if !search.Blank(v.query) {
		highlight = v.filter.Highlight
	}
	return render.Scene{
		Nodes:     g.Nodes,
		Edges:     g.Edges,
		Offset:    v.cam.At(now),
		Hovered:   v.hovered,
		Focused:   v.focused,
		Highlight: highlight,
	}
}

// Draw renders the current frame onto s.
func (v *GroupView) Draw(s render.Surface) {
	render.Draw(s, v.Scene(v.opts.Now()), v.opts.Style)
}

// Animating reports whether another frame would differ from the last one.
func (v *GroupView) Animating() bool {
	return v.runner.Running() || v.cam.Animating(v.opts.Now())
}

// Style returns the render style in use.
func (v *GroupView) Style() render.Style { return v.opts.Style }

// Size returns the frame size in pixels.
func (v *GroupView) Size() (int, int) { return v.opts.Width, v.opts.Height }

// Save persists a draft as a new note (id 0) or over an existing one. The
// collection changes only after the store confirmed the write.
func (v *GroupView) Save(ctx context.Context, id int64, d notes.Draft) (notes.Note, error) {
	var (
		n   notes.Note
		err error
	)
	if id == 0 {
		n, err = v.store.CreateNote(ctx, v.Group.ID, d, v.opts.Now())
	} else {
		n, err = v.store.UpdateNote(ctx, v.Group.ID, id, d, v.opts.Now())
	}
	if err != nil {
		return notes.Note{}, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	replaced := false
	for i := range v.notes {
		if v.notes[i].ID == n.ID {
			v.notes[i] = n
			replaced = true
			break
		}
	}
	if !replaced {
		v.notes = append(v.notes, n)
	}
	v.commitLocked()
	return n, nil
}

// Delete removes a note. On a storage failure the note stays in the
// collection and the error is returned.
func (v *GroupView) Delete(ctx context.Context, id int64) error {
	if err := v.store.DeleteNote(ctx, v.Group.ID, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	next := v.notes[:0:0]
	for _, n := range v.notes {
		if n.ID != id {
			next = append(next, n)
		}
	}
	v.notes = next
	v.commitLocked()
	return nil
}

// Reload re-reads the collection from disk and rebuilds when it changed.
func (v *GroupView) Reload(ctx context.Context) error {
	list, err := v.store.LoadNotes(ctx, v.Group.ID)
	if err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if reflect.DeepEqual(list, v.notes) {
		return nil
	}
	v.notes = list
	v.commitLocked()
	return nil
}

func (v *GroupView) onDiskChange() {
	if err := v.Reload(v.ctx); err != nil && !errors.Is(err, context.Canceled) {
		v.log.Warn("reload failed", zap.Error(err))
	}
}

func (v *GroupView) commitLocked() {
	sort.SliceStable(v.notes, func(i, j int) bool {
		if v.notes[i].CreatedAt != v.notes[j].CreatedAt {
			return v.notes[i].CreatedAt < v.notes[j].CreatedAt
		}
		return v.notes[i].ID < v.notes[j].ID
	})
	v.filter = search.Filter(v.notes, v.query)
	v.rebuildLocked()
}
