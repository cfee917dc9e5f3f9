// Package store persists groups and notes as JSON files under a data root:
//
//	<root>/notes/groups.json
//	<root>/notes/<groupId>/<noteId>.json
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/msalah0e/notegraph/internal/logging"
	"github.com/msalah0e/notegraph/internal/notes"
	"github.com/msalah0e/notegraph/internal/parallel"
	"go.uber.org/zap"
)

const (
	notesDir   = "notes"
	groupsFile = "groups.json"
	noteExt    = ".json"

	// maxIDProbe bounds how far CreateNote walks past a taken id.
	maxIDProbe = 1000
)

// removeAll is replaced in tests.
var removeAll = os.RemoveAll

// Store owns one data root. Group list rewrites are serialized; note files
// are written without locking, so concurrent saves of the same id race and
// the last write wins.
type Store struct {
	root string
	log  *zap.Logger

	// Concurrency bounds parallel note reads.
	Concurrency int

	mu sync.Mutex
}

// New returns a store rooted at root. Nothing is touched on disk until the
// first operation.
func New(root string, log *zap.Logger) *Store {
	return &Store{root: root, log: logging.OrNop(log), Concurrency: parallel.DefaultLimit}
}

// Root returns the data root.
func (s *Store) Root() string { return s.root }

// Dir returns the directory that holds every group.
func (s *Store) Dir() string { return filepath.Join(s.root, notesDir) }

// GroupsPath returns the path of the group list.
func (s *Store) GroupsPath() string { return filepath.Join(s.Dir(), groupsFile) }

// GroupDir returns the directory of a group's notes.
func (s *Store) GroupDir(group string) string { return filepath.Join(s.Dir(), group) }

// NotePath returns the file of one note.
func (s *Store) NotePath(group string, id int64) string {
	return filepath.Join(s.GroupDir(group), strconv.FormatInt(id, 10)+noteExt)
}

// LoadGroups reads the group list. On first run the default groups are
// written and returned. An unreadable or corrupt list returns the defaults
// together with an ErrRead, and the file is left untouched. Callers may keep
// using the defaults but must not write them back.
func (s *Store) LoadGroups(ctx context.Context) ([]notes.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadGroupsLocked(ctx)
}

func (s *Store) loadGroupsLocked(ctx context.Context) ([]notes.Group, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.GroupsPath()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		groups := defaultGroups()
		if err := s.writeGroupsLocked(groups); err != nil {
			return groups, err
		}
		s.log.Info("seeded default groups", zap.String("path", path), zap.Int("count", len(groups)))
		return groups, nil
	}
	if err != nil {
		s.log.Warn("group list unreadable, using defaults", zap.String("op", "load-groups"), zap.String("path", path), zap.Error(err))
		return defaultGroups(), fail(ErrRead, "load-groups", path, err)
	}

	var groups []notes.Group
	if err := json.Unmarshal(data, &groups); err != nil {
		s.log.Warn("group list corrupt, using defaults", zap.String("op", "load-groups"), zap.String("path", path), zap.Error(err))
		return defaultGroups(), fail(ErrRead, "load-groups", path, err)
	}
	return groups, nil
}

// Group returns one group by id. While the list is unreadable the default
// groups can still be found.
func (s *Store) Group(ctx context.Context, id string) (notes.Group, error) {
	groups, err := s.LoadGroups(ctx)
	if err != nil && !errors.Is(err, ErrRead) {
		return notes.Group{}, err
	}
	for _, g := range groups {
		if g.ID == id {
			return g, nil
		}
	}
	if err != nil {
		return notes.Group{}, err
	}
	return notes.Group{}, fail(ErrNotFound, "group", s.GroupDir(id), nil)
}

// AddGroup validates g and appends it to the list. A duplicate id is a
// validation error.
func (s *Store) AddGroup(ctx context.Context, g notes.Group) ([]notes.Group, error) {
	if err := notes.Validate(g); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	groups, err := s.loadGroupsLocked(ctx)
	if err != nil {
		return nil, err
	}
	for _, existing := range groups {
		if existing.ID == g.ID {
			return nil, notes.Invalid("group %q already exists", g.ID)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	next := append(append([]notes.Group(nil), groups...), g)
	if err := s.writeGroupsLocked(next); err != nil {
		return nil, err
	}
	s.log.Info("group added", zap.String("group", g.ID))
	return next, nil
}

// RemoveGroup deletes a group and every note in its directory. Seed groups
// cannot be removed. Confirmation is the caller's job.
//
// The list is rewritten before the directory is removed, so a failed delete
// leaves an unlisted directory behind rather than a listed group without
// notes. In that case the new list is returned together with ErrDelete.
func (s *Store) RemoveGroup(ctx context.Context, id string) ([]notes.Group, error) {
	if notes.IsSeed(id) {
		return nil, notes.Invalid("group %q is a default group and cannot be deleted", id)
	}
	if !notes.ValidID(id) {
		return nil, notes.Invalid("group id %q is not valid", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	groups, err := s.loadGroupsLocked(ctx)
	if err != nil {
		return nil, err
	}
	next := make([]notes.Group, 0, len(groups))
	for _, g := range groups {
		if g.ID != id {
			next = append(next, g)
		}
	}
	if len(next) == len(groups) {
		return nil, fail(ErrNotFound, "remove-group", s.GroupDir(id), nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.writeGroupsLocked(next); err != nil {
		return nil, err
	}
	dir := s.GroupDir(id)
	if err := removeAll(dir); err != nil {
		s.log.Error("group directory left behind", zap.String("op", "remove-group"), zap.String("path", dir), zap.String("group", id), zap.Error(err))
		return next, fail(ErrDelete, "remove-group", dir, err)
	}
	s.log.Info("group removed", zap.String("group", id))
	return next, nil
}

func (s *Store) writeGroupsLocked(groups []notes.Group) error {
	path := s.GroupsPath()
	data, err := json.MarshalIndent(groups, "", "  ")
	if err != nil {
		return fail(ErrWrite, "write-groups", path, err)
	}
	return writeVerified("write-groups", path, data, false)
}

func defaultGroups() []notes.Group {
	return append([]notes.Group(nil), notes.DefaultGroups...)
}

// LoadNotes reads every note of a group, ordered by creation time. A missing
// directory is an empty group. Files that cannot be read or decoded are
// logged and skipped. If the directory itself cannot be listed the error is
// returned with an empty, usable slice.
func (s *Store) LoadNotes(ctx context.Context, group string) ([]notes.Note, error) {
	if err := s.checkGroup(group); err != nil {
		return []notes.Note{}, err
	}
	dir := s.GroupDir(group)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []notes.Note{}, nil
	}
	if err != nil {
		s.log.Error("group unreadable", zap.String("op", "load-notes"), zap.String("path", dir), zap.String("group", group), zap.Error(err))
		return []notes.Note{}, fail(ErrRead, "load-notes", dir, err)
	}

	type file struct {
		path string
		id   int64
	}
	var files []file
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), noteExt) {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(e.Name(), noteExt), 10, 64)
		if err != nil {
			s.log.Debug("skipping foreign file", zap.String("path", filepath.Join(dir, e.Name())))
			continue
		}
		files = append(files, file{path: filepath.Join(dir, e.Name()), id: id})
	}

	results := parallel.Map(ctx, files, s.Concurrency, func(_ context.Context, f file) (notes.Note, error) {
		return readNote(f.path, f.id)
	})

	list := make([]notes.Note, 0, len(results))
	for i, r := range results {
		if r.Err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return []notes.Note{}, ctxErr
			}
			s.log.Warn("skipping unreadable note", zap.String("op", "load-notes"), zap.String("path", files[i].path), zap.String("group", group), zap.Error(r.Err))
			continue
		}
		list = append(list, r.Value)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].CreatedAt != list[j].CreatedAt {
			return list[i].CreatedAt < list[j].CreatedAt
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

// GetNote reads one note.
func (s *Store) GetNote(ctx context.Context, group string, id int64) (notes.Note, error) {
	if err := s.checkGroup(group); err != nil {
		return notes.Note{}, err
	}
	if err := ctx.Err(); err != nil {
		return notes.Note{}, err
	}
	path := s.NotePath(group, id)
	n, err := readNote(path, id)
	if errors.Is(err, fs.ErrNotExist) {
		return notes.Note{}, fail(ErrNotFound, "get-note", path, nil)
	}
	if err != nil {
		return notes.Note{}, fail(ErrRead, "get-note", path, err)
	}
	return n, nil
}

// CreateNote stores a new note built from d. The id is the creation time in
// milliseconds; when that file already exists the next free millisecond is
// taken. The group must be listed.
func (s *Store) CreateNote(ctx context.Context, group string, d notes.Draft, now time.Time) (notes.Note, error) {
	if err := notes.Validate(d); err != nil {
		return notes.Note{}, err
	}
	if _, err := s.Group(ctx, group); err != nil {
		return notes.Note{}, err
	}

	n := notes.New(d, now)
	for probe := 0; probe < maxIDProbe; probe++ {
		if err := ctx.Err(); err != nil {
			return notes.Note{}, err
		}
		err := s.write(group, n, true)
		if err == nil {
			s.log.Debug("note created", zap.String("group", group), zap.Int64("id", n.ID))
			return n, nil
		}
		if !errors.Is(err, ErrCollision) {
			return notes.Note{}, err
		}
		n.ID++
		n.CreatedAt, n.UpdatedAt = n.ID, n.ID
	}
	return notes.Note{}, fail(ErrCollision, "create-note", s.NotePath(group, n.ID), nil)
}

// UpdateNote applies d to an existing note, keeping its id and createdAt.
func (s *Store) UpdateNote(ctx context.Context, group string, id int64, d notes.Draft, now time.Time) (notes.Note, error) {
	if err := notes.Validate(d); err != nil {
		return notes.Note{}, err
	}
	cur, err := s.GetNote(ctx, group, id)
	if err != nil {
		return notes.Note{}, err
	}
	next := cur.Apply(d, now)
	if err := s.SaveNote(ctx, group, next); err != nil {
		return notes.Note{}, err
	}
	return next, nil
}

// SaveNote writes n to its file, replacing any previous version: ensure the
// directory, write, then stat the file to confirm it landed.
func (s *Store) SaveNote(ctx context.Context, group string, n notes.Note) error {
	if err := notes.Validate(n); err != nil {
		return err
	}
	if err := s.checkGroup(group); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.write(group, n, false)
}

func (s *Store) write(group string, n notes.Note, exclusive bool) error {
	if n.Type == "" {
		n.Type = notes.TypeNote
	}
	path := s.NotePath(group, n.ID)
	data, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return fail(ErrWrite, "save-note", path, err)
	}
	if err := writeVerified("save-note", path, data, exclusive); err != nil {
		if !errors.Is(err, ErrCollision) {
			s.log.Error("note write failed", zap.String("op", "save-note"), zap.String("path", path), zap.String("group", group), zap.Error(err))
		}
		return err
	}
	return nil
}

// DeleteNote removes one note file.
func (s *Store) DeleteNote(ctx context.Context, group string, id int64) error {
	if err := s.checkGroup(group); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.NotePath(group, id)
	err := os.Remove(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fail(ErrNotFound, "delete-note", path, nil)
	}
	if err != nil {
		s.log.Error("note delete failed", zap.String("op", "delete-note"), zap.String("path", path), zap.String("group", group), zap.Error(err))
		return fail(ErrDelete, "delete-note", path, err)
	}
	s.log.Debug("note deleted", zap.String("group", group), zap.Int64("id", id))
	return nil
}

// CountNotes returns the number of note files in a group without decoding
// them.
func (s *Store) CountNotes(group string) int {
	entries, err := os.ReadDir(s.GroupDir(group))
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), noteExt) {
			n++
		}
	}
	return n
}

func (s *Store) checkGroup(group string) error {
	if !notes.ValidID(group) {
		return notes.Invalid("group id %q is not valid", group)
	}
	return nil
}

// writeVerified creates missing parent directories, writes data, and stats
// the result. With exclusive set an existing file is an ErrCollision.
func writeVerified(op, path string, data []byte, exclusive bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fail(ErrWrite, op, path, err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if exclusive {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if exclusive && errors.Is(err, fs.ErrExist) {
		return fail(ErrCollision, op, path, err)
	}
	if err != nil {
		return fail(ErrWrite, op, path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fail(ErrWrite, op, path, err)
	}
	if err := f.Close(); err != nil {
		return fail(ErrWrite, op, path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fail(ErrWrite, op, path, err)
	}
	if info.Size() != int64(len(data)) {
		return fail(ErrWrite, op, path, errors.New("size mismatch after write"))
	}
	return nil
}

func readNote(path string, id int64) (notes.Note, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return notes.Note{}, err
	}
	var n notes.Note
	if err := json.Unmarshal(data, &n); err != nil {
		return notes.Note{}, err
	}
	if n.ID != id {
		return notes.Note{}, fmt.Errorf("id %d does not match file name", n.ID)
	}
	if n.Type == "" {
		n.Type = notes.TypeNote
	}
	return n, nil
}
