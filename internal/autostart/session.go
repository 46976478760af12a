// Package autostart keeps the user's list of autostart entries, records
// every change to it for undo and redo, and saves it back to the desktop
// files it was loaded from.
package autostart

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Guliveer/dsbautostart/internal/desktopfile"
	"github.com/Guliveer/dsbautostart/internal/history"
	"github.com/Guliveer/dsbautostart/internal/store"
	"github.com/Guliveer/dsbautostart/internal/xdg"
)

// ErrUnknownEntry is returned when an entry does not belong to the session.
var ErrUnknownEntry = errors.New("entry not in session")

// Session is an editable view of the autostart entries. It is not safe for
// concurrent use.
type Session struct {
	store   *store.Store
	logger  *zap.Logger
	desktop string

	current  []*Entry
	previous []*Entry
	journal  *history.Journal[*desktopfile.Entry]
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDesktop overrides the desktop environment name used to compute
// Entry.Exclude. By default XDG_CURRENT_DESKTOP is used.
func WithDesktop(name string) Option {
	return func(s *Session) {
		if name != "" {
			s.desktop = name
		}
	}
}

// New loads the autostart entries from st.
func New(st *store.Store, opts ...Option) (*Session, error) {
	s := &Session{
		store:   st,
		logger:  zap.NewNop(),
		desktop: st.Resolver().CurrentDesktop(),
		journal: history.New[*desktopfile.Entry](),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("session")

	files, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("loading autostart entries: %w", err)
	}
	for _, df := range files {
		s.current = append(s.current, s.newEntry(df))
	}
	s.snapshot()

	s.logger.Debug("Session loaded",
		zap.Int("entries", len(s.current)),
		zap.String("desktop", s.desktop))
	return s, nil
}

// Desktop returns the desktop environment name entries are matched against.
func (s *Session) Desktop() string { return s.desktop }

// Entries returns all entries in order, deleted ones included.
func (s *Session) Entries() []*Entry {
	out := make([]*Entry, len(s.current))
	copy(out, s.current)
	return out
}

// Live returns the entries that are not deleted, in order.
func (s *Session) Live() []*Entry {
	var out []*Entry
	for _, e := range s.current {
		if !e.Deleted {
			out = append(out, e)
		}
	}
	return out
}

// Lookup returns the entry with the given id, or nil.
func (s *Session) Lookup(id int) *Entry {
	if i := s.index(id); i >= 0 {
		return s.current[i]
	}
	return nil
}

func (s *Session) index(id int) int {
	for i, e := range s.current {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) newEntry(df *desktopfile.Entry) *Entry {
	return &Entry{
		ID:      nextID(),
		Exclude: s.exclude(df),
		Desktop: df,
	}
}

func (s *Session) exclude(df *desktopfile.Entry) bool {
	return xdg.Exclude(df.NotShowIn, df.OnlyShowIn, s.desktop)
}

// swap makes df the entry's current desktop file.
func (s *Session) swap(e *Entry, df *desktopfile.Entry) {
	e.Desktop = df
	e.Exclude = s.exclude(df)
}

// Add appends a new, unsaved entry built from f.
func (s *Session) Add(f Fields) *Entry {
	df := desktopfile.New()
	f.apply(df)
	return s.AddEntry(df)
}

// AddEntry appends df as a new entry. The session takes ownership of df.
func (s *Session) AddEntry(df *desktopfile.Entry) *Entry {
	e := s.newEntry(df)
	s.current = append(s.current, e)
	s.journal.Record(history.Record[*desktopfile.Entry]{Action: history.Add, EntryID: e.ID})
	s.logger.Debug("Added entry", zap.Int("id", e.ID), zap.String("exec", e.Exec()))
	return e
}

// AddFile adds the desktop file at path.
//
// It returns nil without error when the file has no desktop entry, is
// hidden, or is already loaded from the same path. If an entry with the same
// file name exists, that entry is returned; its desktop file is replaced
// first when the new file ranks higher or the entry was deleted. A deleted
// entry stays deleted: the new file shows up only after its Delete is
// undone.
func (s *Session) AddFile(path string) (*Entry, error) {
	df, err := s.store.ReadFile(path)
	if errors.Is(err, desktopfile.ErrNoDesktopEntry) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if df.Hidden {
		return nil, nil
	}

	base := df.Basename()
	for _, e := range s.current {
		if e.Desktop.Path == "" {
			continue
		}
		if e.Desktop.Path == df.Path {
			return nil, nil
		}
		if e.Desktop.Basename() != base {
			continue
		}
		if df.Priority > e.Desktop.Priority || e.Deleted {
			s.change(e, df)
		}
		return e, nil
	}
	return s.AddEntry(df), nil
}

// Set replaces the editable fields of e. The path and priority are kept.
func (s *Session) Set(e *Entry, f Fields) error {
	if s.index(e.ID) < 0 {
		return ErrUnknownEntry
	}
	df := desktopfile.New()
	df.Path = e.Desktop.Path
	df.Priority = e.Desktop.Priority
	f.apply(df)
	s.change(e, df)
	return nil
}

func (s *Session) change(e *Entry, df *desktopfile.Entry) {
	s.journal.Record(history.Record[*desktopfile.Entry]{
		Action:  history.Change,
		EntryID: e.ID,
		Before:  e.Desktop,
		After:   df,
	})
	s.swap(e, df)
	s.logger.Debug("Changed entry", zap.Int("id", e.ID), zap.String("exec", e.Exec()))
}

// Delete marks e as deleted. Every call is journaled, also for an entry
// that is deleted already, so each Delete is undone by exactly one Undo.
func (s *Session) Delete(e *Entry) *Entry {
	e.Deleted = true
	s.journal.Record(history.Record[*desktopfile.Entry]{Action: history.Delete, EntryID: e.ID})
	s.logger.Debug("Deleted entry", zap.Int("id", e.ID))
	return e
}

// MoveUp swaps e with the closest live entry before it. It reports false
// when e is already first.
func (s *Session) MoveUp(e *Entry) bool {
	return s.move(e, -1)
}

// MoveDown swaps e with the closest live entry after it. It reports false
// when e is already last.
func (s *Session) MoveDown(e *Entry) bool {
	return s.move(e, 1)
}

func (s *Session) move(e *Entry, step int) bool {
	from := s.index(e.ID)
	if from < 0 {
		return false
	}
	to := from + step
	for to >= 0 && to < len(s.current) && s.current[to].Deleted {
		to += step
	}
	if to < 0 || to >= len(s.current) {
		return false
	}
	s.current[from], s.current[to] = s.current[to], s.current[from]
	s.journal.Record(history.Record[*desktopfile.Entry]{
		Action:  history.Move,
		EntryID: e.ID,
		From:    from,
		To:      to,
	})
	return true
}

// CanUndo reports whether there is a change to undo.
func (s *Session) CanUndo() bool { return s.journal.CanUndo() }

// CanRedo reports whether there is an undone change to redo.
func (s *Session) CanRedo() bool { return s.journal.CanRedo() }

// Undo reverts the most recent change. It reports false if there is none.
func (s *Session) Undo() bool {
	r, ok := s.journal.Undo()
	if !ok {
		return false
	}
	s.apply(r, true)
	return true
}

// Redo re-applies the most recently undone change. It reports false if
// there is none.
func (s *Session) Redo() bool {
	r, ok := s.journal.Redo()
	if !ok {
		return false
	}
	s.apply(r, false)
	return true
}

func (s *Session) apply(r history.Record[*desktopfile.Entry], undo bool) {
	if r.Action == history.Move {
		s.current[r.From], s.current[r.To] = s.current[r.To], s.current[r.From]
		return
	}
	e := s.Lookup(r.EntryID)
	if e == nil {
		s.logger.Warn("History refers to unknown entry", zap.Int("id", r.EntryID))
		return
	}
	switch r.Action {
	case history.Change:
		if undo {
			s.swap(e, r.Before)
		} else {
			s.swap(e, r.After)
		}
	case history.Delete:
		e.Deleted = !undo
	case history.Add:
		e.Deleted = undo
	}
	s.logger.Debug("Applied history record",
		zap.Stringer("action", r.Action),
		zap.Int("id", r.EntryID),
		zap.Bool("undo", undo))
}

// Changed reports whether the entries differ from the last loaded or saved
// state. Order is not compared.
func (s *Session) Changed() bool {
	prev := s.previousByID()
	for _, e := range s.current {
		p, ok := prev[e.ID]
		if !ok {
			if !e.Deleted {
				return true
			}
			continue
		}
		if modified(p, e) {
			return true
		}
	}
	return false
}

func (s *Session) previousByID() map[int]*Entry {
	m := make(map[int]*Entry, len(s.previous))
	for _, e := range s.previous {
		m[e.ID] = e
	}
	return m
}

// snapshot records the current entries as the saved state.
func (s *Session) snapshot() {
	s.previous = make([]*Entry, len(s.current))
	for i, e := range s.current {
		s.previous[i] = e.clone()
	}
}
