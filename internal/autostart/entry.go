package autostart

import (
	"sync/atomic"

	"github.com/Guliveer/dsbautostart/internal/desktopfile"
)

// lastID hands out entry ids. Ids are unique for the life of the process
// and never reused, so history records can refer to entries by id.
var lastID atomic.Int64

func nextID() int { return int(lastID.Add(1)) }

// Entry is one autostart item of a Session.
type Entry struct {
	ID int
	// Deleted entries stay in the session so that undo can restore them.
	Deleted bool
	// Exclude is set when the entry is not shown in the current desktop
	// environment.
	Exclude bool
	// Desktop is the current desktop file snapshot. It is replaced, never
	// modified, when the entry changes.
	Desktop *desktopfile.Entry
}

// Exec returns the entry's command, or "".
func (e *Entry) Exec() string { return desktopfile.Value(e.Desktop.Exec) }

// Fields holds the user-editable values of an entry. Empty strings leave a
// key unset.
type Fields struct {
	Exec       string
	Name       string
	Comment    string
	NotShowIn  string
	OnlyShowIn string
	Terminal   bool
}

// FieldsOf returns the editable values of e.
func FieldsOf(e *desktopfile.Entry) Fields {
	return Fields{
		Exec:       desktopfile.Value(e.Exec),
		Name:       desktopfile.Value(e.Name),
		Comment:    desktopfile.Value(e.Comment),
		NotShowIn:  desktopfile.Value(e.NotShowIn),
		OnlyShowIn: desktopfile.Value(e.OnlyShowIn),
		Terminal:   e.Terminal,
	}
}

// apply stores f into e.
func (f Fields) apply(e *desktopfile.Entry) {
	e.Exec = desktopfile.String(f.Exec)
	e.Name = desktopfile.String(f.Name)
	e.Comment = desktopfile.String(f.Comment)
	e.NotShowIn = desktopfile.String(f.NotShowIn)
	e.OnlyShowIn = desktopfile.String(f.OnlyShowIn)
	e.Terminal = f.Terminal
}

func (e *Entry) clone() *Entry {
	cp := *e
	cp.Desktop = e.Desktop.Clone()
	return &cp
}

// modified reports whether cur differs from its saved counterpart prev.
func modified(prev, cur *Entry) bool {
	if prev.Deleted != cur.Deleted {
		return true
	}
	return !cur.Deleted && !prev.Desktop.Equal(cur.Desktop)
}
