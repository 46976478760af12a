// Package desktopfile reads and writes the subset of XDG desktop entry files
// used for session autostart: Name, Comment, Exec, Hidden, Terminal,
// NotShowIn and OnlyShowIn inside the [Desktop Entry] group.
package desktopfile

import (
	"errors"
	"path/filepath"
)

// Header is the group line that must precede any recognized key.
const Header = "[Desktop Entry]"

// ErrNoDesktopEntry is returned when a file has no [Desktop Entry] group.
// Callers treat such files as absent rather than broken.
var ErrNoDesktopEntry = errors.New("no [Desktop Entry] group")

// Key identifies one of the recognized desktop entry keys.
type Key int

const (
	KeyName Key = iota
	KeyComment
	KeyExec
	KeyHidden
	KeyTerminal
	KeyNotShowIn
	KeyOnlyShowIn
)

// Keys lists the recognized keys in the order they are emitted.
var Keys = []Key{KeyName, KeyComment, KeyExec, KeyHidden, KeyTerminal, KeyNotShowIn, KeyOnlyShowIn}

var keyNames = [...]string{
	KeyName:       "Name",
	KeyComment:    "Comment",
	KeyExec:       "Exec",
	KeyHidden:     "Hidden",
	KeyTerminal:   "Terminal",
	KeyNotShowIn:  "NotShowIn",
	KeyOnlyShowIn: "OnlyShowIn",
}

func (k Key) String() string {
	if k < 0 || int(k) >= len(keyNames) {
		return "Unknown"
	}
	return keyNames[k]
}

// IsBool reports whether the key holds a boolean value.
func (k Key) IsBool() bool { return k == KeyHidden || k == KeyTerminal }

// Entry is one desktop file record. Once an Entry is handed to a session or
// a history record it is treated as immutable; edits build a new Entry.
type Entry struct {
	// Path is the absolute file path, or "" when the entry was never saved.
	Path string
	// Priority is the rank of the search directory Path lives in; -1 for
	// new entries or paths outside every search directory.
	Priority int

	Name       *string
	Comment    *string
	Exec       *string
	NotShowIn  *string
	OnlyShowIn *string

	Hidden   bool
	Terminal bool
}

// New returns an empty, unsaved entry.
func New() *Entry {
	return &Entry{Priority: -1}
}

// String returns a pointer to s, or nil when s is empty.
func String(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Value dereferences p, returning "" for nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// Basename returns the file name of the entry's path.
func (e *Entry) Basename() string {
	if e.Path == "" {
		return ""
	}
	return filepath.Base(e.Path)
}

// IsReal reports whether the entry has a command to run. Entries without
// one are skipped when saving.
func (e *Entry) IsReal() bool {
	return e.Exec != nil && *e.Exec != ""
}

// Clone returns a deep copy of e.
func (e *Entry) Clone() *Entry {
	cp := *e
	cp.Name = clonePtr(e.Name)
	cp.Comment = clonePtr(e.Comment)
	cp.Exec = clonePtr(e.Exec)
	cp.NotShowIn = clonePtr(e.NotShowIn)
	cp.OnlyShowIn = clonePtr(e.OnlyShowIn)
	return &cp
}

// Equal compares the user-editable fields: Exec, Name, Comment, NotShowIn,
// OnlyShowIn and Terminal. Path, Priority and Hidden are ignored.
func (e *Entry) Equal(o *Entry) bool {
	if e == nil || o == nil {
		return e == o
	}
	return equalPtr(e.Exec, o.Exec) &&
		equalPtr(e.Name, o.Name) &&
		equalPtr(e.Comment, o.Comment) &&
		equalPtr(e.NotShowIn, o.NotShowIn) &&
		equalPtr(e.OnlyShowIn, o.OnlyShowIn) &&
		e.Terminal == o.Terminal
}

// Get returns the textual value of key and whether it is set. Boolean keys
// are always set.
func (e *Entry) Get(k Key) (string, bool) {
	switch k {
	case KeyHidden:
		return formatBool(e.Hidden), true
	case KeyTerminal:
		return formatBool(e.Terminal), true
	}
	p := e.field(k)
	if p == nil || *p == nil {
		return "", false
	}
	return **p, true
}

// Set assigns the textual value of key. Boolean keys are true only for the
// literal "true".
func (e *Entry) Set(k Key, val string) {
	switch k {
	case KeyHidden:
		e.Hidden = parseBool(val)
		return
	case KeyTerminal:
		e.Terminal = parseBool(val)
		return
	}
	if p := e.field(k); p != nil {
		v := val
		*p = &v
	}
}

func (e *Entry) field(k Key) **string {
	switch k {
	case KeyName:
		return &e.Name
	case KeyComment:
		return &e.Comment
	case KeyExec:
		return &e.Exec
	case KeyNotShowIn:
		return &e.NotShowIn
	case KeyOnlyShowIn:
		return &e.OnlyShowIn
	}
	return nil
}

func parseBool(s string) bool { return s == "true" }

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
