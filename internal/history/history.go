// Package history implements a linear undo/redo journal.
//
// The journal is a single ordered slice of records and a cursor. Records
// before the cursor have been applied; records at or after it can be redone.
// Recording a new change drops everything after the cursor.
package history

// Action is the kind of mutation a record describes.
type Action int

const (
	Add Action = iota + 1
	Delete
	Change
	Move
)

func (a Action) String() string {
	switch a {
	case Add:
		return "add"
	case Delete:
		return "delete"
	case Change:
		return "change"
	case Move:
		return "move"
	default:
		return "unknown"
	}
}

// Record is one journal entry. EntryID refers to the affected entry by its
// stable id; the journal never owns entries. Before and After are only used
// by Change records, From and To only by Move records.
type Record[T any] struct {
	Action  Action
	EntryID int
	Before  T
	After   T
	From    int
	To      int
}

// Journal is a linear change history.
type Journal[T any] struct {
	records []Record[T]
	cursor  int
}

// New returns an empty journal.
func New[T any]() *Journal[T] {
	return &Journal[T]{}
}

// Record appends r right after the cursor, discarding any redo tail, and
// moves the cursor past it.
func (j *Journal[T]) Record(r Record[T]) {
	clear(j.records[j.cursor:])
	j.records = append(j.records[:j.cursor], r)
	j.cursor = len(j.records)
}

// Undo steps the cursor back and returns the record to revert.
func (j *Journal[T]) Undo() (Record[T], bool) {
	if !j.CanUndo() {
		var zero Record[T]
		return zero, false
	}
	j.cursor--
	return j.records[j.cursor], true
}

// Redo steps the cursor forward and returns the record to re-apply.
func (j *Journal[T]) Redo() (Record[T], bool) {
	if !j.CanRedo() {
		var zero Record[T]
		return zero, false
	}
	r := j.records[j.cursor]
	j.cursor++
	return r, true
}

// CanUndo reports whether any record has been applied.
func (j *Journal[T]) CanUndo() bool { return j.cursor > 0 }

// CanRedo reports whether an undone record is waiting to be re-applied.
func (j *Journal[T]) CanRedo() bool { return j.cursor < len(j.records) }

// Len returns the number of records, undone ones included.
func (j *Journal[T]) Len() int { return len(j.records) }

// Cursor returns the number of applied records.
func (j *Journal[T]) Cursor() int { return j.cursor }

// Records returns a copy of all records in journal order.
func (j *Journal[T]) Records() []Record[T] {
	out := make([]Record[T], len(j.records))
	copy(out, j.records)
	return out
}

// Update replaces every record of entryID with fn's result. It lets the
// owner refresh payloads, e.g. after a save assigns a file path, without
// moving the cursor.
func (j *Journal[T]) Update(entryID int, fn func(Record[T]) Record[T]) {
	for i := range j.records {
		if j.records[i].EntryID == entryID {
			j.records[i] = fn(j.records[i])
		}
	}
}
