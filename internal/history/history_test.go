package history

import "testing"

func TestJournal_UndoRedo(t *testing.T) {
	j := New[string]()
	if j.CanUndo() || j.CanRedo() {
		t.Fatal("empty journal can undo or redo")
	}
	if _, ok := j.Undo(); ok {
		t.Error("Undo on empty journal = true")
	}

	j.Record(Record[string]{Action: Add, EntryID: 1})
	j.Record(Record[string]{Action: Change, EntryID: 1, Before: "a", After: "b"})

	r, ok := j.Undo()
	if !ok || r.Action != Change || r.Before != "a" {
		t.Fatalf("Undo = %+v, %v", r, ok)
	}
	if j.Cursor() != 1 || !j.CanRedo() {
		t.Errorf("Cursor = %d, CanRedo = %v; want 1, true", j.Cursor(), j.CanRedo())
	}

	r, ok = j.Redo()
	if !ok || r.After != "b" {
		t.Fatalf("Redo = %+v, %v", r, ok)
	}
	if _, ok := j.Redo(); ok {
		t.Error("Redo at the tail = true")
	}
}

func TestJournal_RecordTruncatesRedoTail(t *testing.T) {
	j := New[string]()
	for id := 1; id <= 3; id++ {
		j.Record(Record[string]{Action: Add, EntryID: id})
	}
	j.Undo()
	j.Undo()
	j.Record(Record[string]{Action: Delete, EntryID: 1})

	if j.CanRedo() {
		t.Error("CanRedo = true after recording")
	}
	if j.Len() != 2 || j.Cursor() != 2 {
		t.Errorf("Len, Cursor = %d, %d; want 2, 2", j.Len(), j.Cursor())
	}
	recs := j.Records()
	if recs[0].EntryID != 1 || recs[1].Action != Delete {
		t.Errorf("records = %+v", recs)
	}
}

func TestJournal_Update(t *testing.T) {
	j := New[string]()
	j.Record(Record[string]{Action: Change, EntryID: 1, Before: "x", After: "y"})
	j.Record(Record[string]{Action: Change, EntryID: 2, Before: "x", After: "y"})
	j.Undo()

	j.Update(1, func(r Record[string]) Record[string] {
		r.Before += "!"
		return r
	})
	recs := j.Records()
	if recs[0].Before != "x!" || recs[1].Before != "x" {
		t.Errorf("records after Update = %+v", recs)
	}
	if j.Cursor() != 1 {
		t.Errorf("Update moved the cursor to %d", j.Cursor())
	}
}

func TestAction_String(t *testing.T) {
	tests := map[Action]string{Add: "add", Delete: "delete", Change: "change", Move: "move", 0: "unknown"}
	for a, want := range tests {
		if got := a.String(); got != want {
			t.Errorf("Action(%d).String() = %q, want %q", int(a), got, want)
		}
	}
}
