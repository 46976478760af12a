package autostart

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Guliveer/dsbautostart/internal/desktopfile"
	"github.com/Guliveer/dsbautostart/internal/history"
)

// Save writes the session back to disk.
//
// Deleted entries have their files removed or hidden. Live entries that are
// new or differ from the saved state are written into the user's autostart
// directory, and a user-level tombstone for a live entry is removed. Entries
// without a command are not written. Save stops at the first error; files
// written before it stay in place.
func (s *Session) Save() error {
	prev := s.previousByID()
	written := 0

	for _, e := range s.current {
		p := prev[e.ID]
		path := e.Desktop.Path

		if e.Deleted {
			if p != nil && p.Deleted {
				continue
			}
			path = deletePath(p, e)
			if path == "" {
				s.logger.Debug("Nothing to delete on disk", zap.Int("id", e.ID))
				continue
			}
			if err := s.store.Delete(path); err != nil {
				return fmt.Errorf("deleting %s: %w", path, err)
			}
			continue
		}

		if path != "" {
			if _, err := s.store.RemoveTombstone(e.Desktop.Basename()); err != nil {
				return err
			}
			if p != nil && !modified(p, e) {
				continue
			}
		}
		if !e.Desktop.IsReal() {
			s.logger.Warn("Not saving entry without command", zap.Int("id", e.ID))
			continue
		}

		df, err := s.store.Write(e.Desktop)
		if err != nil {
			return fmt.Errorf("saving entry %d: %w", e.ID, err)
		}
		s.relocate(e, df)
		written++
	}

	s.snapshot()
	s.logger.Info("Saved autostart entries", zap.Int("written", written))
	return nil
}

// relocate installs the written copy df on e and moves every journal
// snapshot of e to the same file, so that undoing past the save and saving
// again rewrites that file instead of creating another one.
func (s *Session) relocate(e *Entry, df *desktopfile.Entry) {
	e.Desktop = df
	move := func(old *desktopfile.Entry) *desktopfile.Entry {
		if old == nil || (old.Path == df.Path && old.Priority == df.Priority) {
			return old
		}
		cp := old.Clone()
		cp.Path = df.Path
		cp.Priority = df.Priority
		return cp
	}
	s.journal.Update(e.ID, func(r history.Record[*desktopfile.Entry]) history.Record[*desktopfile.Entry] {
		r.Before = move(r.Before)
		r.After = move(r.After)
		return r
	})
}

// deletePath returns the file to remove for the deleted entry cur, or "".
// Files outside every search directory, such as a desktop file added from
// the user's downloads, are never removed; when such a file replaced the
// desktop file of a saved entry, the saved file is removed instead.
func deletePath(prev, cur *Entry) string {
	if cur.Desktop.Path != "" && cur.Desktop.Priority >= 0 {
		return cur.Desktop.Path
	}
	if prev != nil && prev.Desktop.Path != "" && prev.Desktop.Priority >= 0 {
		return prev.Desktop.Path
	}
	return ""
}
