// Package store reads and writes the desktop files in the XDG autostart
// directories.
//
// Loading merges files across the search directories by basename, keeping
// the copy from the highest-priority directory. Writes always go to the
// user's own autostart directory; system directories are never modified.
package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Guliveer/dsbautostart/internal/desktopfile"
	"github.com/Guliveer/dsbautostart/internal/xdg"
)

const (
	fileSuffix = ".desktop"
	tempPrefix = "dsbautostart-"
	dirMode    = 0700
)

// Store gives access to the desktop files under the resolver's search
// directories.
type Store struct {
	resolver *xdg.Resolver
	logger   *zap.Logger
}

// New creates a Store. A nil logger disables logging.
func New(resolver *xdg.Resolver, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{resolver: resolver, logger: logger.Named("store")}
}

// Resolver returns the directory resolver the store works on.
func (s *Store) Resolver() *xdg.Resolver { return s.resolver }

// ReadFile parses a single desktop file and assigns the priority of the
// search directory it lives in.
func (s *Store) ReadFile(path string) (*desktopfile.Entry, error) {
	e, err := desktopfile.Read(path)
	if err != nil {
		return nil, err
	}
	e.Priority = s.resolver.Priority(e.Path)
	return e, nil
}

// Load scans every search directory and returns the merged, visible entries
// in order of first appearance. Missing directories are skipped; files
// without a [Desktop Entry] group are treated as absent.
func (s *Store) Load() ([]*desktopfile.Entry, error) {
	dirs, err := s.resolver.Dirs()
	if err != nil {
		return nil, err
	}

	var found []*desktopfile.Entry
	for _, d := range dirs {
		entries, err := s.scanDir(d)
		if err != nil {
			return nil, err
		}
		found = append(found, entries...)
	}

	merged := merge(found)
	visible := merged[:0]
	for _, e := range merged {
		if e.Hidden {
			s.logger.Debug("Skipping hidden entry", zap.String("path", e.Path))
			continue
		}
		visible = append(visible, e)
	}

	s.logger.Debug("Loaded autostart entries",
		zap.Int("files", len(found)),
		zap.Int("entries", len(visible)))
	return visible, nil
}

func (s *Store) scanDir(d xdg.Dir) ([]*desktopfile.Entry, error) {
	list, err := os.ReadDir(d.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", d.Path, err)
	}

	var out []*desktopfile.Entry
	for _, de := range list {
		if !strings.HasSuffix(de.Name(), fileSuffix) {
			continue
		}
		path := filepath.Join(d.Path, de.Name())
		info, err := os.Stat(path)
		if err != nil {
			s.logger.Warn("Cannot stat desktop file", zap.String("path", path), zap.Error(err))
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		e, err := desktopfile.Read(path)
		if errors.Is(err, desktopfile.ErrNoDesktopEntry) {
			s.logger.Debug("Ignoring file without desktop entry", zap.String("path", path))
			continue
		}
		if err != nil {
			return nil, err
		}
		e.Priority = d.Priority
		out = append(out, e)
	}
	return out, nil
}

// merge collapses entries sharing a basename. The first occurrence keeps its
// slot; a later one replaces it only with a strictly higher priority.
func merge(entries []*desktopfile.Entry) []*desktopfile.Entry {
	slot := make(map[string]int, len(entries))
	var out []*desktopfile.Entry
	for _, e := range entries {
		base := e.Basename()
		i, ok := slot[base]
		if !ok {
			slot[base] = len(out)
			out = append(out, e)
			continue
		}
		if e.Priority > out[i].Priority {
			out[i] = e
		}
	}
	return out
}

// Count returns how many search directories hold a file named basename.
func (s *Store) Count(basename string) (int, error) {
	dirs, err := s.resolver.Dirs()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, d := range dirs {
		if exists(filepath.Join(d.Path, basename)) {
			n++
		}
	}
	return n, nil
}

// Delete removes the desktop file at path. When other search directories
// hold a file of the same name, or the file cannot be removed for lack of
// permission, a Hidden tombstone is written into the user directory instead.
func (s *Store) Delete(path string) error {
	base := filepath.Base(path)
	n, err := s.Count(base)
	if err != nil {
		return err
	}

	if n <= 1 {
		err := os.Remove(path)
		switch {
		case err == nil, errors.Is(err, fs.ErrNotExist):
			s.logger.Debug("Removed desktop file", zap.String("path", path))
			return nil
		case !isPermission(err):
			return fmt.Errorf("removing %s: %w", path, err)
		}
		s.logger.Debug("No permission to remove, hiding instead",
			zap.String("path", path), zap.Error(err))
	}

	e, err := desktopfile.Read(path)
	if err != nil {
		return err
	}
	e.Hidden = true
	target, err := s.resolver.UserPath(base)
	if err != nil {
		return err
	}
	if err := s.rewrite(target, path, e); err != nil {
		return err
	}
	s.logger.Info("Wrote tombstone", zap.String("path", target), zap.String("hides", path))
	return nil
}

// RemoveTombstone removes the user-level file named basename if it is marked
// Hidden. It reports whether a file was removed.
func (s *Store) RemoveTombstone(basename string) (bool, error) {
	target, err := s.resolver.UserPath(basename)
	if err != nil {
		return false, err
	}
	e, err := desktopfile.Read(target)
	switch {
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, desktopfile.ErrNoDesktopEntry):
		return false, nil
	case err != nil:
		return false, err
	case !e.Hidden:
		return false, nil
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("removing tombstone %s: %w", target, err)
	}
	s.logger.Info("Removed tombstone", zap.String("path", target))
	return true, nil
}

// Write saves e into the user's autostart directory and returns a copy
// carrying the written path and its priority. Entries never saved before get
// a fresh unique file name; others are rewritten under their basename,
// keeping the unrecognized lines of the existing user copy, or of the file
// at e.Path when there is no user copy yet.
func (s *Store) Write(e *desktopfile.Entry) (*desktopfile.Entry, error) {
	dir, err := s.resolver.AutostartHome()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}

	var target string
	if e.Path == "" {
		if target, err = s.create(dir, e); err != nil {
			return nil, err
		}
	} else {
		target = filepath.Join(dir, e.Basename())
		if err := s.rewrite(target, e.Path, e); err != nil {
			return nil, err
		}
	}

	out := e.Clone()
	out.Path = target
	out.Priority = xdg.MaxDirs
	s.logger.Debug("Wrote desktop file", zap.String("path", target))
	return out, nil
}

// create writes e into a new uniquely named file in dir.
func (s *Store) create(dir string, e *desktopfile.Entry) (string, error) {
	f, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("creating desktop file: %w", err)
	}
	tmp := f.Name()
	if err := writeClose(f, nil, e); err != nil {
		os.Remove(tmp)
		return "", err
	}
	target := tmp + fileSuffix
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return target, nil
}

// rewrite replaces target with e merged into the current contents of
// target, or of seed if target does not exist yet, through a temporary file
// in the same directory.
func (s *Store) rewrite(target, seed string, e *desktopfile.Entry) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	var src io.Reader
	for _, p := range []string{target, seed} {
		if p == "" {
			continue
		}
		old, err := os.Open(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("opening %s: %w", p, err)
		}
		defer old.Close()
		src = old
		break
	}

	f, err := os.CreateTemp(dir, "."+tempPrefix+"*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmp := f.Name()
	if err := writeClose(f, src, e); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing %s: %w", target, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return nil
}

func writeClose(f *os.File, src io.Reader, e *desktopfile.Entry) error {
	if err := desktopfile.Rewrite(src, f, e); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
