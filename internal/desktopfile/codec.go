package desktopfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// maxLineSize bounds a single line; desktop files are small but Exec lines
// can be long.
const maxLineSize = 1024 * 1024

// Parse reads a desktop entry from r. Lines before the [Desktop Entry]
// group, blank lines, comments, unknown keys and other groups are ignored.
// Returns ErrNoDesktopEntry if the group is missing.
func Parse(r io.Reader) (*Entry, error) {
	e := New()
	found, inMain := false, false

	sc := newScanner(r)
	for sc.Scan() {
		ln := trimBlanks(strings.TrimRight(sc.Text(), "\r"))
		if ln == "" || ln[0] == '#' {
			continue
		}
		if ln[0] == '[' {
			inMain = !found && ln == Header
			found = found || inMain
			continue
		}
		if !inMain {
			continue
		}
		for _, k := range Keys {
			if val, ok := valueOf(ln, k); ok {
				e.Set(k, val)
				break
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoDesktopEntry
	}
	return e, nil
}

// Read parses the desktop file at path. The returned entry carries the
// absolute path; Priority is left at -1 for the caller to assign.
func Read(path string) (*Entry, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	e, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", abs, err)
	}
	e.Path = abs
	return e, nil
}

// Write emits e as a new desktop file.
func Write(w io.Writer, e *Entry) error {
	return Rewrite(nil, w, e)
}

// Rewrite copies the existing file from r to w with the recognized keys of
// the [Desktop Entry] group replaced by the values of e. Unset string keys
// drop their line, keys missing from the group are appended at its end and
// every other line is passed through verbatim. A nil r, or input without
// the group, yields a fresh group with Type=Application.
func Rewrite(r io.Reader, w io.Writer, e *Entry) error {
	bw := bufio.NewWriter(w)
	var seen [len(keyNames)]bool

	emit := func(k Key) {
		seen[k] = true
		if val, ok := e.Get(k); ok {
			fmt.Fprintf(bw, "%s=%s\n", k, val)
		}
	}
	flush := func() {
		for _, k := range Keys {
			if !seen[k] {
				emit(k)
			}
		}
	}

	sawMain, inMain := false, false
	if r != nil {
		sc := newScanner(r)
		for sc.Scan() {
			ln := strings.TrimRight(sc.Text(), "\r")
			t := trimBlanks(ln)
			if strings.HasPrefix(t, "[") {
				if inMain {
					flush()
					inMain = false
				}
				if !sawMain && t == Header {
					sawMain, inMain = true, true
				}
				fmt.Fprintln(bw, ln)
				continue
			}
			if inMain {
				if k, ok := matchKey(t); ok {
					if !seen[k] {
						emit(k)
					}
					continue
				}
			}
			fmt.Fprintln(bw, ln)
		}
		if err := sc.Err(); err != nil {
			return err
		}
	}
	if inMain {
		flush()
	}
	if !sawMain {
		fmt.Fprintln(bw, Header)
		fmt.Fprintln(bw, "Type=Application")
		flush()
	}
	return bw.Flush()
}

// valueOf returns the value of ln if it assigns key k ("Key = value").
func valueOf(ln string, k Key) (string, bool) {
	name := k.String()
	if !strings.HasPrefix(ln, name) {
		return "", false
	}
	rest := trimBlanks(ln[len(name):])
	if rest == "" || rest[0] != '=' {
		return "", false
	}
	return trimBlanks(rest[1:]), true
}

// matchKey reports which recognized key a line starts with. The key must be
// followed by a blank or '=' so that localized keys such as Name[de] are
// left alone.
func matchKey(ln string) (Key, bool) {
	for _, k := range Keys {
		name := k.String()
		if len(ln) <= len(name) || !strings.HasPrefix(ln, name) {
			continue
		}
		switch ln[len(name)] {
		case '=', ' ', '\t':
			return k, true
		}
	}
	return 0, false
}

func trimBlanks(s string) string {
	return strings.TrimLeft(s, " \t")
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineSize)
	return sc
}
