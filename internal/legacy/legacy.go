// Package legacy reads and writes the flat autostart.sh command list used
// before desktop files. Each line runs one command in the background; a
// disabled command is kept behind the #[INACTIVE]# marker.
package legacy

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	Header         = "#!/bin/sh"
	InactiveMarker = "#[INACTIVE]#"

	// MaxCommandLen is the longest command accepted on save.
	MaxCommandLen = 2048
)

var (
	ErrTrailingAmpersand = errors.New("command must not end with '&'")
	ErrTooLong           = fmt.Errorf("command longer than %d bytes", MaxCommandLen)
)

// Command is one line of the list.
type Command struct {
	Exec   string
	Active bool
}

// File is an autostart.sh list bound to its path.
type File struct {
	Path     string
	Commands []Command
}

// Load reads the list at path. A missing file yields an empty list.
func Load(path string) (*File, error) {
	f := &File{Path: path}
	r, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return f, nil
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()

	if f.Commands, err = Parse(r); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return f, nil
}

// Add appends a command. A trailing '&' is dropped. Empty commands are
// ignored and reported as false.
func (f *File) Add(cmd string, active bool) bool {
	cmd = Normalize(cmd)
	if cmd == "" {
		return false
	}
	f.Commands = append(f.Commands, Command{Exec: cmd, Active: active})
	return true
}

// Contains reports whether the list already holds cmd.
func (f *File) Contains(cmd string) bool {
	for _, c := range f.Commands {
		if c.Exec == cmd {
			return true
		}
	}
	return false
}

// Active returns the enabled commands in order.
func (f *File) Active() []string {
	var out []string
	for _, c := range f.Commands {
		if c.Active {
			out = append(out, c.Exec)
		}
	}
	return out
}

// Save validates the list and replaces the file on disk.
func (f *File) Save() error {
	if err := Validate(f.Commands); err != nil {
		return err
	}
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if err := Write(tmp, f.Commands); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", f.Path, err)
	}
	if err := tmp.Chmod(0755); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("renaming %s: %w", tmp.Name(), err)
	}
	return nil
}

// Parse reads commands from r. Comment lines other than inactive commands
// and blank lines are skipped.
func Parse(r io.Reader) ([]Command, error) {
	var out []Command
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		ln := strings.TrimRight(sc.Text(), "\r\n")
		active := true
		if strings.HasPrefix(ln, InactiveMarker) {
			active = false
			ln = ln[len(InactiveMarker):]
		} else if strings.HasPrefix(ln, "#") {
			continue
		}
		if cmd := Normalize(ln); cmd != "" {
			out = append(out, Command{Exec: cmd, Active: active})
		}
	}
	return out, sc.Err()
}

// Write emits the header and one line per non-empty command.
func Write(w io.Writer, cmds []Command) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, Header)
	for _, c := range cmds {
		if c.Exec == "" {
			continue
		}
		if !c.Active {
			bw.WriteString(InactiveMarker)
		}
		fmt.Fprintf(bw, "%s&\n", c.Exec)
	}
	return bw.Flush()
}

// Validate checks that every command can be written and read back intact.
func Validate(cmds []Command) error {
	for _, c := range cmds {
		switch {
		case len(c.Exec) > MaxCommandLen:
			return fmt.Errorf("%.40q...: %w", c.Exec, ErrTooLong)
		case strings.HasSuffix(strings.TrimRight(c.Exec, " \t"), "&"):
			return fmt.Errorf("%q: %w", c.Exec, ErrTrailingAmpersand)
		}
	}
	return nil
}

// Normalize trims surrounding blanks and one trailing '&'.
func Normalize(cmd string) string {
	cmd = strings.TrimSpace(cmd)
	cmd = strings.TrimSuffix(cmd, "&")
	return strings.TrimSpace(cmd)
}
