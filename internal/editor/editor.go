// Package editor is a line-oriented interactive editor for an autostart
// session.
package editor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Guliveer/dsbautostart/internal/autostart"
)

// clearValue entered at a prompt unsets the field.
const clearValue = "-"

const helpText = `Commands:
  list                  show the entries
  add <cmd>             add a command
  file <path>           add a desktop file
  del <n>               delete entry n
  edit <n> [cmd]        change the command of entry n
  name <n> [text]       change the name
  comment <n> [text]    change the comment
  term <n> on|off       run in a terminal
  notshowin <n> [list]  desktops to hide the entry in, e.g. GNOME;KDE
  onlyshowin <n> [list] desktops to show the entry in exclusively
  up <n>, down <n>      move entry n
  undo, redo            revert or repeat a change
  save                  write the entries to disk
  quit                  leave the editor
Enter "-" at a prompt to clear a field.
`

// Editor reads commands from in and prints to out.
type Editor struct {
	session *autostart.Session
	reader  *bufio.Reader
	out     io.Writer
	logger  *zap.Logger
}

// New creates an Editor over s.
func New(s *autostart.Session, in io.Reader, out io.Writer, logger *zap.Logger) *Editor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Editor{
		session: s,
		reader:  bufio.NewReader(in),
		out:     out,
		logger:  logger.Named("editor"),
	}
}

var errQuit = errors.New("quit")

// Run processes commands until quit or end of input. Errors of single
// commands are printed and do not end the loop; only a failed read does.
func (ed *Editor) Run() error {
	ed.list()
	for {
		fmt.Fprint(ed.out, "> ")
		line, err := ed.reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := err != nil

		if cmdErr := ed.exec(strings.TrimSpace(line)); cmdErr != nil {
			if errors.Is(cmdErr, errQuit) {
				return nil
			}
			fmt.Fprintf(ed.out, "error: %v\n", cmdErr)
		}
		if eof {
			fmt.Fprintln(ed.out)
			if ed.session.Changed() {
				fmt.Fprintln(ed.out, "Unsaved changes discarded.")
			}
			return nil
		}
	}
}

func (ed *Editor) exec(line string) error {
	if line == "" {
		return nil
	}
	cmd, rest := cut(line)
	ed.logger.Debug("Command", zap.String("cmd", cmd))

	switch cmd {
	case "list", "ls":
		ed.list()
	case "add":
		if rest == "" {
			return fmt.Errorf("usage: add <cmd>")
		}
		ed.session.Add(autostart.Fields{Exec: rest})
		ed.list()
	case "file":
		return ed.addFile(rest)
	case "del":
		e, err := ed.entry(rest)
		if err != nil {
			return err
		}
		ed.session.Delete(e)
		ed.list()
	case "edit", "name", "comment", "notshowin", "onlyshowin":
		return ed.setText(cmd, rest)
	case "term":
		return ed.setTerminal(rest)
	case "up", "down":
		e, err := ed.entry(rest)
		if err != nil {
			return err
		}
		moved := ed.session.MoveUp
		if cmd == "down" {
			moved = ed.session.MoveDown
		}
		if !moved(e) {
			return fmt.Errorf("cannot move %s", cmd)
		}
		ed.list()
	case "undo":
		if !ed.session.Undo() {
			return fmt.Errorf("nothing to undo")
		}
		ed.list()
	case "redo":
		if !ed.session.Redo() {
			return fmt.Errorf("nothing to redo")
		}
		ed.list()
	case "save":
		if err := ed.session.Save(); err != nil {
			return err
		}
		fmt.Fprintln(ed.out, "Saved.")
	case "quit", "q", "exit":
		return ed.quit()
	case "help", "?":
		fmt.Fprint(ed.out, helpText)
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	return nil
}

func (ed *Editor) addFile(path string) error {
	if path == "" {
		return fmt.Errorf("usage: file <path>")
	}
	e, err := ed.session.AddFile(path)
	if err != nil {
		return err
	}
	if e == nil {
		fmt.Fprintln(ed.out, "Not added: hidden, not a desktop file, or already listed.")
		return nil
	}
	ed.list()
	return nil
}

func (ed *Editor) setText(cmd, rest string) error {
	arg, text := cut(rest)
	e, err := ed.entry(arg)
	if err != nil {
		return err
	}
	f := autostart.FieldsOf(e.Desktop)
	field := map[string]*string{
		"edit":       &f.Exec,
		"name":       &f.Name,
		"comment":    &f.Comment,
		"notshowin":  &f.NotShowIn,
		"onlyshowin": &f.OnlyShowIn,
	}[cmd]

	if text == "" {
		text = ed.prompt(strings.ToUpper(cmd[:1])+cmd[1:], *field)
	}
	if text == clearValue {
		text = ""
	}
	if cmd == "edit" && text == "" {
		return fmt.Errorf("command must not be empty")
	}
	if text == *field {
		return nil
	}
	*field = text
	if err := ed.session.Set(e, f); err != nil {
		return err
	}
	ed.list()
	return nil
}

func (ed *Editor) setTerminal(rest string) error {
	arg, val := cut(rest)
	e, err := ed.entry(arg)
	if err != nil {
		return err
	}
	f := autostart.FieldsOf(e.Desktop)
	switch val {
	case "on", "yes", "true":
		f.Terminal = true
	case "off", "no", "false":
		f.Terminal = false
	default:
		return fmt.Errorf("usage: term <n> on|off")
	}
	if f.Terminal == e.Desktop.Terminal {
		return nil
	}
	if err := ed.session.Set(e, f); err != nil {
		return err
	}
	ed.list()
	return nil
}

func (ed *Editor) quit() error {
	if !ed.session.Changed() {
		return errQuit
	}
	answer := ed.prompt("Discard unsaved changes? [y/N]", "")
	if strings.HasPrefix(strings.ToLower(answer), "y") {
		return errQuit
	}
	return nil
}

// entry resolves a 1-based position among the live entries.
func (ed *Editor) entry(arg string) (*autostart.Entry, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("expected an entry number, got %q", arg)
	}
	live := ed.session.Live()
	if n < 1 || n > len(live) {
		return nil, fmt.Errorf("no entry %d", n)
	}
	return live[n-1], nil
}

func (ed *Editor) list() {
	live := ed.session.Live()
	if len(live) == 0 {
		fmt.Fprintln(ed.out, "No autostart entries.")
		return
	}
	for i, e := range live {
		var tags []string
		if name := e.Desktop.Name; name != nil {
			tags = append(tags, *name)
		}
		if e.Desktop.Terminal {
			tags = append(tags, "terminal")
		}
		if e.Exclude {
			tags = append(tags, "not in this desktop")
		}
		if e.Desktop.Path == "" {
			tags = append(tags, "new")
		}
		suffix := ""
		if len(tags) > 0 {
			suffix = "  (" + strings.Join(tags, ", ") + ")"
		}
		fmt.Fprintf(ed.out, "%3d  %s%s\n", i+1, e.Exec(), suffix)
	}
	if ed.session.Changed() {
		fmt.Fprintln(ed.out, "     [modified]")
	}
}

// prompt asks for a value, showing the current one. An empty answer keeps
// the current value.
func (ed *Editor) prompt(label, current string) string {
	if current != "" {
		fmt.Fprintf(ed.out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(ed.out, "%s: ", label)
	}
	val, _ := ed.reader.ReadString('\n')
	val = strings.TrimSpace(val)
	if val == "" {
		return current
	}
	return val
}

// cut splits off the first word of s.
func cut(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}
