// Package importer reads a plain command list, one command per line, and
// adds the commands not yet present to an autostart list.
package importer

import (
	"bufio"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/Guliveer/dsbautostart/internal/autostart"
	"github.com/Guliveer/dsbautostart/internal/legacy"
)

// Target is a command list commands are imported into.
type Target interface {
	Contains(exec string) bool
	Add(exec string)
}

// ParseLine extracts the command from one input line. Leading blanks are
// skipped, everything from the first '#' on is a comment, and the last '&'
// and whatever follows it are dropped. It returns "" for lines without a
// command.
func ParseLine(ln string) string {
	ln = strings.TrimLeft(ln, " \t\r\n")
	if i := strings.IndexAny(ln, "#\r\n"); i >= 0 {
		ln = ln[:i]
	}
	if i := strings.LastIndexByte(ln, '&'); i >= 0 {
		ln = ln[:i]
	}
	return strings.TrimRight(ln, " \t")
}

// Import adds every new command read from r to t and returns how many were
// added. A command already in t, or seen earlier in r, is skipped.
func Import(r io.Reader, t Target, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	added := 0
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		cmd := ParseLine(sc.Text())
		if cmd == "" {
			continue
		}
		if t.Contains(cmd) {
			logger.Debug("Skipping duplicate command", zap.String("exec", cmd))
			continue
		}
		t.Add(cmd)
		added++
	}
	if err := sc.Err(); err != nil {
		return added, err
	}
	logger.Info("Imported commands", zap.Int("added", added))
	return added, nil
}

// SessionTarget imports into a desktop file session.
type SessionTarget struct {
	Session *autostart.Session
}

// Contains checks every entry of the session, deleted ones included, so a
// command deleted in this session is not imported again.
func (t SessionTarget) Contains(exec string) bool {
	for _, e := range t.Session.Entries() {
		if e.Exec() == exec {
			return true
		}
	}
	return false
}

func (t SessionTarget) Add(exec string) {
	t.Session.Add(autostart.Fields{Exec: exec})
}

// LegacyTarget imports into an autostart.sh list as active commands.
type LegacyTarget struct {
	File *legacy.File
}

func (t LegacyTarget) Contains(exec string) bool { return t.File.Contains(exec) }

func (t LegacyTarget) Add(exec string) { t.File.Add(exec, true) }
