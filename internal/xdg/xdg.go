// Package xdg resolves the XDG autostart search directories and their
// priorities, and decides desktop-environment visibility of entries.
package xdg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	// MaxDirs bounds the number of search directories, user dir included.
	// The user's own directory is ranked MaxDirs.
	MaxDirs = 8

	// DefaultSystemDir is searched when XDG_CONFIG_DIRS is unset.
	DefaultSystemDir = "/usr/local/etc/xdg/autostart"

	autostartSubdir = "autostart"
)

// Environment variable names consumed by the resolver.
const (
	EnvConfigHome     = "XDG_CONFIG_HOME"
	EnvConfigDirs     = "XDG_CONFIG_DIRS"
	EnvCurrentDesktop = "XDG_CURRENT_DESKTOP"
)

// Dir is one autostart search directory. Higher Priority wins when two
// directories hold a file with the same basename.
type Dir struct {
	Path     string
	Priority int

	real string
}

// Resolver computes the search directories once per process.
type Resolver struct {
	lookupEnv func(string) (string, bool)
	homeDir   func() (string, error)
	fallback  string
	logger    *zap.Logger

	once       sync.Once
	dirs       []Dir
	configHome string
	err        error
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLookupEnv replaces os.LookupEnv, mainly for tests.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(r *Resolver) { r.lookupEnv = fn }
}

// WithHomeDir replaces os.UserHomeDir.
func WithHomeDir(fn func() (string, error)) Option {
	return func(r *Resolver) { r.homeDir = fn }
}

// WithSystemFallback overrides DefaultSystemDir.
func WithSystemFallback(dir string) Option {
	return func(r *Resolver) {
		if dir != "" {
			r.fallback = dir
		}
	}
}

// WithLogger sets the logger used for warnings about the directory list.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a Resolver reading the process environment.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		lookupEnv: os.LookupEnv,
		homeDir:   os.UserHomeDir,
		fallback:  DefaultSystemDir,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("xdg")
	return r
}

// Env returns the value of an environment variable as the resolver sees it.
func (r *Resolver) Env(key string) string {
	v, _ := r.lookupEnv(key)
	return v
}

// Dirs returns the search directories, user directory first.
func (r *Resolver) Dirs() ([]Dir, error) {
	r.once.Do(r.resolve)
	if r.err != nil {
		return nil, r.err
	}
	out := make([]Dir, len(r.dirs))
	copy(out, r.dirs)
	return out, nil
}

// ConfigHome returns $XDG_CONFIG_HOME, or ~/.config when unset.
func (r *Resolver) ConfigHome() (string, error) {
	r.once.Do(r.resolve)
	return r.configHome, r.err
}

// AutostartHome returns the user's own autostart directory.
func (r *Resolver) AutostartHome() (string, error) {
	home, err := r.ConfigHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, autostartSubdir), nil
}

// UserPath maps a file name, or the basename of a path, into the user's
// autostart directory.
func (r *Resolver) UserPath(name string) (string, error) {
	home, err := r.AutostartHome()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, filepath.Base(name)), nil
}

// Priority returns the priority of the search directory containing path,
// or -1 if path is outside every search directory.
func (r *Resolver) Priority(path string) int {
	dirs, err := r.Dirs()
	if err != nil {
		return -1
	}
	dir := filepath.Dir(filepath.Clean(path))
	if p := matchDir(dirs, dir); p >= 0 {
		return p
	}
	if real, err := filepath.EvalSymlinks(dir); err == nil && real != dir {
		return matchDir(dirs, real)
	}
	return -1
}

// CurrentDesktop returns $XDG_CURRENT_DESKTOP, or "" when unset.
func (r *Resolver) CurrentDesktop() string {
	return r.Env(EnvCurrentDesktop)
}

func matchDir(dirs []Dir, dir string) int {
	for _, d := range dirs {
		if d.Path == dir || d.real == dir {
			return d.Priority
		}
	}
	return -1
}

func (r *Resolver) resolve() {
	home, err := r.resolveConfigHome()
	if err != nil {
		r.err = err
		return
	}
	r.configHome = home

	dirs := []Dir{{Path: filepath.Join(home, autostartSubdir), Priority: MaxDirs}}

	raw, ok := r.lookupEnv(EnvConfigDirs)
	if !ok {
		dirs = append(dirs, Dir{Path: filepath.Clean(r.fallback), Priority: 0})
	} else {
		prio := MaxDirs
		for _, d := range strings.Split(raw, ":") {
			if d == "" {
				continue
			}
			if len(dirs) >= MaxDirs {
				r.logger.Warn("Too many XDG config dirs, ignoring the rest",
					zap.Int("max", MaxDirs),
					zap.String("first_ignored", d))
				break
			}
			prio--
			dirs = append(dirs, Dir{
				Path:     filepath.Join(filepath.Clean(d), autostartSubdir),
				Priority: prio,
			})
		}
	}

	for i := range dirs {
		if real, err := filepath.EvalSymlinks(dirs[i].Path); err == nil {
			dirs[i].real = real
		}
	}
	r.dirs = dirs

	r.logger.Debug("Resolved autostart directories", zap.Any("dirs", dirPaths(dirs)))
}

func (r *Resolver) resolveConfigHome() (string, error) {
	if dir, ok := r.lookupEnv(EnvConfigHome); ok && dir != "" {
		return filepath.Clean(dir), nil
	}
	home, err := r.homeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}
	return filepath.Join(home, ".config"), nil
}

func dirPaths(dirs []Dir) []string {
	out := make([]string, len(dirs))
	for i, d := range dirs {
		out[i] = fmt.Sprintf("%s (%d)", d.Path, d.Priority)
	}
	return out
}
