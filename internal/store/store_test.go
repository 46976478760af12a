package store

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/Guliveer/dsbautostart/internal/desktopfile"
	"github.com/Guliveer/dsbautostart/internal/xdg"
)

// testDirs lays out a config home and two system config dirs under a temp
// directory and returns a store over them plus the three autostart paths.
func testDirs(t *testing.T) (*Store, string, string, string) {
	t.Helper()
	base := t.TempDir()
	home := filepath.Join(base, "home")
	sysA := filepath.Join(base, "sysA")
	sysB := filepath.Join(base, "sysB")
	env := map[string]string{
		xdg.EnvConfigHome: home,
		xdg.EnvConfigDirs: sysA + ":" + sysB,
	}
	r := xdg.NewResolver(xdg.WithLookupEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}))
	return New(r, nil),
		filepath.Join(home, "autostart"),
		filepath.Join(sysA, "autostart"),
		filepath.Join(sysB, "autostart")
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMerge_HigherPriorityWins(t *testing.T) {
	a := desktopfile.New()
	a.Path, a.Priority, a.Exec = "/sys/autostart/x.desktop", 0, desktopfile.String("foo")
	b := desktopfile.New()
	b.Path, b.Priority, b.Exec = "/etc/autostart/x.desktop", 5, desktopfile.String("bar")

	for _, order := range [][]*desktopfile.Entry{{a, b}, {b, a}} {
		got := merge(order)
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		if v := desktopfile.Value(got[0].Exec); v != "bar" {
			t.Errorf("Exec = %q, want %q", v, "bar")
		}
	}
}

func TestMerge_EqualPriorityKeepsFirst(t *testing.T) {
	a := desktopfile.New()
	a.Path, a.Priority, a.Exec = "/one/x.desktop", 3, desktopfile.String("first")
	b := desktopfile.New()
	b.Path, b.Priority, b.Exec = "/two/x.desktop", 3, desktopfile.String("second")
	c := desktopfile.New()
	c.Path, c.Priority, c.Exec = "/one/y.desktop", 3, desktopfile.String("other")

	got := merge([]*desktopfile.Entry{a, c, b})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0] != a || got[1] != c {
		t.Errorf("merge reordered or replaced entries: %v", got)
	}
}

func TestLoad_PrecedenceAndHidden(t *testing.T) {
	s, user, sysA, sysB := testDirs(t)

	writeFile(t, sysA, "app.desktop", "[Desktop Entry]\nExec=high\nName=High\n")
	writeFile(t, sysB, "app.desktop", "[Desktop Entry]\nExec=low\n")
	writeFile(t, sysB, "gone.desktop", "[Desktop Entry]\nExec=gone\n")
	writeFile(t, user, "gone.desktop", "[Desktop Entry]\nExec=gone\nHidden=true\n")
	writeFile(t, sysB, "hidden.desktop", "[Desktop Entry]\nExec=h\nHidden=true\n")
	writeFile(t, sysB, "noheader.desktop", "Exec=nothing\n")
	writeFile(t, sysB, "notes.txt", "[Desktop Entry]\nExec=txt\n")

	entries, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1: %+v", len(entries), entries)
	}
	e := entries[0]
	if desktopfile.Value(e.Exec) != "high" || desktopfile.Value(e.Name) != "High" {
		t.Errorf("entry = %+v, want the sysA copy", e)
	}
	if e.Priority != xdg.MaxDirs-1 {
		t.Errorf("Priority = %d, want %d", e.Priority, xdg.MaxDirs-1)
	}
	if e.Path != filepath.Join(sysA, "app.desktop") {
		t.Errorf("Path = %q", e.Path)
	}
}

func TestLoad_MissingDirectories(t *testing.T) {
	s, _, _, _ := testDirs(t)
	entries, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("len(entries) = %d, want 0", len(entries))
	}
}

func TestWrite_NewEntryCreatesUniqueFile(t *testing.T) {
	s, user, _, _ := testDirs(t)

	e := desktopfile.New()
	e.Exec = desktopfile.String("xterm")
	first, err := s.Write(e)
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.Write(e)
	if err != nil {
		t.Fatal(err)
	}

	if first.Path == second.Path {
		t.Errorf("two new entries share path %q", first.Path)
	}
	for _, w := range []*desktopfile.Entry{first, second} {
		if filepath.Dir(w.Path) != user {
			t.Errorf("Path = %q, want inside %q", w.Path, user)
		}
		if !strings.HasSuffix(w.Path, ".desktop") {
			t.Errorf("Path = %q, want .desktop suffix", w.Path)
		}
		if w.Priority != xdg.MaxDirs {
			t.Errorf("Priority = %d, want %d", w.Priority, xdg.MaxDirs)
		}
	}
	if e.Path != "" {
		t.Error("Write modified its argument")
	}

	info, err := os.Stat(user)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0700 {
		t.Errorf("user dir mode = %o, want 700", perm)
	}
}

func TestWrite_SystemEntryGoesToUserDir(t *testing.T) {
	s, user, sysA, _ := testDirs(t)
	orig := "[Desktop Entry]\nExec=old\nX-Keep=yes\n"
	src := writeFile(t, sysA, "app.desktop", orig)

	e, err := s.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	e.Exec = desktopfile.String("new")

	got, err := s.Write(e)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(user, "app.desktop"); got.Path != want {
		t.Errorf("Path = %q, want %q", got.Path, want)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != orig {
		t.Error("system file was modified")
	}

	back, err := s.ReadFile(got.Path)
	if err != nil {
		t.Fatal(err)
	}
	if desktopfile.Value(back.Exec) != "new" {
		t.Errorf("Exec = %q, want %q", desktopfile.Value(back.Exec), "new")
	}

	// A second rewrite keeps lines it does not recognize.
	back.Name = desktopfile.String("App")
	if _, err := s.Write(back); err != nil {
		t.Fatal(err)
	}
	data, err = os.ReadFile(got.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "X-Keep=yes") || !strings.Contains(string(data), "Name=App") {
		t.Errorf("rewritten file = %q", data)
	}
}

func TestDelete_OnlyCopyIsRemoved(t *testing.T) {
	s, user, _, _ := testDirs(t)
	path := writeFile(t, user, "solo.desktop", "[Desktop Entry]\nExec=solo\n")

	if err := s.Delete(path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file still exists: %v", err)
	}
}

func TestDelete_MissingFileIsNotAnError(t *testing.T) {
	s, user, _, _ := testDirs(t)
	if err := s.Delete(filepath.Join(user, "never.desktop")); err != nil {
		t.Errorf("Delete = %v, want nil", err)
	}
}

func TestDelete_MaskedCopyGetsTombstone(t *testing.T) {
	s, user, sysA, sysB := testDirs(t)
	high := writeFile(t, sysA, "app.desktop", "[Desktop Entry]\nExec=high\n")
	writeFile(t, sysB, "app.desktop", "[Desktop Entry]\nExec=low\n")

	if err := s.Delete(high); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(high); err != nil {
		t.Errorf("system file should be kept: %v", err)
	}

	tomb, err := s.ReadFile(filepath.Join(user, "app.desktop"))
	if err != nil {
		t.Fatal(err)
	}
	if !tomb.Hidden {
		t.Error("tombstone is not Hidden")
	}
	if desktopfile.Value(tomb.Exec) != "high" {
		t.Errorf("tombstone Exec = %q, want the deleted file's", desktopfile.Value(tomb.Exec))
	}

	entries, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("tombstoned entry still loads: %+v", entries)
	}

	removed, err := s.RemoveTombstone("app.desktop")
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Error("RemoveTombstone = false, want true")
	}
	entries, err = s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || desktopfile.Value(entries[0].Exec) != "high" {
		t.Errorf("after removing tombstone got %+v, want the sysA entry", entries)
	}
}

func TestDelete_ReadOnlySystemDirGetsTombstone(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("needs directory permissions enforced for the current user")
	}
	s, user, sysA, _ := testDirs(t)
	sys := writeFile(t, sysA, "app.desktop", "[Desktop Entry]\nExec=app\nX-Vendor=acme\n")
	if err := os.Chmod(sysA, 0555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(sysA, 0755) })

	if err := s.Delete(sys); err != nil {
		t.Fatalf("Delete = %v, want a tombstone instead", err)
	}

	data, err := os.ReadFile(sys)
	if err != nil {
		t.Fatalf("system file removed: %v", err)
	}
	if string(data) != "[Desktop Entry]\nExec=app\nX-Vendor=acme\n" {
		t.Errorf("system file modified:\n%s", data)
	}

	tomb, err := s.ReadFile(filepath.Join(user, "app.desktop"))
	if err != nil {
		t.Fatal(err)
	}
	if !tomb.Hidden {
		t.Error("tombstone is not Hidden")
	}
	entries, err := s.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("deleted entry still loads: %+v", entries)
	}
}

func TestRemoveTombstone_KeepsVisibleFile(t *testing.T) {
	s, user, _, _ := testDirs(t)
	path := writeFile(t, user, "app.desktop", "[Desktop Entry]\nExec=app\n")

	removed, err := s.RemoveTombstone("app.desktop")
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Error("RemoveTombstone removed a visible file")
	}
	if _, err := os.Stat(path); err != nil {
		t.Error(err)
	}

	if removed, err := s.RemoveTombstone("absent.desktop"); err != nil || removed {
		t.Errorf("RemoveTombstone(absent) = %v, %v; want false, nil", removed, err)
	}
}

func TestCount(t *testing.T) {
	s, user, sysA, sysB := testDirs(t)
	writeFile(t, user, "a.desktop", "[Desktop Entry]\n")
	writeFile(t, sysA, "a.desktop", "[Desktop Entry]\n")
	writeFile(t, sysB, "a.desktop", "[Desktop Entry]\n")
	writeFile(t, sysB, "b.desktop", "[Desktop Entry]\n")

	tests := []struct {
		name string
		want int
	}{
		{"a.desktop", 3},
		{"b.desktop", 1},
		{"c.desktop", 0},
	}
	for _, tt := range tests {
		got, err := s.Count(tt.name)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("Count(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}
