package desktopfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse_RecognizedKeys(t *testing.T) {
	input := `# leading comment
Name=ignored before header
[Desktop Entry]
Type=Application
Name = Firefox
Name[de]=Feuerfuchs
Comment=Web browser
Exec=firefox --new-window
Hidden=false
Terminal=true
NotShowIn=GNOME;
OnlyShowIn=XFCE;KDE;
X-Unknown=1
`
	e, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if got := Value(e.Name); got != "Firefox" {
		t.Errorf("Name = %q, want %q", got, "Firefox")
	}
	if got := Value(e.Comment); got != "Web browser" {
		t.Errorf("Comment = %q, want %q", got, "Web browser")
	}
	if got := Value(e.Exec); got != "firefox --new-window" {
		t.Errorf("Exec = %q, want %q", got, "firefox --new-window")
	}
	if e.Hidden {
		t.Error("Hidden = true, want false")
	}
	if !e.Terminal {
		t.Error("Terminal = false, want true")
	}
	if got := Value(e.NotShowIn); got != "GNOME;" {
		t.Errorf("NotShowIn = %q, want %q", got, "GNOME;")
	}
	if got := Value(e.OnlyShowIn); got != "XFCE;KDE;" {
		t.Errorf("OnlyShowIn = %q, want %q", got, "XFCE;KDE;")
	}
	if e.Priority != -1 {
		t.Errorf("Priority = %d, want -1", e.Priority)
	}
}

func TestParse_MissingHeader(t *testing.T) {
	_, err := Parse(strings.NewReader("Name=foo\nExec=bar\n"))
	if !errors.Is(err, ErrNoDesktopEntry) {
		t.Errorf("err = %v, want ErrNoDesktopEntry", err)
	}
}

func TestParse_BooleanOnlyLiteralTrue(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"True", false},
		{"1", false},
		{"yes", false},
		{"", false},
	}
	for _, tt := range tests {
		e, err := Parse(strings.NewReader("[Desktop Entry]\nHidden=" + tt.value + "\n"))
		if err != nil {
			t.Fatal(err)
		}
		if e.Hidden != tt.want {
			t.Errorf("Hidden=%q parsed as %v, want %v", tt.value, e.Hidden, tt.want)
		}
	}
}

func TestParse_IgnoresOtherGroups(t *testing.T) {
	input := "[Desktop Entry]\nExec=main\n[Desktop Action new]\nExec=action\nName=Action\n"
	e, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if got := Value(e.Exec); got != "main" {
		t.Errorf("Exec = %q, want %q", got, "main")
	}
	if e.Name != nil {
		t.Errorf("Name = %q, want unset", *e.Name)
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.desktop")

	want := New()
	want.Exec = String("xterm -e top")
	want.Name = String("Top")
	want.OnlyShowIn = String("XFCE;")
	want.Terminal = true

	var buf bytes.Buffer
	if err := Write(&buf, want); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		t.Fatal(err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
	if got.Comment != nil || got.NotShowIn != nil {
		t.Error("unset fields should remain unset after round trip")
	}
	if got.Path != path {
		t.Errorf("Path = %q, want %q", got.Path, path)
	}
	if !strings.HasPrefix(buf.String(), Header+"\nType=Application\n") {
		t.Errorf("new file should start with header and type, got:\n%s", buf.String())
	}
}

func TestRewrite_PreservesUnknownLines(t *testing.T) {
	existing := `# user comment
[Desktop Entry]
Type=Application
Name=Old
Name[fr]=Vieux
Exec=old-cmd
Comment=to be dropped
X-GNOME-Autostart-enabled=true
[Desktop Action extra]
Exec=extra-cmd
`
	e := New()
	e.Name = String("New")
	e.Exec = String("new-cmd")
	e.Terminal = true

	var out bytes.Buffer
	if err := Rewrite(strings.NewReader(existing), &out, e); err != nil {
		t.Fatal(err)
	}

	want := `# user comment
[Desktop Entry]
Type=Application
Name=New
Name[fr]=Vieux
Exec=new-cmd
X-GNOME-Autostart-enabled=true
Hidden=false
Terminal=true
[Desktop Action extra]
Exec=extra-cmd
`
	if out.String() != want {
		t.Errorf("Rewrite output mismatch:\n got:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestRewrite_NoGroupAppendsFreshOne(t *testing.T) {
	e := New()
	e.Exec = String("cmd")

	var out bytes.Buffer
	if err := Rewrite(strings.NewReader("garbage line\n"), &out, e); err != nil {
		t.Fatal(err)
	}
	want := "garbage line\n[Desktop Entry]\nType=Application\nExec=cmd\nHidden=false\nTerminal=false\n"
	if out.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestEntry_CloneIsDeep(t *testing.T) {
	e := New()
	e.Exec = String("a")
	cp := e.Clone()
	*cp.Exec = "b"
	if Value(e.Exec) != "a" {
		t.Error("Clone shares string storage with its source")
	}
}

func TestEntry_EqualIgnoresPathAndPriority(t *testing.T) {
	a := New()
	a.Exec = String("cmd")
	b := a.Clone()
	b.Path = "/tmp/x.desktop"
	b.Priority = 5
	if !a.Equal(b) {
		t.Error("Equal should ignore Path and Priority")
	}
	b.Terminal = true
	if a.Equal(b) {
		t.Error("Equal should compare Terminal")
	}
}
