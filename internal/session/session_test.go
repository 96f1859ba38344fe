package session

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiscover_PreservesOrder(t *testing.T) {
	root := t.TempDir()
	names := []string{"night-c", "night-a", "night-b"}
	var paths []string
	for _, n := range names {
		paths = append(paths, mkSession(t, root, n))
	}

	sessions, err := Discover(paths)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(sessions) != len(names) {
		t.Fatalf("got %d sessions, want %d", len(sessions), len(names))
	}
	for i, s := range sessions {
		if s.Index != i {
			t.Errorf("sessions[%d].Index = %d", i, s.Index)
		}
		if filepath.Base(s.Path) != names[i] {
			t.Errorf("sessions[%d] = %s, want %s", i, s.Path, names[i])
		}
		if !filepath.IsAbs(s.Path) {
			t.Errorf("sessions[%d].Path is not absolute: %s", i, s.Path)
		}
	}
}

func TestDiscover_Invalid(t *testing.T) {
	root := t.TempDir()
	good := mkSession(t, root, "good")

	file := filepath.Join(root, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(root, "empty")
	if err := os.Mkdir(empty, 0o755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		paths  []string
		reason string
	}{
		{"missing", []string{good, filepath.Join(root, "nope")}, "does not exist"},
		{"file", []string{file}, "not a directory"},
		{"empty dir", []string{empty}, "directory is empty"},
		{"empty path", []string{""}, "empty path"},
		{"duplicate", []string{good, good + "/"}, "duplicate of session 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Discover(tt.paths)
			var ise *InvalidSessionError
			if !errors.As(err, &ise) {
				t.Fatalf("error = %v, want *InvalidSessionError", err)
			}
			if ise.Reason != tt.reason {
				t.Errorf("Reason = %q, want %q", ise.Reason, tt.reason)
			}
		})
	}
}

func TestDiscover_NoSessions(t *testing.T) {
	sessions, err := Discover(nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("got %d sessions, want 0", len(sessions))
	}
}

func TestSession_String(t *testing.T) {
	s := Session{Path: "/astro/n1", Index: 0}
	if got := s.String(); !strings.Contains(got, "session 1") {
		t.Errorf("String() = %q, want 1-based numbering", got)
	}
	if got := s.ProcessDir("process"); got != "/astro/n1/process" {
		t.Errorf("ProcessDir = %q", got)
	}
}

func mkSession(t *testing.T, root, name string) string {
	t.Helper()
	dir := filepath.Join(root, name, "lights")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	return filepath.Join(root, name)
}
