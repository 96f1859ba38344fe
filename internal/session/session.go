// Package session discovers and validates the per-night session directories
// that feed a multi-night run.
package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/backmassage/multinight/internal/config"
)

// Session is one night's directory. Index is its 0-based ordinal: the
// position it was given in, used for namespacing and tie-breaking.
type Session struct {
	Path  string
	Index int
}

// String returns "session N (path)" with a 1-based number for humans.
func (s Session) String() string {
	return fmt.Sprintf("session %d (%s)", s.Index+1, s.Path)
}

// ProcessDir returns the session's per-night process directory path.
func (s Session) ProcessDir(name string) string {
	return filepath.Join(s.Path, name)
}

// InvalidSessionError reports a session path that cannot be used.
type InvalidSessionError struct {
	Path   string
	Reason string
	Err    error
}

func (e *InvalidSessionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid session %q: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid session %q: %s", e.Path, e.Reason)
}

func (e *InvalidSessionError) Unwrap() error { return e.Err }

// Discover resolves each path to an absolute directory and returns the
// sessions in the given order. It fails on the first path that is empty,
// missing, not a directory, has no entries, or repeats an earlier session.
// Only reads the filesystem.
func Discover(paths []string) ([]Session, error) {
	sessions := make([]Session, 0, len(paths))
	seen := make(map[string]int, len(paths))

	for i, raw := range paths {
		if raw == "" {
			return nil, &InvalidSessionError{Path: raw, Reason: "empty path"}
		}
		expanded, err := config.ExpandPath(raw)
		if err != nil {
			return nil, &InvalidSessionError{Path: raw, Reason: "cannot expand path", Err: err}
		}
		abs, err := filepath.Abs(expanded)
		if err != nil {
			return nil, &InvalidSessionError{Path: raw, Reason: "cannot resolve path", Err: err}
		}

		fi, err := os.Stat(abs)
		if err != nil {
			return nil, &InvalidSessionError{Path: raw, Reason: "does not exist", Err: err}
		}
		if !fi.IsDir() {
			return nil, &InvalidSessionError{Path: raw, Reason: "not a directory"}
		}
		entries, err := os.ReadDir(abs)
		if err != nil {
			return nil, &InvalidSessionError{Path: raw, Reason: "cannot read directory", Err: err}
		}
		if len(entries) == 0 {
			return nil, &InvalidSessionError{Path: raw, Reason: "directory is empty"}
		}

		// Compare resolved paths so "n1" and "./n1/" count as the same night.
		key := abs
		if real, err := filepath.EvalSymlinks(abs); err == nil {
			key = real
		}
		if prev, dup := seen[key]; dup {
			return nil, &InvalidSessionError{
				Path:   raw,
				Reason: fmt.Sprintf("duplicate of session %d", prev+1),
			}
		}
		seen[key] = i

		sessions = append(sessions, Session{Path: abs, Index: i})
	}
	return sessions, nil
}

// Paths returns the directory of every session, in ordinal order.
func Paths(sessions []Session) []string {
	out := make([]string, len(sessions))
	for i, s := range sessions {
		out[i] = s.Path
	}
	return out
}
