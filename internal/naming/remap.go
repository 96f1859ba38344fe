package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// SequenceFile is one calibrated frame after the per-night remap.
type SequenceFile struct {
	Original string // Path as written by the engine.
	Path     string // Path after remapping (same directory).
	Session  int    // Session ordinal.
	Frame    string // Frame digits, zero padding kept.
	Ext      string
}

// Name returns the remapped base name.
func (f SequenceFile) Name() string { return filepath.Base(f.Path) }

// NoMatchingSequenceFilesError is returned when a directory holds no file
// the Matcher accepts, usually because the calibration script wrote a
// different sequence name.
type NoMatchingSequenceFilesError struct {
	Dir     string
	Pattern string
}

func (e *NoMatchingSequenceFilesError) Error() string {
	return fmt.Sprintf("no files matching %s in %s", e.Pattern, e.Dir)
}

// Remap renames every engine frame in dir to its ordinal-prefixed name and
// returns the renamed frames, sorted by path. Only frames written since the
// last remap count: remapped files already in dir (from an earlier run in a
// reused directory) are neither returned nor enough to avoid
// NoMatchingSequenceFilesError. A fresh frame replaces an older remapped
// file of the same name.
func Remap(dir string, ordinal int, m Matcher) ([]SequenceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var files []SequenceFile
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		frame, ext, ok := m.Match(e.Name())
		if !ok {
			continue
		}
		src := filepath.Join(dir, e.Name())
		dst := filepath.Join(dir, RemappedName(m.Prefix, ordinal, frame, ext))
		if err := os.Rename(src, dst); err != nil {
			return nil, fmt.Errorf("remap %s: %w", src, err)
		}
		files = append(files, SequenceFile{Original: src, Path: dst, Session: ordinal, Frame: frame, Ext: ext})
	}

	if len(files) == 0 {
		return nil, &NoMatchingSequenceFilesError{Dir: dir, Pattern: m.Pattern()}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Leftovers lists remapped files for ordinal in dir that are not among
// files, i.e. frames an earlier run produced and this one did not.
func Leftovers(dir string, ordinal int, m Matcher, files []SequenceFile) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	current := make(map[string]bool, len(files))
	for _, f := range files {
		current[f.Name()] = true
	}
	var out []string
	for _, e := range entries {
		if !e.Type().IsRegular() || current[e.Name()] {
			continue
		}
		if n, _, _, ok := m.MatchRemapped(e.Name()); ok && n == ordinal {
			out = append(out, e.Name())
		}
	}
	return out, nil
}
