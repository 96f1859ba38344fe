package naming

import (
	"fmt"
	"sort"
)

// Target is the name a SequenceFile takes in the shared process directory.
type Target struct {
	Source SequenceFile
	Name   string
}

// Keep targets every file under its remapped name.
func Keep(files []SequenceFile) []Target {
	out := make([]Target, len(files))
	for i, f := range files {
		out[i] = Target{Source: f, Name: f.Name()}
	}
	return out
}

// Renumber assigns one contiguous sequence <prefix>_00001<ext>,
// <prefix>_00002<ext>, ... ordered by session, then frame number.
func Renumber(files []SequenceFile, m Matcher) []Target {
	sorted := append([]SequenceFile(nil), files...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Session != b.Session {
			return a.Session < b.Session
		}
		if c := compareDigits(a.Frame, b.Frame); c != 0 {
			return c < 0
		}
		return a.Path < b.Path
	})

	out := make([]Target, len(sorted))
	for i, f := range sorted {
		out[i] = Target{Source: f, Name: fmt.Sprintf("%s_%05d%s", m.Prefix, i+1, f.Ext)}
	}
	return out
}

// compareDigits orders decimal strings numerically without overflow.
func compareDigits(a, b string) int {
	a, b = trimZeros(a), trimZeros(b)
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func trimZeros(s string) string {
	for len(s) > 1 && s[0] == '0' {
		s = s[1:]
	}
	return s
}
