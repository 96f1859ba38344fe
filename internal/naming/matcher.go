package naming

import (
	"regexp"
	"strconv"
	"strings"
)

// Matcher recognises sequence files by name. Prefix is the engine's
// sequence name (e.g. "pp_light"); Extensions are lowercase with a leading
// dot and are compared case-insensitively.
type Matcher struct {
	Prefix     string
	Extensions []string

	engine   *regexp.Regexp // <prefix>_<digits><ext>
	remapped *regexp.Regexp // <prefix>_<ordinal>_<digits><ext>
}

// NewMatcher compiles a Matcher for prefix and the given extensions.
func NewMatcher(prefix string, extensions []string) Matcher {
	alts := make([]string, 0, len(extensions))
	for _, e := range extensions {
		alts = append(alts, regexp.QuoteMeta(e))
	}
	ext := `((?i:` + strings.Join(alts, "|") + `))`
	p := regexp.QuoteMeta(prefix)

	return Matcher{
		Prefix:     prefix,
		Extensions: append([]string(nil), extensions...),
		engine:     regexp.MustCompile(`^` + p + `_([0-9]+)` + ext + `$`),
		remapped:   regexp.MustCompile(`^` + p + `_([0-9]+)_([0-9]+)` + ext + `$`),
	}
}

// Match reports whether name is a frame exactly as the engine writes it,
// returning the frame digits and the extension as spelled in name.
func (m Matcher) Match(name string) (frame, ext string, ok bool) {
	sm := m.engine.FindStringSubmatch(name)
	if sm == nil {
		return "", "", false
	}
	return sm[1], sm[2], true
}

// MatchRemapped reports whether name is already in remapped form.
func (m Matcher) MatchRemapped(name string) (ordinal int, frame, ext string, ok bool) {
	sm := m.remapped.FindStringSubmatch(name)
	if sm == nil {
		return 0, "", "", false
	}
	n, err := strconv.Atoi(sm[1])
	if err != nil {
		return 0, "", "", false
	}
	return n, sm[2], sm[3], true
}

// Pattern describes the engine file names the Matcher accepts, for messages.
func (m Matcher) Pattern() string {
	return m.Prefix + "_<digits>{" + strings.Join(m.Extensions, ",") + "}"
}

// RemappedName returns <prefix>_<ordinal>_<frame><ext>.
func RemappedName(prefix string, ordinal int, frame, ext string) string {
	return prefix + "_" + strconv.Itoa(ordinal) + "_" + frame + ext
}
