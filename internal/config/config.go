// Package config holds runtime configuration: defaults, layered loading
// (TOML file, environment, CLI flags), and validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
)

// --- Enum types for validated string fields ---

// ReusePolicy decides what happens when a stage's process directory already
// exists from an earlier run.
type ReusePolicy string

const (
	ReuseKeep         ReusePolicy = "reuse"         // Keep the directory and its contents (default).
	ReuseRequireEmpty ReusePolicy = "require-empty" // Refuse to run until the operator empties it.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig] and
// then layered by [ApplyFileConfig], [ApplyEnvConfig] and the CLI flags
// before being passed (by pointer) to packages that need it.
type Config struct {
	// Inputs.
	Sessions        []string // Session directories in ordinal order.
	CalibrateScript string   // Engine script run once per session.
	StackScript     string   // Engine script run once over all sessions.
	OutputDir       string   // Receives the shared process dir and final artifacts.

	// Namespacing.
	ProcessDirName  string   // Default: "process".
	SeqName         string   // Default: "pp_light".
	FrameExtensions []string // Default: .fit, .fits, .fts.
	ResultPatterns  []string // Default: "*_stacked.fit*".

	// Engine.
	Engine     string // Default: "siril-cli".
	EngineArgs string // Extra arguments, shell-quoted.

	// Behavior.
	ReusePolicy ReusePolicy // Default: "reuse".
	Renumber    bool        // Contiguous <seq>_00001… names in the shared dir.
	Link        bool        // Hard-link instead of copy during aggregation.
	DryRun      bool

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
	CheckOnly bool      // Run --check diagnostics and exit.
}

// DefaultConfig returns a Config with every optional setting at its default.
func DefaultConfig() Config {
	return Config{
		ProcessDirName:  "process",
		SeqName:         "pp_light",
		FrameExtensions: []string{".fit", ".fits", ".fts"},
		ResultPatterns:  []string{"*_stacked.fit*"},
		Engine:          "siril-cli",
		ReusePolicy:     ReuseKeep,
		ColorMode:       ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// ExpandPath expands a leading "~" and normalizes trailing slashes.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	p, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", path, err)
	}
	return NormalizeDirArg(p), nil
}

// Validate checks enum fields and naming settings. When not in CheckOnly mode
// it also requires sessions, both scripts, and the output directory.
func (c *Config) Validate() error {
	switch c.ReusePolicy {
	case ReuseKeep, ReuseRequireEmpty:
		// valid
	default:
		return fmt.Errorf("invalid reuse policy %q (use 'reuse' or 'require-empty')", c.ReusePolicy)
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	if c.Engine == "" {
		return errors.New("engine must not be empty")
	}
	if err := validateName("process dir", c.ProcessDirName); err != nil {
		return err
	}
	if err := validateName("sequence name", c.SeqName); err != nil {
		return err
	}
	exts, err := normalizeExtensions(c.FrameExtensions)
	if err != nil {
		return err
	}
	c.FrameExtensions = exts
	if len(c.ResultPatterns) == 0 {
		return errors.New("at least one result pattern is required")
	}

	if c.CheckOnly {
		return nil
	}
	if len(c.Sessions) == 0 {
		return errors.New("at least one session directory is required")
	}
	if c.CalibrateScript == "" {
		return errors.New("calibrate script is required")
	}
	if c.StackScript == "" {
		return errors.New("stack script is required")
	}
	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}
	return nil
}

// validateName rejects values that would escape a single path element.
func validateName(what, name string) error {
	if name == "" {
		return fmt.Errorf("%s must not be empty", what)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%s %q must be a plain name, not a path", what, name)
	}
	return nil
}

// normalizeExtensions lowercases extensions and ensures a leading dot.
// Accepted forms: "fit", ".fit", ".FIT".
func normalizeExtensions(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, errors.New("at least one frame extension is required")
	}
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, e := range raw {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || e == "." {
			return nil, fmt.Errorf("invalid frame extension %q", e)
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out, nil
}

// ValidatePaths ensures the resolved output directory is not inside (or equal
// to) any resolved session directory. Otherwise the shared process directory
// would coincide with, or nest inside, a night's own scratch area. All
// arguments must be absolute, cleaned paths.
func (c *Config) ValidatePaths(sessionsAbs []string, outputAbs string) error {
	sep := string(filepath.Separator)
	for _, s := range sessionsAbs {
		if outputAbs == s || strings.HasPrefix(outputAbs+sep, s+sep) {
			return fmt.Errorf("output directory must not be inside session directory %s", s)
		}
	}
	return nil
}
