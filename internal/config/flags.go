package config

// This file implements CLI flag registration on a pflag.FlagSet.
// Flags write straight into Config, so file and environment layers must be
// applied afterwards with the set of changed flag names (see ChangedFlags).
// Negated flags (e.g. --no-color) are applied after parsing.

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Flags holds values that do not map one-to-one onto Config fields.
type Flags struct {
	ConfigPath string
	sessions   []string
	forceColor bool
	noColor    bool
}

// BindFlags registers every configuration flag on fs, using the current
// values in cfg as defaults.
func BindFlags(fs *pflag.FlagSet, cfg *Config, f *Flags) {
	defineInputFlags(fs, cfg, f)
	defineNamespaceFlags(fs, cfg)
	defineEngineFlags(fs, cfg)
	defineBehaviorFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, f)
}

// defineInputFlags registers --session, --sessions, --calibrate-script,
// --stack-script, --output.
func defineInputFlags(fs *pflag.FlagSet, cfg *Config, f *Flags) {
	fs.StringArrayVarP(&cfg.Sessions, "session", "s", cfg.Sessions, "session directory (repeatable, in night order)")
	fs.StringSliceVar(&f.sessions, "sessions", nil, "comma-separated session directories, appended after --session")
	fs.StringVar(&cfg.CalibrateScript, "calibrate-script", cfg.CalibrateScript, "engine script run once per session")
	fs.StringVar(&cfg.StackScript, "stack-script", cfg.StackScript, "engine script run over the merged sessions")
	fs.StringVarP(&cfg.OutputDir, "output", "o", cfg.OutputDir, "output directory")
}

// defineNamespaceFlags registers --process-dir, --seq-name, --ext, --result.
func defineNamespaceFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.ProcessDirName, "process-dir", "p", cfg.ProcessDirName, "name of the engine process directories")
	fs.StringVar(&cfg.SeqName, "seq-name", cfg.SeqName, "sequence name of the calibrated light frames")
	fs.StringSliceVar(&cfg.FrameExtensions, "ext", cfg.FrameExtensions, "frame file extensions recognised in a sequence")
	fs.StringSliceVar(&cfg.ResultPatterns, "result", cfg.ResultPatterns, "patterns selecting stacked artifacts (prefix with ! to exclude)")
}

// defineEngineFlags registers --engine and --engine-args.
func defineEngineFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Engine, "engine", cfg.Engine, "engine executable (name on PATH or path)")
	fs.StringVar(&cfg.EngineArgs, "engine-args", cfg.EngineArgs, "extra engine arguments, shell-quoted")
}

// defineBehaviorFlags registers reuse policy, aggregation mode and dry-run.
func defineBehaviorFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.Var(&reusePolicyValue{&cfg.ReusePolicy}, "reuse-policy", "existing process directories: reuse | require-empty")
	fs.BoolVar(&cfg.Renumber, "renumber", cfg.Renumber, "renumber merged frames into one contiguous sequence")
	fs.BoolVar(&cfg.Link, "link", cfg.Link, "hard-link frames into the shared process directory instead of copying")
	fs.BoolVarP(&cfg.DryRun, "dry-run", "d", cfg.DryRun, "log the plan without running the engine or writing files")
}

// defineDisplayFlags registers --color, --no-color, verbose, --check, --log, --config.
func defineDisplayFlags(fs *pflag.FlagSet, cfg *Config, f *Flags) {
	fs.BoolVar(&f.forceColor, "color", false, "force colored logs")
	fs.BoolVar(&f.noColor, "no-color", false, "disable colored logs")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "verbose output (debug logs, live engine output)")
	fs.BoolVarP(&cfg.CheckOnly, "check", "c", cfg.CheckOnly, "run engine diagnostics and exit")
	fs.StringVarP(&cfg.LogFile, "log", "l", cfg.LogFile, "append logs to file")
	fs.StringVar(&f.ConfigPath, "config", "", "path to config file (default: $HOME/.multinight/config.toml)")
}

// ApplyFlags copies negated flags, --sessions and positional arguments into
// cfg. Sessions keep command-line order: --session, then --sessions, then
// positional arguments, so "--sessions a b c" lists a, b and c.
func ApplyFlags(cfg *Config, f *Flags, args []string) {
	if f.noColor {
		cfg.ColorMode = ColorNever
	} else if f.forceColor {
		cfg.ColorMode = ColorAlways
	}
	cfg.Sessions = append(cfg.Sessions, f.sessions...)
	cfg.Sessions = append(cfg.Sessions, args...)
}

// ChangedFlags returns the names of flags explicitly set on the command line.
// "color" and "no-color" are reported as "color-mode" and "sessions" as
// "session" so lower layers leave the resolved values alone.
func ChangedFlags(fs *pflag.FlagSet) map[string]bool {
	changed := map[string]bool{}
	fs.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "color", "no-color":
			changed["color-mode"] = true
		case "sessions":
			changed["session"] = true
		default:
			changed[fl.Name] = true
		}
	})
	return changed
}

// pflag.Value adapters so enum types can be used with fs.Var.

type reusePolicyValue struct{ p *ReusePolicy }

func (r *reusePolicyValue) String() string { return string(*r.p) }
func (r *reusePolicyValue) Type() string   { return "policy" }
func (r *reusePolicyValue) Set(s string) error {
	p, err := ParseReusePolicy(s)
	if err != nil {
		return err
	}
	*r.p = p
	return nil
}

// ParseReusePolicy converts user input into a ReusePolicy.
func ParseReusePolicy(s string) (ReusePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reuse":
		return ReuseKeep, nil
	case "require-empty":
		return ReuseRequireEmpty, nil
	default:
		return "", fmt.Errorf("invalid reuse policy %q (use 'reuse' or 'require-empty')", s)
	}
}

// ParseColorMode converts user input into a ColorMode.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return "", fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", s)
	}
}
