package config

import (
	"fmt"
	"os"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config for TOML. Pointers distinguish "unset" from false.
type FileConfig struct {
	Sessions        []string `toml:"sessions"`
	CalibrateScript string   `toml:"calibrate_script"`
	StackScript     string   `toml:"stack_script"`
	OutputDir       string   `toml:"output"`
	ProcessDirName  string   `toml:"process_dir"`
	SeqName         string   `toml:"seq_name"`
	FrameExtensions []string `toml:"frame_extensions"`
	ResultPatterns  []string `toml:"result_patterns"`
	Engine          string   `toml:"engine"`
	EngineArgs      string   `toml:"engine_args"`
	ReusePolicy     string   `toml:"reuse_policy"`
	Renumber        *bool    `toml:"renumber"`
	Link            *bool    `toml:"link"`
	Verbose         *bool    `toml:"verbose"`
	ColorMode       string   `toml:"color"`
	LogFile         string   `toml:"log_file"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	f, err := os.Open(path)
	if err != nil {
		return fc, err
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fc); err != nil {
		return fc, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.multinight/config.toml, or "" when the home
// directory cannot be resolved.
func DefaultConfigPath() string {
	if h, err := homedir.Dir(); err == nil {
		return filepath.Join(h, ".multinight", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to cfg. Values whose
// flag appears in changed are left alone.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setStrings("session", fc.Sessions, &cfg.Sessions)
	s.setString("calibrate-script", fc.CalibrateScript, &cfg.CalibrateScript)
	s.setString("stack-script", fc.StackScript, &cfg.StackScript)
	s.setString("output", fc.OutputDir, &cfg.OutputDir)
	s.setString("process-dir", fc.ProcessDirName, &cfg.ProcessDirName)
	s.setString("seq-name", fc.SeqName, &cfg.SeqName)
	s.setStrings("ext", fc.FrameExtensions, &cfg.FrameExtensions)
	s.setStrings("result", fc.ResultPatterns, &cfg.ResultPatterns)
	s.setString("engine", fc.Engine, &cfg.Engine)
	s.setString("engine-args", fc.EngineArgs, &cfg.EngineArgs)
	s.setString("log", fc.LogFile, &cfg.LogFile)

	s.setBool("renumber", fc.Renumber, &cfg.Renumber)
	s.setBool("link", fc.Link, &cfg.Link)
	s.setBool("verbose", fc.Verbose, &cfg.Verbose)

	if err := s.setReusePolicy("reuse-policy", fc.ReusePolicy, &cfg.ReusePolicy); err != nil {
		return err
	}
	return s.setColorMode("color-mode", fc.ColorMode, &cfg.ColorMode)
}

// ExpandPaths expands "~" in every path-valued field.
func (c *Config) ExpandPaths() error {
	for i, s := range c.Sessions {
		p, err := ExpandPath(s)
		if err != nil {
			return err
		}
		c.Sessions[i] = p
	}
	for _, p := range []*string{&c.CalibrateScript, &c.StackScript, &c.OutputDir, &c.LogFile} {
		v, err := ExpandPath(*p)
		if err != nil {
			return err
		}
		*p = v
	}
	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// configSetter applies values while respecting flag precedence: a value is
// only applied if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStrings replaces a list if the new one is non-empty and flag not changed.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = append([]string(nil), value...)
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses "true"/"1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}

func (s *configSetter) setReusePolicy(flag, value string, dst *ReusePolicy) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	p, err := ParseReusePolicy(value)
	if err != nil {
		return err
	}
	*dst = p
	return nil
}

func (s *configSetter) setColorMode(flag, value string, dst *ColorMode) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	m, err := ParseColorMode(value)
	if err != nil {
		return err
	}
	*dst = m
	return nil
}
