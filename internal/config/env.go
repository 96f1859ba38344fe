package config

import (
	"os"
	"strings"
)

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "MULTINIGHT_"

// ApplyEnvConfig applies MULTINIGHT_* environment variables. They override
// the config file but not explicitly set flags. MULTINIGHT_PROCESS_DIR is
// the directory name; engine scripts receive the full path as
// MULTINIGHT_WORK_DIR instead.
//
//	MULTINIGHT_ENGINE, MULTINIGHT_ENGINE_ARGS, MULTINIGHT_PROCESS_DIR,
//	MULTINIGHT_SEQ_NAME, MULTINIGHT_OUTPUT, MULTINIGHT_REUSE_POLICY,
//	MULTINIGHT_RENUMBER, MULTINIGHT_LINK, MULTINIGHT_LOG, MULTINIGHT_COLOR
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	return applyEnv(cfg, changed, os.Getenv)
}

func applyEnv(cfg *Config, changed map[string]bool, getenv func(string) string) error {
	s := newConfigSetter(changed)
	env := func(key string) string { return strings.TrimSpace(getenv(EnvPrefix + key)) }

	s.setString("engine", env("ENGINE"), &cfg.Engine)
	s.setString("engine-args", env("ENGINE_ARGS"), &cfg.EngineArgs)
	s.setString("process-dir", env("PROCESS_DIR"), &cfg.ProcessDirName)
	s.setString("seq-name", env("SEQ_NAME"), &cfg.SeqName)
	s.setString("output", env("OUTPUT"), &cfg.OutputDir)
	s.setString("log", env("LOG"), &cfg.LogFile)
	s.setBoolFromString("renumber", env("RENUMBER"), &cfg.Renumber)
	s.setBoolFromString("link", env("LINK"), &cfg.Link)

	if err := s.setReusePolicy("reuse-policy", env("REUSE_POLICY"), &cfg.ReusePolicy); err != nil {
		return err
	}
	return s.setColorMode("color-mode", env("COLOR"), &cfg.ColorMode)
}
