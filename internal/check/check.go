// Package check provides engine diagnostics (--check mode) and pre-run
// dependency validation (CheckDeps) for the engine executable and scripts.
package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/backmassage/multinight/internal/config"
)

// Sentinel errors returned by CheckDeps.
var (
	ErrEngineNotFound = errors.New("engine executable not found")
	ErrScriptNotFound = errors.New("engine script not found")
)

// versionTimeout bounds the --version call in RunCheck.
const versionTimeout = 10 * time.Second

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// RunCheck runs the interactive --check flow: engine availability and
// version, then each configured script. It reports everything it finds and
// returns false if anything required is missing.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkEngine(cfg.Engine, log)
	for _, s := range []struct{ label, path string }{
		{"Calibration script", cfg.CalibrateScript},
		{"Stacking script", cfg.StackScript},
	} {
		if s.path == "" {
			log.Info("%s: not configured", s.label)
			continue
		}
		if err := checkScript(s.path); err != nil {
			log.Error("%s: %v", s.label, err)
			ok = false
			continue
		}
		log.Success("%s: %s", s.label, s.path)
	}
	return ok
}

// checkEngine verifies the engine resolves and logs its version line.
func checkEngine(name string, log Logger) bool {
	path, err := exec.LookPath(name)
	if err != nil {
		log.Error("%s not found", name)
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		log.Warn("%s found at %s but --version failed: %v", name, path, err)
		return true
	}
	log.Success("Engine: %s (%s)", firstLine(string(out)), path)
	return true
}

// CheckDeps is the pre-run validation: the engine must resolve on PATH (or
// as a path) and both scripts must be readable regular files.
func CheckDeps(cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.Engine); err != nil {
		return fmt.Errorf("%w: %s", ErrEngineNotFound, cfg.Engine)
	}
	for _, p := range []string{cfg.CalibrateScript, cfg.StackScript} {
		if err := checkScript(p); err != nil {
			return err
		}
	}
	return nil
}

// checkScript requires path to be a readable regular file.
func checkScript(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrScriptNotFound, path)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return err
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrScriptNotFound, path)
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, "\n"); idx > 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
