package check

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/backmassage/multinight/internal/config"
)

type recordLogger struct {
	lines []string
}

func (r *recordLogger) add(level, format string, args ...interface{}) {
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, args...))
}

func (r *recordLogger) Info(f string, a ...interface{})    { r.add("INFO", f, a...) }
func (r *recordLogger) Success(f string, a ...interface{}) { r.add("OK", f, a...) }
func (r *recordLogger) Warn(f string, a ...interface{})    { r.add("WARN", f, a...) }
func (r *recordLogger) Error(f string, a ...interface{})   { r.add("ERROR", f, a...) }

func (r *recordLogger) has(prefix, substr string) bool {
	for _, l := range r.lines {
		if strings.HasPrefix(l, prefix) && strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

// fakeEngine writes an executable that prints a version banner.
func fakeEngine(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not available")
	}
	path := filepath.Join(t.TempDir(), "siril-cli")
	script := "#!/bin/sh\necho 'siril-cli 1.2.4'\necho 'extra line'\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func scripts(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	cal := filepath.Join(dir, "calibrate.ssf")
	stack := filepath.Join(dir, "stack.ssf")
	for _, p := range []string{cal, stack} {
		if err := os.WriteFile(p, []byte("requires 1.2.0\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return cal, stack
}

func TestCheckDeps(t *testing.T) {
	engine := fakeEngine(t)
	cal, stack := scripts(t)

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
	}{
		{"all present", func(*config.Config) {}, nil},
		{"engine missing", func(c *config.Config) { c.Engine = filepath.Join(t.TempDir(), "nope") }, ErrEngineNotFound},
		{"calibrate script missing", func(c *config.Config) { c.CalibrateScript += ".missing" }, ErrScriptNotFound},
		{"stack script is a directory", func(c *config.Config) { c.StackScript = t.TempDir() }, ErrScriptNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Engine = engine
			cfg.CalibrateScript = cal
			cfg.StackScript = stack
			tt.mutate(&cfg)

			err := CheckDeps(&cfg)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("CheckDeps() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckDeps() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRunCheck(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Engine = fakeEngine(t)
	cfg.CalibrateScript, _ = scripts(t)

	log := &recordLogger{}
	if !RunCheck(&cfg, log) {
		t.Fatalf("RunCheck() = false, log:\n%s", strings.Join(log.lines, "\n"))
	}
	if !log.has("OK", "siril-cli 1.2.4") {
		t.Errorf("version line not reported:\n%s", strings.Join(log.lines, "\n"))
	}
	if log.has("OK", "extra line") {
		t.Error("only the first version line should be reported")
	}
	if !log.has("INFO", "Stacking script: not configured") {
		t.Error("unset stacking script should be reported as not configured")
	}
}

func TestRunCheck_MissingEngine(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Engine = filepath.Join(t.TempDir(), "siril-cli")
	log := &recordLogger{}
	if RunCheck(&cfg, log) {
		t.Error("RunCheck() = true with a missing engine")
	}
	if !log.has("ERROR", "not found") {
		t.Errorf("missing engine not reported:\n%s", strings.Join(log.lines, "\n"))
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("\n siril-cli 1.2.4 \nmore"); got != "siril-cli 1.2.4" {
		t.Errorf("firstLine = %q", got)
	}
}
