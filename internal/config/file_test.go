package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoadFileConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
sessions = ["/astro/n1", "/astro/n2"]
calibrate_script = "/astro/cal.ssf"
stack_script = "/astro/stack.ssf"
output = "/astro/out"
process_dir = "work"
seq_name = "r_light"
result_patterns = ["result*.fit", "!*.bak"]
engine = "/opt/siril/bin/siril-cli"
engine_args = "--threads 8"
reuse_policy = "require-empty"
renumber = true
color = "never"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("LoadFileConfig: %v", err)
	}
	if fc.ProcessDirName != "work" || fc.SeqName != "r_light" {
		t.Errorf("names = %q/%q", fc.ProcessDirName, fc.SeqName)
	}
	if fc.Renumber == nil || !*fc.Renumber {
		t.Error("renumber should be set to true")
	}
	if fc.Link != nil {
		t.Error("link should be unset")
	}

	cfg := DefaultConfig()
	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}
	if !reflect.DeepEqual(cfg.Sessions, []string{"/astro/n1", "/astro/n2"}) {
		t.Errorf("Sessions = %v", cfg.Sessions)
	}
	if cfg.ReusePolicy != ReuseRequireEmpty {
		t.Errorf("ReusePolicy = %q", cfg.ReusePolicy)
	}
	if cfg.ColorMode != ColorNever {
		t.Errorf("ColorMode = %q", cfg.ColorMode)
	}
	if cfg.EngineArgs != "--threads 8" {
		t.Errorf("EngineArgs = %q", cfg.EngineArgs)
	}
	if !reflect.DeepEqual(cfg.ResultPatterns, []string{"result*.fit", "!*.bak"}) {
		t.Errorf("ResultPatterns = %v", cfg.ResultPatterns)
	}
}

func TestLoadFileConfig_UnknownKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`sesions = ["/typo"]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFileConfig(path); err == nil {
		t.Error("LoadFileConfig should reject unknown keys")
	}
}

func TestLoadFileConfig_Missing(t *testing.T) {
	if _, err := LoadFileConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("LoadFileConfig should fail for a missing file")
	}
}

func TestApplyFileConfig_RespectsChangedFlags(t *testing.T) {
	trueVal := true
	tests := []struct {
		name     string
		fc       FileConfig
		changed  map[string]bool
		initial  Config
		expected Config
		wantErr  bool
	}{
		{
			name:     "file fills unset values",
			fc:       FileConfig{SeqName: "r_light", Link: &trueVal},
			changed:  map[string]bool{},
			initial:  Config{SeqName: "pp_light"},
			expected: Config{SeqName: "r_light", Link: true},
		},
		{
			name:     "flag wins over file",
			fc:       FileConfig{SeqName: "r_light", Link: &trueVal},
			changed:  map[string]bool{"seq-name": true, "link": true},
			initial:  Config{SeqName: "flag_seq"},
			expected: Config{SeqName: "flag_seq"},
		},
		{
			name:     "empty file values keep defaults",
			fc:       FileConfig{},
			changed:  map[string]bool{},
			initial:  Config{ProcessDirName: "process"},
			expected: Config{ProcessDirName: "process"},
		},
		{
			name:    "invalid reuse policy",
			fc:      FileConfig{ReusePolicy: "wipe"},
			changed: map[string]bool{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fc, tt.changed)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ApplyFileConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(cfg, tt.expected) {
				t.Errorf("got %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestApplyEnvConfig(t *testing.T) {
	env := map[string]string{
		"MULTINIGHT_ENGINE":       "/usr/bin/siril-cli",
		"MULTINIGHT_SEQ_NAME":     "r_light",
		"MULTINIGHT_RENUMBER":     "1",
		"MULTINIGHT_REUSE_POLICY": "require-empty",
	}
	getenv := func(k string) string { return env[k] }

	cfg := DefaultConfig()
	if err := applyEnv(&cfg, map[string]bool{"seq-name": true}, getenv); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.Engine != "/usr/bin/siril-cli" {
		t.Errorf("Engine = %q", cfg.Engine)
	}
	if cfg.SeqName != "pp_light" {
		t.Errorf("SeqName = %q, flag should have won", cfg.SeqName)
	}
	if !cfg.Renumber {
		t.Error("Renumber should be true")
	}
	if cfg.ReusePolicy != ReuseRequireEmpty {
		t.Errorf("ReusePolicy = %q", cfg.ReusePolicy)
	}
}

func TestApplyEnvConfig_InvalidColor(t *testing.T) {
	getenv := func(k string) string {
		if k == "MULTINIGHT_COLOR" {
			return "rainbow"
		}
		return ""
	}
	cfg := DefaultConfig()
	if err := applyEnv(&cfg, map[string]bool{}, getenv); err == nil {
		t.Error("applyEnv should reject an invalid color mode")
	}
}
