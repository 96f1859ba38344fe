package workdir

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/backmassage/multinight/internal/config"
)

func TestPrepare_CreatesDirectory(t *testing.T) {
	base := t.TempDir()
	pd, err := Prepare(base, "process", PurposeCalibration, config.ReuseKeep)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if pd.Root != filepath.Join(base, "process") {
		t.Errorf("Root = %q", pd.Root)
	}
	if pd.Existed {
		t.Error("Existed should be false for a new directory")
	}
	if pd.Purpose != PurposeCalibration {
		t.Errorf("Purpose = %q", pd.Purpose)
	}
	if fi, err := os.Stat(pd.Root); err != nil || !fi.IsDir() {
		t.Errorf("directory not created: %v", err)
	}
}

func TestPrepare_IdempotentKeepsContents(t *testing.T) {
	base := t.TempDir()
	pd, err := Prepare(base, "process", PurposeStacking, config.ReuseKeep)
	if err != nil {
		t.Fatalf("first Prepare: %v", err)
	}
	marker := pd.Path("pp_light_0_00001.fit")
	if err := os.WriteFile(marker, []byte("frame"), 0o644); err != nil {
		t.Fatal(err)
	}

	again, err := Prepare(base, "process", PurposeStacking, config.ReuseKeep)
	if err != nil {
		t.Fatalf("second Prepare: %v", err)
	}
	if !again.Existed {
		t.Error("Existed should be true on the second call")
	}
	b, err := os.ReadFile(marker)
	if err != nil || string(b) != "frame" {
		t.Errorf("prior contents lost: %q, %v", b, err)
	}
}

func TestPrepare_RequireEmpty(t *testing.T) {
	base := t.TempDir()

	// Absent and empty directories are both accepted.
	if _, err := Prepare(base, "process", PurposeCalibration, config.ReuseRequireEmpty); err != nil {
		t.Fatalf("Prepare new: %v", err)
	}
	if _, err := Prepare(base, "process", PurposeCalibration, config.ReuseRequireEmpty); err != nil {
		t.Fatalf("Prepare empty existing: %v", err)
	}

	leftover := filepath.Join(base, "process", "pp_light_00001.fit")
	if err := os.WriteFile(leftover, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Prepare(base, "process", PurposeCalibration, config.ReuseRequireEmpty)
	var dce *DirectoryCreationError
	if !errors.As(err, &dce) {
		t.Fatalf("error = %v, want *DirectoryCreationError", err)
	}
	if !errors.Is(err, ErrDirectoryNotEmpty) {
		t.Errorf("error should wrap ErrDirectoryNotEmpty: %v", err)
	}
	if _, err := os.Stat(leftover); err != nil {
		t.Error("require-empty must not delete anything")
	}
}

func TestPrepare_PathIsFile(t *testing.T) {
	base := t.TempDir()
	if err := os.WriteFile(filepath.Join(base, "process"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Prepare(base, "process", PurposeCalibration, config.ReuseKeep)
	var dce *DirectoryCreationError
	if !errors.As(err, &dce) {
		t.Fatalf("error = %v, want *DirectoryCreationError", err)
	}
}

func TestPrepare_BadName(t *testing.T) {
	for _, name := range []string{"", ".", "..", "a/b"} {
		if _, err := Prepare(t.TempDir(), name, PurposeCalibration, config.ReuseKeep); err == nil {
			t.Errorf("Prepare(%q) should fail", name)
		}
	}
}

func TestPrepare_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits not enforced")
	}
	base := t.TempDir()
	if err := os.Chmod(base, 0o500); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(base, 0o755) })

	_, err := Prepare(base, "process", PurposeCalibration, config.ReuseKeep)
	var dce *DirectoryCreationError
	if !errors.As(err, &dce) {
		t.Fatalf("error = %v, want *DirectoryCreationError", err)
	}
}
