// Package workdir prepares the scratch process directories the engine works
// in. Directories are created on demand and never deleted: they stay on disk
// after a run for inspection.
package workdir

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/multinight/internal/config"
)

// Purpose tags what a process directory is used for.
type Purpose string

const (
	PurposeCalibration Purpose = "calibration" // <session>/<processDir>
	PurposeStacking    Purpose = "stacking"    // <output>/<processDir>
)

// ErrDirectoryNotEmpty is wrapped by DirectoryCreationError when the reuse
// policy forbids running over a populated directory.
var ErrDirectoryNotEmpty = errors.New("process directory is not empty (reuse policy is require-empty)")

// ProcessDirectory is a prepared scratch directory.
type ProcessDirectory struct {
	Root    string
	Purpose Purpose
	Existed bool // Already present before Prepare.
}

// Path joins name onto the directory root.
func (d ProcessDirectory) Path(name string) string {
	return filepath.Join(d.Root, name)
}

// DirectoryCreationError reports a failure preparing a process directory.
type DirectoryCreationError struct {
	Path string
	Err  error
}

func (e *DirectoryCreationError) Error() string {
	return fmt.Sprintf("prepare process directory %s: %v", e.Path, e.Err)
}

func (e *DirectoryCreationError) Unwrap() error { return e.Err }

// Prepare ensures basePath/dirName exists as a directory. Existing contents
// are kept; under ReuseRequireEmpty a directory that already holds entries
// is refused. Calling Prepare twice on the same path is safe.
func Prepare(basePath, dirName string, purpose Purpose, policy config.ReusePolicy) (ProcessDirectory, error) {
	root := filepath.Join(basePath, dirName)
	if dirName == "" || strings.ContainsAny(dirName, `/\`) || dirName == "." || dirName == ".." {
		return ProcessDirectory{}, &DirectoryCreationError{
			Path: root,
			Err:  fmt.Errorf("directory name %q must be a single path element", dirName),
		}
	}

	pd := ProcessDirectory{Root: root, Purpose: purpose}

	fi, err := os.Stat(root)
	switch {
	case err == nil:
		if !fi.IsDir() {
			return pd, &DirectoryCreationError{Path: root, Err: errors.New("exists and is not a directory")}
		}
		pd.Existed = true
		if policy == config.ReuseRequireEmpty {
			empty, err := isEmpty(root)
			if err != nil {
				return pd, &DirectoryCreationError{Path: root, Err: err}
			}
			if !empty {
				return pd, &DirectoryCreationError{Path: root, Err: ErrDirectoryNotEmpty}
			}
		}
		return pd, nil
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(root, 0o755); err != nil {
			return pd, &DirectoryCreationError{Path: root, Err: err}
		}
		return pd, nil
	default:
		return pd, &DirectoryCreationError{Path: root, Err: err}
	}
}

// isEmpty reports whether dir has no entries, reading at most one.
func isEmpty(dir string) (bool, error) {
	f, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer f.Close()
	_, err = f.Readdirnames(1)
	if errors.Is(err, io.EOF) {
		return true, nil
	}
	return false, err
}
