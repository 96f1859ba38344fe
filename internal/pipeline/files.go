package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const tempPrefix = ".multinight-"

// copyFile copies src to dst through a temp file in dst's directory and a
// rename, so dst is either absent, the old file, or the complete copy.
func copyFile(src, dst string) (int64, error) {
	tmp, n, err := copyToTemp(src, filepath.Dir(dst))
	if err != nil {
		return 0, fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return n, nil
}

// copyToTemp copies src into a new temp file in dir and returns its name.
// The temp file is removed on failure.
func copyToTemp(src, dir string) (string, int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", 0, err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return "", 0, err
	}
	tmpName := tmp.Name()
	n, err := io.Copy(tmp, in)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmpName, 0o644)
	}
	if err != nil {
		os.Remove(tmpName)
		return "", 0, err
	}
	return tmpName, n, nil
}

// fileState is what a snapshot remembers about one file.
type fileState struct {
	size    int64
	modTime time.Time
}

// dirSnapshot maps the regular files of a directory to their state.
type dirSnapshot map[string]fileState

// snapshotDir records the regular files directly in dir. A missing dir
// gives an empty snapshot.
func snapshotDir(dir string) (dirSnapshot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return dirSnapshot{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	snap := make(dirSnapshot, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		snap[e.Name()] = fileState{size: fi.Size(), modTime: fi.ModTime()}
	}
	return snap, nil
}

// unchanged reports whether fi matches the recorded state of its name.
// A nil snapshot treats every file as new.
func (s dirSnapshot) unchanged(fi os.FileInfo) bool {
	st, ok := s[fi.Name()]
	return ok && st.size == fi.Size() && st.modTime.Equal(fi.ModTime())
}

// linkFile hard-links src at dst, replacing dst. It falls back to copyFile
// when linking is impossible (e.g. across filesystems); linked reports
// which happened.
func linkFile(src, dst string) (linked bool, n int64, err error) {
	fi, err := os.Stat(src)
	if err != nil {
		return false, 0, err
	}
	tmp := filepath.Join(filepath.Dir(dst), tempPrefix+filepath.Base(dst))
	os.Remove(tmp)
	if err := os.Link(src, tmp); err == nil {
		if err := os.Rename(tmp, dst); err != nil {
			os.Remove(tmp)
			return false, 0, fmt.Errorf("link %s to %s: %w", src, dst, err)
		}
		// rename is a no-op when dst is already this inode.
		os.Remove(tmp)
		return true, fi.Size(), nil
	}
	n, err = copyFile(src, dst)
	return false, n, err
}
