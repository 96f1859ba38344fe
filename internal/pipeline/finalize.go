package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/moby/patternmatcher"

	"github.com/backmassage/multinight/internal/logging"
	"github.com/backmassage/multinight/internal/naming"
	"github.com/backmassage/multinight/internal/workdir"
)

// selectArtifacts returns the files at the top of dir selected by patterns
// (dockerignore syntax, "!" excludes), sorted by name. Files whose size and
// modification time still match before were not written by the stack and are
// skipped. The run's own bookkeeping files are never selected.
func selectArtifacts(dir string, patterns []string, before dirSnapshot) ([]string, error) {
	pm, err := patternmatcher.New(patterns)
	if err != nil {
		return nil, fmt.Errorf("result patterns: %w", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		name := e.Name()
		if !e.Type().IsRegular() || isBookkeeping(name) {
			continue
		}
		ok, err := pm.MatchesOrParentMatches(name)
		if err != nil {
			return nil, fmt.Errorf("match %s: %w", name, err)
		}
		if !ok {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		if before.unchanged(fi) {
			continue
		}
		out = append(out, name)
	}
	return out, nil
}

func isBookkeeping(name string) bool {
	return name == naming.ConversionFileName || name == engineLogName || strings.HasPrefix(name, tempPrefix)
}

type stagedArtifact struct {
	tmp, dst string
	size     int64
}

// finalize delivers the artifacts the stack produced into outputDir. Every
// artifact is copied to a temp file first and the temps are renamed only
// once all copies succeeded, so a failed delivery leaves no partial set.
func finalize(
	log *logging.Logger,
	shared workdir.ProcessDirectory,
	before dirSnapshot,
	outputDir string,
	patterns []string,
	stats *RunStats,
) error {
	names, err := selectArtifacts(shared.Root, patterns, before)
	if err != nil {
		return &OutputCopyError{Path: shared.Root, Err: err}
	}
	if len(names) == 0 {
		return &OutputCopyError{
			Path: shared.Root,
			Err:  fmt.Errorf("%w %v", ErrNoArtifacts, patterns),
		}
	}

	for _, name := range names {
		dst := filepath.Join(outputDir, name)
		if fi, err := os.Lstat(dst); err == nil && fi.IsDir() {
			return &OutputCopyError{Path: dst, Err: errors.New("destination is a directory")}
		}
	}

	staged := make([]stagedArtifact, 0, len(names))
	discard := func(from int) {
		for _, a := range staged[from:] {
			os.Remove(a.tmp)
		}
	}
	for _, name := range names {
		src := shared.Path(name)
		tmp, n, err := copyToTemp(src, outputDir)
		if err != nil {
			discard(0)
			return &OutputCopyError{Path: src, Err: err}
		}
		staged = append(staged, stagedArtifact{tmp: tmp, dst: filepath.Join(outputDir, name), size: n})
	}

	for i, a := range staged {
		if err := os.Rename(a.tmp, a.dst); err != nil {
			discard(i)
			return &OutputCopyError{Path: a.dst, Err: err}
		}
		stats.Artifacts = append(stats.Artifacts, a.dst)
		stats.ArtifactBytes += a.size
		log.Info("  -> %s", a.dst)
	}
	return nil
}
