package pipeline

import (
	"fmt"
	"os"

	"github.com/backmassage/multinight/internal/config"
	"github.com/backmassage/multinight/internal/logging"
	"github.com/backmassage/multinight/internal/naming"
	"github.com/backmassage/multinight/internal/workdir"
)

// aggregate places every remapped frame into the shared process directory,
// writes the conversion map, and reports leftover sequence files.
func aggregate(
	cfg *config.Config,
	log *logging.Logger,
	shared workdir.ProcessDirectory,
	files []naming.SequenceFile,
	m naming.Matcher,
	stats *RunStats,
) error {
	targets := naming.Keep(files)
	if cfg.Renumber {
		targets = naming.Renumber(files, m)
	}

	// Claim every name before touching the disk.
	guard := naming.NewGuard()
	for _, t := range targets {
		if err := guard.Claim(t.Source.Path, t.Name); err != nil {
			return err
		}
	}

	conversions := make([]naming.Conversion, 0, len(targets))
	for _, t := range targets {
		dst := shared.Path(t.Name)
		if cfg.Link {
			linked, _, err := linkFile(t.Source.Path, dst)
			if err != nil {
				return err
			}
			if linked {
				stats.Linked++
			}
		} else if _, err := copyFile(t.Source.Path, dst); err != nil {
			return err
		}
		conversions = append(conversions, naming.Conversion{From: t.Source.Original, To: dst})
	}
	if cfg.Link && stats.Linked < len(targets) {
		log.Warn("Hard-linking not possible for %d frame(s), copied instead", len(targets)-stats.Linked)
	}

	path, err := naming.WriteConversionFile(shared.Root, conversions)
	if err != nil {
		return err
	}
	log.Debug("Conversion map: %s", path)

	stale, err := staleSequenceFiles(shared.Root, m, guard)
	if err != nil {
		return err
	}
	stats.Stale = len(stale)
	if len(stale) > 0 {
		log.Warn("%d sequence file(s) in %s were not produced by this run and may be stacked too", len(stale), shared.Root)
		for _, name := range stale {
			log.Debug("  stale: %s", name)
		}
	}
	return nil
}

// staleSequenceFiles lists sequence-shaped files in dir that guard did not
// claim, i.e. leftovers from an earlier run in a reused directory.
func staleSequenceFiles(dir string, m naming.Matcher, guard *naming.Guard) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var stale []string
	for _, e := range entries {
		if !e.Type().IsRegular() || guard.Claimed(e.Name()) {
			continue
		}
		_, _, engineName := m.Match(e.Name())
		_, _, _, remapped := m.MatchRemapped(e.Name())
		if engineName || remapped {
			stale = append(stale, e.Name())
		}
	}
	return stale, nil
}
