package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/backmassage/multinight/internal/config"
	"github.com/backmassage/multinight/internal/display"
	"github.com/backmassage/multinight/internal/engine"
	"github.com/backmassage/multinight/internal/logging"
	"github.com/backmassage/multinight/internal/naming"
	"github.com/backmassage/multinight/internal/session"
	"github.com/backmassage/multinight/internal/workdir"
)

// engineLogName is the per-directory file receiving engine output.
const engineLogName = "engine.log"

// EngineRunner runs one scripted engine invocation. *engine.Runner
// satisfies it.
type EngineRunner interface {
	Run(ctx context.Context, req engine.Request) engine.Result
}

// runPlan is everything Discover resolves up front.
type runPlan struct {
	sessions        []session.Session
	outputDir       string // absolute
	calibrateScript string // absolute
	stackScript     string // absolute
}

// Run executes a whole multi-night job. On failure the returned error is a
// *StageError and stats reflect the work completed before it.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, runner EngineRunner) (RunStats, error) {
	start := time.Now()
	stats := newRunStats()

	// --- Discover ---
	p, err := discover(cfg)
	if err != nil {
		return stats, &StageError{Stage: StageDiscover, Err: err}
	}
	stats.Sessions = len(p.sessions)
	stats.Durations[StageDiscover] = time.Since(start)
	logRunHeader(cfg, log, p)

	if cfg.DryRun {
		logDryRun(cfg, log, p)
		logSummary(cfg, log, &stats)
		return stats, nil
	}

	m := naming.NewMatcher(cfg.SeqName, cfg.FrameExtensions)

	// --- Calibrate ---
	t := time.Now()
	var all []naming.SequenceFile
	for _, s := range p.sessions {
		files, err := calibrateSession(ctx, cfg, log, runner, p, s, m)
		if err != nil {
			return stats, &StageError{Stage: StageCalibrate, Session: &s, Err: err}
		}
		stats.addSession(len(files))
		all = append(all, files...)
	}
	stats.Durations[StageCalibrate] = time.Since(t)

	// --- Aggregate ---
	t = time.Now()
	log.Info("Merging %d frames from %d sessions", len(all), len(p.sessions))
	shared, err := workdir.Prepare(p.outputDir, cfg.ProcessDirName, workdir.PurposeStacking, cfg.ReusePolicy)
	if err != nil {
		return stats, &StageError{Stage: StageAggregate, Err: err}
	}
	if err := aggregate(cfg, log, shared, all, m, &stats); err != nil {
		return stats, &StageError{Stage: StageAggregate, Err: err}
	}
	log.Success("Merged into %s", shared.Root)
	stats.Durations[StageAggregate] = time.Since(t)

	// --- Stack ---
	t = time.Now()
	log.Info("Stacking merged sessions in %s", shared.Root)
	env := []string{
		"MULTINIGHT_STAGE=" + string(StageStack),
		"MULTINIGHT_WORK_DIR=" + shared.Root,
	}
	before, err := snapshotDir(shared.Root)
	if err != nil {
		return stats, &StageError{Stage: StageStack, Err: err}
	}
	if err := runEngine(ctx, log, runner, StageStack, p.stackScript, shared, env); err != nil {
		return stats, &StageError{Stage: StageStack, Err: err}
	}
	stats.Durations[StageStack] = time.Since(t)

	// --- Finalize ---
	t = time.Now()
	log.Info("Collecting stacked results")
	if err := finalize(log, shared, before, p.outputDir, cfg.ResultPatterns, &stats); err != nil {
		return stats, &StageError{Stage: StageFinalize, Err: err}
	}
	stats.Durations[StageFinalize] = time.Since(t)

	stats.Elapsed = time.Since(start)
	logSummary(cfg, log, &stats)
	return stats, nil
}

// discover validates sessions, output and scripts before anything is
// created or run.
func discover(cfg *config.Config) (*runPlan, error) {
	sessions, err := session.Discover(cfg.Sessions)
	if err != nil {
		return nil, err
	}
	out, err := absPath(cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("output directory: %w", err)
	}
	if err := cfg.ValidatePaths(session.Paths(sessions), out); err != nil {
		return nil, err
	}
	if fi, err := os.Stat(out); err == nil && !fi.IsDir() {
		return nil, fmt.Errorf("output %s exists and is not a directory", out)
	}

	p := &runPlan{sessions: sessions, outputDir: out}
	for _, s := range []struct {
		label string
		in    string
		dst   *string
	}{
		{"calibration script", cfg.CalibrateScript, &p.calibrateScript},
		{"stacking script", cfg.StackScript, &p.stackScript},
	} {
		abs, err := absPath(s.in)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.label, err)
		}
		fi, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.label, err)
		}
		if !fi.Mode().IsRegular() {
			return nil, fmt.Errorf("%s %s is not a regular file", s.label, abs)
		}
		*s.dst = abs
	}
	return p, nil
}

func absPath(p string) (string, error) {
	expanded, err := config.ExpandPath(p)
	if err != nil {
		return "", err
	}
	return filepath.Abs(expanded)
}

// calibrateSession prepares the night's process directory, runs the
// calibration script in it and remaps the resulting sequence.
func calibrateSession(
	ctx context.Context,
	cfg *config.Config,
	log *logging.Logger,
	runner EngineRunner,
	p *runPlan,
	s session.Session,
	m naming.Matcher,
) ([]naming.SequenceFile, error) {
	log.Info("[%d/%d] Calibrating %s", s.Index+1, len(p.sessions), s.Path)

	pd, err := workdir.Prepare(s.Path, cfg.ProcessDirName, workdir.PurposeCalibration, cfg.ReusePolicy)
	if err != nil {
		return nil, err
	}
	if pd.Existed {
		log.Debug("Reusing existing %s", pd.Root)
	}

	env := []string{
		"MULTINIGHT_STAGE=" + string(StageCalibrate),
		"MULTINIGHT_WORK_DIR=" + pd.Root,
		"MULTINIGHT_SESSION_DIR=" + s.Path,
		"MULTINIGHT_SESSION_INDEX=" + strconv.Itoa(s.Index),
	}
	if err := runEngine(ctx, log, runner, StageCalibrate, p.calibrateScript, pd, env); err != nil {
		return nil, err
	}

	files, err := naming.Remap(pd.Root, s.Index, m)
	if err != nil {
		return nil, err
	}
	left, err := naming.Leftovers(pd.Root, s.Index, m, files)
	if err != nil {
		return nil, err
	}
	if len(left) > 0 {
		log.Warn("%d frame(s) in %s are from an earlier run and will not be merged", len(left), pd.Root)
		for _, name := range left {
			log.Debug("  leftover: %s", name)
		}
	}
	log.Success("%d frames remapped as %s", len(files), naming.RemappedName(m.Prefix, s.Index, "*", ""))
	return files, nil
}

// runEngine runs script in dir, appending engine output to dir/engine.log.
func runEngine(
	ctx context.Context,
	log *logging.Logger,
	runner EngineRunner,
	stage Stage,
	script string,
	dir workdir.ProcessDirectory,
	env []string,
) error {
	logPath := dir.Path(engineLogName)
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open engine log: %w", err)
	}
	defer f.Close()
	fmt.Fprintf(f, "=== %s %s: %s\n", time.Now().Format("2006-01-02 15:04:05"), stage, script)

	log.Debug("Engine script %s in %s", filepath.Base(script), dir.Root)
	res := runner.Run(ctx, engine.Request{
		Script:  script,
		WorkDir: dir.Root,
		Env:     env,
		Output:  f,
	})
	if !res.Success() {
		log.Error("Engine failed after %s (exit code %d, full output in %s)",
			display.FormatDuration(res.Duration), res.ExitCode, logPath)
		logTail(log, res.Tail)
		return res.Err
	}
	log.Debug("Engine finished in %s", display.FormatDuration(res.Duration))
	return nil
}

func logTail(log *logging.Logger, tail []string) {
	if len(tail) == 0 {
		return
	}
	log.Error("Last engine output:")
	for _, l := range tail {
		log.Error("  %s", l)
	}
}

// --- Logging helpers ---

func logRunHeader(cfg *config.Config, log *logging.Logger, p *runPlan) {
	log.Info("Found %d sessions", len(p.sessions))
	for _, s := range p.sessions {
		log.Info("  %d: %s", s.Index+1, s.Path)
	}
	log.Info("Output: %s", p.outputDir)
	log.Info("Sequence: %s (%s)", cfg.SeqName, strings.Join(cfg.FrameExtensions, " "))

	mode := "copy"
	if cfg.Link {
		mode = "hard-link"
	}
	scheme := "per-session ordinal"
	if cfg.Renumber {
		scheme = "contiguous renumbering"
	}
	log.Info("Merge: %s, %s", mode, scheme)
	log.Debug("Process directory: %s, reuse policy: %s", cfg.ProcessDirName, cfg.ReusePolicy)
}

func logDryRun(cfg *config.Config, log *logging.Logger, p *runPlan) {
	for _, s := range p.sessions {
		log.Info("[DRY] %s: run %s in %s", s, filepath.Base(p.calibrateScript), s.ProcessDir(cfg.ProcessDirName))
		log.Info("[DRY]   remap %s_<frame> -> %s", cfg.SeqName, naming.RemappedName(cfg.SeqName, s.Index, "<frame>", ""))
	}
	shared := filepath.Join(p.outputDir, cfg.ProcessDirName)
	log.Info("[DRY] merge into %s", shared)
	log.Info("[DRY] run %s in %s", filepath.Base(p.stackScript), shared)
	log.Success("[DRY] would copy results matching %v to %s", cfg.ResultPatterns, p.outputDir)
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Summary report:")
	log.Info("  Sessions: %d", stats.Sessions)

	if cfg.DryRun {
		log.Info("  Nothing processed (dry run)")
		return
	}

	for i, n := range stats.FramesPerSession {
		log.Info("  Session %d: %d frames", i+1, n)
	}
	log.Info("  Total frames: %d", stats.TotalFrames)
	for _, st := range Stages {
		if d, ok := stats.Durations[st]; ok {
			log.Info("  %-9s %s", st+":", display.FormatDuration(d))
		}
	}
	log.Info("  Total time: %s", display.FormatDuration(stats.Elapsed))
	log.Success("  Results: %d file(s), %s", len(stats.Artifacts), display.FormatBytes(stats.ArtifactBytes))
}
