// Package pipeline runs a multi-night job end to end:
//
//	Discover → Calibrate (per session, in order) → Aggregate → Stack → Finalize
//
// Stages run strictly one after another on the calling goroutine, with at
// most one engine process alive at a time. The first failure stops the run
// and is returned as a *StageError naming the stage (and session, for
// calibration). Process directories are left on disk either way.
//
// Split: runner.go (Run, stage sequencing), stage.go (Stage, errors),
// aggregate.go, finalize.go, files.go (copy/link helpers), stats.go.
package pipeline
