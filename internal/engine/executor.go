package engine

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/backmassage/multinight/internal/config"
)

const (
	tailBytes = 64 << 10
	tailLines = 20
)

// Request describes one scripted engine run.
type Request struct {
	Script  string
	WorkDir string
	Env     []string  // Extra KEY=value pairs on top of the current environment.
	Output  io.Writer // Receives stdout and stderr; may be nil.
}

// Result holds the outcome of a single engine invocation.
type Result struct {
	ExitCode int
	Duration time.Duration
	Tail     []string // Last lines of combined output.
	Err      error    // *ExecutionError unless the run succeeded.
}

// Success reports whether the engine exited with code 0.
func (r Result) Success() bool { return r.Err == nil }

// Runner launches the engine executable.
type Runner struct {
	Engine string
	Args   []string // Extra arguments placed before -d/-s.

	// Live, when set, also receives the engine's output as it is produced.
	Live io.Writer
}

// NewRunner builds a Runner from cfg. In verbose mode engine output is
// streamed to stderr as well as the stage log.
func NewRunner(cfg *config.Config) (*Runner, error) {
	args, err := ParseArgs(cfg.EngineArgs)
	if err != nil {
		return nil, err
	}
	r := &Runner{Engine: cfg.Engine, Args: args}
	if cfg.Verbose {
		r.Live = os.Stderr
	}
	return r, nil
}

// Run executes the engine and blocks until it exits.
func (r *Runner) Run(ctx context.Context, req Request) Result {
	args := Build(r.Engine, r.Args, req.Script, req.WorkDir)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = req.WorkDir
	cmd.Env = append(os.Environ(), req.Env...)

	tail := newTailBuffer(tailBytes)
	writers := []io.Writer{tail}
	if req.Output != nil {
		writers = append(writers, req.Output)
	}
	if r.Live != nil {
		writers = append(writers, r.Live)
	}
	// One writer value for both streams so exec copies them on one goroutine.
	out := io.MultiWriter(writers...)
	cmd.Stdout = out
	cmd.Stderr = out

	start := time.Now()
	err := cmd.Run()
	res := Result{
		ExitCode: 0,
		Duration: time.Since(start),
		Tail:     tail.Lines(tailLines),
	}
	if err == nil {
		return res
	}

	res.ExitCode = -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	}
	res.Err = &ExecutionError{
		ExitCode: res.ExitCode,
		Script:   req.Script,
		WorkDir:  req.WorkDir,
		Err:      err,
	}
	return res
}
