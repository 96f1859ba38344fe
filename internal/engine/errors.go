package engine

import "fmt"

// ExecutionError reports an engine run that did not exit cleanly.
// ExitCode is -1 when the process could not be started or was killed.
type ExecutionError struct {
	ExitCode int
	Script   string
	WorkDir  string
	Err      error
}

func (e *ExecutionError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("engine did not run script %s in %s: %v", e.Script, e.WorkDir, e.Err)
	}
	return fmt.Sprintf("engine exited with code %d running script %s in %s", e.ExitCode, e.Script, e.WorkDir)
}

func (e *ExecutionError) Unwrap() error { return e.Err }
