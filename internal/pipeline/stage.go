package pipeline

import (
	"errors"
	"fmt"

	"github.com/backmassage/multinight/internal/session"
)

// Stage names one step of a run.
type Stage string

const (
	StageDiscover  Stage = "discover"
	StageCalibrate Stage = "calibrate"
	StageAggregate Stage = "aggregate"
	StageStack     Stage = "stack"
	StageFinalize  Stage = "finalize"
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageDiscover, StageCalibrate, StageAggregate, StageStack, StageFinalize}

// StageError wraps the failure that stopped a run. Session is set for
// calibration failures.
type StageError struct {
	Stage   Stage
	Session *session.Session
	Err     error
}

func (e *StageError) Error() string {
	if e.Session != nil {
		return fmt.Sprintf("%s failed for %s: %v", e.Stage, e.Session, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// ErrNoArtifacts is wrapped by OutputCopyError when the stacking script
// produced nothing the result patterns select.
var ErrNoArtifacts = errors.New("no stacked artifacts matched the result patterns")

// OutputCopyError reports a failure delivering final artifacts. Path is the
// artifact (or, with ErrNoArtifacts, the directory searched).
type OutputCopyError struct {
	Path string
	Err  error
}

func (e *OutputCopyError) Error() string {
	return fmt.Sprintf("deliver %s: %v", e.Path, e.Err)
}

func (e *OutputCopyError) Unwrap() error { return e.Err }
