package pipeline

import "time"

// RunStats tracks what a run processed and how long each stage took.
type RunStats struct {
	Sessions         int
	FramesPerSession []int
	TotalFrames      int
	Linked           int // Frames hard-linked rather than copied.
	Stale            int // Sequence files in the shared directory not from this run.
	Artifacts        []string
	ArtifactBytes    int64
	Durations        map[Stage]time.Duration
	Elapsed          time.Duration
}

func newRunStats() RunStats {
	return RunStats{Durations: make(map[Stage]time.Duration)}
}

// addSession records the frame count of the next calibrated session.
func (s *RunStats) addSession(frames int) {
	s.FramesPerSession = append(s.FramesPerSession, frames)
	s.TotalFrames += frames
}
