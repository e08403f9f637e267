package events

import "time"

// BuildFinish is emitted once after an engine build pass completes.
type BuildFinish struct {
	Diagnostics int
	Errors      int
	Err         error
	Duration    time.Duration
}
