package events

import (
	"time"

	"github.com/hanpama/typegraph/internal/strategy"
)

// ResolveStart is emitted before resolving an abstract-type value.
type ResolveStart struct {
	OpID         int64
	AbstractType string
}

// ResolveFinish is emitted after resolving an abstract-type value.
type ResolveFinish struct {
	OpID         int64
	AbstractType string
	Variant      string
	Strategy     strategy.Strategy
	Err          error
	Duration     time.Duration
}

// TypeMismatch is emitted when the consistency checker observed another
// strategy disagreeing with the accepted resolution.
type TypeMismatch struct {
	OpID         int64
	AbstractType string
	Resolved     string
	Conflicting  string
	Strategy     strategy.Strategy
}
