// Package logging bridges engine events to zerolog. Library packages never
// log directly; they publish events and this subscriber renders them.
package logging

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/hanpama/typegraph/internal/eventbus"
	"github.com/hanpama/typegraph/internal/events"
)

// Setup builds the process logger and applies the global level.
func Setup(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Attach subscribes the logger to engine events. The returned function
// detaches it again.
func Attach(logger zerolog.Logger) func() {
	unsubFinish := eventbus.Subscribe(func(ctx context.Context, e events.ResolveFinish) {
		if e.Err != nil {
			logger.Error().
				Int64("op_id", e.OpID).
				Str("abstract_type", e.AbstractType).
				Dur("duration", e.Duration).
				Err(e.Err).
				Msg("resolution failed")
			return
		}
		logger.Debug().
			Int64("op_id", e.OpID).
			Str("abstract_type", e.AbstractType).
			Str("variant", e.Variant).
			Str("strategy", string(e.Strategy)).
			Dur("duration", e.Duration).
			Msg("resolved")
	})

	unsubMismatch := eventbus.Subscribe(func(ctx context.Context, e events.TypeMismatch) {
		logger.Warn().
			Int64("op_id", e.OpID).
			Str("abstract_type", e.AbstractType).
			Str("resolved", e.Resolved).
			Str("conflicting", e.Conflicting).
			Str("strategy", string(e.Strategy)).
			Msg("type mismatch")
	})

	unsubBuild := eventbus.Subscribe(func(ctx context.Context, e events.BuildFinish) {
		if e.Err != nil {
			logger.Error().
				Int("diagnostics", e.Diagnostics).
				Int("errors", e.Errors).
				Dur("duration", e.Duration).
				Err(e.Err).
				Msg("build failed")
			return
		}
		logger.Info().
			Int("diagnostics", e.Diagnostics).
			Dur("duration", e.Duration).
			Msg("build completed")
	})

	return func() {
		unsubFinish()
		unsubMismatch()
		unsubBuild()
	}
}
