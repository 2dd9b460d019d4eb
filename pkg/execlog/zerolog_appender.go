package execlog

import (
	"context"

	"github.com/rs/zerolog"
)

// ZerologAppender writes entries as zerolog events: Info on success,
// Error on failure.
type ZerologAppender struct {
	logger zerolog.Logger
	level  Level
}

// NewZerologAppender - создать zerolog appender
func NewZerologAppender(logger zerolog.Logger, level Level) *ZerologAppender {
	return &ZerologAppender{logger: logger, level: level}
}

// Append - записать entry
func (za *ZerologAppender) Append(_ context.Context, entry *Entry) error {
	e := entry.FilterByLevel(za.level)

	ev := za.logger.Info()
	if e.Status == StatusFailure {
		ev = za.logger.Error().Str("error", e.ErrorMessage)
	}

	ev = ev.
		Str("id", e.ID).
		Str("database", e.Database).
		Str("operation", string(e.Operation)).
		Str("statement_hash", e.StatementHash).
		Str("statement", e.Statement).
		Dur("duration", e.Duration)
	if e.Counted {
		ev = ev.Str("count", e.Count)
	}
	if len(e.Parameters) > 0 {
		ev = ev.Interface("parameters", e.Parameters)
	}

	ev.Msg("sql " + string(e.Status))
	return nil
}

// Close - noop
func (za *ZerologAppender) Close() error {
	return nil
}
