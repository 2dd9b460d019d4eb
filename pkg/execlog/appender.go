package execlog

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// Appender - интерфейс для записи entries
type Appender interface {
	// Append - записать entry
	Append(ctx context.Context, entry *Entry) error

	// Close - закрыть appender
	Close() error
}

// Flusher is implemented by appenders that buffer.
type Flusher interface {
	Flush() error
}

// MultiAppender - запись в несколько appenders
type MultiAppender struct {
	appenders []Appender
}

// NewMultiAppender - создать multi appender
func NewMultiAppender(appenders ...Appender) *MultiAppender {
	return &MultiAppender{
		appenders: appenders,
	}
}

// Append - записать во все appenders, продолжая после ошибок
func (ma *MultiAppender) Append(ctx context.Context, entry *Entry) error {
	var firstErr error

	for _, appender := range ma.appenders {
		if err := appender.Append(ctx, entry); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Close - закрыть все appenders
func (ma *MultiAppender) Close() error {
	var firstErr error

	for _, appender := range ma.appenders {
		if err := appender.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Add - добавить appender
func (ma *MultiAppender) Add(appender Appender) {
	ma.appenders = append(ma.appenders, appender)
}

// ConsoleAppender - запись в stdout (или другой writer)
type ConsoleAppender struct {
	mu         sync.Mutex
	out        io.Writer
	level      Level
	formatJSON bool
}

// NewConsoleAppender - создать console appender
func NewConsoleAppender(level Level, formatJSON bool) *ConsoleAppender {
	return NewWriterAppender(os.Stdout, level, formatJSON)
}

// NewWriterAppender writes entries to w, one per line.
func NewWriterAppender(w io.Writer, level Level, formatJSON bool) *ConsoleAppender {
	return &ConsoleAppender{
		out:        w,
		level:      level,
		formatJSON: formatJSON,
	}
}

// Append - записать в writer
func (ca *ConsoleAppender) Append(_ context.Context, entry *Entry) error {
	filtered := entry.FilterByLevel(ca.level)

	var line string
	if ca.formatJSON {
		data, err := filtered.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}
		line = string(data)
	} else {
		line = filtered.String()
	}

	ca.mu.Lock()
	defer ca.mu.Unlock()
	_, err := fmt.Fprintln(ca.out, line)
	return err
}

// Close - noop
func (ca *ConsoleAppender) Close() error {
	return nil
}

// MemoryAppender keeps entries in memory, newest last.
type MemoryAppender struct {
	mu      sync.Mutex
	entries []*Entry
}

// NewMemoryAppender - создать memory appender
func NewMemoryAppender() *MemoryAppender {
	return &MemoryAppender{}
}

// Append stores a copy of entry.
func (ma *MemoryAppender) Append(_ context.Context, entry *Entry) error {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	ma.entries = append(ma.entries, entry.Clone())
	return nil
}

// Entries returns the stored entries.
func (ma *MemoryAppender) Entries() []*Entry {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	out := make([]*Entry, len(ma.entries))
	copy(out, ma.entries)
	return out
}

// Reset drops all stored entries.
func (ma *MemoryAppender) Reset() {
	ma.mu.Lock()
	defer ma.mu.Unlock()
	ma.entries = nil
}

// Close - noop
func (ma *MemoryAppender) Close() error {
	return nil
}

// NullAppender - пустой appender
type NullAppender struct{}

// NewNullAppender - создать null appender
func NewNullAppender() *NullAppender {
	return &NullAppender{}
}

// Append - ничего не делает
func (NullAppender) Append(context.Context, *Entry) error { return nil }

// Close - ничего не делает
func (NullAppender) Close() error { return nil }
