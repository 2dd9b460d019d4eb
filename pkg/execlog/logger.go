package execlog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrClosed is returned by Log once the logger has been closed.
var ErrClosed = errors.New("exec logger is closed")

// Logger receives one Entry per executed command.
type Logger interface {
	Log(ctx context.Context, entry *Entry) error
	Flush() error
	Close() error
}

// ErrorReporter is implemented by loggers that accept failures nobody else
// will see, such as a log write dropped by Measure.
type ErrorReporter interface {
	ReportError(err error)
}

// LoggerConfig - конфигурация логгера
type LoggerConfig struct {
	// AsyncMode hands entries to a background writer.
	AsyncMode bool

	// BufferSize is the queue length in async mode, 1000 when unset.
	BufferSize int

	// FlushInterval flushes buffering appenders periodically (0 = off).
	FlushInterval time.Duration

	// OnError receives write failures that have no caller to return to.
	OnError func(error)
}

// DefaultConfig - асинхронная конфигурация по умолчанию
func DefaultConfig() LoggerConfig {
	return LoggerConfig{
		AsyncMode:  true,
		BufferSize: 1000,
	}
}

// SyncConfig - конфигурация для синхронного режима
func SyncConfig() LoggerConfig {
	return LoggerConfig{}
}

// ExecLogger fans entries out to its appenders, either inline or through a
// bounded queue drained by one goroutine. A full queue falls back to an
// inline write so no entry is dropped.
type ExecLogger struct {
	config LoggerConfig

	appendersMu sync.RWMutex
	appenders   []Appender

	// stateMu is held for reading by every Log call and for writing by Close,
	// so an entry is either accepted before shutdown or refused with ErrClosed.
	stateMu sync.RWMutex
	closed  bool
	queue   chan *Entry
	stop    chan struct{}
	workers sync.WaitGroup
}

// NewLogger - создать новый logger
func NewLogger(config LoggerConfig, appenders ...Appender) *ExecLogger {
	if config.BufferSize <= 0 {
		config.BufferSize = 1000
	}

	l := &ExecLogger{
		config:    config,
		appenders: appenders,
		stop:      make(chan struct{}),
	}

	if config.AsyncMode {
		l.queue = make(chan *Entry, config.BufferSize)
		l.workers.Add(1)
		go l.drain()
	}

	if config.FlushInterval > 0 {
		l.workers.Add(1)
		go l.flushEvery(config.FlushInterval)
	}

	return l
}

// Log records entry. In sync mode appender failures are returned joined;
// in async mode they go to OnError.
func (l *ExecLogger) Log(ctx context.Context, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("entry is nil")
	}

	l.stateMu.RLock()
	defer l.stateMu.RUnlock()

	if l.closed {
		return ErrClosed
	}

	if l.queue != nil {
		select {
		case l.queue <- entry:
			return nil
		default:
		}
	}

	return l.write(ctx, entry)
}

// ReportError passes err to OnError.
func (l *ExecLogger) ReportError(err error) {
	if err != nil && l.config.OnError != nil {
		l.config.OnError(err)
	}
}

func (l *ExecLogger) snapshot() []Appender {
	l.appendersMu.RLock()
	defer l.appendersMu.RUnlock()
	return l.appenders
}

// write hands entry to every appender; one failing appender does not stop
// the others.
func (l *ExecLogger) write(ctx context.Context, entry *Entry) error {
	var errs []error
	for _, a := range l.snapshot() {
		if err := a.Append(ctx, entry); err != nil {
			errs = append(errs, fmt.Errorf("appender failed: %w", err))
		}
	}
	return errors.Join(errs...)
}

// drain runs until Close closes the queue, so everything accepted is written.
func (l *ExecLogger) drain() {
	defer l.workers.Done()

	for entry := range l.queue {
		l.ReportError(l.write(context.Background(), entry))
	}
}

func (l *ExecLogger) flushEvery(interval time.Duration) {
	defer l.workers.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.ReportError(l.Flush())
		case <-l.stop:
			return
		}
	}
}

// Flush - сбросить буферы всех appenders
func (l *ExecLogger) Flush() error {
	var errs []error
	for _, a := range l.snapshot() {
		if f, ok := a.(Flusher); ok {
			if err := f.Flush(); err != nil {
				errs = append(errs, fmt.Errorf("flush failed: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close refuses further entries, waits for the queue to drain, then flushes
// and closes every appender. Closing twice is a no-op.
func (l *ExecLogger) Close() error {
	l.stateMu.Lock()
	if l.closed {
		l.stateMu.Unlock()
		return nil
	}
	l.closed = true
	if l.queue != nil {
		close(l.queue)
	}
	close(l.stop)
	l.stateMu.Unlock()

	l.workers.Wait()

	errs := []error{l.Flush()}
	for _, a := range l.snapshot() {
		if err := a.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close failed: %w", err))
		}
	}
	return errors.Join(errs...)
}

// AddAppender - добавить appender
func (l *ExecLogger) AddAppender(appender Appender) {
	l.appendersMu.Lock()
	defer l.appendersMu.Unlock()

	l.appenders = append(l.appenders[:len(l.appenders):len(l.appenders)], appender)
}

// RemoveAppender - удалить appender
func (l *ExecLogger) RemoveAppender(appender Appender) {
	l.appendersMu.Lock()
	defer l.appendersMu.Unlock()

	for i, a := range l.appenders {
		if a == appender {
			l.appenders = append(l.appenders[:i:i], l.appenders[i+1:]...)
			return
		}
	}
}

// NullLogger - пустой logger
type NullLogger struct{}

// NewNullLogger - создать null logger
func NewNullLogger() *NullLogger {
	return &NullLogger{}
}

// Log - ничего не делает
func (NullLogger) Log(context.Context, *Entry) error { return nil }

// Flush - ничего не делает
func (NullLogger) Flush() error { return nil }

// Close - ничего не делает
func (NullLogger) Close() error { return nil }
