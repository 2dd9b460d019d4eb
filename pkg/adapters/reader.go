package adapters

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// Reader - однонаправленный курсор по результату команды.
// It keeps the command's session busy until Close is called.
type Reader struct {
	*sqlx.Rows

	cancel  context.CancelFunc
	onClose func() error
	closed  bool
}

// NewReader wraps rows. cancel releases the command context; onClose runs last.
func NewReader(rows *sqlx.Rows, cancel context.CancelFunc, onClose func() error) *Reader {
	return &Reader{
		Rows:    rows,
		cancel:  cancel,
		onClose: onClose,
	}
}

// Close releases the rows, the command context and, for procedure readers,
// the owning session. Calling Close twice is a no-op.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	err := r.Rows.Close()
	if r.cancel != nil {
		r.cancel()
	}
	if r.onClose != nil {
		if cerr := r.onClose(); err == nil {
			err = cerr
		}
	}
	return err
}

// IsClosed reports whether Close has been called.
func (r *Reader) IsClosed() bool {
	return r.closed
}
