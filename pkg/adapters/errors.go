package adapters

import "errors"

var (
	ErrUnknownDatabaseType   = errors.New("unknown database type")
	ErrConnectionClosed      = errors.New("connection is not open")
	ErrConnectionOpen        = errors.New("connection is already open")
	ErrTransactionActive     = errors.New("transaction already in progress")
	ErrNoTransaction         = errors.New("no transaction in progress")
	ErrProceduresUnsupported = errors.New("stored procedures are not supported by this database")
	ErrDirectionUnsupported  = errors.New("parameter direction is not supported by this database")
	ErrReturnValueMissing    = errors.New("procedure did not produce a return value")
)
