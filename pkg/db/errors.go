package db

import "fmt"

// ConnectionError reports a failure to reach or check out from the backend.
// Surfaced as 503; never retried automatically.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database connection: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// StorageError reports a statement-execution failure (constraint violation,
// engine-side type error). The underlying message passes through verbatim;
// parameter values are never included.
type StorageError struct {
	Table string
	Op    string
	Err   error
}

func (e *StorageError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s on %s: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
