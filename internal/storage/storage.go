package storage

import (
	"context"
	"errors"

	"superPayroll/internal/model"
)

// ErrNotFound is returned by Reader lookups for a missing record.
var ErrNotFound = errors.New("record not found")

// Storage defines a sink for raw log records.
type Storage interface {
	PutLogBatch(logs []model.LogRecord) error
}

// EntityStore loads and saves the records written by the mapping.
// Load methods report a miss with found == false and a nil error.
type EntityStore interface {
	LoadEmployee(ctx context.Context, id string) (model.Employee, bool, error)
	SaveEmployee(ctx context.Context, employee model.Employee) error
	LoadStream(ctx context.Context, id string) (model.Stream, bool, error)
	SaveStream(ctx context.Context, stream model.Stream) error
	LoadStreamRevision(ctx context.Context, id string) (model.StreamRevision, bool, error)
	SaveStreamRevision(ctx context.Context, revision model.StreamRevision) error
}

// Tx is an EntityStore scoped to one transaction, plus the named cursors
// that record how far the mapping has progressed.
type Tx interface {
	EntityStore
	LoadCursor(ctx context.Context, name string) (model.Cursor, bool, error)
	SaveCursor(ctx context.Context, name string, cursor model.Cursor) error
}

// Reader serves the read-only queries of the dashboard.
type Reader interface {
	GetEmployee(ctx context.Context, id string) (model.Employee, error)
	ListEmployees(ctx context.Context, q Query) ([]model.Employee, error)
	GetStream(ctx context.Context, id string) (model.Stream, error)
	ListStreams(ctx context.Context, q Query) ([]model.Stream, error)
}

// Store is a transactional record store. WithTx commits every write made
// through tx when fn returns nil and discards them otherwise.
type Store interface {
	Reader
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}
