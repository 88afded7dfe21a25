package mapping

import (
	"context"

	"superPayroll/internal/model"
)

// Store is the key-value persistence the handlers read and write.
// Load methods report a miss with found == false and a nil error.
type Store interface {
	LoadEmployee(ctx context.Context, id string) (model.Employee, bool, error)
	SaveEmployee(ctx context.Context, employee model.Employee) error
	LoadStream(ctx context.Context, id string) (model.Stream, bool, error)
	SaveStream(ctx context.Context, stream model.Stream) error
	LoadStreamRevision(ctx context.Context, id string) (model.StreamRevision, bool, error)
	SaveStreamRevision(ctx context.Context, revision model.StreamRevision) error
}
