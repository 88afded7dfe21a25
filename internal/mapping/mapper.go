package mapping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
)

// RevisionPolicy decides what happens to the revision index when a stream terminates.
type RevisionPolicy string

const (
	// RevisionCompat never advances the revision index. A non-zero flow after
	// termination reuses the terminated stream id and marks it UPDATED.
	RevisionCompat RevisionPolicy = "compat"
	// RevisionAdvanceOnTerminate advances the revision index when a stream turns
	// TERMINATED, so the next non-zero flow starts a new stream record.
	RevisionAdvanceOnTerminate RevisionPolicy = "advance"
)

// ErrConcurrentApply is returned when Apply is entered while another call is running.
var ErrConcurrentApply = errors.New("mapping: concurrent apply")

// ParseRevisionPolicy parses a policy name; empty means compat.
func ParseRevisionPolicy(input string) (RevisionPolicy, error) {
	switch RevisionPolicy(strings.ToLower(strings.TrimSpace(input))) {
	case "", RevisionCompat:
		return RevisionCompat, nil
	case RevisionAdvanceOnTerminate:
		return RevisionAdvanceOnTerminate, nil
	default:
		return "", fmt.Errorf("unknown revision policy: %s", input)
	}
}

// Mapper applies decoded events to a Store, one at a time.
type Mapper struct {
	policy RevisionPolicy
	logger *zap.Logger
	busy   atomic.Bool
}

func NewMapper(policy RevisionPolicy, logger *zap.Logger) *Mapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == "" {
		policy = RevisionCompat
	}
	return &Mapper{policy: policy, logger: logger}
}

// Policy returns the revision policy in use.
func (m *Mapper) Policy() RevisionPolicy {
	return m.policy
}

// Apply dispatches one event to its handler. Callers must deliver events
// sequentially in chain order; overlapping calls fail with ErrConcurrentApply.
func (m *Mapper) Apply(ctx context.Context, st Store, ev Event) error {
	if !m.busy.CompareAndSwap(false, true) {
		return ErrConcurrentApply
	}
	defer m.busy.Store(false)

	switch e := ev.(type) {
	case EmployeeAdded:
		return HandleEmployeeAdded(ctx, st, e)
	case EmployeeDeleted:
		return HandleEmployeeDeleted(ctx, st, e)
	case FlowUpdated:
		stream, err := handleFlowUpdated(ctx, st, e, m.policy)
		if err != nil {
			return err
		}
		m.logger.Debug("stream updated",
			zap.String("stream", stream.ID),
			zap.String("status", string(stream.Status)),
			zap.String("flow_rate", stream.FlowRate),
		)
		return nil
	case nil:
		return fmt.Errorf("nil event")
	default:
		return fmt.Errorf("unsupported event: %s", ev.EventName())
	}
}
