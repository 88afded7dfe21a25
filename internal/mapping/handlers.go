package mapping

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"superPayroll/internal/model"
)

// HandleEmployeeAdded writes the employee as ACTIVE, replacing any earlier record.
func HandleEmployeeAdded(ctx context.Context, st Store, ev EmployeeAdded) error {
	employee := model.Employee{
		ID:             EmployeeID(ev.Addr),
		Name:           ev.Name,
		Age:            ev.Age,
		ContactAddress: ev.ContactAddress,
		Country:        ev.Country,
		Addr:           hexAddress(ev.Addr),
		Employer:       hexAddress(ev.Employer),
		Status:         model.EmployeeActive,
		UpdatedAt:      ev.Timestamp,
	}
	if err := st.SaveEmployee(ctx, employee); err != nil {
		return fmt.Errorf("save employee %s: %w", employee.ID, err)
	}
	return nil
}

// HandleEmployeeDeleted flips a known employee to TERMINATED.
// Unknown addresses are ignored.
func HandleEmployeeDeleted(ctx context.Context, st Store, ev EmployeeDeleted) error {
	id := EmployeeID(ev.Addr)
	employee, found, err := st.LoadEmployee(ctx, id)
	if err != nil {
		return fmt.Errorf("load employee %s: %w", id, err)
	}
	if !found {
		return nil
	}

	employee.Status = model.EmployeeTerminated
	employee.UpdatedAt = ev.Timestamp
	if err := st.SaveEmployee(ctx, employee); err != nil {
		return fmt.Errorf("save employee %s: %w", id, err)
	}
	return nil
}

// HandleFlowUpdated applies a flow update with the compat revision policy.
func HandleFlowUpdated(ctx context.Context, st Store, ev FlowUpdated) error {
	_, err := handleFlowUpdated(ctx, st, ev, RevisionCompat)
	return err
}

func handleFlowUpdated(ctx context.Context, st Store, ev FlowUpdated, policy RevisionPolicy) (model.Stream, error) {
	revision, err := GetOrInitStreamRevision(ctx, st, ev.Sender, ev.Receiver, ev.Token)
	if err != nil {
		return model.Stream{}, err
	}

	streamID := StreamID(ev.Sender, ev.Receiver, ev.Token, revision.RevisionIndex)
	revision.MostRecentStream = streamID
	if err := st.SaveStreamRevision(ctx, revision); err != nil {
		return model.Stream{}, fmt.Errorf("save stream revision %s: %w", revision.ID, err)
	}

	stream, found, err := st.LoadStream(ctx, streamID)
	if err != nil {
		return model.Stream{}, fmt.Errorf("load stream %s: %w", streamID, err)
	}

	flowRate := ev.FlowRate
	if flowRate == nil {
		flowRate = new(big.Int)
	}

	terminated := false
	if !found {
		stream = model.Stream{
			ID:        streamID,
			Sender:    hexAddress(ev.Sender),
			Receiver:  hexAddress(ev.Receiver),
			To:        EmployeeID(ev.Receiver),
			Token:     hexAddress(ev.Token),
			Status:    model.StreamCreated,
			CreatedAt: ev.Timestamp,
			TxHash:    hexutil.Encode(ev.TxHash.Bytes()),
		}
	} else {
		status := FlowStatus(flowRate)
		terminated = status == model.StreamTerminated && stream.Status != model.StreamTerminated
		stream.Status = status
	}
	stream.FlowRate = flowRate.String()
	stream.UpdatedAt = ev.Timestamp

	if err := st.SaveStream(ctx, stream); err != nil {
		return model.Stream{}, fmt.Errorf("save stream %s: %w", streamID, err)
	}

	if terminated && policy == RevisionAdvanceOnTerminate {
		revision.RevisionIndex++
		if err := st.SaveStreamRevision(ctx, revision); err != nil {
			return model.Stream{}, fmt.Errorf("advance stream revision %s: %w", revision.ID, err)
		}
	}

	return stream, nil
}
