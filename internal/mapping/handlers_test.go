package mapping

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"superPayroll/internal/model"
)

var txHash = common.HexToHash("0x00000000000000000000000000000000000000000000000000000000000000aa")

func flow(rate int64, ts uint64) FlowUpdated {
	return FlowUpdated{
		Sender:    alice,
		Receiver:  bob,
		Token:     tokenX,
		FlowRate:  big.NewInt(rate),
		Timestamp: ts,
		TxHash:    txHash,
	}
}

func TestGetOrInitStreamRevisionDoesNotPersist(t *testing.T) {
	st := newFakeStore()

	rev, err := GetOrInitStreamRevision(context.Background(), st, alice, bob, tokenX)
	require.NoError(t, err)
	assert.Equal(t, StreamRevisionID(alice, bob, tokenX), rev.ID)
	assert.Zero(t, rev.RevisionIndex)
	assert.Zero(t, rev.PeriodRevisionIndex)
	assert.Empty(t, rev.MostRecentStream)
	assert.Empty(t, st.revisions)
}

func TestGetOrInitStreamRevisionReturnsStored(t *testing.T) {
	st := newFakeStore()
	id := StreamRevisionID(alice, bob, tokenX)
	st.revisions[id] = model.StreamRevision{ID: id, RevisionIndex: 3, MostRecentStream: "s"}

	rev, err := GetOrInitStreamRevision(context.Background(), st, alice, bob, tokenX)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), rev.RevisionIndex)
	assert.Equal(t, "s", rev.MostRecentStream)
}

func TestFlowUpdatedScenarios(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	streamID := StreamID(alice, bob, tokenX, 0)
	revisionID := StreamRevisionID(alice, bob, tokenX)

	// A: first flow creates the stream and its revision.
	require.NoError(t, HandleFlowUpdated(ctx, st, flow(1000, 100)))
	require.Len(t, st.streams, 1)
	require.Len(t, st.revisions, 1)

	stream := st.streams[streamID]
	assert.Equal(t, model.StreamCreated, stream.Status)
	assert.Equal(t, "1000", stream.FlowRate)
	assert.Equal(t, uint64(100), stream.CreatedAt)
	assert.Equal(t, uint64(100), stream.UpdatedAt)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", stream.Sender)
	assert.Equal(t, "0x2222222222222222222222222222222222222222", stream.Receiver)
	assert.Equal(t, EmployeeID(bob), stream.To)
	assert.Equal(t, "0x3333333333333333333333333333333333333333", stream.Token)
	assert.Equal(t, txHash.Hex(), stream.TxHash)

	rev := st.revisions[revisionID]
	assert.Zero(t, rev.RevisionIndex)
	assert.Equal(t, streamID, rev.MostRecentStream)

	// B: same stream record updated, createdAt kept.
	require.NoError(t, HandleFlowUpdated(ctx, st, flow(500, 200)))
	require.Len(t, st.streams, 1)
	stream = st.streams[streamID]
	assert.Equal(t, model.StreamUpdated, stream.Status)
	assert.Equal(t, "500", stream.FlowRate)
	assert.Equal(t, uint64(100), stream.CreatedAt)
	assert.Equal(t, uint64(200), stream.UpdatedAt)

	// C: zero rate terminates.
	require.NoError(t, HandleFlowUpdated(ctx, st, flow(0, 300)))
	require.Len(t, st.streams, 1)
	stream = st.streams[streamID]
	assert.Equal(t, model.StreamTerminated, stream.Status)
	assert.Equal(t, "0", stream.FlowRate)
	assert.Equal(t, uint64(300), stream.UpdatedAt)
	assert.Equal(t, uint64(100), stream.CreatedAt)
	assert.Zero(t, st.revisions[revisionID].RevisionIndex)
}

func TestFlowUpdatedCompatResurrectsTerminatedStream(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	streamID := StreamID(alice, bob, tokenX, 0)

	require.NoError(t, HandleFlowUpdated(ctx, st, flow(1000, 100)))
	require.NoError(t, HandleFlowUpdated(ctx, st, flow(0, 200)))
	require.NoError(t, HandleFlowUpdated(ctx, st, flow(700, 300)))

	require.Len(t, st.streams, 1)
	stream := st.streams[streamID]
	assert.Equal(t, model.StreamUpdated, stream.Status)
	assert.Equal(t, "700", stream.FlowRate)
	assert.Equal(t, uint64(100), stream.CreatedAt)
}

func TestFlowUpdatedFirstEventWithZeroRateIsCreated(t *testing.T) {
	st := newFakeStore()
	require.NoError(t, HandleFlowUpdated(context.Background(), st, flow(0, 10)))

	stream := st.streams[StreamID(alice, bob, tokenX, 0)]
	assert.Equal(t, model.StreamCreated, stream.Status)
	assert.Equal(t, "0", stream.FlowRate)
}

func TestFlowUpdatedNegativeRateIsUpdate(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	require.NoError(t, HandleFlowUpdated(ctx, st, flow(10, 1)))
	require.NoError(t, HandleFlowUpdated(ctx, st, flow(-10, 2)))

	stream := st.streams[StreamID(alice, bob, tokenX, 0)]
	assert.Equal(t, model.StreamUpdated, stream.Status)
	assert.Equal(t, "-10", stream.FlowRate)
}

func TestFlowUpdatedSeparatesTokens(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	require.NoError(t, HandleFlowUpdated(ctx, st, flow(10, 1)))

	other := flow(20, 2)
	other.Token = tokenY
	require.NoError(t, HandleFlowUpdated(ctx, st, other))

	assert.Len(t, st.streams, 2)
	assert.Len(t, st.revisions, 2)
	assert.Equal(t, "20", st.streams[StreamID(alice, bob, tokenY, 0)].FlowRate)
}

func TestFlowUpdatedWrapsStoreErrors(t *testing.T) {
	boom := errors.New("boom")

	st := newFakeStore()
	st.loadErr = boom
	err := HandleFlowUpdated(context.Background(), st, flow(1, 1))
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "load stream revision")

	st = newFakeStore()
	st.saveErr = boom
	err = HandleFlowUpdated(context.Background(), st, flow(1, 1))
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "save stream revision")
}

func TestEmployeeAddedThenDeleted(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()

	added := EmployeeAdded{
		Name:           "Bob",
		Age:            30,
		ContactAddress: "bob@example.com",
		Country:        "DE",
		Addr:           bob,
		Employer:       alice,
		Timestamp:      50,
	}
	require.NoError(t, HandleEmployeeAdded(ctx, st, added))
	created := st.employees[EmployeeID(bob)]
	assert.Equal(t, model.EmployeeActive, created.Status)
	assert.Equal(t, uint64(50), created.UpdatedAt)

	require.NoError(t, HandleEmployeeDeleted(ctx, st, EmployeeDeleted{Addr: bob, Timestamp: 60}))
	require.Len(t, st.employees, 1)

	deleted := st.employees[EmployeeID(bob)]
	assert.Equal(t, model.EmployeeTerminated, deleted.Status)
	assert.Equal(t, uint64(60), deleted.UpdatedAt)

	deleted.Status = created.Status
	deleted.UpdatedAt = created.UpdatedAt
	assert.Equal(t, created, deleted)
}

func TestEmployeeAddedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()
	ev := EmployeeAdded{Name: "Bob", Age: 30, Addr: bob, Employer: alice, Timestamp: 50}

	require.NoError(t, HandleEmployeeAdded(ctx, st, ev))
	first := st.employees[EmployeeID(bob)]
	require.NoError(t, HandleEmployeeAdded(ctx, st, ev))

	require.Len(t, st.employees, 1)
	assert.Equal(t, first, st.employees[EmployeeID(bob)])
}

func TestEmployeeAddedReactivates(t *testing.T) {
	ctx := context.Background()
	st := newFakeStore()

	require.NoError(t, HandleEmployeeAdded(ctx, st, EmployeeAdded{Name: "Bob", Addr: bob, Employer: alice, Timestamp: 1}))
	require.NoError(t, HandleEmployeeDeleted(ctx, st, EmployeeDeleted{Addr: bob, Timestamp: 2}))
	require.NoError(t, HandleEmployeeAdded(ctx, st, EmployeeAdded{Name: "Robert", Addr: bob, Employer: carol, Timestamp: 3}))

	employee := st.employees[EmployeeID(bob)]
	assert.Equal(t, model.EmployeeActive, employee.Status)
	assert.Equal(t, "Robert", employee.Name)
	assert.Equal(t, EmployeeID(carol), employee.Employer)
	assert.Equal(t, uint64(3), employee.UpdatedAt)
}

func TestEmployeeDeletedUnknownIsNoop(t *testing.T) {
	st := newFakeStore()
	require.NoError(t, HandleEmployeeDeleted(context.Background(), st, EmployeeDeleted{Addr: carol, Timestamp: 9}))
	assert.Empty(t, st.employees)
}
