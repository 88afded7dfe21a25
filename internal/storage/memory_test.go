package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"superPayroll/internal/model"
)

func seedStreams(t *testing.T, s *MemoryStore) {
	t.Helper()
	streams := []model.Stream{
		{ID: "s1", Sender: "0xa", Receiver: "0xb", To: "0xb", Token: "0xt", Status: model.StreamCreated, FlowRate: "1000", CreatedAt: 100},
		{ID: "s2", Sender: "0xb", Receiver: "0xa", To: "0xa", Token: "0xt", Status: model.StreamUpdated, FlowRate: "-5", CreatedAt: 300},
		{ID: "s3", Sender: "0xc", Receiver: "0xd", To: "0xd", Token: "0xt", Status: model.StreamTerminated, FlowRate: "0", CreatedAt: 200},
		{ID: "s4", Sender: "0xa", Receiver: "0xd", To: "0xd", Token: "0xt", Status: model.StreamUpdated, FlowRate: "20000000000000000000000", CreatedAt: 200},
	}
	err := s.WithTx(context.Background(), func(tx Tx) error {
		for _, st := range streams {
			if err := tx.SaveStream(context.Background(), st); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func streamIDs(streams []model.Stream) []string {
	ids := make([]string, 0, len(streams))
	for _, s := range streams {
		ids = append(ids, s.ID)
	}
	return ids
}

func TestMemoryStoreTxRollback(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx Tx) error {
		require.NoError(t, tx.SaveEmployee(ctx, model.Employee{ID: "0xa", Name: "Alice"}))

		got, found, err := tx.LoadEmployee(ctx, "0xa")
		require.NoError(t, err)
		require.True(t, found, "writes are visible inside the tx")
		assert.Equal(t, "Alice", got.Name)
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.GetEmployee(ctx, "0xa")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreTxCommit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.WithTx(ctx, func(tx Tx) error {
		if err := tx.SaveStreamRevision(ctx, model.StreamRevision{ID: "r1", MostRecentStream: "s1"}); err != nil {
			return err
		}
		return tx.SaveCursor(ctx, "mapping", model.Cursor{BlockNumber: 7, LogIndex: 2})
	})
	require.NoError(t, err)

	err = s.WithTx(ctx, func(tx Tx) error {
		rev, found, err := tx.LoadStreamRevision(ctx, "r1")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "s1", rev.MostRecentStream)

		cursor, found, err := tx.LoadCursor(ctx, "mapping")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, model.Cursor{BlockNumber: 7, LogIndex: 2}, cursor)

		_, found, err = tx.LoadCursor(ctx, "other")
		require.NoError(t, err)
		assert.False(t, found)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryStoreListStreams(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedStreams(t, s)

	where, err := ParseWhere(StreamEntity, map[string]interface{}{
		"or": []interface{}{
			map[string]interface{}{"sender": "0xA"},
			map[string]interface{}{"receiver": "0xA"},
		},
	})
	require.NoError(t, err)

	got, err := s.ListStreams(ctx, Query{Where: where, OrderBy: "createdAt", OrderDirection: "desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"s2", "s4", "s1"}, streamIDs(got))

	got, err = s.ListStreams(ctx, Query{OrderBy: "flowRate"})
	require.NoError(t, err)
	assert.Equal(t, []string{"s2", "s3", "s1", "s4"}, streamIDs(got), "flow rate sorts numerically")

	got, err = s.ListStreams(ctx, Query{Where: &Predicate{Field: "flowRate", Op: OpGt, Value: "0"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s4"}, streamIDs(got))

	got, err = s.ListStreams(ctx, Query{OrderBy: "createdAt", Skip: 1, First: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"s3", "s4"}, streamIDs(got), "ties break on id")

	got, err = s.ListStreams(ctx, Query{Skip: 10})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = s.ListStreams(ctx, Query{Where: &Predicate{Field: "status", Op: OpIn, Values: []string{"CREATED", "TERMINATED"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s3"}, streamIDs(got))

	_, err = s.ListStreams(ctx, Query{OrderBy: "bogus"})
	assert.Error(t, err)
}

func TestMemoryStoreListEmployees(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	err := s.WithTx(ctx, func(tx Tx) error {
		for _, e := range []model.Employee{
			{ID: "0x1", Name: "Carol", Employer: "0xe", Status: model.EmployeeActive, Age: 40},
			{ID: "0x2", Name: "Alice", Employer: "0xe", Status: model.EmployeeActive, Age: 25},
			{ID: "0x3", Name: "Bob", Employer: "0xe", Status: model.EmployeeTerminated, Age: 30},
			{ID: "0x4", Name: "Dave", Employer: "0xf", Status: model.EmployeeActive, Age: 50},
		} {
			if err := tx.SaveEmployee(ctx, e); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	where, err := ParseWhere(EmployeeEntity, map[string]interface{}{"employer": "0xE", "status": "ACTIVE"})
	require.NoError(t, err)

	got, err := s.ListEmployees(ctx, Query{Where: where, OrderBy: "name"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Alice", got[0].Name)
	assert.Equal(t, "Carol", got[1].Name)

	got, err = s.ListEmployees(ctx, Query{Where: &Predicate{Field: "name", Op: OpContains, Value: "a"}, OrderBy: "age", OrderDirection: "desc"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Dave", got[0].Name)
	assert.Equal(t, "Carol", got[1].Name)

	e, err := s.GetEmployee(ctx, "0x3")
	require.NoError(t, err)
	assert.Equal(t, "Bob", e.Name)
}

func TestMemoryStoreSnapshot(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "snapshot.json")

	s, err := OpenMemoryStore(path)
	require.NoError(t, err)
	seedStreams(t, s)
	require.NoError(t, s.WithTx(ctx, func(tx Tx) error {
		return tx.SaveCursor(ctx, "mapping", model.Cursor{BlockNumber: 99})
	}))
	require.NoError(t, s.Flush())

	reopened, err := OpenMemoryStore(path)
	require.NoError(t, err)

	stream, err := reopened.GetStream(ctx, "s4")
	require.NoError(t, err)
	assert.Equal(t, "20000000000000000000000", stream.FlowRate)

	require.NoError(t, reopened.WithTx(ctx, func(tx Tx) error {
		cursor, found, err := tx.LoadCursor(ctx, "mapping")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, uint64(99), cursor.BlockNumber)
		return nil
	}))
}
