package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"superPayroll/internal/model"
)

type memoryState struct {
	Employees map[string]model.Employee       `json:"employees"`
	Streams   map[string]model.Stream         `json:"streams"`
	Revisions map[string]model.StreamRevision `json:"stream_revisions"`
	Cursors   map[string]model.Cursor         `json:"cursors"`
	UpdatedAt string                          `json:"updated_at,omitempty"`
}

func newMemoryState() memoryState {
	return memoryState{
		Employees: make(map[string]model.Employee),
		Streams:   make(map[string]model.Stream),
		Revisions: make(map[string]model.StreamRevision),
		Cursors:   make(map[string]model.Cursor),
	}
}

// MemoryStore keeps records in memory, optionally snapshotting them to a JSON file.
type MemoryStore struct {
	mu    sync.RWMutex
	state memoryState
	path  string
}

// NewMemoryStore returns an empty store without a snapshot file.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemoryState()}
}

// OpenMemoryStore loads the snapshot at path if it exists. Flush writes it back.
func OpenMemoryStore(path string) (*MemoryStore, error) {
	s := &MemoryStore{state: newMemoryState(), path: path}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	loaded := newMemoryState()
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	s.state.merge(loaded)
	return s, nil
}

// Flush writes the snapshot file, if one is configured.
func (s *MemoryStore) Flush() error {
	if s.path == "" {
		return nil
	}

	s.mu.RLock()
	snapshot := s.state
	snapshot.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	data, err := json.Marshal(snapshot)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot tmp: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// WithTx runs fn against a write buffer and merges it into the store when fn succeeds.
// Transactions are serialized.
func (s *MemoryStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memoryTx{base: &s.state, pending: newMemoryState()}
	if err := fn(tx); err != nil {
		return err
	}
	s.state.merge(tx.pending)
	return nil
}

func (st *memoryState) merge(other memoryState) {
	for k, v := range other.Employees {
		st.Employees[k] = v
	}
	for k, v := range other.Streams {
		st.Streams[k] = v
	}
	for k, v := range other.Revisions {
		st.Revisions[k] = v
	}
	for k, v := range other.Cursors {
		st.Cursors[k] = v
	}
}

func (s *MemoryStore) GetEmployee(ctx context.Context, id string) (model.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	employee, ok := s.state.Employees[normalizeValue(Field{Kind: KindHex}, id)]
	if !ok {
		return model.Employee{}, ErrNotFound
	}
	return employee, nil
}

func (s *MemoryStore) ListEmployees(ctx context.Context, q Query) ([]model.Employee, error) {
	q, err := q.Normalize(EmployeeEntity)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	all := make([]employeeRecord, 0, len(s.state.Employees))
	for _, e := range s.state.Employees {
		all = append(all, employeeRecord(e))
	}
	s.mu.RUnlock()

	selected := selectRecords(EmployeeEntity, all, q)
	out := make([]model.Employee, 0, len(selected))
	for _, r := range selected {
		out = append(out, model.Employee(r))
	}
	return out, nil
}

func (s *MemoryStore) GetStream(ctx context.Context, id string) (model.Stream, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stream, ok := s.state.Streams[normalizeValue(Field{Kind: KindHex}, id)]
	if !ok {
		return model.Stream{}, ErrNotFound
	}
	return stream, nil
}

func (s *MemoryStore) ListStreams(ctx context.Context, q Query) ([]model.Stream, error) {
	q, err := q.Normalize(StreamEntity)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	all := make([]streamRecord, 0, len(s.state.Streams))
	for _, st := range s.state.Streams {
		all = append(all, streamRecord(st))
	}
	s.mu.RUnlock()

	selected := selectRecords(StreamEntity, all, q)
	out := make([]model.Stream, 0, len(selected))
	for _, r := range selected {
		out = append(out, model.Stream(r))
	}
	return out, nil
}

// memoryTx reads through its pending writes to the committed state.
type memoryTx struct {
	base    *memoryState
	pending memoryState
}

func (t *memoryTx) LoadEmployee(ctx context.Context, id string) (model.Employee, bool, error) {
	if v, ok := t.pending.Employees[id]; ok {
		return v, true, nil
	}
	v, ok := t.base.Employees[id]
	return v, ok, nil
}

func (t *memoryTx) SaveEmployee(ctx context.Context, employee model.Employee) error {
	t.pending.Employees[employee.ID] = employee
	return nil
}

func (t *memoryTx) LoadStream(ctx context.Context, id string) (model.Stream, bool, error) {
	if v, ok := t.pending.Streams[id]; ok {
		return v, true, nil
	}
	v, ok := t.base.Streams[id]
	return v, ok, nil
}

func (t *memoryTx) SaveStream(ctx context.Context, stream model.Stream) error {
	t.pending.Streams[stream.ID] = stream
	return nil
}

func (t *memoryTx) LoadStreamRevision(ctx context.Context, id string) (model.StreamRevision, bool, error) {
	if v, ok := t.pending.Revisions[id]; ok {
		return v, true, nil
	}
	v, ok := t.base.Revisions[id]
	return v, ok, nil
}

func (t *memoryTx) SaveStreamRevision(ctx context.Context, revision model.StreamRevision) error {
	t.pending.Revisions[revision.ID] = revision
	return nil
}

func (t *memoryTx) LoadCursor(ctx context.Context, name string) (model.Cursor, bool, error) {
	if v, ok := t.pending.Cursors[name]; ok {
		return v, true, nil
	}
	v, ok := t.base.Cursors[name]
	return v, ok, nil
}

func (t *memoryTx) SaveCursor(ctx context.Context, name string, cursor model.Cursor) error {
	t.pending.Cursors[name] = cursor
	return nil
}
