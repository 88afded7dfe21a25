package mapping

import (
	"context"

	"superPayroll/internal/model"
)

type fakeStore struct {
	employees map[string]model.Employee
	streams   map[string]model.Stream
	revisions map[string]model.StreamRevision

	loadErr error
	saveErr error

	saveEmployeeHook func()
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		employees: make(map[string]model.Employee),
		streams:   make(map[string]model.Stream),
		revisions: make(map[string]model.StreamRevision),
	}
}

func (s *fakeStore) LoadEmployee(_ context.Context, id string) (model.Employee, bool, error) {
	if s.loadErr != nil {
		return model.Employee{}, false, s.loadErr
	}
	e, ok := s.employees[id]
	return e, ok, nil
}

func (s *fakeStore) SaveEmployee(_ context.Context, e model.Employee) error {
	if s.saveEmployeeHook != nil {
		s.saveEmployeeHook()
	}
	if s.saveErr != nil {
		return s.saveErr
	}
	s.employees[e.ID] = e
	return nil
}

func (s *fakeStore) LoadStream(_ context.Context, id string) (model.Stream, bool, error) {
	if s.loadErr != nil {
		return model.Stream{}, false, s.loadErr
	}
	st, ok := s.streams[id]
	return st, ok, nil
}

func (s *fakeStore) SaveStream(_ context.Context, st model.Stream) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.streams[st.ID] = st
	return nil
}

func (s *fakeStore) LoadStreamRevision(_ context.Context, id string) (model.StreamRevision, bool, error) {
	if s.loadErr != nil {
		return model.StreamRevision{}, false, s.loadErr
	}
	r, ok := s.revisions[id]
	return r, ok, nil
}

func (s *fakeStore) SaveStreamRevision(_ context.Context, r model.StreamRevision) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.revisions[r.ID] = r
	return nil
}
