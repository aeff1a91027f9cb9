// Package store owns the task collection: an insertion-ordered sequence plus a
// monotonically increasing id counter. Every operation is total; a missing id
// is reported through the return values, never as an error.
package store

import "tasks-api/domain"

// Store is the single owner of all task records. It is not safe for concurrent
// use; hosts with more than one caller wrap it in a Guard.
type Store struct {
	tasks  []domain.Task
	nextID uint64
}

// New returns an empty store. The first created task receives id 1.
func New() *Store {
	return &Store{nextID: 1}
}

// Create appends a new pending task and returns its id. Titles are stored
// verbatim, the empty string included. Ids advance by one per call and are
// never reissued, even after a delete.
func (s *Store) Create(title string) uint64 {
	id := s.nextID
	s.nextID++
	s.tasks = append(s.tasks, domain.Task{ID: id, Title: title})
	return id
}

// Get returns the task with the given id, or false when no such task exists.
// The returned value is a copy; mutating it does not touch the store.
func (s *Store) Get(id uint64) (domain.Task, bool) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}

// List returns all tasks in insertion order. The slice is a fresh copy so
// callers cannot reorder or rewrite the store's internal sequence.
func (s *Store) List() []domain.Task {
	out := make([]domain.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// MarkDone flips the task's done flag to true and reports whether the id was
// found. Marking an already-done task is a no-op success.
func (s *Store) MarkDone(id uint64) bool {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Done = true
			return true
		}
	}
	return false
}

// Delete removes the task with the given id, preserving the relative order of
// the remaining tasks, and returns the removed record. The id counter is
// unaffected; deleted ids are never reused.
func (s *Store) Delete(id uint64) (domain.Task, bool) {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			removed := s.tasks[i]
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return removed, true
		}
	}
	return domain.Task{}, false
}

// Len reports the current number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}
