package api

import (
	"context"

	"tasks-api/domain"
)

// TaskStore abstracts the tracker for handlers. All five operations are total:
// a missing id is reported through the return values, never as an error.
type TaskStore interface {
	Create(title string) uint64
	Get(id uint64) (domain.Task, bool)
	List() []domain.Task
	MarkDone(id uint64) bool
	Delete(id uint64) (domain.Task, bool)
}

// Authenticator is implemented by types able to extract user IDs from headers.
type Authenticator interface {
	UserIDFromAuthHeader(string) (string, error)
}

// IdempotencyRecorder remembers which idempotency keys already produced a task
// and the id each one was assigned, so a replayed create can answer with the
// original id instead of allocating a duplicate.
type IdempotencyRecorder interface {
	// Lookup returns the id recorded for the key, if any.
	Lookup(ctx context.Context, userID, key string) (uint64, bool, error)
	// Record stores the id assigned to the key.
	Record(ctx context.Context, userID, key string, id uint64) error
}
