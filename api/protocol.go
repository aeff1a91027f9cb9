package api

import "tasks-api/domain"

const createTaskMaxSize = 64 * 1024 // 64 KiB

// POST /api/tasks request body
type createTaskRequest struct {
	Title string `json:"title"`
}

// POST /api/tasks response body
type createTaskResponse struct {
	ID             uint64 `json:"id"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
	Replayed       bool   `json:"replayed,omitempty"`
}

// GET /api/tasks and /api/stream payload
type tasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

// markDoneResponse confirms the terminal done transition.
type markDoneResponse struct {
	ID   uint64 `json:"id"`
	Done bool   `json:"done"`
}
