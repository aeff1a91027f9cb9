package api

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// Options carries optional knobs for Register.
type Options struct {
	// StreamInterval is the refresh period of the SSE endpoint.
	StreamInterval time.Duration
}

// Register wires up all API routes on the provided Echo instance. The recorder
// may be nil, in which case Idempotency-Key headers are accepted but replays
// are not detected.
func Register(e *echo.Echo, store TaskStore, auth Authenticator, recorder IdempotencyRecorder, logger *log.Logger, opts Options) {
	interval := opts.StreamInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}

	e.POST("/api/tasks", createTask(store, auth, recorder, logger))
	e.GET("/api/tasks", listTasks(store, auth, logger))
	e.GET("/api/tasks/export", exportTasks(store, auth))
	e.GET("/api/tasks/:id", getTask(store, auth))
	e.POST("/api/tasks/:id/done", markTaskDone(store, auth, logger))
	e.DELETE("/api/tasks/:id", deleteTask(store, auth, logger))
	e.GET("/api/stream", streamTasks(store, auth, interval))
	e.GET("/healthz", healthz())
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

// taskID parses the :id route param. Malformed or out-of-range values behave
// like any other absent id; the store never sees them.
func taskID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func createTask(store TaskStore, auth Authenticator, recorder IdempotencyRecorder, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newTaskRequestMetrics(ctx, logger, "/api/tasks", "create")
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authStart := time.Now()
		userID, authErr := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = c.String(http.StatusUnauthorized, authErr.Error())
			return err
		}

		lr := io.LimitReader(c.Request().Body, createTaskMaxSize)
		dec := sonic.ConfigStd.NewDecoder(lr)
		dec.DisallowUnknownFields()

		var req createTaskRequest
		if decodeErr := dec.Decode(&req); decodeErr != nil {
			metrics.SetErrorStage("decode_request")
			err = c.String(http.StatusBadRequest, "invalid body")
			return err
		}

		key := c.Request().Header.Get("Idempotency-Key")
		if key == "" {
			key = uuid.NewString()
		}

		if recorder != nil {
			if id, seen, lookupErr := recorder.Lookup(ctx, userID, key); lookupErr != nil {
				// Replay detection is best effort; creation must stay total.
				logger.WithFields(log.Fields{"user": userID, "key": key}).Warnf("idempotency lookup failed: %v", lookupErr)
			} else if seen {
				metrics.SetReplayed(true)
				err = c.JSON(http.StatusOK, createTaskResponse{ID: id, IdempotencyKey: key, Replayed: true})
				return err
			}
		}

		storeStart := time.Now()
		id := store.Create(req.Title)
		metrics.ObserveStore(time.Since(storeStart))

		if recorder != nil {
			if recordErr := recorder.Record(ctx, userID, key, id); recordErr != nil {
				logger.WithFields(log.Fields{"user": userID, "key": key, "id": id}).Warnf("idempotency record failed: %v", recordErr)
			}
		}

		err = c.JSON(http.StatusCreated, createTaskResponse{ID: id, IdempotencyKey: key})
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func listTasks(store TaskStore, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newTaskRequestMetrics(ctx, logger, "/api/tasks", "list")
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		authStart := time.Now()
		_, authErr := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		metrics.ObserveAuth(time.Since(authStart))
		if authErr != nil {
			metrics.SetErrorStage("auth")
			err = c.String(http.StatusUnauthorized, authErr.Error())
			return err
		}

		storeStart := time.Now()
		tasks := store.List()
		metrics.ObserveStore(time.Since(storeStart))
		metrics.SetTasksReturned(len(tasks))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, tasksResponse{Tasks: tasks})
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func getTask(store TaskStore, auth Authenticator) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		id, ok := taskID(c)
		if !ok {
			return c.NoContent(http.StatusNotFound)
		}
		task, found := store.Get(id)
		if !found {
			return c.NoContent(http.StatusNotFound)
		}
		return c.JSON(http.StatusOK, task)
	}
}

func markTaskDone(store TaskStore, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		id, ok := taskID(c)
		if !ok {
			return c.NoContent(http.StatusNotFound)
		}
		if !store.MarkDone(id) {
			return c.NoContent(http.StatusNotFound)
		}
		logger.WithFields(log.Fields{"user": userID, "id": id}).Debug("task marked done")
		return c.JSON(http.StatusOK, markDoneResponse{ID: id, Done: true})
	}
}

func deleteTask(store TaskStore, auth Authenticator, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := auth.UserIDFromAuthHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		id, ok := taskID(c)
		if !ok {
			return c.NoContent(http.StatusNotFound)
		}
		removed, found := store.Delete(id)
		if !found {
			return c.NoContent(http.StatusNotFound)
		}
		logger.WithFields(log.Fields{"user": userID, "id": id}).Debug("task deleted")
		return c.JSON(http.StatusOK, removed)
	}
}
