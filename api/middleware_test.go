package api

import (
	"bytes"
	"compress/gzip"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"

	"tasks-api/store"
)

func TestGzipRequestMiddlewareDecompressesBody(t *testing.T) {
	logger, _ := test.NewNullLogger()
	e := echo.New()
	e.Use(GzipRequestMiddleware())
	g := store.NewGuard(nil)
	Register(e, g, allowAuth{}, nil, logger, Options{})

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(`{"title":"compressed"}`)); err != nil {
		t.Fatalf("write gzip body: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close gzip writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderContentEncoding, "gzip")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var resp createTaskResponse
	if err := sonic.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	task, ok := g.Get(resp.ID)
	if !ok || task.Title != "compressed" {
		t.Fatalf("unexpected stored task %+v (ok=%v)", task, ok)
	}
}

func TestGzipRequestMiddlewareRejectsInvalidPayload(t *testing.T) {
	logger, _ := test.NewNullLogger()
	e := echo.New()
	e.Use(GzipRequestMiddleware())
	Register(e, store.NewGuard(nil), allowAuth{}, nil, logger, Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader("not gzip"))
	req.Header.Set(echo.HeaderContentEncoding, "gzip")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}

func TestHasGzipEncoding(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{header: "", want: false},
		{header: "gzip", want: true},
		{header: "GZIP", want: true},
		{header: "br, gzip", want: true},
		{header: "deflate", want: false},
	}
	for _, tt := range tests {
		if got := hasGzipEncoding(tt.header); got != tt.want {
			t.Fatalf("hasGzipEncoding(%q) = %v, want %v", tt.header, got, tt.want)
		}
	}
}
