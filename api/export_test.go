package api

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"tasks-api/domain"
)

func exportFixture() []domain.Task {
	return []domain.Task{
		{ID: 1, Title: "Buy milk", Done: true},
		{ID: 2, Title: "Walk dog"},
	}
}

func TestRenderTasksCSV(t *testing.T) {
	data, contentType, err := renderTasks(exportFixture(), "csv")
	if err != nil {
		t.Fatalf("render csv: %v", err)
	}
	if contentType != "text/csv" {
		t.Fatalf("unexpected content type %s", contentType)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two rows, got %d lines", len(lines))
	}
	if lines[0] != "id,title,done" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != "1,Buy milk,true" {
		t.Fatalf("unexpected first row %q", lines[1])
	}
}

func TestRenderTasksJSON(t *testing.T) {
	data, contentType, err := renderTasks(exportFixture(), "json")
	if err != nil {
		t.Fatalf("render json: %v", err)
	}
	if contentType != "application/json" {
		t.Fatalf("unexpected content type %s", contentType)
	}
	if !strings.Contains(string(data), "\"title\": \"Buy milk\"") {
		t.Fatalf("unexpected json payload: %s", data)
	}
}

func TestRenderTasksPDF(t *testing.T) {
	data, contentType, err := renderTasks(exportFixture(), "pdf")
	if err != nil {
		t.Fatalf("render pdf: %v", err)
	}
	if contentType != "application/pdf" {
		t.Fatalf("unexpected content type %s", contentType)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("payload does not look like a pdf")
	}
}

func TestRenderTasksUnknownFormat(t *testing.T) {
	if _, _, err := renderTasks(exportFixture(), "xml"); err == nil {
		t.Fatalf("expected unknown format error")
	}
}

func TestExportTasksHandler(t *testing.T) {
	e, g := newTestServer(t, allowAuth{}, nil)
	g.Create("Buy milk")

	rec := doJSON(e, http.MethodGet, "/api/tasks/export?format=csv", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Buy milk") {
		t.Fatalf("export missing task title: %s", rec.Body.String())
	}
}

func TestExportTasksHandlerBadFormat(t *testing.T) {
	e, _ := newTestServer(t, allowAuth{}, nil)

	rec := doJSON(e, http.MethodGet, "/api/tasks/export?format=xml", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", rec.Code)
	}
}
