package domain

import (
	"strings"
	"testing"

	"github.com/bytedance/sonic"
)

func TestTaskMarshalIncludesDoneWhenFalse(t *testing.T) {
	task := Task{ID: 1, Title: "Buy milk"}

	payload, err := sonic.Marshal(task)
	if err != nil {
		t.Fatalf("marshal task: %v", err)
	}

	if !strings.Contains(string(payload), "\"done\":false") {
		t.Fatalf("expected done field to be present, got %s", payload)
	}
	if !strings.Contains(string(payload), "\"id\":1") {
		t.Fatalf("expected numeric id, got %s", payload)
	}
}
