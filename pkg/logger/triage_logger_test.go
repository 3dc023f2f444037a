package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

func TestPackageLevelHelpers(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: LevelDebug, Output: &buf, Service: "test"})
	Default().output = &buf

	id := uuid.New()
	WithTicket(id).Info("queued for review")

	line := strings.TrimSpace(buf.String())
	var entry LogEntry
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry.TicketID != id.String() {
		t.Errorf("ticket_id = %q, want %s", entry.TicketID, id)
	}
	if entry.Level != "INFO" {
		t.Errorf("level = %q, want INFO", entry.Level)
	}
	if entry.Message != "queued for review" {
		t.Errorf("message = %q", entry.Message)
	}

	buf.Reset()
	WithField("stage", "draft").Warn("slow template render")
	var second LogEntry
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &second); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if second.Fields["stage"] != "draft" {
		t.Errorf("fields = %v, want stage=draft", second.Fields)
	}
}
