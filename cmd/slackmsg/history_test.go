package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"slackmsg/internal/journal"
)

func TestPrintHistory(t *testing.T) {
	store, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"), logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	now := time.Now()
	ctx := context.Background()
	entries := []journal.Entry{
		{Transport: "slack", Channel: "#ops", Text: "deploy done", Attachments: 2, Status: journal.StatusSent, CreatedAt: now.Add(-2 * time.Hour)},
		{Transport: "slack", Text: "retry me", Status: journal.StatusFailed, Error: errors.New("slack server error: 500").Error(), CreatedAt: now.Add(-time.Minute)},
	}
	for _, e := range entries {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	var out bytes.Buffer
	if err := printHistory(ctx, store, 10, now, &out); err != nil {
		t.Fatalf("printHistory: %v", err)
	}
	got := out.String()
	for _, want := range []string{"2 hours ago", "1 minute ago", "deploy done (+2 attachments)", "failed: slack server error: 500", "#ops", "2 recorded, 1 sent, 1 failed"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "retry me") > strings.Index(got, "deploy done") {
		t.Error("expected newest entry first")
	}
}

func TestPrintHistory_Empty(t *testing.T) {
	store, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"), logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	var out bytes.Buffer
	if err := printHistory(context.Background(), store, 10, time.Now(), &out); err != nil {
		t.Fatalf("printHistory: %v", err)
	}
	if !strings.Contains(out.String(), "No messages sent yet.") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a much longer line of text", 10, "a much ..."},
		{"first\nsecond", 20, "first ..."},
		{"ünïcödé text here", 8, "ünïcö..."},
	}
	for _, tt := range tests {
		if got := truncateText(tt.in, tt.n); got != tt.want {
			t.Errorf("truncateText(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
