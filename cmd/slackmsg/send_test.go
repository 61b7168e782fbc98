package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"slackmsg/internal/config"
	"slackmsg/internal/domain"
	"slackmsg/internal/journal"
	"slackmsg/internal/message"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// attachmentsOf attaches ins to a fresh message and returns the result.
func attachmentsOf(t *testing.T, ins []message.AttachmentInput) []domain.Attachment {
	t.Helper()
	m := message.New(nil)
	if err := m.SetAttachments(ins...); err != nil {
		t.Fatalf("SetAttachments: %v", err)
	}
	return m.Attachments()
}

func TestParseAttachmentDocument_Single(t *testing.T) {
	doc := `
color: danger
title: Disk usage
text: "/var is at 91%"
fields:
  - title: host
    value: db1
    short: true
ts: 1700000000
`
	ins, err := parseAttachmentDocument([]byte(doc), "a.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []domain.Attachment{{
		Color:     "danger",
		Title:     "Disk usage",
		Text:      "/var is at 91%",
		Fields:    []domain.AttachmentField{{Title: "host", Value: "db1", Short: true}},
		Timestamp: 1700000000,
	}}
	if diff := cmp.Diff(want, attachmentsOf(t, ins)); diff != "" {
		t.Errorf("attachments mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAttachmentDocument_ListAndJSON(t *testing.T) {
	ins, err := parseAttachmentDocument([]byte(`[{"text":"one"},{"title":"two"}]`), "a.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := attachmentsOf(t, ins)
	if len(got) != 2 || got[0].Text != "one" || got[1].Title != "two" {
		t.Errorf("unexpected attachments: %+v", got)
	}
}

func TestParseAttachmentDocument_Invalid(t *testing.T) {
	tests := map[string]string{
		"scalar":      "just text",
		"empty":       "",
		"scalar item": "- text: ok\n- 42\n",
		"bad yaml":    "text: [unclosed",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := parseAttachmentDocument([]byte(doc), "a.yaml"); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseAttachmentDocument_ScalarIsInvalidInput(t *testing.T) {
	_, err := parseAttachmentDocument([]byte("just text"), "a.yaml")
	if !errors.Is(err, message.ErrInvalidAttachmentInput) {
		t.Errorf("expected ErrInvalidAttachmentInput, got %v", err)
	}
}

func dryRunConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Journal.Enabled = false
	cfg.Defaults = config.DefaultsConfig{Channel: "#general", Username: "bot", Icon: ":robot_face:"}
	return cfg
}

func decodePayload(t *testing.T, out *bytes.Buffer) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(out.Bytes(), &body); err != nil {
		t.Fatalf("dry run output is not JSON: %v\n%s", err, out.String())
	}
	return body
}

func TestRunSend_DryRunUsesDefaults(t *testing.T) {
	var out bytes.Buffer
	if err := runSend(context.Background(), dryRunConfig(), sendOptions{DryRun: true}, "hello", &out); err != nil {
		t.Fatalf("runSend: %v", err)
	}
	body := decodePayload(t, &out)
	if body["text"] != "hello" || body["channel"] != "#general" || body["username"] != "bot" || body["icon_emoji"] != ":robot_face:" {
		t.Errorf("unexpected payload: %v", body)
	}
}

func TestRunSend_FlagsOverrideDefaults(t *testing.T) {
	path := writeFile(t, "att.yaml", "- text: first\n- text: second\n  color: danger\n")
	opts := sendOptions{
		Channel:     "#ops",
		Username:    "ci",
		Icon:        "https://example.com/ci.png",
		Attachments: []string{path},
		Color:       "good",
		DryRun:      true,
	}

	var out bytes.Buffer
	if err := runSend(context.Background(), dryRunConfig(), opts, "", &out); err != nil {
		t.Fatalf("runSend: %v", err)
	}
	body := decodePayload(t, &out)
	if body["channel"] != "#ops" || body["username"] != "ci" || body["icon_url"] != "https://example.com/ci.png" {
		t.Errorf("unexpected payload: %v", body)
	}
	if _, ok := body["icon_emoji"]; ok {
		t.Error("icon_emoji should be gone after a URL icon override")
	}
	atts, _ := body["attachments"].([]any)
	if len(atts) != 2 {
		t.Fatalf("expected 2 attachments, got %v", body["attachments"])
	}
	colors := []any{atts[0].(map[string]any)["color"], atts[1].(map[string]any)["color"]}
	if diff := cmp.Diff([]any{"good", "danger"}, colors); diff != "" {
		t.Errorf("colors mismatch (-want +got):\n%s", diff)
	}
}

func TestRunSend_NothingToSend(t *testing.T) {
	err := runSend(context.Background(), dryRunConfig(), sendOptions{DryRun: true}, "", &bytes.Buffer{})
	if !errors.Is(err, errNothingToSend) {
		t.Errorf("expected errNothingToSend, got %v", err)
	}
}

func TestRunSend_BadAttachmentFileSendsNothing(t *testing.T) {
	path := writeFile(t, "att.yaml", "colour: good\n")
	var out bytes.Buffer
	err := runSend(context.Background(), dryRunConfig(), sendOptions{Attachments: []string{path}, DryRun: true}, "hi", &out)
	if err == nil {
		t.Fatal("expected error for unknown attachment key")
	}
	if out.Len() != 0 {
		t.Errorf("nothing should be written, got %s", out.String())
	}
}

func TestRunSend_JournalsSlackDelivery(t *testing.T) {
	status := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer srv.Close()

	cfg := config.Defaults()
	cfg.Slack.WebhookURL = srv.URL
	cfg.Journal.DBPath = filepath.Join(t.TempDir(), "journal.db")

	if err := runSend(context.Background(), cfg, sendOptions{Channel: "#ops"}, "first", &bytes.Buffer{}); err != nil {
		t.Fatalf("runSend: %v", err)
	}
	status = http.StatusInternalServerError
	if err := runSend(context.Background(), cfg, sendOptions{Channel: "#ops"}, "second", &bytes.Buffer{}); err == nil {
		t.Fatal("expected error from failing webhook")
	}

	store, err := journal.Open(cfg.Journal.DBPath, logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()
	counts, err := store.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts[journal.StatusSent] != 1 || counts[journal.StatusFailed] != 1 {
		t.Errorf("expected 1 sent and 1 failed, got %v", counts)
	}
}

func TestReadText(t *testing.T) {
	got, err := readText(strings.NewReader("line one\nline two\n\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got != "line one\nline two" {
		t.Errorf("unexpected text %q", got)
	}
}
