package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"slackmsg/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/slack-go/slack"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// captureServer records the decoded JSON body of every request.
func captureServer(t *testing.T, status int) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var bodies []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		bodies = append(bodies, body)
		w.WriteHeader(status)
		w.Write([]byte("ok"))
	}))
	t.Cleanup(srv.Close)
	return srv, &bodies
}

func newTestSlack(t *testing.T, url string, opts SlackOptions) *Slack {
	t.Helper()
	s, err := NewSlack(SlackConfig{WebhookURL: url, Options: opts, Logger: testLogger()})
	if err != nil {
		t.Fatalf("NewSlack: %v", err)
	}
	return s
}

func TestNewSlack_RequiresURL(t *testing.T) {
	if _, err := NewSlack(SlackConfig{}); err == nil {
		t.Error("expected error for empty webhook URL")
	}
	if _, err := NewSlack(SlackConfig{WebhookURL: "not a url"}); err == nil {
		t.Error("expected error for invalid webhook URL")
	}
}

func TestSlackDispatch_EmojiIcon(t *testing.T) {
	srv, bodies := captureServer(t, http.StatusOK)
	s := newTestSlack(t, srv.URL, SlackOptions{AllowMarkdown: true})

	err := s.Dispatch(context.Background(), domain.Payload{
		Text:     "deployed",
		Channel:  "#ops",
		Username: "ci",
		Icon:     domain.ParseIcon(":rocket:"),
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if len(*bodies) != 1 {
		t.Fatalf("expected 1 request, got %d", len(*bodies))
	}
	body := (*bodies)[0]
	for key, want := range map[string]any{
		"text":       "deployed",
		"channel":    "#ops",
		"username":   "ci",
		"icon_emoji": ":rocket:",
		"mrkdwn":     true,
	} {
		if body[key] != want {
			t.Errorf("%s: expected %v, got %v", key, want, body[key])
		}
	}
	if _, ok := body["icon_url"]; ok {
		t.Errorf("icon_url should be omitted for emoji icons, got %v", body["icon_url"])
	}
	if _, ok := body["link_names"]; ok {
		t.Error("link_names should be omitted when disabled")
	}
}

func TestSlackDispatch_URLIcon(t *testing.T) {
	srv, bodies := captureServer(t, http.StatusOK)
	s := newTestSlack(t, srv.URL, SlackOptions{LinkNames: true})

	if err := s.Dispatch(context.Background(), domain.Payload{
		Text: "hi",
		Icon: domain.ParseIcon("https://example.com/bot.png"),
	}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	body := (*bodies)[0]
	if body["icon_url"] != "https://example.com/bot.png" {
		t.Errorf("expected icon_url, got %v", body["icon_url"])
	}
	if _, ok := body["icon_emoji"]; ok {
		t.Error("icon_emoji should be omitted for URL icons")
	}
	if body["link_names"] != float64(1) {
		t.Errorf("expected link_names 1, got %v", body["link_names"])
	}
}

func TestSlackDispatch_Attachments(t *testing.T) {
	srv, bodies := captureServer(t, http.StatusOK)
	s := newTestSlack(t, srv.URL, SlackOptions{MarkdownInAttachments: []string{"text"}})

	err := s.Dispatch(context.Background(), domain.Payload{
		Attachments: []domain.Attachment{
			{
				Color:     "danger",
				Text:      "disk *full*",
				Timestamp: 1700000000,
				Fields:    []domain.AttachmentField{{Title: "host", Value: "db1", Short: true}},
			},
			{Title: "runbook", MarkdownIn: []string{"pretext"}},
		},
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	raw, _ := json.Marshal((*bodies)[0]["attachments"])
	var got []slack.Attachment
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode attachments: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 attachments, got %d", len(got))
	}
	if got[0].Color != "danger" || got[0].Text != "disk *full*" {
		t.Errorf("unexpected first attachment: %+v", got[0])
	}
	if got[0].Ts != "1700000000" {
		t.Errorf("expected ts 1700000000, got %q", got[0].Ts)
	}
	if diff := cmp.Diff([]string{"text"}, got[0].MarkdownIn); diff != "" {
		t.Errorf("default mrkdwn_in mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"pretext"}, got[1].MarkdownIn); diff != "" {
		t.Errorf("explicit mrkdwn_in mismatch (-want +got):\n%s", diff)
	}
	if len(got[0].Fields) != 1 || got[0].Fields[0].Title != "host" || !got[0].Fields[0].Short {
		t.Errorf("unexpected fields: %+v", got[0].Fields)
	}
}

func TestSlackDispatch_ErrorStatus(t *testing.T) {
	srv, _ := captureServer(t, http.StatusInternalServerError)
	s := newTestSlack(t, srv.URL, SlackOptions{})

	err := s.Dispatch(context.Background(), domain.Payload{Text: "x"})
	var statusErr slack.StatusCodeError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusCodeError, got %v", err)
	}
	if statusErr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", statusErr.Code)
	}
}

func TestSlackDispatch_CancelledContext(t *testing.T) {
	srv, bodies := captureServer(t, http.StatusOK)
	s := newTestSlack(t, srv.URL, SlackOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Dispatch(ctx, domain.Payload{Text: "x"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if len(*bodies) != 0 {
		t.Errorf("expected no request, got %d", len(*bodies))
	}
}

func TestSlackDispatch_MarkdownFlag(t *testing.T) {
	tests := []struct {
		name string
		opts SlackOptions
		want bool
	}{
		{"defaults", DefaultSlackOptions(), true},
		{"zero value", SlackOptions{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, bodies := captureServer(t, http.StatusOK)
			s := newTestSlack(t, srv.URL, tt.opts)
			if err := s.Dispatch(context.Background(), domain.Payload{Text: "*bold*"}); err != nil {
				t.Fatalf("Dispatch: %v", err)
			}
			if got := (*bodies)[0]["mrkdwn"]; got != tt.want {
				t.Errorf("expected mrkdwn %v, got %v", tt.want, got)
			}
		})
	}
}
