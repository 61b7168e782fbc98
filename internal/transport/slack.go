package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"slackmsg/internal/domain"

	"github.com/slack-go/slack"
)

// SlackOptions are workspace-wide formatting switches applied to every
// message sent through an incoming webhook. All flags are always sent, so
// the zero value turns markdown off; start from DefaultSlackOptions to get
// Slack's own defaults.
type SlackOptions struct {
	LinkNames             bool     // link @user and #channel mentions
	UnfurlLinks           bool     // expand previews of text-based content
	UnfurlMedia           bool     // expand previews of media content
	AllowMarkdown         bool     // format message text as markdown
	MarkdownInAttachments []string // attachment fields formatted as markdown, e.g. "text", "pretext"
}

// DefaultSlackOptions matches what Slack does when the flags are absent:
// markdown on, mentions and unfurling off.
func DefaultSlackOptions() SlackOptions {
	return SlackOptions{AllowMarkdown: true}
}

// SlackConfig configures the Slack incoming-webhook transport.
type SlackConfig struct {
	WebhookURL string
	Options    SlackOptions
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Slack posts messages to a Slack incoming webhook.
type Slack struct {
	webhookURL string
	opts       SlackOptions
	client     *http.Client
	logger     *slog.Logger
}

// slackPayload extends the webhook message with the formatting flags that
// incoming webhooks accept.
type slackPayload struct {
	slack.WebhookMessage
	LinkNames   int  `json:"link_names,omitempty"`
	UnfurlLinks bool `json:"unfurl_links"`
	UnfurlMedia bool `json:"unfurl_media"`
	Markdown    bool `json:"mrkdwn"`
}

// NewSlack creates a Slack webhook transport.
func NewSlack(cfg SlackConfig) (*Slack, error) {
	if cfg.WebhookURL == "" {
		return nil, errors.New("slack: webhook URL is required")
	}
	if _, err := url.ParseRequestURI(cfg.WebhookURL); err != nil {
		return nil, fmt.Errorf("slack: invalid webhook URL: %w", err)
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = SharedHTTPClient(0)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Slack{
		webhookURL: cfg.WebhookURL,
		opts:       cfg.Options,
		client:     cfg.HTTPClient,
		logger:     cfg.Logger,
	}, nil
}

func (s *Slack) Name() string { return "slack" }

// Dispatch posts p to the webhook. A non-200 answer is returned as a
// slack.StatusCodeError.
func (s *Slack) Dispatch(ctx context.Context, p domain.Payload) error {
	body, err := json.Marshal(buildSlackPayload(p, s.opts))
	if err != nil {
		return fmt.Errorf("slack: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("slack: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("slack: post webhook: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		s.logger.Debug("slack webhook rejected message",
			"status", resp.StatusCode,
			"body", string(respBody),
		)
		return slack.StatusCodeError{Code: resp.StatusCode, Status: resp.Status}
	}

	s.logger.Debug("slack message posted",
		"channel", p.Channel,
		"attachments", len(p.Attachments),
	)
	return nil
}

func buildSlackPayload(p domain.Payload, opts SlackOptions) slackPayload {
	msg := slackPayload{
		WebhookMessage: slack.WebhookMessage{
			Text:      p.Text,
			Channel:   p.Channel,
			Username:  p.Username,
			IconEmoji: p.Icon.Emoji(),
			IconURL:   p.Icon.URL(),
		},
		UnfurlLinks: opts.UnfurlLinks,
		UnfurlMedia: opts.UnfurlMedia,
		Markdown:    opts.AllowMarkdown,
	}
	if opts.LinkNames {
		msg.LinkNames = 1
	}
	for _, a := range p.Attachments {
		msg.Attachments = append(msg.Attachments, toSlackAttachment(a, opts.MarkdownInAttachments))
	}
	return msg
}

func toSlackAttachment(a domain.Attachment, defaultMarkdownIn []string) slack.Attachment {
	sa := slack.Attachment{
		Fallback:   a.Fallback,
		Color:      a.Color,
		Pretext:    a.Pretext,
		AuthorName: a.AuthorName,
		AuthorLink: a.AuthorLink,
		AuthorIcon: a.AuthorIcon,
		Title:      a.Title,
		TitleLink:  a.TitleLink,
		Text:       a.Text,
		ImageURL:   a.ImageURL,
		ThumbURL:   a.ThumbURL,
		Footer:     a.Footer,
		FooterIcon: a.FooterIcon,
		MarkdownIn: a.MarkdownIn,
	}
	if len(sa.MarkdownIn) == 0 {
		sa.MarkdownIn = defaultMarkdownIn
	}
	if a.Timestamp != 0 {
		sa.Ts = json.Number(strconv.FormatInt(a.Timestamp, 10))
	}
	for _, f := range a.Fields {
		sa.Fields = append(sa.Fields, slack.AttachmentField{
			Title: f.Title,
			Value: f.Value,
			Short: f.Short,
		})
	}
	return sa
}
