package transport

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"slackmsg/internal/config"
	"slackmsg/internal/domain"
)

// Named is a transport that reports which service it delivers to.
type Named interface {
	domain.Transport
	Name() string
}

// FromConfig builds the transport selected by cfg.Transport.Kind. The stdout
// transport writes to w.
func FromConfig(cfg *config.Config, w io.Writer, logger *slog.Logger) (Named, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client := SharedHTTPClient(time.Duration(cfg.Transport.TimeoutSeconds) * time.Second)

	switch cfg.Transport.Kind {
	case config.TransportSlack:
		s, err := NewSlack(SlackConfig{
			WebhookURL: cfg.Slack.WebhookURL,
			Options:    SlackOptionsFromConfig(cfg.Slack),
			HTTPClient: client,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.TransportDiscord:
		d, err := NewDiscord(DiscordConfig{
			WebhookURL: cfg.Discord.WebhookURL,
			HTTPClient: client,
			Logger:     logger,
		})
		if err != nil {
			return nil, err
		}
		return d, nil
	case config.TransportTelegram:
		t, err := NewTelegram(TelegramConfig{
			Token:       cfg.Telegram.Token,
			APIEndpoint: cfg.Telegram.APIEndpoint,
			ParseMode:   cfg.Telegram.ParseMode,
			HTTPClient:  client,
			Logger:      logger,
		})
		if err != nil {
			return nil, err
		}
		return t, nil
	case config.TransportStdout:
		return NewStdout(w, SlackOptionsFromConfig(cfg.Slack)), nil
	default:
		return nil, fmt.Errorf("unknown transport kind %q", cfg.Transport.Kind)
	}
}

func SlackOptionsFromConfig(c config.SlackConfig) SlackOptions {
	return SlackOptions{
		LinkNames:             c.LinkNames,
		UnfurlLinks:           c.UnfurlLinks,
		UnfurlMedia:           c.UnfurlMedia,
		AllowMarkdown:         c.AllowMarkdown,
		MarkdownInAttachments: c.MarkdownInAttachments,
	}
}
