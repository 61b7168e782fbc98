package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"slackmsg/internal/domain"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var (
	// ErrTelegramChannel is returned when a message has no chat to send to.
	ErrTelegramChannel = errors.New("telegram: channel must be a chat id or @channelusername")
	// ErrTelegramEmpty is returned when neither text nor attachments render
	// to any content.
	ErrTelegramEmpty = errors.New("telegram: message has no text to send")
)

// TelegramConfig configures the Telegram bot transport.
type TelegramConfig struct {
	Token       string
	APIEndpoint string // format string with two %s verbs (token, method); default: Telegram Bot API
	ParseMode   string // "" | "Markdown" | "MarkdownV2" | "HTML"
	HTTPClient  *http.Client
	Logger      *slog.Logger
}

// Telegram sends messages through a Telegram bot. Username and icon are not
// supported by the Bot API and are dropped; attachments are rendered as text.
type Telegram struct {
	bot       *tgbotapi.BotAPI
	parseMode string
	logger    *slog.Logger
}

// NewTelegram creates a Telegram transport. It calls getMe once to verify
// the token.
func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	if cfg.Token == "" {
		return nil, errors.New("telegram: bot token is required")
	}
	if cfg.APIEndpoint == "" {
		cfg.APIEndpoint = tgbotapi.APIEndpoint
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = SharedHTTPClient(0)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, cfg.APIEndpoint, cfg.HTTPClient)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	cfg.Logger.Debug("telegram bot connected", "username", bot.Self.UserName)

	return &Telegram{bot: bot, parseMode: cfg.ParseMode, logger: cfg.Logger}, nil
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Dispatch(ctx context.Context, p domain.Payload) error {
	if p.Channel == "" {
		return ErrTelegramChannel
	}
	// The Bot API client has no context support; honour cancellation up front.
	if err := ctx.Err(); err != nil {
		return err
	}

	text := telegramText(p)
	if strings.TrimSpace(text) == "" {
		return ErrTelegramEmpty
	}
	var msg tgbotapi.MessageConfig
	if chatID, err := strconv.ParseInt(p.Channel, 10, 64); err == nil {
		msg = tgbotapi.NewMessage(chatID, text)
	} else if strings.HasPrefix(p.Channel, "@") {
		msg = tgbotapi.NewMessageToChannel(p.Channel, text)
	} else {
		return ErrTelegramChannel
	}
	msg.ParseMode = t.parseMode

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram: send message: %w", err)
	}
	t.logger.Debug("telegram message sent", "chat", p.Channel)
	return nil
}

// telegramText renders the message text followed by each attachment as
// plain text blocks separated by blank lines.
func telegramText(p domain.Payload) string {
	var blocks []string
	if p.Text != "" {
		blocks = append(blocks, p.Text)
	}
	for _, a := range p.Attachments {
		var lines []string
		for _, s := range []string{a.Pretext, a.AuthorName, a.Title, a.Text} {
			if s != "" {
				lines = append(lines, s)
			}
		}
		if a.TitleLink != "" {
			lines = append(lines, a.TitleLink)
		}
		for _, f := range a.Fields {
			switch {
			case f.Title == "":
				lines = append(lines, f.Value)
			case f.Value == "":
				lines = append(lines, f.Title)
			default:
				lines = append(lines, f.Title+": "+f.Value)
			}
		}
		for _, u := range []string{a.AuthorLink, a.ImageURL, a.ThumbURL} {
			if u != "" {
				lines = append(lines, u)
			}
		}
		if a.Footer != "" {
			lines = append(lines, a.Footer)
		}
		if len(lines) == 0 && a.Fallback != "" {
			lines = append(lines, a.Fallback)
		}
		if len(lines) > 0 {
			blocks = append(blocks, strings.Join(lines, "\n"))
		}
	}
	return strings.Join(blocks, "\n\n")
}
