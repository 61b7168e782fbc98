package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"slackmsg/internal/domain"

	"github.com/bwmarrin/discordgo"
)

// Slack's named attachment colors, as RGB.
var namedColors = map[string]int{
	"good":    0x2EB886,
	"warning": 0xDAA038,
	"danger":  0xA30200,
}

// DiscordConfig configures the Discord webhook transport.
type DiscordConfig struct {
	WebhookURL string // https://discord.com/api/webhooks/<id>/<token>
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Discord executes a Discord webhook. Attachments become embeds.
type Discord struct {
	session   *discordgo.Session
	webhookID string
	token     string
	logger    *slog.Logger
}

// NewDiscord creates a Discord webhook transport.
func NewDiscord(cfg DiscordConfig) (*Discord, error) {
	id, token, err := parseDiscordWebhook(cfg.WebhookURL)
	if err != nil {
		return nil, err
	}

	// Webhook execution needs no bot token.
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	if cfg.HTTPClient != nil {
		session.Client = cfg.HTTPClient
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Discord{
		session:   session,
		webhookID: id,
		token:     token,
		logger:    cfg.Logger,
	}, nil
}

func (d *Discord) Name() string { return "discord" }

// Dispatch executes the webhook. The message channel is ignored: a Discord
// webhook always posts to the channel it was created for.
func (d *Discord) Dispatch(ctx context.Context, p domain.Payload) error {
	if p.Channel != "" {
		d.logger.Debug("discord webhook ignores channel", "channel", p.Channel)
	}
	_, err := d.session.WebhookExecute(d.webhookID, d.token, false, toDiscordParams(p), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("discord: execute webhook: %w", err)
	}
	d.logger.Debug("discord message posted", "embeds", len(p.Attachments))
	return nil
}

// parseDiscordWebhook extracts the webhook id and token from a webhook URL.
func parseDiscordWebhook(raw string) (id, token string, err error) {
	if raw == "" {
		return "", "", errors.New("discord: webhook URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("discord: invalid webhook URL: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range parts {
		if part == "webhooks" && i+2 < len(parts) && parts[i+1] != "" && parts[i+2] != "" {
			return parts[i+1], parts[i+2], nil
		}
	}
	return "", "", errors.New("discord: webhook URL has no /webhooks/<id>/<token> path")
}

func toDiscordParams(p domain.Payload) *discordgo.WebhookParams {
	params := &discordgo.WebhookParams{
		Content:   p.Text,
		Username:  p.Username,
		AvatarURL: p.Icon.URL(),
	}
	for _, a := range p.Attachments {
		params.Embeds = append(params.Embeds, toDiscordEmbed(a))
	}
	return params
}

func toDiscordEmbed(a domain.Attachment) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title: a.Title,
		URL:   a.TitleLink,
		Color: discordColor(a.Color),
	}

	var desc []string
	for _, s := range []string{a.Pretext, a.Text} {
		if s != "" {
			desc = append(desc, s)
		}
	}
	if len(desc) == 0 && a.Fallback != "" && len(a.Fields) == 0 {
		desc = append(desc, a.Fallback)
	}
	e.Description = strings.Join(desc, "\n")

	if a.AuthorName != "" {
		e.Author = &discordgo.MessageEmbedAuthor{Name: a.AuthorName, URL: a.AuthorLink, IconURL: a.AuthorIcon}
	}
	if a.ImageURL != "" {
		e.Image = &discordgo.MessageEmbedImage{URL: a.ImageURL}
	}
	if a.ThumbURL != "" {
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: a.ThumbURL}
	}
	if a.Footer != "" {
		e.Footer = &discordgo.MessageEmbedFooter{Text: a.Footer, IconURL: a.FooterIcon}
	}
	if a.Timestamp != 0 {
		e.Timestamp = time.Unix(a.Timestamp, 0).UTC().Format(time.RFC3339)
	}
	for _, f := range a.Fields {
		e.Fields = append(e.Fields, &discordgo.MessageEmbedField{
			Name:   f.Title,
			Value:  f.Value,
			Inline: f.Short,
		})
	}
	return e
}

// discordColor converts "#rrggbb" or a Slack color name to an RGB integer.
// Unknown values yield 0 (no color).
func discordColor(c string) int {
	if v, ok := namedColors[strings.ToLower(c)]; ok {
		return v
	}
	hex, ok := strings.CutPrefix(c, "#")
	if !ok || len(hex) != 6 {
		return 0
	}
	v, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return 0
	}
	return int(v)
}
