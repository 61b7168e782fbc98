package transport

import (
	"bytes"
	"testing"

	"slackmsg/internal/config"
)

func TestFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Slack.WebhookURL = "https://hooks.slack.com/services/T/B/X"
	cfg.Discord.WebhookURL = "https://discord.com/api/webhooks/1/tok"

	for _, kind := range []string{config.TransportSlack, config.TransportDiscord, config.TransportStdout} {
		cfg.Transport.Kind = kind
		tr, err := FromConfig(cfg, &bytes.Buffer{}, testLogger())
		if err != nil {
			t.Errorf("%s: unexpected error: %v", kind, err)
			continue
		}
		if tr.Name() != kind {
			t.Errorf("expected %s transport, got %s", kind, tr.Name())
		}
	}
}

func TestFromConfig_UnknownKind(t *testing.T) {
	cfg := config.Defaults()
	cfg.Transport.Kind = "carrier-pigeon"
	if _, err := FromConfig(cfg, nil, testLogger()); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestFromConfig_MissingCredentials(t *testing.T) {
	for _, kind := range []string{config.TransportSlack, config.TransportDiscord, config.TransportTelegram} {
		cfg := config.Defaults()
		cfg.Transport.Kind = kind
		tr, err := FromConfig(cfg, nil, testLogger())
		if err == nil {
			t.Errorf("%s: expected error without credentials", kind)
		}
		if tr != nil {
			t.Errorf("%s: expected nil transport on error, got %T", kind, tr)
		}
	}
}
