package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Config is the root configuration for slackmsg.
type Config struct {
	General   GeneralConfig   `json:"general"`
	Defaults  DefaultsConfig  `json:"defaults"`
	Transport TransportConfig `json:"transport"`
	Slack     SlackConfig     `json:"slack"`
	Discord   DiscordConfig   `json:"discord"`
	Telegram  TelegramConfig  `json:"telegram"`
	Journal   JournalConfig   `json:"journal"`
}

type GeneralConfig struct {
	LogLevel string `json:"logLevel"`
	LogFile  string `json:"logFile"` // optional log file path
}

// DefaultsConfig holds the values every new message starts with.
type DefaultsConfig struct {
	Channel  string `json:"channel"`
	Username string `json:"username"`
	Icon     string `json:"icon"` // ":emoji:" or image URL
}

type TransportConfig struct {
	Kind           string `json:"kind"` // "slack" | "discord" | "telegram" | "stdout"
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

type SlackConfig struct {
	WebhookURL            string   `json:"webhookUrl"`
	LinkNames             bool     `json:"linkNames"`
	UnfurlLinks           bool     `json:"unfurlLinks"`
	UnfurlMedia           bool     `json:"unfurlMedia"`
	AllowMarkdown         bool     `json:"allowMarkdown"`
	MarkdownInAttachments []string `json:"markdownInAttachments"`
}

type DiscordConfig struct {
	WebhookURL string `json:"webhookUrl"`
}

type TelegramConfig struct {
	Token       string `json:"token"`
	APIEndpoint string `json:"apiEndpoint"` // default: Telegram Bot API
	ParseMode   string `json:"parseMode"`
}

// JournalConfig configures the local delivery journal.
type JournalConfig struct {
	Enabled bool   `json:"enabled"`
	DBPath  string `json:"dbPath"`
}

const (
	TransportSlack    = "slack"
	TransportDiscord  = "discord"
	TransportTelegram = "telegram"
	TransportStdout   = "stdout"
)

// DefaultConfigDir returns the default config directory (~/.slackmsg).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".slackmsg"
	}
	return filepath.Join(home, ".slackmsg")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	cfg.General.LogFile = ExpandPath(cfg.General.LogFile)
	cfg.Journal.DBPath = ExpandPath(cfg.Journal.DBPath)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadRaw reads the config file as written: ${VAR} placeholders and ~/ paths
// are kept and nothing is validated. Use it for read-modify-write edits so
// Save does not persist expanded secrets.
func LoadRaw(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}
	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Expanded returns a copy of a raw config with placeholders and paths
// resolved, as Load would return it.
func Expanded(raw *Config) (*Config, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("cannot marshal config: %w", err)
	}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse expanded config: %w", err)
	}
	cfg.General.LogFile = ExpandPath(cfg.General.LogFile)
	cfg.Journal.DBPath = ExpandPath(cfg.Journal.DBPath)
	return cfg, nil
}

// ValidateRaw validates a raw config as it will look once loaded.
func ValidateRaw(raw *Config) error {
	cfg, err := Expanded(raw)
	if err != nil {
		return err
	}
	return Validate(cfg)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match // Keep original if no env var and no default
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	// Webhook URLs and bot tokens are credentials.
	return os.WriteFile(path, data, 0o600)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	switch strings.ToLower(cfg.General.LogLevel) {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}

	switch cfg.Transport.Kind {
	case TransportSlack, TransportDiscord, TransportTelegram, TransportStdout:
		// valid
	default:
		errs = append(errs, "transport.kind must be one of: slack, discord, telegram, stdout")
	}
	if cfg.Transport.TimeoutSeconds < 1 || cfg.Transport.TimeoutSeconds > 300 {
		errs = append(errs, "transport.timeoutSeconds must be between 1 and 300")
	}

	if err := checkURL(cfg.Slack.WebhookURL); err != nil {
		errs = append(errs, fmt.Sprintf("slack.webhookUrl: %v", err))
	}
	if err := checkURL(cfg.Discord.WebhookURL); err != nil {
		errs = append(errs, fmt.Sprintf("discord.webhookUrl: %v", err))
	}
	switch cfg.Telegram.ParseMode {
	case "", "Markdown", "MarkdownV2", "HTML":
		// valid
	default:
		errs = append(errs, "telegram.parseMode must be one of: Markdown, MarkdownV2, HTML")
	}

	if cfg.Journal.Enabled && cfg.Journal.DBPath == "" {
		errs = append(errs, "journal.dbPath is required when the journal is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// checkURL accepts an empty value or an absolute http(s) URL.
func checkURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
