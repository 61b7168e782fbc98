package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"slackmsg/internal/config"

	"github.com/spf13/cobra"
)

// transportMeta describes a transport option for the setup wizard.
type transportMeta struct {
	Kind       string
	Desc       string
	Credential string // prompt for the credential; empty when none is needed
}

var knownTransports = []transportMeta{
	{Kind: config.TransportSlack, Desc: "Slack incoming webhook", Credential: "Slack webhook URL (https://hooks.slack.com/services/...)"},
	{Kind: config.TransportDiscord, Desc: "Discord channel webhook", Credential: "Discord webhook URL (https://discord.com/api/webhooks/...)"},
	{Kind: config.TransportTelegram, Desc: "Telegram bot", Credential: "Telegram bot token (from @BotFather), or ${TELEGRAM_BOT_TOKEN}"},
	{Kind: config.TransportStdout, Desc: "print payloads to stdout (testing)"},
}

func setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactive setup: transport → credentials → defaults → save config",
		Long:  "Guides you through choosing a transport, entering its webhook URL or token, and the default channel, username and icon. Writes config to the path used by --config or default.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetup(resolveConfigPath(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runSetup(cfgPath string, in io.Reader, out io.Writer) error {
	// Placeholders stay unexpanded so secrets kept in env vars are not written out.
	cfg, err := config.LoadRaw(cfgPath)
	if err != nil {
		if _, statErr := os.Stat(config.ExpandPath(cfgPath)); !os.IsNotExist(statErr) {
			return fmt.Errorf("existing config %s cannot be read, fix or remove it first: %w", cfgPath, err)
		}
		cfg = config.Defaults()
	}

	reader := bufio.NewReader(in)
	prompt := func(def string) (string, error) {
		if def != "" {
			fmt.Fprintf(out, " [%s]: ", def)
		} else {
			fmt.Fprint(out, ": ")
		}
		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", err
		}
		s := strings.TrimSpace(line)
		if s == "" {
			return def, nil
		}
		return s, nil
	}

	// Step 1: Transport
	fmt.Fprintln(out, "\n--- Step 1: Transport ---")
	defNum := "1"
	for i, t := range knownTransports {
		fmt.Fprintf(out, "  %d) %s: %s\n", i+1, t.Kind, t.Desc)
		if t.Kind == cfg.Transport.Kind {
			defNum = fmt.Sprint(i + 1)
		}
	}
	fmt.Fprintf(out, "Choose transport (1-%d)", len(knownTransports))
	choice, err := prompt(defNum)
	if err != nil {
		return err
	}
	var idx int
	if n, _ := fmt.Sscanf(choice, "%d", &idx); n != 1 || idx < 1 || idx > len(knownTransports) {
		idx = 1
	}
	tr := knownTransports[idx-1]
	cfg.Transport.Kind = tr.Kind
	fmt.Fprintf(out, "  Using transport: %s\n", tr.Kind)

	// Step 2: Credentials
	if tr.Credential != "" {
		fmt.Fprintln(out, "\n--- Step 2: Credentials ---")
		fmt.Fprint(out, tr.Credential)
		cred, err := prompt(currentCredential(cfg, tr.Kind))
		if err != nil {
			return err
		}
		setCredential(cfg, tr.Kind, cred)
	}

	// Step 3: Defaults
	fmt.Fprintln(out, "\n--- Step 3: Message defaults (enter keeps the current value) ---")
	fmt.Fprint(out, "Default channel (#channel, chat id or @channel)")
	if cfg.Defaults.Channel, err = prompt(cfg.Defaults.Channel); err != nil {
		return err
	}
	fmt.Fprint(out, "Default username")
	if cfg.Defaults.Username, err = prompt(cfg.Defaults.Username); err != nil {
		return err
	}
	fmt.Fprint(out, "Default icon (:emoji: or image URL)")
	if cfg.Defaults.Icon, err = prompt(cfg.Defaults.Icon); err != nil {
		return err
	}

	// Save
	if err := config.ValidateRaw(cfg); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	cfgPath = config.ExpandPath(cfgPath)
	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nConfig saved to %s\n", cfgPath)
	fmt.Fprintln(out, "Next: run 'slackmsg doctor', then 'slackmsg send \"hello\"'.")
	return nil
}

func currentCredential(cfg *config.Config, kind string) string {
	switch kind {
	case config.TransportSlack:
		return cfg.Slack.WebhookURL
	case config.TransportDiscord:
		return cfg.Discord.WebhookURL
	case config.TransportTelegram:
		return cfg.Telegram.Token
	}
	return ""
}

func setCredential(cfg *config.Config, kind, value string) {
	switch kind {
	case config.TransportSlack:
		cfg.Slack.WebhookURL = value
	case config.TransportDiscord:
		cfg.Discord.WebhookURL = value
	case config.TransportTelegram:
		cfg.Telegram.Token = value
	}
}
