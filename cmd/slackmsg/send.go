package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"slackmsg/internal/config"
	"slackmsg/internal/domain"
	"slackmsg/internal/journal"
	"slackmsg/internal/message"
	"slackmsg/internal/transport"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var errNothingToSend = errors.New("nothing to send: give a text argument, pipe text on stdin, or add --attachment")

type sendOptions struct {
	Channel     string
	Username    string
	Icon        string
	Attachments []string // YAML or JSON files
	Color       string
	DryRun      bool
}

func sendCmd() *cobra.Command {
	var opts sendOptions

	cmd := &cobra.Command{
		Use:   "send [text]",
		Short: "Send one message",
		Long: `Sends one message through the configured transport. The text comes from
the argument, or from stdin when stdin is not a terminal. Channel, username
and icon default to the values in the config "defaults" section.`,
		Example: `  slackmsg send "deploy finished" -C '#ops' -i :rocket:
  git log -1 --format=%s | slackmsg send -a report.yaml --color good
  slackmsg send --dry-run "hello"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			text := ""
			if len(args) == 1 {
				text = args[0]
			} else if !stdinIsTerminal() {
				if text, err = readText(cmd.InOrStdin()); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runSend(ctx, cfg, opts, text, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.Channel, "channel", "C", "", "target channel (overrides defaults.channel)")
	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "sender name (overrides defaults.username)")
	cmd.Flags().StringVarP(&opts.Icon, "icon", "i", "", "sender icon, :emoji: or image URL (overrides defaults.icon)")
	cmd.Flags().StringArrayVarP(&opts.Attachments, "attachment", "a", nil, "YAML or JSON file with one attachment or a list (repeatable)")
	cmd.Flags().StringVar(&opts.Color, "color", "", "color for attachments that set none (good, warning, danger or #rrggbb)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the webhook payload instead of sending it")
	return cmd
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// readText reads the whole message body, dropping trailing newlines.
func readText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func runSend(ctx context.Context, cfg *config.Config, opts sendOptions, text string, out io.Writer) error {
	var inputs []message.AttachmentInput
	for _, path := range opts.Attachments {
		in, err := loadAttachmentFile(path)
		if err != nil {
			return err
		}
		inputs = append(inputs, in...)
	}
	if text == "" && len(inputs) == 0 {
		return errNothingToSend
	}

	tr, closeFn, err := buildTransport(cfg, opts.DryRun, out)
	if err != nil {
		return err
	}
	defer closeFn()

	client := message.NewClient(tr, message.Defaults{
		Channel:  cfg.Defaults.Channel,
		Username: cfg.Defaults.Username,
		Icon:     cfg.Defaults.Icon,
	})
	msg := client.NewMessage()
	if opts.Channel != "" {
		msg.To(opts.Channel)
	}
	if opts.Username != "" {
		msg.From(opts.Username)
	}
	if opts.Icon != "" {
		msg.WithIcon(opts.Icon)
	}
	if err := msg.SetAttachments(inputs...); err != nil {
		return fmt.Errorf("attachment: %w", err)
	}
	if opts.Color != "" {
		if err := applyDefaultColor(msg, opts.Color); err != nil {
			return err
		}
	}

	if err := msg.SendText(ctx, text); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	logger.Debug("message sent",
		"channel", msg.Channel(),
		"icon_type", string(msg.IconType()),
		"attachments", len(msg.Attachments()),
	)
	return nil
}

// buildTransport returns the configured transport, wrapped in the journal
// when it is enabled. Dry runs write to out and are not journaled.
func buildTransport(cfg *config.Config, dryRun bool, out io.Writer) (domain.Transport, func(), error) {
	noop := func() {}
	if dryRun {
		return transport.NewStdout(out, transport.SlackOptionsFromConfig(cfg.Slack)), noop, nil
	}

	tr, err := transport.FromConfig(cfg, out, logger)
	if err != nil {
		return nil, noop, err
	}
	if !cfg.Journal.Enabled {
		return tr, noop, nil
	}

	store, err := journal.Open(cfg.Journal.DBPath, logger)
	if err != nil {
		// Delivery does not depend on the journal.
		logger.Warn("journal unavailable, sending without it", "path", cfg.Journal.DBPath, "err", err)
		return tr, noop, nil
	}
	return transport.NewJournal(tr, store, tr.Name(), logger), func() { store.Close() }, nil
}

// applyDefaultColor sets color on every attachment that has none.
func applyDefaultColor(msg *message.Message, color string) error {
	atts := msg.Attachments()
	ins := make([]message.AttachmentInput, len(atts))
	for i, a := range atts {
		if a.Color == "" {
			a.Color = color
		}
		ins[i] = message.Built(a)
	}
	return msg.SetAttachments(ins...)
}

// loadAttachmentFile reads a YAML (or JSON) document holding either one
// attachment mapping or a list of them.
func loadAttachmentFile(path string) ([]message.AttachmentInput, error) {
	data, err := os.ReadFile(config.ExpandPath(path))
	if err != nil {
		return nil, fmt.Errorf("read attachment file: %w", err)
	}
	return parseAttachmentDocument(data, path)
}

func parseAttachmentDocument(data []byte, name string) ([]message.AttachmentInput, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	items, ok := doc.([]any)
	if !ok {
		items = []any{doc}
	}
	ins := make([]message.AttachmentInput, 0, len(items))
	for i, item := range items {
		in, err := message.ParseAttachmentInput(item)
		if err != nil {
			return nil, fmt.Errorf("%s: item %d: %w", name, i, err)
		}
		ins = append(ins, in)
	}
	return ins, nil
}
