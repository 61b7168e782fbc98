package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"slackmsg/internal/config"

	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	logger     = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	configPath string // overridable via --config flag
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "slackmsg",
		Short:        "Send chat notifications to Slack, Discord or Telegram webhooks",
		Version:      version,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.slackmsg/config.json)")

	root.AddCommand(initCmd())
	root.AddCommand(setupCmd())
	root.AddCommand(sendCmd())
	root.AddCommand(historyCmd())
	root.AddCommand(doctorCmd())
	root.AddCommand(configCmd())
	return root
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

// loadConfig loads the config file and switches the package logger to the
// configured level and output. A missing file falls back to defaults.
func loadConfig() (*config.Config, error) {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		if _, statErr := os.Stat(config.ExpandPath(cfgPath)); !os.IsNotExist(statErr) {
			return nil, fmt.Errorf("load config: %w", err)
		}
		logger.Debug("config not found, using defaults", "path", cfgPath)
		cfg = config.Defaults()
		cfg.Journal.DBPath = config.ExpandPath(cfg.Journal.DBPath)
	}

	l, err := newLogger(cfg.General.LogLevel, cfg.General.LogFile, os.Stderr)
	if err != nil {
		return nil, err
	}
	logger = l
	return cfg, nil
}

// newLogger builds a text logger at the named level. When logFile is set,
// records are appended to it instead of stderr.
func newLogger(level, logFile string, stderr io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	out := stderr
	if logFile != "" {
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			return nil, fmt.Errorf("cannot create log directory: %w", err)
		}
		// The file stays open for the life of the process.
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("cannot open log file: %w", err)
		}
		out = f
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl})), nil
}

func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := config.ExpandPath(resolveConfigPath())
			if _, err := os.Stat(cfgPath); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", cfgPath)
			}
			if err := config.Save(cfgPath, config.Defaults()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", cfgPath)
			fmt.Fprintln(cmd.OutOrStdout(), "Next: set a webhook with 'slackmsg config set slack.webhookUrl <url>' or run 'slackmsg setup'.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and modify configuration",
		Long:  "Get, set, and list configuration values. Changes are saved to the config file.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get [path]",
		Short: "Get a config value (e.g. defaults.channel)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			val, err := config.GetByPath(config.Sanitize(cfg), args[0])
			if err != nil {
				return err
			}
			data, _ := json.MarshalIndent(val, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set [path] [value]",
		Short: "Set a config value (e.g. defaults.icon :robot_face:)",
		Long: `Sets one value and saves the config file. ${VAR} placeholders and ~/ paths
in the file are kept as written. Values starting with "-", such as Telegram
group chat ids, must follow "--" so they are not read as flags.`,
		Example: `  slackmsg config set defaults.icon :robot_face:
  slackmsg config set slack.webhookUrl '${SLACK_WEBHOOK_URL}'
  slackmsg config set -- defaults.channel -1001234567890`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			cfg, err := config.LoadRaw(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := config.SetByPath(cfg, args[0], args[1]); err != nil {
				return fmt.Errorf("set value: %w", err)
			}
			if err := config.ValidateRaw(cfg); err != nil {
				return err
			}
			if err := config.Save(config.ExpandPath(cfgPath), cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			logger.Info("config updated", "path", args[0], "file", cfgPath)
			return nil
		},
	})

	var flat bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all config values",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			sanitized := config.Sanitize(cfg)
			if !flat {
				data, _ := json.MarshalIndent(sanitized, "", "  ")
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			for _, setting := range config.ListPaths(cfg) {
				data, _ := json.Marshal(setting.Value)
				fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", setting.Path, data)
			}
			return nil
		},
	}
	listCmd.Flags().BoolVar(&flat, "flat", false, "print one dot-path per line")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show config file path",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), resolveConfigPath())
		},
	})

	return cmd
}
