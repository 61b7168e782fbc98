package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"slackmsg/internal/config"
	"slackmsg/internal/journal"
	"slackmsg/internal/transport"

	"github.com/spf13/cobra"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks on your slackmsg setup",
		Long: `Verifies that the configuration, the selected transport and the delivery
journal are set up correctly. Reports pass/fail for each check. No message
is sent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context(), resolveConfigPath(), cmd.OutOrStdout())
		},
	}
}

type doctorReport struct {
	out                    io.Writer
	passed, failed, warned int
}

func (r *doctorReport) pass(check, detail string) {
	fmt.Fprintf(r.out, "  [PASS] %-20s %s\n", check, detail)
	r.passed++
}

func (r *doctorReport) fail(check, detail string) {
	fmt.Fprintf(r.out, "  [FAIL] %-20s %s\n", check, detail)
	r.failed++
}

func (r *doctorReport) warn(check, detail string) {
	fmt.Fprintf(r.out, "  [WARN] %-20s %s\n", check, detail)
	r.warned++
}

func runDoctor(ctx context.Context, cfgPath string, out io.Writer) error {
	r := &doctorReport{out: out}
	fmt.Fprintf(out, "slackmsg doctor v%s\n\n", version)

	// 1. Config file exists
	if _, err := os.Stat(config.ExpandPath(cfgPath)); err != nil {
		r.fail("Config file", fmt.Sprintf("not found at %s", cfgPath))
		fmt.Fprintf(out, "\nRun 'slackmsg init' to create a default configuration.\n")
		return fmt.Errorf("config file not found")
	}
	r.pass("Config file", cfgPath)

	// 2. Config loads and validates
	cfg, err := config.Load(cfgPath)
	if err != nil {
		r.fail("Config validation", err.Error())
		return fmt.Errorf("%d check(s) failed", r.failed)
	}
	r.pass("Config validation", "valid")

	// 3. Transport can be built from its credentials
	if tr, err := transport.FromConfig(cfg, io.Discard, logger); err != nil {
		r.fail("Transport", err.Error())
	} else {
		r.pass("Transport", tr.Name())
	}

	// 4. Defaults
	if cfg.Defaults.Channel == "" && cfg.Transport.Kind == config.TransportTelegram {
		r.warn("Default channel", "not set; every send needs --channel")
	} else if cfg.Defaults.Channel == "" {
		r.warn("Default channel", "not set; the webhook's own channel is used")
	} else {
		r.pass("Default channel", cfg.Defaults.Channel)
	}

	// 5. Journal writable
	if cfg.Journal.Enabled {
		if err := checkJournal(ctx, cfg.Journal.DBPath); err != nil {
			r.fail("Journal", err.Error())
		} else {
			r.pass("Journal", cfg.Journal.DBPath)
		}
	} else {
		r.warn("Journal", "disabled; 'slackmsg history' has nothing to show")
	}

	// 6. Log file directory
	if cfg.General.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.General.LogFile), 0o755); err != nil {
			r.warn("Log file", fmt.Sprintf("cannot create log directory: %v", err))
		} else {
			r.pass("Log file", cfg.General.LogFile)
		}
	}

	fmt.Fprintf(out, "\nResults: %d passed, %d warnings, %d failed\n", r.passed, r.warned, r.failed)
	if r.failed > 0 {
		return fmt.Errorf("%d check(s) failed", r.failed)
	}
	return nil
}

// checkJournal opens the journal, which creates and migrates it, and reads
// from it once.
func checkJournal(ctx context.Context, dbPath string) error {
	store, err := journal.Open(dbPath, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := store.Counts(ctx); err != nil {
		return fmt.Errorf("cannot read: %w", err)
	}
	return nil
}
