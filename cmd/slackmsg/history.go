package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"slackmsg/internal/journal"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently sent messages from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.Journal.Enabled {
				return fmt.Errorf("journal is disabled (set journal.enabled to true)")
			}
			if _, err := os.Stat(cfg.Journal.DBPath); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), "No messages sent yet.")
				return nil
			}

			store, err := journal.Open(cfg.Journal.DBPath, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			return printHistory(cmd.Context(), store, limit, time.Now(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries to show")
	return cmd
}

func printHistory(ctx context.Context, store *journal.Store, limit int, now time.Time, out io.Writer) error {
	entries, err := store.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No messages sent yet.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tTRANSPORT\tCHANNEL\tSTATUS\tTOOK\tTEXT")
	for _, e := range entries {
		status := string(e.Status)
		if e.Error != "" {
			status += ": " + truncateText(e.Error, 40)
		}
		text := truncateText(e.Text, 50)
		if e.Attachments > 0 {
			text += fmt.Sprintf(" (+%s)", english.Plural(e.Attachments, "attachment", ""))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			humanize.RelTime(e.CreatedAt, now, "ago", "from now"),
			e.Transport,
			orDash(e.Channel),
			status,
			e.Duration.Round(time.Millisecond),
			text,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	counts, err := store.Counts(ctx)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	total := counts[journal.StatusSent] + counts[journal.StatusFailed]
	fmt.Fprintf(out, "\n%s recorded, %s sent, %s failed\n",
		humanize.Comma(int64(total)),
		humanize.Comma(int64(counts[journal.StatusSent])),
		humanize.Comma(int64(counts[journal.StatusFailed])),
	)
	return nil
}

// truncateText keeps the first line of s and at most n runes.
func truncateText(s string, n int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + " ..."
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
