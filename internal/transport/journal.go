package transport

import (
	"context"
	"log/slog"
	"time"

	"slackmsg/internal/domain"
	"slackmsg/internal/journal"
)

// Recorder stores one journal entry per dispatch attempt.
type Recorder interface {
	Record(ctx context.Context, e journal.Entry) error
}

// Journal wraps a transport and records every dispatch attempt. The wrapped
// transport's error is returned unchanged; a failed journal write is only
// logged.
type Journal struct {
	next   domain.Transport
	rec    Recorder
	name   string
	logger *slog.Logger
}

func NewJournal(next domain.Transport, rec Recorder, name string, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{next: next, rec: rec, name: name, logger: logger}
}

func (j *Journal) Name() string { return j.name }

func (j *Journal) Dispatch(ctx context.Context, p domain.Payload) error {
	start := time.Now()
	err := j.next.Dispatch(ctx, p)

	e := journal.Entry{
		Transport:   j.name,
		Channel:     p.Channel,
		Username:    p.Username,
		Text:        p.Text,
		Attachments: len(p.Attachments),
		Status:      journal.StatusSent,
		Duration:    time.Since(start),
	}
	if err != nil {
		e.Status = journal.StatusFailed
		e.Error = err.Error()
	}

	// Record even when the caller's context was cancelled mid-dispatch.
	if recErr := j.rec.Record(context.WithoutCancel(ctx), e); recErr != nil {
		j.logger.Warn("journal write failed", "transport", j.name, "error", recErr)
	}
	return err
}
