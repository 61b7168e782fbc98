package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"slackmsg/internal/domain"
)

// Stdout writes the Slack webhook JSON for each message to a writer instead
// of sending it.
type Stdout struct {
	w    io.Writer
	opts SlackOptions
}

func NewStdout(w io.Writer, opts SlackOptions) *Stdout {
	return &Stdout{w: w, opts: opts}
}

func (s *Stdout) Name() string { return "stdout" }

func (s *Stdout) Dispatch(_ context.Context, p domain.Payload) error {
	enc := json.NewEncoder(s.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(buildSlackPayload(p, s.opts)); err != nil {
		return fmt.Errorf("stdout: write payload: %w", err)
	}
	return nil
}
