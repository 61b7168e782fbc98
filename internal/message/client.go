package message

import (
	"context"

	"slackmsg/internal/domain"
)

// Client creates messages that share a transport and defaults.
type Client struct {
	transport domain.Transport
	defaults  Defaults
}

func NewClient(t domain.Transport, d Defaults) *Client {
	return &Client{transport: t, defaults: d}
}

// NewMessage returns a message preset with the client's defaults.
func (c *Client) NewMessage() *Message {
	return New(c.transport, WithDefaults(c.defaults))
}

// Send sends text as a plain message with the client's defaults.
func (c *Client) Send(ctx context.Context, text string) error {
	return c.NewMessage().SendText(ctx, text)
}
