// Package message builds outbound chat notifications and hands them to a
// domain.Transport for delivery.
//
// A Message is owned by one goroutine. Setters return the message so calls
// can be chained:
//
//	err := message.New(t).
//		To("#deploys").
//		From("ci").
//		WithIcon(":rocket:").
//		SendText(ctx, "build 42 is live")
package message

import (
	"context"
	"errors"

	"slackmsg/internal/domain"
)

// ErrNoTransport is returned by Send when the message was built without a
// transport.
var ErrNoTransport = errors.New("message has no transport")

// Defaults are applied to a new message before any setter runs.
type Defaults struct {
	Channel  string
	Username string
	Icon     string
}

// Option configures a Message at construction.
type Option func(*Message)

// WithDefaults presets channel, username and icon.
func WithDefaults(d Defaults) Option {
	return func(m *Message) {
		m.channel = d.Channel
		m.username = d.Username
		m.icon = domain.ParseIcon(d.Icon)
	}
}

// Message accumulates the fields of one outbound notification.
type Message struct {
	transport   domain.Transport
	text        string
	channel     string
	username    string
	icon        domain.Icon
	attachments []domain.Attachment
}

// New returns an empty message bound to t.
func New(t domain.Transport, opts ...Option) *Message {
	m := &Message{transport: t}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Message) Text() string { return m.text }

func (m *Message) SetText(text string) *Message {
	m.text = text
	return m
}

func (m *Message) Channel() string { return m.channel }

func (m *Message) SetChannel(channel string) *Message {
	m.channel = channel
	return m
}

func (m *Message) Username() string { return m.username }

func (m *Message) SetUsername(username string) *Message {
	m.username = username
	return m
}

func (m *Message) Icon() domain.Icon { return m.icon }

func (m *Message) IconType() domain.IconType { return m.icon.Type() }

// SetIcon sets the sender icon, classifying it as an emoji (":ghost:") or a
// URL. An empty icon clears it.
func (m *Message) SetIcon(icon string) *Message {
	m.icon = domain.ParseIcon(icon)
	return m
}

// ClearIcon removes the sender icon.
func (m *Message) ClearIcon() *Message {
	m.icon = domain.Icon{}
	return m
}

// From is a chainable alias of SetUsername.
func (m *Message) From(username string) *Message { return m.SetUsername(username) }

// To is a chainable alias of SetChannel.
func (m *Message) To(channel string) *Message { return m.SetChannel(channel) }

// WithIcon is a chainable alias of SetIcon.
func (m *Message) WithIcon(icon string) *Message { return m.SetIcon(icon) }

// Attach appends one attachment. On error the attachments are unchanged.
func (m *Message) Attach(in AttachmentInput) error {
	a, err := resolve(in)
	if err != nil {
		return err
	}
	m.attachments = append(m.attachments, a)
	return nil
}

// AttachAny is Attach for loosely typed values; see ParseAttachmentInput.
func (m *Message) AttachAny(v any) error {
	in, err := ParseAttachmentInput(v)
	if err != nil {
		return err
	}
	return m.Attach(in)
}

// Attachments returns a copy of the attachments in display order.
func (m *Message) Attachments() []domain.Attachment {
	return domain.CloneAttachments(m.attachments)
}

// SetAttachments replaces all attachments with ins. Every input is resolved
// before anything is replaced, so a failing input leaves the message as it
// was.
func (m *Message) SetAttachments(ins ...AttachmentInput) error {
	resolved := make([]domain.Attachment, 0, len(ins))
	for _, in := range ins {
		a, err := resolve(in)
		if err != nil {
			return err
		}
		resolved = append(resolved, a)
	}
	m.attachments = resolved
	return nil
}

func (m *Message) ClearAttachments() *Message {
	m.attachments = nil
	return m
}

// Payload returns a snapshot of the message for a transport.
func (m *Message) Payload() domain.Payload {
	return domain.Payload{
		Text:        m.text,
		Channel:     m.channel,
		Username:    m.username,
		Icon:        m.icon,
		Attachments: domain.CloneAttachments(m.attachments),
	}
}

// Send dispatches the message once through its transport and returns the
// transport's error as is. The message stays usable afterwards.
func (m *Message) Send(ctx context.Context) error {
	if m.transport == nil {
		return ErrNoTransport
	}
	return m.transport.Dispatch(ctx, m.Payload())
}

// SendText overwrites the text when text is non-empty, then sends.
func (m *Message) SendText(ctx context.Context, text string) error {
	if text != "" {
		m.SetText(text)
	}
	return m.Send(ctx)
}
