package domain

import (
	"fmt"
	"slices"

	"github.com/go-viper/mapstructure/v2"
)

// Attachment is a rich content block shown below the message text.
// Field names follow the webhook attachment format.
type Attachment struct {
	Fallback   string            `json:"fallback,omitempty"`
	Color      string            `json:"color,omitempty"` // "good" | "warning" | "danger" | "#rrggbb"
	Pretext    string            `json:"pretext,omitempty"`
	AuthorName string            `json:"author_name,omitempty"`
	AuthorLink string            `json:"author_link,omitempty"`
	AuthorIcon string            `json:"author_icon,omitempty"`
	Title      string            `json:"title,omitempty"`
	TitleLink  string            `json:"title_link,omitempty"`
	Text       string            `json:"text,omitempty"`
	Fields     []AttachmentField `json:"fields,omitempty"`
	ImageURL   string            `json:"image_url,omitempty"`
	ThumbURL   string            `json:"thumb_url,omitempty"`
	Footer     string            `json:"footer,omitempty"`
	FooterIcon string            `json:"footer_icon,omitempty"`
	Timestamp  int64             `json:"ts,omitempty"` // unix seconds
	MarkdownIn []string          `json:"mrkdwn_in,omitempty"`
}

// AttachmentField is one title/value cell of an attachment table.
type AttachmentField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short,omitempty"`
}

// AttachmentError reports a keyed mapping that could not be turned into an
// Attachment.
type AttachmentError struct {
	Reason string
	Err    error
}

func (e *AttachmentError) Error() string {
	if e.Err == nil {
		return "attachment: " + e.Reason
	}
	return fmt.Sprintf("attachment: %s: %v", e.Reason, e.Err)
}

func (e *AttachmentError) Unwrap() error { return e.Err }

// AttachmentFromFields builds an Attachment from a keyed mapping using the
// same keys as the JSON form ("color", "text", "fields", "ts", ...).
// Unknown keys and values of the wrong type are rejected.
func AttachmentFromFields(fields map[string]any) (Attachment, error) {
	var a Attachment
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		ErrorUnused: true,
		Result:      &a,
	})
	if err != nil {
		return Attachment{}, &AttachmentError{Reason: "decoder setup", Err: err}
	}
	if err := dec.Decode(fields); err != nil {
		return Attachment{}, &AttachmentError{Reason: "invalid fields", Err: err}
	}
	if a.isEmpty() {
		return Attachment{}, &AttachmentError{Reason: "no content: set at least one of fallback, pretext, title, text, fields or image_url"}
	}
	for i, f := range a.Fields {
		if f.Title == "" && f.Value == "" {
			return Attachment{}, &AttachmentError{Reason: fmt.Sprintf("field %d has neither title nor value", i)}
		}
	}
	return a, nil
}

func (a Attachment) isEmpty() bool {
	return a.Fallback == "" && a.Pretext == "" && a.Title == "" && a.Text == "" &&
		len(a.Fields) == 0 && a.ImageURL == "" && a.ThumbURL == "" && a.AuthorName == ""
}

// Clone returns a copy that shares no slices with a.
func (a Attachment) Clone() Attachment {
	a.Fields = slices.Clone(a.Fields)
	a.MarkdownIn = slices.Clone(a.MarkdownIn)
	return a
}

// CloneAttachments deep-copies a slice of attachments. A nil or empty input
// yields an empty, non-nil slice.
func CloneAttachments(in []Attachment) []Attachment {
	out := make([]Attachment, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}
