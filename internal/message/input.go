package message

import (
	"errors"
	"fmt"

	"slackmsg/internal/domain"
)

// ErrInvalidAttachmentInput is returned when an attachment is neither a
// domain.Attachment nor a keyed mapping of attachment fields.
var ErrInvalidAttachmentInput = errors.New("attachment must be an Attachment or a keyed mapping")

// AttachmentInput is either an already built attachment (Built) or a raw
// field mapping still to be coerced (Fields).
type AttachmentInput interface {
	build() (domain.Attachment, error)
}

type builtInput struct{ a domain.Attachment }

type fieldsInput struct{ fields map[string]any }

// Built wraps an existing attachment. The attachment is copied.
func Built(a domain.Attachment) AttachmentInput { return builtInput{a: a.Clone()} }

// Fields wraps a keyed mapping that is turned into an attachment by
// domain.AttachmentFromFields when attached.
func Fields(fields map[string]any) AttachmentInput { return fieldsInput{fields: fields} }

func (in builtInput) build() (domain.Attachment, error) { return in.a.Clone(), nil }

func (in fieldsInput) build() (domain.Attachment, error) {
	if in.fields == nil {
		return domain.Attachment{}, ErrInvalidAttachmentInput
	}
	return domain.AttachmentFromFields(in.fields)
}

func resolve(in AttachmentInput) (domain.Attachment, error) {
	if in == nil {
		return domain.Attachment{}, ErrInvalidAttachmentInput
	}
	return in.build()
}

// ParseAttachmentInput maps a loosely typed value, typically decoded from
// YAML or JSON, onto an AttachmentInput.
func ParseAttachmentInput(v any) (AttachmentInput, error) {
	switch x := v.(type) {
	case AttachmentInput:
		return x, nil
	case domain.Attachment:
		return Built(x), nil
	case *domain.Attachment:
		if x == nil {
			return nil, ErrInvalidAttachmentInput
		}
		return Built(*x), nil
	case map[string]any:
		if x == nil {
			return nil, ErrInvalidAttachmentInput
		}
		return Fields(x), nil
	case map[string]string:
		if x == nil {
			return nil, ErrInvalidAttachmentInput
		}
		fields := make(map[string]any, len(x))
		for k, val := range x {
			fields[k] = val
		}
		return Fields(fields), nil
	default:
		return nil, fmt.Errorf("%w, got %T", ErrInvalidAttachmentInput, v)
	}
}
