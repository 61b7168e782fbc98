package domain

import "strings"

// IconType classifies an icon as an emoji token or an image URL.
// The values match the payload keys the icon is sent under.
type IconType string

const (
	IconTypeNone  IconType = ""
	IconTypeEmoji IconType = "icon_emoji"
	IconTypeURL   IconType = "icon_url"
)

// Icon is the sender icon of a message. The raw value and its type are
// stored together and only ParseIcon can produce a non-empty Icon, so the
// two can never disagree.
type Icon struct {
	typ   IconType
	value string
}

// ParseIcon classifies s. The empty string yields the zero Icon (no icon).
// A value of at least two characters wrapped in colons (":ghost:") is an
// emoji; anything else is treated as a URL.
func ParseIcon(s string) Icon {
	switch {
	case s == "":
		return Icon{}
	case isEmojiToken(s):
		return Icon{typ: IconTypeEmoji, value: s}
	default:
		return Icon{typ: IconTypeURL, value: s}
	}
}

func isEmojiToken(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, ":") && strings.HasSuffix(s, ":")
}

func (i Icon) Type() IconType { return i.typ }

func (i Icon) Value() string { return i.value }

// IsZero reports whether no icon is set.
func (i Icon) IsZero() bool { return i.typ == IconTypeNone }

// Emoji returns the emoji token, or "" when the icon is not an emoji.
func (i Icon) Emoji() string {
	if i.typ != IconTypeEmoji {
		return ""
	}
	return i.value
}

// URL returns the icon URL, or "" when the icon is not a URL.
func (i Icon) URL() string {
	if i.typ != IconTypeURL {
		return ""
	}
	return i.value
}

func (i Icon) String() string { return i.value }
