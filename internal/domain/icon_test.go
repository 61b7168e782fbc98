package domain

import "testing"

func TestParseIcon(t *testing.T) {
	tests := []struct {
		in   string
		want IconType
	}{
		{":ghost:", IconTypeEmoji},
		{"::", IconTypeEmoji},
		{":+1:", IconTypeEmoji},
		{"http://example.com/x.png", IconTypeURL},
		{":", IconTypeURL},
		{":ghost", IconTypeURL},
		{"ghost:", IconTypeURL},
		{"x", IconTypeURL},
		{"", IconTypeNone},
	}
	for _, tt := range tests {
		got := ParseIcon(tt.in)
		if got.Type() != tt.want {
			t.Errorf("ParseIcon(%q).Type() = %q, want %q", tt.in, got.Type(), tt.want)
		}
		if got.Value() != tt.in {
			t.Errorf("ParseIcon(%q).Value() = %q", tt.in, got.Value())
		}
	}
}

func TestIcon_Accessors(t *testing.T) {
	emoji := ParseIcon(":ghost:")
	if emoji.Emoji() != ":ghost:" || emoji.URL() != "" {
		t.Errorf("emoji accessors: emoji=%q url=%q", emoji.Emoji(), emoji.URL())
	}

	url := ParseIcon("https://example.com/bot.png")
	if url.URL() != "https://example.com/bot.png" || url.Emoji() != "" {
		t.Errorf("url accessors: emoji=%q url=%q", url.Emoji(), url.URL())
	}

	var none Icon
	if !none.IsZero() || none.Value() != "" {
		t.Error("zero icon should be empty")
	}
	if none != ParseIcon("") {
		t.Error("ParseIcon(\"\") should equal the zero Icon")
	}
}
