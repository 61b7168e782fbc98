package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// secretPaths are the settings that carry credentials. They are masked on
// every read path that prints config.
var secretPaths = []string{
	"slack.webhookUrl",
	"discord.webhookUrl",
	"telegram.token",
}

// IsSecret reports whether the dot-path names a credential.
func IsSecret(path string) bool {
	return slices.Contains(secretPaths, path)
}

// Setting is one leaf of the config tree.
type Setting struct {
	Path   string
	Value  any
	Secret bool
}

// tree converts cfg to its JSON object form, keyed like the config file.
func tree(cfg *Config) (map[string]any, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// fromTree decodes m into a fresh Config. Keys that match no setting are
// rejected.
func fromTree(m map[string]any) (*Config, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// section returns the object holding the last element of path, creating
// missing sections along the way when create is set.
func section(m map[string]any, parts []string, create bool) (map[string]any, error) {
	for i, key := range parts[:len(parts)-1] {
		child, ok := m[key]
		if !ok {
			if !create {
				return nil, fmt.Errorf("key not found: %s", strings.Join(parts[:i+1], "."))
			}
			next := make(map[string]any)
			m[key] = next
			m = next
			continue
		}
		next, ok := child.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s is a %T, not a section", strings.Join(parts[:i+1], "."), child)
		}
		m = next
	}
	return m, nil
}

// GetByPath retrieves a config value by dot-notation path (e.g.
// "defaults.channel"). A trailing numeric element indexes a list, as in
// "slack.markdownInAttachments.0".
func GetByPath(cfg *Config, path string) (any, error) {
	m, err := tree(cfg)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(path, ".")

	if idx, err := strconv.Atoi(parts[len(parts)-1]); err == nil && len(parts) > 1 {
		list, err := GetByPath(cfg, strings.Join(parts[:len(parts)-1], "."))
		if err != nil {
			return nil, err
		}
		items, ok := list.([]any)
		if !ok || idx < 0 || idx >= len(items) {
			return nil, fmt.Errorf("invalid list index: %s", path)
		}
		return items[idx], nil
	}

	parent, err := section(m, parts, false)
	if err != nil {
		return nil, err
	}
	val, ok := parent[parts[len(parts)-1]]
	if !ok {
		return nil, fmt.Errorf("key not found: %s", path)
	}
	return val, nil
}

// SetByPath sets a config value by dot-notation path. The value is parsed as
// a bool or number when it looks like one and the setting accepts it;
// unknown paths and type mismatches leave cfg unchanged.
func SetByPath(cfg *Config, path string, value any) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	m, err := tree(cfg)
	if err != nil {
		return err
	}
	parts := strings.Split(path, ".")
	parent, err := section(m, parts, true)
	if err != nil {
		return err
	}
	key := parts[len(parts)-1]

	parent[key] = parseValue(value)
	updated, err := fromTree(m)
	if err != nil {
		// A string field may hold a numeric-looking value (e.g. a Telegram chat id).
		parent[key] = value
		if updated, err = fromTree(m); err != nil {
			return fmt.Errorf("cannot set %s: %w", path, err)
		}
	}
	*cfg = *updated
	return nil
}

// parseValue tries to convert string values to appropriate Go types.
func parseValue(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if s == "true" || s == "false" {
		return s == "true"
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// Sanitize returns a copy of the config with credentials masked.
func Sanitize(cfg *Config) *Config {
	m, err := tree(cfg)
	if err != nil {
		return cfg
	}
	for _, path := range secretPaths {
		parts := strings.Split(path, ".")
		parent, err := section(m, parts, false)
		if err != nil {
			continue
		}
		if s, ok := parent[parts[len(parts)-1]].(string); ok {
			parent[parts[len(parts)-1]] = maskString(s)
		}
	}
	out, err := fromTree(m)
	if err != nil {
		return cfg
	}
	return out
}

// maskString shows first 4 and last 4 chars, masks the rest.
func maskString(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// ListPaths returns every leaf setting sorted by path, with credentials
// masked.
func ListPaths(cfg *Config) []Setting {
	m, err := tree(cfg)
	if err != nil {
		return nil
	}
	var out []Setting
	collectSettings("", m, &out)
	slices.SortFunc(out, func(a, b Setting) int { return strings.Compare(a.Path, b.Path) })
	return out
}

func collectSettings(prefix string, m map[string]any, out *[]Setting) {
	for key, v := range m {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if sub, ok := v.(map[string]any); ok {
			collectSettings(path, sub, out)
			continue
		}
		s := Setting{Path: path, Value: v, Secret: IsSecret(path)}
		if str, ok := v.(string); ok && s.Secret {
			s.Value = maskString(str)
		}
		*out = append(*out, s)
	}
}
