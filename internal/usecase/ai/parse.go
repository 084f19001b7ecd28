package ai

import (
	"regexp"
	"strconv"
	"strings"
)

// fieldLine matches "KEY: value" lines, tolerating markdown bold around the
// key. Bold around the value is trimmed by ParseFields.
var fieldLine = regexp.MustCompile(`^\**([A-Z][A-Z_ ]*[A-Z])\**\s*:\**\s*(.*)$`)

// Fields holds the "KEY: value" lines of a fixed-format model reply.
// Lookups of absent keys return "" and false; nothing here ever fails.
type Fields struct {
	values map[string]string
	lists  map[string][]string
}

// ParseFields scans text line by line for upper-case "KEY:" prefixes. The
// first occurrence of a key wins. Bullet lines ("- x", "* x", "• x", "1. x")
// following a key are collected as that key's list.
func ParseFields(text string) Fields {
	f := Fields{values: map[string]string{}, lists: map[string][]string{}}

	current := ""
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if m := fieldLine.FindStringSubmatch(line); m != nil {
			key := strings.ReplaceAll(m[1], " ", "_")
			current = key
			if _, seen := f.values[key]; !seen {
				f.values[key] = strings.TrimSpace(strings.Trim(strings.TrimSpace(m[2]), "*"))
			}
			continue
		}

		if item, ok := bullet(line); ok && item != "" && current != "" {
			f.lists[current] = append(f.lists[current], item)
		}
	}
	return f
}

// Get returns the value of key.
func (f Fields) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// String returns the value of key, or def when absent or empty.
func (f Fields) String(key, def string) string {
	if v, ok := f.values[key]; ok && v != "" {
		return v
	}
	return def
}

// List returns the bullet items under key. When there are none, a
// comma-separated inline value is split instead.
func (f Fields) List(key string) []string {
	if items := f.lists[key]; len(items) > 0 {
		return items
	}
	v := f.values[key]
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var firstInt = regexp.MustCompile(`-?\d+`)

// Int returns the first integer in key's value, clamped to [lo, hi], or def.
func (f Fields) Int(key string, def, lo, hi int) int {
	m := firstInt.FindString(f.values[key])
	if m == "" {
		return def
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return def
	}
	return max(lo, min(hi, n))
}

// Bool reports whether key's value starts with "yes" or "true".
func (f Fields) Bool(key string) bool {
	v := strings.ToLower(f.values[key])
	return strings.HasPrefix(v, "yes") || strings.HasPrefix(v, "true")
}

func bullet(line string) (string, bool) {
	for _, p := range []string{"- ", "* ", "• ", "-", "•"} {
		if strings.HasPrefix(line, p) {
			return strings.TrimSpace(strings.TrimPrefix(line, p)), true
		}
	}
	// numbered items: "1. text" or "1) text"
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i < len(line) && (line[i] == '.' || line[i] == ')') {
		return strings.TrimSpace(line[i+1:]), true
	}
	return "", false
}
