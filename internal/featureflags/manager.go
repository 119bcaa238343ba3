// Package featureflags evaluates the FEATURE_FLAGS setting.
package featureflags

import (
	"hash/fnv"
	"maps"
	"strconv"
	"strings"
)

// Flag names.
const (
	RandomGift     = "random_gift"
	SavedWishlists = "saved_wishlists"
)

// Defaults applies to flags that FEATURE_FLAGS does not list.
var Defaults = map[string]string{
	RandomGift:     "on",
	SavedWishlists: "on",
}

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "random_gift=on,saved_wishlists=25%"
type Manager struct {
	flags map[string]string
}

// NewManager creates a feature-flag manager from a comma-separated config string.
func NewManager(raw string) *Manager {
	out := maps.Clone(Defaults)

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			continue
		}
		key = normalize(key)
		value = normalize(value)
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}

	return &Manager{flags: out}
}

// Enabled returns whether a flag is enabled for a subject (a browser id or
// client IP). Supported values:
// - on/true/1
// - off/false/0
// - N% (deterministic rollout by subject, e.g. 25%)
func (m *Manager) Enabled(name, subject string) bool {
	if m == nil {
		return false
	}

	value, ok := m.flags[normalize(name)]
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pctRaw, isPct := strings.CutSuffix(value, "%")
	if !isPct {
		return false
	}
	pct, err := strconv.Atoi(pctRaw)
	if err != nil || pct <= 0 {
		return false
	}
	if pct >= 100 {
		return true
	}
	if subject == "" {
		return false
	}
	return rolloutBucket(name, subject) < pct
}

// Raw returns a copy of the effective flag values, defaults included.
func (m *Manager) Raw() map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return maps.Clone(m.flags)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name, subject string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(normalize(name) + ":" + subject))
	return int(h.Sum32() % 100)
}
