// Package featureflags evaluates rollout switches from configuration.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
)

// ActivityFeed gates the article activity WebSocket stream.
const ActivityFeed = "activity_feed"

// rollout is a parsed flag value: a percentage in [0,100].
type rollout int

const (
	off rollout = 0
	on  rollout = 100
)

// Set holds flags parsed from a comma-separated list such as
// "activity_feed=on,like_counts=25%". Unknown flags are disabled.
type Set struct {
	flags map[string]rollout
}

// Parse builds a Set. Malformed entries are skipped and returned as warnings
// so the caller can log them.
func Parse(raw string) (*Set, []string) {
	s := &Set{flags: make(map[string]rollout)}
	var warnings []string

	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, value, ok := strings.Cut(entry, "=")
		name = normalize(name)
		if !ok || name == "" {
			warnings = append(warnings, fmt.Sprintf("feature flag %q: expected name=value", entry))
			continue
		}
		r, err := parseRollout(value)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("feature flag %q: %v", name, err))
			continue
		}
		s.flags[name] = r
	}
	return s, warnings
}

func parseRollout(value string) (rollout, error) {
	switch v := normalize(value); v {
	case "on", "true", "1":
		return on, nil
	case "off", "false", "0":
		return off, nil
	default:
		if !strings.HasSuffix(v, "%") {
			return off, fmt.Errorf("unrecognized value %q", value)
		}
		pct, err := strconv.Atoi(strings.TrimSuffix(v, "%"))
		if err != nil {
			return off, fmt.Errorf("bad percentage %q", value)
		}
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		return rollout(pct), nil
	}
}

// Enabled reports whether name is on for userID. Partial rollouts are
// deterministic per user and never include the anonymous user (0).
func (s *Set) Enabled(name string, userID uint) bool {
	if s == nil {
		return false
	}
	r, ok := s.flags[normalize(name)]
	switch {
	case !ok || r == off:
		return false
	case r == on:
		return true
	case userID == 0:
		return false
	}
	return bucket(name, userID) < int(r)
}

// Active reports whether name is on for at least part of the user base.
func (s *Set) Active(name string) bool {
	if s == nil {
		return false
	}
	return s.flags[normalize(name)] > off
}

// Names returns the configured flag names in order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.flags))
	for name := range s.flags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func bucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = fmt.Fprintf(h, "%s:%d", normalize(name), userID)
	return int(h.Sum32() % 100)
}
