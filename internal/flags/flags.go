package flags

import (
	"context"
	"os"
	"strconv"
	"strings"
)

// Evaluator is the feature-flag capability injected into components that need
// runtime toggles. Keeping it an interface lets tests swap in fixed maps and
// keeps vendor SDKs out of business logic.
type Evaluator interface {
	Bool(ctx context.Context, key string, def bool) bool
}

// Flag keys in use.
const (
	NotificationsEnabled = "notifications_enabled"
)

// Static is a fixed flag set. The zero value returns defaults for every key.
type Static map[string]bool

func (s Static) Bool(_ context.Context, key string, def bool) bool {
	if v, ok := s[key]; ok {
		return v
	}
	return def
}

// FromEnv builds a Static set from environment variables. A flag named
// "notifications_enabled" is read from FLAG_NOTIFICATIONS_ENABLED.
func FromEnv() Static {
	out := Static{}
	for _, kv := range os.Environ() {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, "FLAG_") {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(name, "FLAG_"))
		if key == "" {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		out[key] = b
	}
	return out
}
