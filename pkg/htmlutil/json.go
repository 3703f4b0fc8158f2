package htmlutil

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// CleanupUnserializable returns a shallow copy of d where every value that
// cannot be JSON-encoded is replaced by its string form.
func CleanupUnserializable(d map[string]any) map[string]any {
	out := make(map[string]any, len(d))
	for k, v := range d {
		if _, err := json.Marshal(map[string]any{k: v}); err != nil {
			slog.Debug("coercing unserializable report value", "key", k, "err", err)
			v = fmt.Sprint(v)
		}
		out[k] = v
	}
	return out
}

// Deprecated logs a deprecation warning for legacy API usage.
func Deprecated(msg string) {
	slog.Warn(msg, "category", "deprecation")
}
