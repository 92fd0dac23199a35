package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// ParseQueryInt parses an optional integer query parameter, falling back to
// def when the parameter is absent. Out-of-range values are not clamped; the
// caller passes them through to the store as-is.
func ParseQueryInt(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, def int64) (int64, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def, true
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s number: %s", key, value))
		return 0, false
	}
	return intValue, true
}

// ParseQueryBool parses an optional boolean query parameter, falling back to
// def when the parameter is absent.
func ParseQueryBool(r *http.Request, w http.ResponseWriter, logger *slog.Logger, key string, def bool) (bool, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def, true
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		RespondError(w, logger, http.StatusBadRequest, fmt.Sprintf("Invalid %s value: %s", key, value))
		return false, false
	}
	return boolValue, true
}
