package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/core"
)

// openRangeStart and openRangeEnd bound an unconstrained date range. ISO
// dates compare lexicographically, so these sort below and above any real
// date.
const (
	openRangeStart = "0000-01-01"
	openRangeEnd   = "9999-12-31"
)

// userID reads the caller identity from the X-User-ID header. Authentication
// happens upstream; the service trusts the header.
func userID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-User-ID"))
}

// parseRange reads optional from/to query parameters. Absent bounds default
// to the open range; present bounds must be well-formed dates.
func parseRange(r *http.Request) (start, end string, err error) {
	start, end = openRangeStart, openRangeEnd
	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		if err := core.ValidateDate(v); err != nil {
			return "", "", fmt.Errorf("invalid from date %q", v)
		}
		start = v
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		if err := core.ValidateDate(v); err != nil {
			return "", "", fmt.Errorf("invalid to date %q", v)
		}
		end = v
	}
	return start, end, nil
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// clientIP extracts the caller address, honoring proxy headers.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
