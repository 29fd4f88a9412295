package httpserver

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pscheid92/syncvision/internal/platform/config"
)

// NewCheckOrigin returns a websocket CheckOrigin that accepts the same
// origins as the CORS configuration. "*" accepts everything; requests
// without an Origin header (non-browser clients) are always accepted.
func NewCheckOrigin(cfg *config.Config) func(r *http.Request) bool {
	if cfg.AllowsAnyOrigin() {
		return func(*http.Request) bool { return true }
	}

	origins := make(map[string]struct{}, len(cfg.CORSAllowedOrigins))
	for _, o := range cfg.CORSAllowedOrigins {
		if normalized := normalizeOrigin(o); normalized != "" {
			origins[normalized] = struct{}{}
		}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}

		if _, ok := origins[normalizeOrigin(origin)]; ok {
			return true
		}

		slog.WarnContext(r.Context(), "WebSocket origin rejected", "origin", origin, "remote_addr", r.RemoteAddr)
		return false
	}
}

func normalizeOrigin(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}
