package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"locality/pkg/requestcontext"
)

// Metadata extracts client IP and a normalized User-Agent into the context so
// audit events can record where a workflow decision came from.
func Metadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(r.Context(), clientIP(r), normalizeUserAgent(r.UserAgent()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	// X-Forwarded-For wins when the service sits behind the usual proxy.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// normalizeUserAgent reduces the raw UA string to "browser/version (os)" so
// audit rows stay short and comparable.
func normalizeUserAgent(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		return raw
	}
	normalized := name
	if version != "" {
		normalized += "/" + version
	}
	if os := ua.OS(); os != "" {
		normalized += " (" + os + ")"
	}
	return normalized
}
