package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// defaultHSTSMaxAge applies when SecurityOptions.HSTSMaxAge is not positive.
const defaultHSTSMaxAge = 180 * 24 * time.Hour

// exposedHeaders lists the response headers browser clients of the prompt
// endpoint need to read, in the order they are appended to
// Access-Control-Expose-Headers.
var exposedHeaders = []string{
	requestIDHeader,
	"Retry-After",
	"X-RateLimit-Limit",
	"X-RateLimit-Remaining",
	"X-RateLimit-Reset",
	HeaderIdempotencyReplayed,
	"ETag",
}

// SecurityOptions selects the optional headers SecurityHeaders adds.
//
// HSTS is only ever sent on HTTPS requests, and only enable it when TLS runs
// end to end. NoStore adds Cache-Control: no-store with the legacy Pragma and
// Expires companions. EnablePolicy adds Permissions-Policy and
// X-Permitted-Cross-Domain-Policies.
type SecurityOptions struct {
	EnableHSTS   bool
	HSTSMaxAge   time.Duration
	NoStore      bool
	EnablePolicy bool
}

type headerPair struct{ name, value string }

// SecurityHeaders sets nosniff, X-Frame-Options: DENY and
// Referrer-Policy: no-referrer on every response, plus whatever opt enables.
// When the response carries a request ID it also makes sure the correlation,
// quota and replay headers are listed in Access-Control-Expose-Headers.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	static := []headerPair{
		{"X-Content-Type-Options", "nosniff"},
		{"X-Frame-Options", "DENY"},
		{"Referrer-Policy", "no-referrer"},
	}
	if opt.EnablePolicy {
		static = append(static,
			headerPair{"Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()"},
			headerPair{"X-Permitted-Cross-Domain-Policies", "none"},
		)
	}
	if opt.NoStore {
		static = append(static,
			headerPair{"Cache-Control", "no-store"},
			headerPair{"Pragma", "no-cache"},
			headerPair{"Expires", "0"},
		)
	}

	maxAge := opt.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = defaultHSTSMaxAge
	}
	hsts := "max-age=" + strconv.Itoa(int(maxAge.Seconds())) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()
		for _, p := range static {
			h.Set(p.name, p.value)
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}
		if h.Get(requestIDHeader) != "" {
			h.Set("Access-Control-Expose-Headers", appendExposed(h.Get("Access-Control-Expose-Headers")))
		}
		c.Next()
	}
}

// appendExposed adds each of exposedHeaders missing from cur.
func appendExposed(cur string) string {
	present := make(map[string]bool)
	for _, name := range strings.Split(cur, ",") {
		if name = strings.TrimSpace(name); name != "" {
			present[strings.ToLower(name)] = true
		}
	}
	out := strings.TrimSpace(cur)
	for _, name := range exposedHeaders {
		if present[strings.ToLower(name)] {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += name
	}
	return out
}

// isHTTPS reports whether r arrived over TLS, directly or through a proxy
// that set X-Forwarded-Proto: https.
func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
