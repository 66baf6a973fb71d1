package cooldown

import (
	"net"
	"net/http"
	"strings"
)

// LoopbackIP is the final fallback when no client address can be determined.
const LoopbackIP = "127.0.0.1"

// ClientIP extracts a best-effort client address for unauthenticated actor
// keys (e.g. login-rate checks). Lookup order: first entry of
// X-Forwarded-For (set by the trusted reverse proxy), then X-Real-IP, then
// the connection's remote address, then loopback. The result is only ever
// used as a throttle key, so best-effort is acceptable.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if first != "" {
			return first
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return LoopbackIP
}

// IPActorKey builds the cooldown actor key for an unauthenticated client.
// IP keys live in a separate record space from user ids.
func IPActorKey(ip string) string {
	return "ip:" + ip
}
