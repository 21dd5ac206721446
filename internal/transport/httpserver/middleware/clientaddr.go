package middleware

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientAddr records the address submissions are limited by. It reads the
// socket peer, so it must run before chi's RealIP rewrites RemoteAddr.
// Forwarded headers are honoured only when the peer is a trusted proxy; the
// right-most X-Forwarded-For hop that is not itself a trusted proxy wins,
// then X-Real-IP.
func ClientAddr(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr := resolveClientAddr(r, trusted)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientAddrKey, addr)))
		})
	}
}

// ClientAddrFromContext returns the address recorded by ClientAddr.
func ClientAddrFromContext(ctx context.Context) (string, bool) {
	addr, ok := ctx.Value(clientAddrKey).(string)
	return addr, ok && addr != ""
}

func resolveClientAddr(r *http.Request, trusted []netip.Prefix) string {
	peer := socketHost(r.RemoteAddr)
	if !isTrusted(peer, trusted) {
		return peer
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		hops := strings.Split(forwarded, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			addr, err := netip.ParseAddr(hop)
			if err != nil {
				break
			}
			if !isTrusted(addr.Unmap().String(), trusted) {
				return addr.Unmap().String()
			}
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		if addr, err := netip.ParseAddr(realIP); err == nil {
			return addr.Unmap().String()
		}
	}
	return peer
}

func socketHost(remote string) string {
	host, _, err := net.SplitHostPort(remote)
	if err != nil {
		return remote
	}
	return host
}

func isTrusted(host string, trusted []netip.Prefix) bool {
	if len(trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
