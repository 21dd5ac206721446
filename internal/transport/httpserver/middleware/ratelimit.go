package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"relief-grid-go/internal/domain/access"
	"relief-grid-go/internal/ratelimit"
	"relief-grid-go/pkg/logger"
)

const ClientTokenHeader = "X-Client-Token"

// RateLimit limits submissions per client. Signed-in actors are keyed by their
// verified id. Guests are keyed by the address ClientAddr recorded and, when
// sent, by client token; every key must allow the request. Admins are not limited. A failing
// store lets the request through.
func RateLimit(limiter *ratelimit.Limiter, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := ActorFromContext(r.Context())
			if limiter == nil || actor.IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			var retryAfter time.Duration
			for _, key := range clientKeys(r, actor) {
				decision, err := limiter.Allow(r.Context(), key)
				if err != nil {
					log.InternalError("ratelimit: store failed", err, "client", key)
					continue
				}
				if !decision.Allowed && decision.RetryAfter >= retryAfter {
					retryAfter = decision.RetryAfter
					if retryAfter <= 0 {
						retryAfter = time.Second
					}
				}
			}
			if retryAfter > 0 {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				writeError(w, http.StatusTooManyRequests, "rate_limited", "too many submissions, retry later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKeys(r *http.Request, actor access.Actor) []string {
	if !actor.IsGuest() {
		return []string{"actor:" + actor.ID}
	}
	host, ok := ClientAddrFromContext(r.Context())
	if !ok {
		host = socketHost(r.RemoteAddr)
	}
	keys := []string{"ip:" + host}
	if token := strings.TrimSpace(r.Header.Get(ClientTokenHeader)); token != "" {
		keys = append(keys, "token:"+token)
	}
	return keys
}
