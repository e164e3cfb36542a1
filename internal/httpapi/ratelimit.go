package httpapi

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const visitorTTL = 10 * time.Minute

// visitorLimiter hands out one token bucket per client address. Stale
// entries are swept on access once they have been idle past the TTL, so no
// background goroutine is needed.
type visitorLimiter struct {
	rps   rate.Limit
	burst int

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newVisitorLimiter(rps rate.Limit, burst int) *visitorLimiter {
	return &visitorLimiter{
		rps:       rps,
		burst:     burst,
		visitors:  make(map[string]*visitor),
		lastSweep: time.Now(),
	}
}

// allow reports whether the client may proceed, consuming a token.
func (vl *visitorLimiter) allow(ip string) bool {
	vl.mu.Lock()
	defer vl.mu.Unlock()

	now := time.Now()
	if now.Sub(vl.lastSweep) > visitorTTL {
		for addr, v := range vl.visitors {
			if now.Sub(v.lastSeen) > visitorTTL {
				delete(vl.visitors, addr)
			}
		}
		vl.lastSweep = now
	}

	v, ok := vl.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(vl.rps, vl.burst)}
		vl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.Allow()
}

// clientIP extracts the caller's address, trusting the first entry of
// X-Forwarded-For when a proxy set it.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
