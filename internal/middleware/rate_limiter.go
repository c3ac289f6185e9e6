package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	visitorTTL      = 3 * time.Minute
	cleanupInterval = time.Minute
)

// IPRateLimiter guarda un limiter por IP de cliente.
type IPRateLimiter struct {
	mu   sync.Mutex
	ips  map[string]*visitor
	r    rate.Limit // requests por segundo
	b    int        // burst
	now  func() time.Time
	stop chan struct{}
	once sync.Once
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewIPRateLimiter arranca además la limpieza de IPs inactivas; Close la frena.
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	i := &IPRateLimiter{
		ips:  make(map[string]*visitor),
		r:    r,
		b:    b,
		now:  time.Now,
		stop: make(chan struct{}),
	}
	go i.cleanupLoop()
	return i
}

// Limiter devuelve (o crea) el limiter de ip.
func (i *IPRateLimiter) Limiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	v, ok := i.ips[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(i.r, i.b)}
		i.ips[ip] = v
	}
	v.lastSeen = i.now()
	return v.limiter
}

func (i *IPRateLimiter) Close() {
	i.once.Do(func() { close(i.stop) })
}

func (i *IPRateLimiter) cleanupLoop() {
	t := time.NewTicker(cleanupInterval)
	defer t.Stop()
	for {
		select {
		case <-i.stop:
			return
		case <-t.C:
			i.cleanup()
		}
	}
}

// cleanup borra las IPs sin actividad en visitorTTL.
func (i *IPRateLimiter) cleanup() {
	i.mu.Lock()
	defer i.mu.Unlock()
	now := i.now()
	for ip, v := range i.ips {
		if now.Sub(v.lastSeen) > visitorTTL {
			delete(i.ips, ip)
		}
	}
}

// RateLimit corta con 429 a los clientes que superan el limiter de su IP.
// Va después de chimw.RealIP para que RemoteAddr sea la IP real.
func RateLimit(l *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Limiter(clientIP(r)).Allow() {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error": "too many requests",
					"code":  "rate_limited",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
