package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Token bucket per client IP guarding the websocket upgrade endpoint. The
// widget opens one connection per session, so a burst of upgrades from one
// address is either a reload loop or abuse.

type bucket struct {
	tokens     int
	lastRefill time.Time
}

var (
	rlMu     sync.Mutex
	buckets  = map[string]*bucket{}
	window   = 10 * time.Second
	capacity = 5
)

// SetRateLimitConfig tunes the bucket; call at startup or from tests.
func SetRateLimitConfig(win time.Duration, cap int) {
	rlMu.Lock()
	window = win
	capacity = cap
	buckets = map[string]*bucket{}
	rlMu.Unlock()
}

// Allow consumes one token for key, refilling proportionally to elapsed time.
func Allow(key string) bool {
	now := time.Now()
	rlMu.Lock()
	defer rlMu.Unlock()

	b := buckets[key]
	if b == nil {
		b = &bucket{tokens: capacity, lastRefill: now}
		buckets[key] = b
	}
	if elapsed := now.Sub(b.lastRefill); elapsed > 0 {
		add := int(float64(capacity) * (float64(elapsed) / float64(window)))
		if add > 0 {
			b.tokens += add
			if b.tokens > capacity {
				b.tokens = capacity
			}
			b.lastRefill = now
		}
	}
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

func clientIP(c *gin.Context) string {
	ip := strings.TrimSpace(c.ClientIP())
	if ip == "" {
		host, _, _ := net.SplitHostPort(strings.TrimSpace(c.Request.RemoteAddr))
		ip = host
	}
	return ip
}

func RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Allow(clientIP(c)) {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"msg": "too many requests"})
			return
		}
		c.Next()
	}
}
