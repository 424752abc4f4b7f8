package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter *rate.Limiter
	seen    time.Time
}

// MutationLimiter is a per-user token bucket for write endpoints.
type MutationLimiter struct {
	mu       sync.Mutex
	visitors map[uuid.UUID]*visitor
	rate     rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

func NewMutationLimiter(perSecond float64, burst int) *MutationLimiter {
	return &MutationLimiter{
		visitors: make(map[uuid.UUID]*visitor),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		idle:     10 * time.Minute,
		now:      time.Now,
	}
}

func (l *MutationLimiter) allow(userID uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[userID]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.visitors[userID] = v
	}
	v.seen = l.now()
	return v.limiter.AllowN(v.seen, 1)
}

// Purge forgets users idle for longer than the idle window.
func (l *MutationLimiter) Purge() int {
	cutoff := l.now().Add(-l.idle)
	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0
	for id, v := range l.visitors {
		if v.seen.Before(cutoff) {
			delete(l.visitors, id)
			n++
		}
	}
	return n
}

// Handler limits POST, PUT, PATCH and DELETE. It must run after JWT.
func (l *MutationLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		userID, ok := UserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !l.allow(userID) {
			RLBlocked.WithLabelValues("mutation:" + c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		RLRequests.WithLabelValues("mutation:" + c.FullPath()).Inc()
		c.Next()
	}
}
