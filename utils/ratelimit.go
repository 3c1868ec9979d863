package utils

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiters struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rate    rate.Limit
	burst   int
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	cl, ok := l.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[ip] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter
}

func (l *ipLimiters) cleanup() {
	for {
		time.Sleep(time.Minute)
		l.mu.Lock()
		for ip, cl := range l.clients {
			if time.Since(cl.lastSeen) > 3*time.Minute {
				delete(l.clients, ip)
			}
		}
		l.mu.Unlock()
	}
}

// RateLimitMiddleware throttles requests per client IP.
func RateLimitMiddleware(perSecond float64, burst int) gin.HandlerFunc {
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	limiters := &ipLimiters{
		clients: make(map[string]*clientLimiter),
		rate:    rate.Limit(perSecond),
		burst:   burst,
	}
	go limiters.cleanup()

	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
			})
			return
		}
		c.Next()
	}
}
