package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Anonymous-send limits, per client IP.
const (
	SendCooldown    = 30 * time.Second // Minimum gap between posts
	SendWindow      = 10 * time.Minute // Sliding window length
	SendWindowLimit = 5                // Posts per window
	SendDailyLimit  = 200              // Posts per calendar day
)

type sendState struct {
	limiter  *rate.Limiter // Window budget: SendWindowLimit per SendWindow
	last     time.Time     // Time of the previous accepted post
	day      string        // Calendar day of dayCount
	dayCount int           // Accepted posts today
}

// SendLimiter rate limits the anonymous send endpoint per client IP:
// a cooldown between posts, a sliding-window budget and a daily cap.
type SendLimiter struct {
	mu       sync.Mutex
	states   map[string]*sendState
	cooldown time.Duration
	every    rate.Limit
	burst    int
	daily    int
	now      func() time.Time
}

// NewSendLimiter returns a limiter with the default limits.
func NewSendLimiter() *SendLimiter {
	return &SendLimiter{
		states:   make(map[string]*sendState),
		cooldown: SendCooldown,
		every:    rate.Every(SendWindow / SendWindowLimit),
		burst:    SendWindowLimit,
		daily:    SendDailyLimit,
		now:      time.Now,
	}
}

func (l *SendLimiter) state(ip string, now time.Time) *sendState {
	st, ok := l.states[ip]
	if !ok {
		st = &sendState{limiter: rate.NewLimiter(l.every, l.burst)}
		l.states[ip] = st
	}
	// Reset the daily counter when the calendar day rolls over
	day := now.Format("2006-01-02")
	if st.day != day {
		st.day = day
		st.dayCount = 0
	}
	return st
}

// allow records one post attempt for ip and returns whether it may
// proceed, with a retry hint in seconds when it may not.
func (l *SendLimiter) allow(ip string, now time.Time) (ok bool, retryAfter int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	st := l.state(ip, now)
	if !st.last.IsZero() && now.Sub(st.last) < l.cooldown {
		return false, int(math.Ceil((l.cooldown - now.Sub(st.last)).Seconds()))
	}
	if st.dayCount >= l.daily {
		return false, 0
	}
	rsv := st.limiter.ReserveN(now, 1)
	if delay := rsv.DelayFrom(now); delay > 0 {
		rsv.CancelAt(now)
		return false, int(math.Ceil(delay.Seconds()))
	}
	st.last = now
	st.dayCount++
	return true, 0
}

// Handler rejects over-limit requests with 429 and a Retry-After hint.
func (l *SendLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retryAfter := l.allow(c.ClientIP(), l.now())
		if !ok {
			if retryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(retryAfter))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
