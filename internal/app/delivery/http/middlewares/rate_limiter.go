package middlewares

import (
	"fmt"
	"net/http"
	"qris-payment-service/internal/pkg/constvars"
	"qris-payment-service/internal/pkg/exceptions"
	"qris-payment-service/internal/pkg/utils"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per client IP token bucket. A client that exhausts its
// bucket is blocked for blockTime.
type RateLimiter struct {
	visitors  map[string]*visitor
	blocked   map[string]time.Time
	mu        sync.Mutex
	requests  int
	per       time.Duration
	blockTime time.Duration
	message   string
	log       *zap.Logger
	now       func() time.Time
}

func NewRateLimiter(requests int, per, blockTime time.Duration, message string, log *zap.Logger) *RateLimiter {
	if requests <= 0 {
		requests = 1
	}
	return &RateLimiter{
		visitors:  make(map[string]*visitor),
		blocked:   make(map[string]time.Time),
		requests:  requests,
		per:       per,
		blockTime: blockTime,
		message:   message,
		log:       log,
		now:       time.Now,
	}
}

func (r *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ip := utils.GetClientIP(req)
		if !r.allow(ip) {
			utils.LogSecurityEvent(r.log, "rate_limit_exceeded", utils.GetRequestID(req.Context()), utils.SeverityMedium,
				zap.String(constvars.LoggingRemoteAddrKey, ip),
				zap.String(constvars.LoggingEndpointKey, req.URL.Path),
			)
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(r.blockTime.Seconds())))
			utils.BuildErrorResponse(r.log, w, exceptions.ErrTooManyRequests(nil, r.message, ip))
			return
		}
		next.ServeHTTP(w, req)
	})
}

func (r *RateLimiter) allow(ip string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if blockedUntil, found := r.blocked[ip]; found {
		if now.Before(blockedUntil) {
			return false
		}
		delete(r.blocked, ip)
	}

	v, exists := r.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(r.per/time.Duration(r.requests)), r.requests)}
		r.visitors[ip] = v
	}
	v.lastSeen = now

	if !v.limiter.AllowN(now, 1) {
		r.blocked[ip] = now.Add(r.blockTime)
		return false
	}
	return true
}

// Cleanup drops visitors idle for longer than maxIdle.
func (r *RateLimiter) Cleanup(maxIdle time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for ip, v := range r.visitors {
		if now.Sub(v.lastSeen) > maxIdle {
			delete(r.visitors, ip)
		}
	}
	for ip, until := range r.blocked {
		if !now.Before(until) {
			delete(r.blocked, ip)
		}
	}
}

// PaymentRateLimiter limits payment creation per client IP.
func (m *Middlewares) PaymentRateLimiter() *RateLimiter {
	requests := m.InternalConfig.App.PaymentMaxRequestsPerMinute
	if requests <= 0 {
		requests = 5
	}
	block := time.Duration(m.InternalConfig.App.PaymentRateLimitBlockInMinutes) * time.Minute
	if block <= 0 {
		block = time.Minute
	}
	return NewRateLimiter(requests, time.Minute, block, constvars.ErrClientTooManyPaymentRequests, m.Log)
}
