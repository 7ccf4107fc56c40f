package controller

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"gig-marketplace-api/internal/service"
	"gig-marketplace-api/pkg/apperrors"
	"gig-marketplace-api/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo"
	"golang.org/x/time/rate"
)

// RequestID reuses an incoming X-Request-ID or generates one, and puts it in
// the request context for logging.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestId := c.Request().Header.Get(echo.HeaderXRequestID)
			if requestId == "" {
				requestId = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, requestId)

			ctx := logger.WithRequestID(c.Request().Context(), requestId)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			logger.FromContext(req.Context()).Info("request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", c.Response().Status,
				"latency", time.Since(start).String(),
				"ip", c.RealIP(),
			)

			return nil
		}
	}
}

// Authenticate verifies the HS256 bearer token and resolves the caller's
// identity from its subject.
func Authenticate(secret []byte, users service.User) echo.MiddlewareFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				return respondError(c, service.ErrUnauthorized)
			}

			token, err := parser.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
				return secret, nil
			})
			if err != nil || !token.Valid {
				return respondError(c, service.ErrUnauthorized.Wrap(err))
			}

			subject, err := token.Claims.GetSubject()
			if err != nil {
				return respondError(c, service.ErrUnauthorized.Wrap(err))
			}
			userId, err := uuid.Parse(subject)
			if err != nil {
				return respondError(c, service.ErrUnauthorized.Wrap(err))
			}

			identity, err := users.ResolveIdentity(c.Request().Context(), userId)
			if err != nil {
				return respondError(c, err)
			}

			c.Set(identityKey, identity)
			ctx := logger.WithUserID(c.Request().Context(), userId.String())
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

var errTooManyRequests = apperrors.New(apperrors.CodeTooManyRequests, "Too many requests, try again later", http.StatusTooManyRequests)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client ip.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	ttl   time.Duration

	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		ttl:      10 * time.Minute,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = rl.now()

	return v.limiter
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.ttl {
			delete(rl.visitors, ip)
		}
	}
}

// Run forgets idle visitors every interval until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

func (rl *RateLimiter) Limit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !rl.getLimiter(c.RealIP()).Allow() {
				return respondError(c, errTooManyRequests)
			}

			return next(c)
		}
	}
}
