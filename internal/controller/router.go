package controller

import (
	"context"
	"time"

	"gig-marketplace-api/internal/service"

	"github.com/labstack/echo"
)

const visitorSweepInterval = time.Minute

type RouterConfig struct {
	JWTSecret      []byte
	RateLimitRPS   float64
	RateLimitBurst int
}

func SetupRoutesHandlers(ctx context.Context, handler *echo.Echo, services *service.Services, cfg RouterConfig) {
	validate := newValidator()
	auth := Authenticate(cfg.JWTSecret, services.User)
	limiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx, visitorSweepInterval)

	api := handler.Group("/api")
	newDiagnosticRoutesHandler(api, services)
	newGigRoutesHandler(api, services, validate, auth)
	newBidRoutesHandler(api, services, validate, auth)
	newPaymentRoutesHandler(api, services, validate, limiter.Limit(), auth)
	newRatingRoutesHandler(api, services, validate, auth)
	newUserRoutesHandler(api, services, auth)
}
