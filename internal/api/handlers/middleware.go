package handlers

import (
	"strings"
	"time"

	"medication-tracking-service/internal/domain/dtos"
	"medication-tracking-service/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/rs/zerolog"
)

const identityLocal = "identity"

// RequireAuth resolves the bearer token of the request into the caller's
// identity and stores it in the request locals.
func RequireAuth(identity services.IdentityServiceContract, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return errorJSON(c, fiber.StatusUnauthorized, kindUnauthorized, services.KindUnauthorized.UserMessage())
		}
		who, err := identity.CurrentIdentity(c.UserContext(), token)
		if err != nil {
			return writeError(c, log, err)
		}
		c.Locals(identityLocal, who)
		return c.Next()
	}
}

// RequireRole lets the request through only when the caller holds one of roles.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		who := callerIdentity(c)
		if who != nil {
			for _, r := range roles {
				if who.Role == r {
					return c.Next()
				}
			}
		}
		return errorJSON(c, fiber.StatusForbidden, kindForbidden, "No tiene permisos para esta acción")
	}
}

// ScanRateLimiter caps scans per staff member per minute.
func ScanRateLimiter(maxPerMinute int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        maxPerMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if who := callerIdentity(c); who != nil {
				return "staff:" + who.Username
			}
			return "ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return errorJSON(c, fiber.StatusTooManyRequests, "RateLimited", "Demasiados escaneos, espere un momento")
		},
	})
}

// RequestLogger logs one line per request.
func RequestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		ev := log.Info()
		if status := c.Response().StatusCode(); status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("latency", time.Since(start)).
			Interface("request_id", c.Locals("requestid")).
			Msg("http_request")
		return err
	}
}

func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func callerIdentity(c *fiber.Ctx) *dtos.Identity {
	who, _ := c.Locals(identityLocal).(*dtos.Identity)
	return who
}
