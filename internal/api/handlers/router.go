package handlers

import (
	"context"
	"time"

	"medication-tracking-service/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
)

// HealthCheck probes one dependency; a non-nil error marks it down.
type HealthCheck func(ctx context.Context) error

// Dependencies is everything the HTTP layer needs.
type Dependencies struct {
	Identity      services.IdentityServiceContract
	Dispatch      services.DispatchServiceContract
	Days          services.DailyProcessServiceContract
	Processes     services.MedicationProcessServiceContract
	QRCodes       services.QRRegistryServiceContract
	Patients      services.PatientServiceContract
	Notifications services.NotificationServiceContract

	HealthChecks  map[string]HealthCheck
	ScanRateLimit int
	Now           func() time.Time
	Logger        zerolog.Logger
}

// NewApp builds the fiber application with the common middleware stack and
// every route registered.
func NewApp(deps Dependencies) *fiber.App {
	log := deps.Logger.With().Str("component", "http").Logger()
	app := fiber.New(fiber.Config{
		AppName:               "medtrack",
		DisableStartupMessage: true,
		ErrorHandler:          fiberErrorHandler(log),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(RequestLogger(log))

	RegisterRoutes(app, deps, log)
	return app
}

func RegisterRoutes(app *fiber.App, deps Dependencies, log zerolog.Logger) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	limit := deps.ScanRateLimit
	if limit <= 0 {
		limit = 30
	}

	app.Get("/healthz", healthHandler(deps.HealthChecks))

	api := app.Group("/api/v1")
	auth := RequireAuth(deps.Identity, log)

	RegisterAuthRoutes(api, NewAuthHandler(deps.Identity, log), auth)
	RegisterScanRoutes(api, NewScanHandler(deps.Dispatch, log), auth, ScanRateLimiter(limit))
	RegisterDailyProcessRoutes(api, NewDailyProcessHandler(deps.Days, now, log), auth)
	RegisterProcessRoutes(api, NewProcessHandler(deps.Processes, deps.Patients, now, log), auth)
	RegisterQRCodeRoutes(api, NewQRCodeHandler(deps.QRCodes, log), auth)
	RegisterPatientRoutes(api, NewPatientHandler(deps.Patients, deps.Notifications, log), auth)
}

func healthHandler(checks map[string]HealthCheck) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		status := fiber.StatusOK
		report := fiber.Map{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = fiber.StatusServiceUnavailable
				report[name] = err.Error()
				continue
			}
			report[name] = "ok"
		}
		state := "ok"
		if status != fiber.StatusOK {
			state = "degraded"
		}
		return c.Status(status).JSON(fiber.Map{"status": state, "checks": report})
	}
}
