package handlers

import (
	"time"

	"medication-tracking-service/internal/domain/entities"
	"medication-tracking-service/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type DailyProcessHandler struct {
	days   services.DailyProcessServiceContract
	now    func() time.Time
	logger zerolog.Logger
}

func NewDailyProcessHandler(days services.DailyProcessServiceContract, now func() time.Time, logger zerolog.Logger) *DailyProcessHandler {
	return &DailyProcessHandler{days: days, now: now, logger: logger}
}

func (h *DailyProcessHandler) Current(c *fiber.Ctx) error {
	batch, err := h.days.Current(c.UserContext(), h.now())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(batch)
}

func (h *DailyProcessHandler) Open(c *fiber.Ctx) error {
	batch, created, err := h.days.OpenToday(c.UserContext(), h.now())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(batch)
}

func RegisterDailyProcessRoutes(api fiber.Router, h *DailyProcessHandler, auth fiber.Handler) {
	group := api.Group("/daily-process", auth)
	group.Get("/current", h.Current)
	group.Post("/open", RequireRole(entities.RolePharmacist, entities.RoleAdmin), h.Open)
}
