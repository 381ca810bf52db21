package handlers

import (
	"medication-tracking-service/internal/domain/dtos"
	"medication-tracking-service/internal/domain/entities"
	"medication-tracking-service/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const defaultActivityLimit = 20

type PatientHandler struct {
	patients      services.PatientServiceContract
	notifications services.NotificationServiceContract
	logger        zerolog.Logger
}

func NewPatientHandler(patients services.PatientServiceContract, notifications services.NotificationServiceContract, logger zerolog.Logger) *PatientHandler {
	return &PatientHandler{patients: patients, notifications: notifications, logger: logger}
}

func toPatientDTO(p *entities.Patient) dtos.PatientDTO {
	return dtos.PatientDTO{
		ID:        p.ID,
		Name:      p.Name,
		Bed:       p.Bed,
		LineID:    p.LineID,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func (h *PatientHandler) Register(c *fiber.Ctx) error {
	var req dtos.CreatePatientRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "No se pudo leer la solicitud")
	}
	p, err := h.patients.Register(c.UserContext(), req)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toPatientDTO(p))
}

func (h *PatientHandler) Get(c *fiber.Ctx) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Identificador de paciente inválido")
	}
	p, err := h.patients.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(toPatientDTO(p))
}

func (h *PatientHandler) Update(c *fiber.Ctx) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Identificador de paciente inválido")
	}
	var req dtos.UpdatePatientRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "No se pudo leer la solicitud")
	}
	p, err := h.patients.Update(c.UserContext(), id, req)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(toPatientDTO(p))
}

func (h *PatientHandler) ListByLine(c *fiber.Ctx) error {
	lineID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Identificador de línea inválido")
	}
	patients, err := h.patients.ListByLine(c.UserContext(), lineID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	out := make([]dtos.PatientDTO, 0, len(patients))
	for _, p := range patients {
		out = append(out, toPatientDTO(p))
	}
	return c.JSON(out)
}

func (h *PatientHandler) ListLines(c *fiber.Ctx) error {
	lines, err := h.patients.ListLines(c.UserContext())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(lines)
}

func (h *PatientHandler) CreateLine(c *fiber.Ctx) error {
	var req dtos.CreateLineRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "No se pudo leer la solicitud")
	}
	line, err := h.patients.CreateLine(c.UserContext(), req)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(line)
}

// Activity returns the latest transitions seen on a line, newest first.
func (h *PatientHandler) Activity(c *fiber.Ctx) error {
	lineID, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Identificador de línea inválido")
	}
	limit := c.QueryInt("limit", defaultActivityLimit)
	return c.JSON(h.notifications.Recent(lineID, limit))
}

func RegisterPatientRoutes(api fiber.Router, h *PatientHandler, auth fiber.Handler) {
	patients := api.Group("/patients", auth)
	patients.Post("/", h.Register)
	patients.Get("/:id", h.Get)
	patients.Patch("/:id", h.Update)

	lines := api.Group("/lines", auth)
	lines.Get("/", h.ListLines)
	lines.Post("/", RequireRole(entities.RoleAdmin), h.CreateLine)
	lines.Get("/:id/patients", h.ListByLine)
	lines.Get("/:id/activity", h.Activity)
}
