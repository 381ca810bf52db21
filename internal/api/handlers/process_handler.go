package handlers

import (
	"time"

	"medication-tracking-service/internal/domain/dtos"
	"medication-tracking-service/internal/fhir/mappers"
	"medication-tracking-service/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ProcessHandler struct {
	processes services.MedicationProcessServiceContract
	patients  services.PatientServiceContract
	now       func() time.Time
	logger    zerolog.Logger
}

func NewProcessHandler(processes services.MedicationProcessServiceContract, patients services.PatientServiceContract, now func() time.Time, logger zerolog.Logger) *ProcessHandler {
	return &ProcessHandler{processes: processes, patients: patients, now: now, logger: logger}
}

func uuidParam(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

func (h *ProcessHandler) Start(c *fiber.Ctx) error {
	var req dtos.StartProcessRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "No se pudo leer la solicitud")
	}
	process, err := h.processes.Start(c.UserContext(), req, callerIdentity(c).Username, h.now())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(process)
}

func (h *ProcessHandler) List(c *fiber.Ctx) error {
	var q dtos.ProcessQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "Parámetros de búsqueda inválidos")
	}
	list, err := h.processes.ListToday(c.UserContext(), q, h.now())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(list)
}

func (h *ProcessHandler) Get(c *fiber.Ctx) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Identificador de proceso inválido")
	}
	process, err := h.processes.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(process)
}

func (h *ProcessHandler) Scans(c *fiber.Ctx) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Identificador de proceso inválido")
	}
	scans, err := h.processes.History(c.UserContext(), id)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(scans)
}

// FHIR exports the process as a MedicationDispense resource.
func (h *ProcessHandler) FHIR(c *fiber.Ctx) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Identificador de proceso inválido")
	}
	ctx := c.UserContext()
	process, err := h.processes.Get(ctx, id)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	patient, err := h.patients.Get(ctx, process.PatientID)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	scans, err := h.processes.History(ctx, id)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	raw, err := mappers.MapMedicationProcessToFHIR(*process, *patient, scans)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	c.Set(fiber.HeaderContentType, "application/fhir+json")
	return c.Send(raw)
}

func RegisterProcessRoutes(api fiber.Router, h *ProcessHandler, auth fiber.Handler) {
	group := api.Group("/processes", auth)
	group.Post("/", h.Start)
	group.Get("/", h.List)
	group.Get("/:id", h.Get)
	group.Get("/:id/scans", h.Scans)
	group.Get("/:id/fhir", h.FHIR)
}
