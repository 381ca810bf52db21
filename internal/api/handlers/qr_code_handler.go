package handlers

import (
	"medication-tracking-service/internal/domain/dtos"
	"medication-tracking-service/internal/domain/entities"
	"medication-tracking-service/internal/domain/workflow"
	"medication-tracking-service/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type QRCodeHandler struct {
	registry services.QRRegistryServiceContract
	logger   zerolog.Logger
}

func NewQRCodeHandler(registry services.QRRegistryServiceContract, logger zerolog.Logger) *QRCodeHandler {
	return &QRCodeHandler{registry: registry, logger: logger}
}

func (h *QRCodeHandler) Issue(c *fiber.Ctx) error {
	var req dtos.IssueQRCodeRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "No se pudo leer la solicitud")
	}
	code, err := h.registry.Issue(c.UserContext(), workflow.CheckpointType(req.Type), req.Label)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(code)
}

func (h *QRCodeHandler) SetActive(c *fiber.Ctx) error {
	id, ok := uuidParam(c, "id")
	if !ok {
		return badRequest(c, "Identificador de código QR inválido")
	}
	var req dtos.SetQRCodeActiveRequest
	if err := c.BodyParser(&req); err != nil || req.Active == nil {
		return badRequest(c, "El campo active es obligatorio")
	}
	if err := h.registry.SetActive(c.UserContext(), id, *req.Active); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *QRCodeHandler) List(c *fiber.Ctx) error {
	codes, err := h.registry.List(c.UserContext())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(codes)
}

func RegisterQRCodeRoutes(api fiber.Router, h *QRCodeHandler, auth fiber.Handler) {
	group := api.Group("/qrcodes", auth)
	group.Get("/", h.List)
	group.Post("/", RequireRole(entities.RoleAdmin), h.Issue)
	group.Patch("/:id/active", RequireRole(entities.RoleAdmin), h.SetActive)
}
