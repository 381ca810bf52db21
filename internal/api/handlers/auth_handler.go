package handlers

import (
	"medication-tracking-service/internal/domain/dtos"
	"medication-tracking-service/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	identity services.IdentityServiceContract
	logger   zerolog.Logger
}

func NewAuthHandler(identity services.IdentityServiceContract, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{identity: identity, logger: logger}
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dtos.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "No se pudo leer la solicitud")
	}
	if req.Username == "" || req.Password == "" {
		return badRequest(c, "Usuario y contraseña son obligatorios")
	}
	resp, err := h.identity.Login(c.UserContext(), req)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.identity.Logout(c.UserContext(), bearerToken(c)); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	return c.JSON(callerIdentity(c))
}

func RegisterAuthRoutes(api fiber.Router, h *AuthHandler, auth fiber.Handler) {
	group := api.Group("/auth")
	group.Post("/login", h.Login)
	group.Post("/logout", auth, h.Logout)
	group.Get("/me", auth, h.Me)
}
