package handlers

import (
	"context"
	"errors"

	"medication-tracking-service/internal/database"
	"medication-tracking-service/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Error kinds of the JSON error body that are not dispatch kinds.
const (
	kindNotFound     = "NotFound"
	kindConflict     = "Conflict"
	kindForbidden    = "Forbidden"
	kindInternal     = "Internal"
	kindCanceled     = "Canceled"
	kindUnauthorized = string(services.KindUnauthorized)
)

// statusClientClosedRequest is the non-standard status for a caller that
// went away before the response was written.
const statusClientClosedRequest = 499

var dispatchStatus = map[services.DispatchErrorKind]int{
	services.KindInvalidToken:        fiber.StatusBadRequest,
	services.KindInvalidRequest:      fiber.StatusBadRequest,
	services.KindUnauthorized:        fiber.StatusUnauthorized,
	services.KindUnknownLine:         fiber.StatusNotFound,
	services.KindNoActiveBatch:       fiber.StatusConflict,
	services.KindNoEligibleProcesses: fiber.StatusUnprocessableEntity,
	services.KindStoreUnavailable:    fiber.StatusServiceUnavailable,
}

var notFoundMessages = map[error]string{
	services.ErrQRCodeNotFound:  "El código QR no existe",
	services.ErrLineNotFound:    "La línea no existe",
	services.ErrPatientNotFound: "El paciente no existe",
	services.ErrProcessNotFound: "El proceso no existe",
}

func errorJSON(c *fiber.Ctx, status int, kind, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": kind, "message": message})
}

func badRequest(c *fiber.Ctx, message string) error {
	return errorJSON(c, fiber.StatusBadRequest, string(services.KindInvalidRequest), message)
}

// writeError translates a service error into the JSON error body. Details of
// unexpected errors are logged, never returned.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	if de, ok := services.AsDispatchError(err); ok {
		status, known := dispatchStatus[de.Kind]
		if !known {
			status = fiber.StatusInternalServerError
		}
		return errorJSON(c, status, string(de.Kind), de.UserMessage)
	}

	var ve *services.ValidationError
	if errors.As(err, &ve) {
		return badRequest(c, ve.Message)
	}
	for sentinel, msg := range notFoundMessages {
		if errors.Is(err, sentinel) {
			return errorJSON(c, fiber.StatusNotFound, kindNotFound, msg)
		}
	}

	switch {
	case errors.Is(err, services.ErrNoActiveBatch):
		return errorJSON(c, fiber.StatusConflict, string(services.KindNoActiveBatch), services.KindNoActiveBatch.UserMessage())
	case errors.Is(err, services.ErrActiveProcessExists):
		return errorJSON(c, fiber.StatusConflict, kindConflict, "El paciente ya tiene un proceso activo para este paso hoy")
	case errors.Is(err, services.ErrUsernameTaken):
		return errorJSON(c, fiber.StatusConflict, kindConflict, "El usuario ya existe")
	case errors.Is(err, services.ErrInvalidCredentials):
		return errorJSON(c, fiber.StatusUnauthorized, kindUnauthorized, "Usuario o contraseña incorrectos")
	case errors.Is(err, services.ErrUnauthenticated):
		return errorJSON(c, fiber.StatusUnauthorized, kindUnauthorized, services.KindUnauthorized.UserMessage())
	case errors.Is(err, context.Canceled):
		log.Debug().Str("path", c.Path()).Msg("request_canceled")
		return errorJSON(c, statusClientClosedRequest, kindCanceled, "Solicitud cancelada")
	case database.IsTransient(err):
		log.Warn().Err(err).Str("path", c.Path()).Msg("store_unavailable")
		return errorJSON(c, fiber.StatusServiceUnavailable, string(services.KindStoreUnavailable), services.KindStoreUnavailable.UserMessage())
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("request_failed")
	return errorJSON(c, fiber.StatusInternalServerError, kindInternal, "Error interno del servidor")
}

// fiberErrorHandler renders errors returned by fiber itself (unknown routes,
// bad methods, oversized bodies) in the same JSON shape.
func fiberErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			kind := kindInternal
			switch fe.Code {
			case fiber.StatusNotFound:
				kind = kindNotFound
			case fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge, fiber.StatusMethodNotAllowed:
				kind = string(services.KindInvalidRequest)
			}
			return errorJSON(c, fe.Code, kind, fe.Message)
		}
		return writeError(c, log, err)
	}
}
