package handlers

import (
	"context"
	"time"

	"medication-tracking-service/internal/domain/dtos"
	"medication-tracking-service/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const dispatchTimeout = 15 * time.Second

type ScanHandler struct {
	dispatch services.DispatchServiceContract
	logger   zerolog.Logger
}

func NewScanHandler(dispatch services.DispatchServiceContract, logger zerolog.Logger) *ScanHandler {
	return &ScanHandler{dispatch: dispatch, logger: logger}
}

// Dispatch handles one QR checkpoint scan. The caller always comes from the
// session, whatever the body says.
func (h *ScanHandler) Dispatch(c *fiber.Ctx) error {
	var req dtos.DispatchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, services.KindInvalidRequest.UserMessage())
	}
	req.Caller = callerIdentity(c)

	ctx, cancel := context.WithTimeout(c.UserContext(), dispatchTimeout)
	defer cancel()

	res, err := h.dispatch.Dispatch(ctx, req)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(res)
}

func RegisterScanRoutes(api fiber.Router, h *ScanHandler, auth, limit fiber.Handler) {
	api.Post("/scans/dispatch", auth, limit, h.Dispatch)
}
