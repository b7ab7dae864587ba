package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/mathieu-neron/channel-insight/internal/middleware"
	"github.com/mathieu-neron/channel-insight/internal/model"
	"github.com/mathieu-neron/channel-insight/internal/service"
)

// Analyzer builds a report for a channel id or URL. *service.InsightService
// implements it.
type Analyzer interface {
	Analyze(ctx context.Context, input string) (*model.Report, error)
}

type InsightHandler struct {
	svc Analyzer
	log zerolog.Logger
}

func NewInsightHandler(svc Analyzer, log zerolog.Logger) *InsightHandler {
	return &InsightHandler{svc: svc, log: log}
}

// ChannelDetails handles GET /api/channel-details?input=<channel url or id>
func (h *InsightHandler) ChannelDetails(c fiber.Ctx) error {
	input, errMsg := middleware.ValidateChannelInput(c.Query("input"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	return h.respond(c, input)
}

// ByChannelID handles GET /api/channels/:channelId/insight
func (h *InsightHandler) ByChannelID(c fiber.Ctx) error {
	input, errMsg := middleware.ValidateChannelInput(c.Params("channelId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	return h.respond(c, input)
}

func (h *InsightHandler) respond(c fiber.Ctx, input string) error {
	report, err := h.svc.Analyze(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", err.Error())
		case errors.Is(err, service.ErrChannelNotFound):
			return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Channel not found")
		case errors.Is(err, context.DeadlineExceeded):
			h.log.Warn().Err(err).Msg("insight: analysis timed out")
			return middleware.ErrorResponse(c, fiber.StatusGatewayTimeout, "TIMEOUT", "Channel analysis timed out")
		default:
			h.log.Error().Err(err).Msg("insight: analysis failed")
			return middleware.ErrorResponse(c, fiber.StatusBadGateway, "UPSTREAM_ERROR", "Failed to analyze channel")
		}
	}
	return c.JSON(model.InsightResponse{Data: report})
}
