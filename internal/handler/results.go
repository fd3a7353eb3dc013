package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/clubvote/clubvote-go/internal/middleware"
	"github.com/clubvote/clubvote-go/internal/service"
)

type ResultsHandler struct {
	svc *service.TallyService
}

func NewResultsHandler(svc *service.TallyService) *ResultsHandler {
	return &ResultsHandler{svc: svc}
}

// Get handles GET /api/results?club=..&position=..
// Returns a hidden marker unless the race admin has enabled disclosure.
func (h *ResultsHandler) Get(c fiber.Ctx) error {
	club, position, errMsg := validateRace(c.Query("club"), c.Query("position"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, err := h.svc.Results(c.Context(), club, position)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
