package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/clubvote/clubvote-go/internal/middleware"
	"github.com/clubvote/clubvote-go/internal/model"
	"github.com/clubvote/clubvote-go/internal/service"
)

// ElectionHandler exposes the admin control surface: candidates, windows
// and result disclosure.
type ElectionHandler struct {
	svc *service.ElectionService
}

func NewElectionHandler(svc *service.ElectionService) *ElectionHandler {
	return &ElectionHandler{svc: svc}
}

// AddCandidate handles POST /api/admin/candidates
func (h *ElectionHandler) AddCandidate(c fiber.Ctx) error {
	var req model.AddCandidateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	club, errMsg := middleware.ValidateClub(req.Club)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	position, errMsg := middleware.ValidatePosition(req.Position)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	cand, err := h.svc.AddCandidate(c.Context(), club, position, req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(cand)
}

// RemoveCandidate handles DELETE /api/admin/candidates/:candidateId
func (h *ElectionHandler) RemoveCandidate(c fiber.Ctx) error {
	id, errMsg := middleware.ValidateCandidateID(c.Params("candidateId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	// Idempotent: removing an absent candidate succeeds.
	if err := h.svc.RemoveCandidate(c.Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// SetDuration handles PUT /api/admin/elections/duration
func (h *ElectionHandler) SetDuration(c fiber.Ctx) error {
	var req model.SetDurationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	club, position, errMsg := validateRace(req.Club, req.Position)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	if err := h.svc.SetDuration(c.Context(), club, position, req.DurationSeconds); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// Start handles POST /api/admin/elections/start
func (h *ElectionHandler) Start(c fiber.Ctx) error {
	club, position, errMsg := bindRace(c)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	if err := h.svc.Start(c.Context(), club, position); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// End handles POST /api/admin/elections/end
func (h *ElectionHandler) End(c fiber.Ctx) error {
	club, position, errMsg := bindRace(c)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	if err := h.svc.End(c.Context(), club, position); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// SetResultsVisible handles PUT /api/admin/elections/results-visible
func (h *ElectionHandler) SetResultsVisible(c fiber.Ctx) error {
	var req model.SetResultsVisibleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	club, position, errMsg := validateRace(req.Club, req.Position)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	if err := h.svc.SetResultsVisible(c.Context(), club, position, req.Visible); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "visible": req.Visible})
}

// Overview handles GET /api/admin/overview
func (h *ElectionHandler) Overview(c fiber.Ctx) error {
	windows, err := h.svc.Windows(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	total, err := h.svc.CandidateCount(c.Context())
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"totalCandidates": total,
		"races":           windows,
	})
}

// Status handles GET /api/elections/status?club=..&position=..
func (h *ElectionHandler) Status(c fiber.Ctx) error {
	club, position, errMsg := validateRace(c.Query("club"), c.Query("position"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	st, err := h.svc.Status(c.Context(), club, position)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(st)
}

func bindRace(c fiber.Ctx) (club, position, errMsg string) {
	var req model.RaceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return "", "", "Invalid request body"
	}
	return validateRace(req.Club, req.Position)
}

func validateRace(rawClub, rawPosition string) (club, position, errMsg string) {
	club, errMsg = middleware.ValidateClub(rawClub)
	if errMsg != "" {
		return "", "", errMsg
	}
	position, errMsg = middleware.ValidatePosition(rawPosition)
	if errMsg != "" {
		return "", "", errMsg
	}
	return club, position, ""
}
