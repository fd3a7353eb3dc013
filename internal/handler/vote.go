package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/clubvote/clubvote-go/internal/middleware"
	"github.com/clubvote/clubvote-go/internal/model"
	"github.com/clubvote/clubvote-go/internal/service"
)

type VoteHandler struct {
	svc *service.VoteService
}

func NewVoteHandler(svc *service.VoteService) *VoteHandler {
	return &VoteHandler{svc: svc}
}

// Cast handles POST /api/votes
func (h *VoteHandler) Cast(c fiber.Ctx) error {
	var req model.VoteRequest
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	voterID, errMsg := middleware.ValidateVoterID(req.VoterID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.VoterID = voterID

	club, position, errMsg := validateRace(req.Club, req.Position)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.Club, req.Position = club, position

	candidateID, errMsg := middleware.ValidateCandidateID(req.CandidateID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	req.CandidateID = candidateID

	if errMsg := middleware.ValidateDescriptor(req.Descriptor); errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, err := h.svc.Cast(c.Context(), req)
	if err != nil {
		recordRejection(err)
		return respondError(c, err)
	}

	Metrics.VotesTotal.WithLabelValues(req.Club).Inc()
	return c.JSON(resp)
}

// recordRejection classifies a failed cast for the rejection counters.
func recordRejection(err error) {
	var fraud *model.FraudError
	switch {
	case errors.As(err, &fraud):
		Metrics.FraudDetectedTotal.Inc()
		Metrics.RejectedVotesTotal.WithLabelValues("fraud").Inc()
	case errors.Is(err, model.ErrElectionClosed):
		Metrics.RejectedVotesTotal.WithLabelValues("closed").Inc()
	case errors.Is(err, model.ErrAlreadyVoted):
		Metrics.RejectedVotesTotal.WithLabelValues("already_voted").Inc()
	case errors.Is(err, model.ErrSettlement):
		Metrics.RejectedVotesTotal.WithLabelValues("settlement").Inc()
	default:
		Metrics.RejectedVotesTotal.WithLabelValues("other").Inc()
	}
}
