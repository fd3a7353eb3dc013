package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/clubvote/clubvote-go/internal/middleware"
	"github.com/clubvote/clubvote-go/internal/model"
)

// respondError maps the engine's error taxonomy onto HTTP statuses and
// stable error codes so clients can render accurate messages and decide
// retry eligibility.
func respondError(c fiber.Ctx, err error) error {
	var fraud *model.FraudError
	switch {
	case errors.As(err, &fraud):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "FRAUD_DETECTED",
				"message": "This face is already enrolled under another account. One person, one vote.",
				"ownerId": fraud.OwnerID,
			},
		})
	case errors.Is(err, model.ErrValidation):
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, model.ErrNotFound):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, model.ErrInvalidState):
		return middleware.ErrorResponse(c, fiber.StatusConflict, "INVALID_STATE", err.Error())
	case errors.Is(err, model.ErrElectionClosed):
		return middleware.ErrorResponse(c, fiber.StatusConflict, "ELECTION_CLOSED", "Voting is not open for this race")
	case errors.Is(err, model.ErrAlreadyVoted):
		return middleware.ErrorResponse(c, fiber.StatusConflict, "ALREADY_VOTED", "You have already voted in this race")
	case errors.Is(err, model.ErrSettlement):
		return middleware.ErrorResponse(c, fiber.StatusBadGateway, "SETTLEMENT_FAILED", "Vote could not be recorded; please try again")
	case errors.Is(err, model.ErrExtraction):
		return middleware.ErrorResponse(c, fiber.StatusUnprocessableEntity, "NO_FACE", "No face detected in the capture")
	default:
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error")
	}
}
