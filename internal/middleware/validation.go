package middleware

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// Field length limits matching database schema constraints.
const (
	MaxClubLen       = 64  // candidates.club / election_windows.club
	MaxPositionLen   = 64  // candidates.position / election_windows.position
	MaxNameLen       = 80  // candidates.name
	MaxVoterIDLen    = 128 // biometric_templates.voter_id
	MaxDescriptorLen = 1024
)

var (
	// raceFieldRe matches club and position strings: letters, digits,
	// spaces and common punctuation. Colons are excluded because race keys
	// are joined with ":".
	raceFieldRe = regexp.MustCompile(`^[A-Za-z0-9 ._'&-]+$`)
	// candidateIDRe matches generated candidate UUIDs.
	candidateIDRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	// voterIDRe matches identity-provider voter identifiers.
	voterIDRe = regexp.MustCompile(`^[A-Za-z0-9_:@.-]+$`)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateClub checks that a club name is well-formed and within DB limits.
func ValidateClub(club string) (string, string) {
	club = strings.TrimSpace(club)
	if club == "" {
		return "", "club is required"
	}
	if len(club) > MaxClubLen {
		return "", "club must be at most 64 characters"
	}
	if !raceFieldRe.MatchString(club) {
		return "", "club contains invalid characters"
	}
	return club, ""
}

// ValidatePosition checks that a position name is well-formed.
func ValidatePosition(position string) (string, string) {
	position = strings.TrimSpace(position)
	if position == "" {
		return "", "position is required"
	}
	if len(position) > MaxPositionLen {
		return "", "position must be at most 64 characters"
	}
	if !raceFieldRe.MatchString(position) {
		return "", "position contains invalid characters"
	}
	return position, ""
}

// ValidateCandidateID checks the generated candidate id format.
func ValidateCandidateID(id string) (string, string) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return "", "candidateId is required"
	}
	if !candidateIDRe.MatchString(id) {
		return "", "candidateId is not a valid id"
	}
	return id, ""
}

// ValidateVoterID checks a voter identifier issued by the identity provider.
func ValidateVoterID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "voterId is required"
	}
	if len(id) > MaxVoterIDLen {
		return "", "voterId must be at most 128 characters"
	}
	if !voterIDRe.MatchString(id) {
		return "", "voterId contains invalid characters"
	}
	return id, ""
}

// ValidateDescriptor checks a face descriptor for presence and sane bounds.
// Exact dimensionality is enforced by the biometric registry.
func ValidateDescriptor(descriptor []float64) string {
	if len(descriptor) == 0 {
		return "descriptor is required"
	}
	if len(descriptor) > MaxDescriptorLen {
		return "descriptor is too large"
	}
	return ""
}
