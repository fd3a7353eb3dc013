package hash

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256Hex returns the hex-encoded SHA256 hash of the input string.
func SHA256Hex(input string) string {
	h := sha256.Sum256([]byte(input))
	return hex.EncodeToString(h[:])
}

// IteratedSHA256 applies SHA256 iteratively n times to produce a derived hash.
func IteratedSHA256(input string, iterations int) string {
	data := []byte(input)
	for i := 0; i < iterations; i++ {
		h := sha256.Sum256(data)
		data = h[:]
	}
	return hex.EncodeToString(data)
}

// VoterIDPrefix returns a short, irreversible prefix of SHA256(voterID) for
// log correlation without writing voter identifiers to logs.
func VoterIDPrefix(voterID string) string {
	return SHA256Hex(voterID)[:12]
}

// ipHashIterations makes enumerating the small address space expensive.
const ipHashIterations = 1000

// IPLogPrefix returns a short, irreversible hash prefix of an IP address for
// log correlation.
func IPLogPrefix(ip string) string {
	return IteratedSHA256(ip, ipHashIterations)[:12]
}

// VoteKey derives the idempotency key for one logical vote. The settlement
// backend deduplicates submissions on this value, so it must be stable for a
// given (voter, club, position) triple.
func VoteKey(voterID, club, position string) string {
	return SHA256Hex(voterID + "|" + club + "|" + position)
}
