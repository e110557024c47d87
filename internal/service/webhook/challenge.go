package webhook

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// GenerateChallengeResponse returns hex(sha256(challengeCode + verificationToken + endpoint)).
func GenerateChallengeResponse(challengeCode string, endpoint string, verificationToken string) (string, error) {
	h := sha256.New()
	for _, part := range []string{challengeCode, verificationToken, endpoint} {
		if _, err := io.WriteString(h, part); err != nil {
			return "", fmt.Errorf("%w: %w", ErrChallengeComputation, err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
