package auth

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// ActionTokenTTL is the lifetime of verification and reset tokens.
const ActionTokenTTL = time.Hour

// NewActionToken returns a random hex token and its expiry. Used for both
// email verification and password resets.
func NewActionToken(now time.Time) (string, time.Time, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, err
	}
	return hex.EncodeToString(buf), now.Add(ActionTokenTTL), nil
}
