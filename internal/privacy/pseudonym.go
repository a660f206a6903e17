// Package privacy keeps raw user identifiers out of persisted audit data.
package privacy

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Pseudonymizer maps user ids to stable keyed hashes. The same key always
// yields the same pseudonym, so an audit trail can be followed per user
// without storing who the user is.
type Pseudonymizer struct {
	key []byte
}

// NewPseudonymizer returns a Pseudonymizer using key for HMAC-SHA256
func NewPseudonymizer(key string) (*Pseudonymizer, error) {
	if key == "" {
		return nil, errors.New("pseudonym key cannot be empty")
	}
	return &Pseudonymizer{key: []byte(key)}, nil
}

// Pseudonymize returns the hex encoded HMAC-SHA256 of userID
func (p *Pseudonymizer) Pseudonymize(userID string) string {
	mac := hmac.New(sha256.New, p.key)
	mac.Write([]byte(userID))
	return hex.EncodeToString(mac.Sum(nil))
}
