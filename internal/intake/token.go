// Package intake lets external systems post leads with a company API token.
package intake

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenPrefix = "crm_"
	secretBytes = 24
)

var errMalformedToken = errors.New("malformed api token")

// GenerateToken creates a plaintext token for tokenID and the bcrypt hash of
// its secret. The plaintext is "crm_<id>.<secret>" and is shown only once.
func GenerateToken(tokenID uuid.UUID) (plaintext, hash string, err error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	secret := hex.EncodeToString(buf)
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", "", err
	}
	return tokenPrefix + tokenID.String() + "." + secret, string(hashed), nil
}

// ParseToken splits a plaintext token into its id and secret.
func ParseToken(plaintext string) (uuid.UUID, string, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(plaintext), tokenPrefix)
	if !ok {
		return uuid.UUID{}, "", errMalformedToken
	}
	rawID, secret, ok := strings.Cut(rest, ".")
	if !ok || secret == "" {
		return uuid.UUID{}, "", errMalformedToken
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.UUID{}, "", errMalformedToken
	}
	return id, secret, nil
}

// VerifySecret reports whether secret matches the stored hash.
func VerifySecret(hash, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// tokenPreview is what listings show of a token.
func tokenPreview(id uuid.UUID) string {
	return tokenPrefix + id.String()[:8] + "..."
}
