package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const handleIssuer = "kiosk-complaint-api"

// ErrInvalidHandle is returned for tampered, foreign or malformed handles.
var ErrInvalidHandle = errors.New("session: invalid handle")

// HandleCodec signs terminal session ids so kiosks cannot guess each other's sessions.
// Handles carry no expiry: a handle is only as good as the registry entry it names.
type HandleCodec struct {
	secret []byte
	now    func() time.Time
}

// NewHandleCodec builds a codec with the given HMAC secret.
func NewHandleCodec(secret string) *HandleCodec {
	return &HandleCodec{secret: []byte(secret), now: time.Now}
}

// Encode returns the signed handle for a session id.
func (c *HandleCodec) Encode(sessionID string) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:       sessionID,
		Issuer:   handleIssuer,
		IssuedAt: jwt.NewNumericDate(c.now().UTC()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session handle: %w", err)
	}
	return signed, nil
}

// Decode verifies a handle and returns the session id it names.
func (c *HandleCodec) Decode(handle string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(handle, claims, func(token *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(handleIssuer))
	if err != nil || !token.Valid || claims.ID == "" {
		return "", ErrInvalidHandle
	}
	return claims.ID, nil
}
