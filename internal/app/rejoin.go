package app

import (
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

// RejoinTokens issues and validates the signed tokens that let a
// disconnected mid-game player re-bind to their retained record from a fresh
// connection. Name-based re-matching is never used.
type RejoinTokens struct {
	secret []byte
	roomID string
	ttl    time.Duration
}

// NewRejoinTokens constructs a token service scoped to a single room.
func NewRejoinTokens(secret []byte, roomID string, ttl time.Duration) *RejoinTokens {
	return &RejoinTokens{secret: secret, roomID: roomID, ttl: ttl}
}

// Issue signs a token binding the given player id to this room.
func (rt *RejoinTokens) Issue(playerID string) (string, error) {
	if playerID == "" {
		return "", fmt.Errorf("player id is required")
	}

	claims := jwt.MapClaims{
		"sub":  playerID,
		"room": rt.roomID,
		"jti":  uuid.NewString(),
		"exp":  time.Now().Add(rt.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(rt.secret)
}

// Validate checks the signature, expiry, and room binding, returning the
// player id the token was issued for.
func (rt *RejoinTokens) Validate(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return rt.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	if room, _ := claims["room"].(string); room != rt.roomID {
		return "", ErrInvalidToken
	}
	playerID, _ := claims["sub"].(string)
	if playerID == "" {
		return "", ErrInvalidToken
	}
	return playerID, nil
}
