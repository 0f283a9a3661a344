package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var errInvalidSessionToken = errors.New("invalid session token")

func (handler *Handler) buildSessionToken(sessionID string, now time.Time) (string, error) {
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(handler.sessionKey)
}

func (handler *Handler) parseSessionToken(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errInvalidSessionToken
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return handler.sessionKey, nil
	})
	if err != nil || !token.Valid {
		return "", errInvalidSessionToken
	}
	if strings.TrimSpace(claims.SessionID) == "" {
		return "", errInvalidSessionToken
	}
	return claims.SessionID, nil
}

func (handler *Handler) setSessionCookie(c *fiber.Ctx, token string, now time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   handler.cookieSecure,
		SameSite: "Lax",
		Expires:  now.Add(sessionTokenTTL),
	})
}
