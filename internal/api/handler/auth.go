package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	jwt "github.com/golang-jwt/jwt/v5"
)

// generateJWT signs a token carrying the anonymous ID.
func generateJWT(secret, anonID string) (string, error) {
	claims := jwt.MapClaims{
		"anon_id": anonID,
		"exp":     time.Now().Add(time.Hour * 72).Unix(),
		"iss":     "salarythief-service",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// validateAndGetAnonID parses a token minted by GetAnonID and returns the
// anonymous ID it carries.
func validateAndGetAnonID(secret, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	anonID, ok := claims["anon_id"].(string)
	if !ok || anonID == "" {
		return "", errors.New("missing anon_id claim")
	}
	return anonID, nil
}

// GetAnonID mints a fresh anonymous ID and returns it together with a JWT.
// Clients may use this instead of inventing their own identity; the hub
// treats either the same way.
func (h *Handler) GetAnonID(c *gin.Context) {
	anonID := uuid.New().String()

	token, err := generateJWT(h.Cfg.JWTSecret, anonID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "anon_id": anonID})
}
