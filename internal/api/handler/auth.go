package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	jwt "github.com/golang-jwt/jwt/v5"
)

// generateJWT signs a token carrying the anonymous user ID.
func (h *Handler) generateJWT(anonID string) (string, error) {
	claims := jwt.MapClaims{
		"anon_id": anonID,
		"exp":     time.Now().Add(time.Hour * 72).Unix(),
		"iss":     "chatrelay-service",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}

// validateAndGetAnonID parses a token and extracts the anonymous user ID.
func (h *Handler) validateAndGetAnonID(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return h.jwtSecret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	anonID, ok := claims["anon_id"].(string)
	if !ok || anonID == "" {
		return "", errors.New("token missing anon_id claim")
	}
	return anonID, nil
}

// GetAnonID mints a fresh anonymous identity and returns it as a JWT.
func (h *Handler) GetAnonID(c *gin.Context) {
	anonUUID, _ := uuid.NewRandom()
	anonID := anonUUID.String()

	token, err := h.generateJWT(anonID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "anon_id": anonID})
}
