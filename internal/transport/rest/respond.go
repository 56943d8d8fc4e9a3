package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"bookable/backend/internal/service/accounts"
	"bookable/backend/internal/service/scheduling"
	"bookable/backend/internal/store"
)

// writeError maps service and store errors onto HTTP statuses. Anything
// unrecognized is logged and reported as an opaque internal error.
func writeError(c *gin.Context, log *slog.Logger, err error) {
	var sVErr *scheduling.ValidationError
	var aVErr *accounts.ValidationError
	var uErr *scheduling.UnauthorizedError

	switch {
	case errors.As(err, &sVErr), errors.As(err, &aVErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, accounts.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.As(err, &uErr):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "That slot was just taken. Pick a different time."})
	case errors.Is(err, store.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email is already registered"})
	case errors.Is(err, store.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "username is already taken"})
	default:
		log.Error("request failed", slog.Any("err", err), slog.String("path", c.FullPath()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
