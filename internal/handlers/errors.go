package handlers

import (
	"errors"
	"net/http"

	"github.com/alimgiray/lotdesk/internal/middleware"
	"github.com/alimgiray/lotdesk/internal/models"
	"github.com/alimgiray/lotdesk/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorDetail is one entry of a validation failure response
type ErrorDetail struct {
	Loc []string `json:"loc"`
	Msg string   `json:"msg"`
}

var fieldLocations = map[string]string{
	"id":      "path",
	"field":   "path",
	"ordinal": "path",
	"cursor":  "query",
	"limit":   "query",
	"on":      "query",
	"at":      "query",
}

func location(field string) []string {
	if loc, ok := fieldLocations[field]; ok {
		return []string{loc, field}
	}
	return []string{"body", field}
}

// respondError maps service errors onto HTTP statuses with a {"detail": ...} body
func respondError(c *gin.Context, err error) {
	var single *models.ValidationError
	var multi models.ValidationErrors

	switch {
	case errors.As(err, &multi):
		details := make([]ErrorDetail, 0, len(multi))
		for _, e := range multi {
			details = append(details, ErrorDetail{Loc: location(e.Field), Msg: e.Message})
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": details})
	case errors.As(err, &single):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"detail": []ErrorDetail{{Loc: location(single.Field), Msg: single.Message}},
		})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	case errors.Is(err, models.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"detail": err.Error()})
	default:
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": middleware.RequestID(c),
			"path":       c.FullPath(),
		}).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}

// respondBindError reports a request body that could not be decoded
func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid request body: " + err.Error()})
}
