package handlers

import (
	"net/http"
	"strconv"

	"github.com/alimgiray/lotdesk/internal/hours"
	"github.com/alimgiray/lotdesk/internal/middleware"
	"github.com/alimgiray/lotdesk/internal/models"
	"github.com/alimgiray/lotdesk/internal/services"
	"github.com/gin-gonic/gin"
)

type ExceptionDateHandler struct {
	exceptionDateService *services.ExceptionDateService
}

func NewExceptionDateHandler(exceptionDateService *services.ExceptionDateService) *ExceptionDateHandler {
	return &ExceptionDateHandler{
		exceptionDateService: exceptionDateService,
	}
}

// exceptionDateRequest takes either "hours" text or a structured "day"
type exceptionDateRequest struct {
	Date  string          `json:"date"`
	Hours string          `json:"hours"`
	Day   *hours.DayHours `json:"day"`
}

func (r exceptionDateRequest) input() services.ExceptionDateInput {
	return services.ExceptionDateInput{Date: r.Date, Hours: r.Hours, Day: r.Day}
}

type exceptionDateResponse struct {
	*models.ExceptionDate
	Day *hours.DayHours `json:"day,omitempty"`
}

func (h *ExceptionDateHandler) toResponse(exception *models.ExceptionDate) exceptionDateResponse {
	resp := exceptionDateResponse{ExceptionDate: exception}
	if day, ok := h.exceptionDateService.ParseHours(exception); ok {
		resp.Day = &day
	}
	return resp
}

// ListExceptionDates lists the organization's exception dates
func (h *ExceptionDateHandler) ListExceptionDates(c *gin.Context) {
	exceptions, err := h.exceptionDateService.List(middleware.OrgID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]exceptionDateResponse, 0, len(exceptions))
	for _, exception := range exceptions {
		items = append(items, h.toResponse(exception))
	}
	c.JSON(http.StatusOK, items)
}

// CreateExceptionDate adds an exception date
func (h *ExceptionDateHandler) CreateExceptionDate(c *gin.Context) {
	var req exceptionDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	exception, err := h.exceptionDateService.Create(middleware.OrgID(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.toResponse(exception))
}

// UpdateExceptionDate changes the date or hours of an exception
func (h *ExceptionDateHandler) UpdateExceptionDate(c *gin.Context) {
	id, ok := exceptionID(c)
	if !ok {
		return
	}

	var req exceptionDateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	exception, err := h.exceptionDateService.Update(middleware.OrgID(c), id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toResponse(exception))
}

// DeleteExceptionDate removes an exception date
func (h *ExceptionDateHandler) DeleteExceptionDate(c *gin.Context) {
	id, ok := exceptionID(c)
	if !ok {
		return
	}

	if err := h.exceptionDateService.Delete(middleware.OrgID(c), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func exceptionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, &models.ValidationError{Field: "id", Message: "id must be a positive integer"})
		return 0, false
	}
	return id, true
}
