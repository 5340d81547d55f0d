package handlers

import (
	"net/http"
	"strconv"

	"github.com/alimgiray/lotdesk/internal/middleware"
	"github.com/alimgiray/lotdesk/internal/models"
	"github.com/alimgiray/lotdesk/internal/services"
	"github.com/gin-gonic/gin"
)

type TowRequestHandler struct {
	towRequestService *services.TowRequestService
}

func NewTowRequestHandler(towRequestService *services.TowRequestService) *TowRequestHandler {
	return &TowRequestHandler{
		towRequestService: towRequestService,
	}
}

type createTowRequestRequest struct {
	VehicleDescription string `json:"vehicle_description"`
	PlateNumber        string `json:"plate_number"`
	CallerPhone        string `json:"caller_phone"`
	PickupAddress      string `json:"pickup_address"`
}

type updateStatusRequest struct {
	Status models.TowRequestStatus `json:"status"`
}

// ListTowRequests returns one page of tow requests, newest first
func (h *TowRequestHandler) ListTowRequests(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(c, &models.ValidationError{Field: "limit", Message: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	page, err := h.towRequestService.ListPage(middleware.OrgID(c), c.Query("cursor"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       page.Items,
		"next_cursor": nullableCursor(page.NextCursor),
	})
}

// CreateTowRequest logs a new pickup request
func (h *TowRequestHandler) CreateTowRequest(c *gin.Context) {
	var req createTowRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	towRequest, err := h.towRequestService.Create(c.Request.Context(), middleware.OrgID(c), services.TowRequestInput{
		VehicleDescription: req.VehicleDescription,
		PlateNumber:        req.PlateNumber,
		CallerPhone:        req.CallerPhone,
		PickupAddress:      req.PickupAddress,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, towRequest)
}

// GetTowRequest returns one tow request
func (h *TowRequestHandler) GetTowRequest(c *gin.Context) {
	towRequest, err := h.towRequestService.Get(middleware.OrgID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, towRequest)
}

// UpdateStatus moves a tow request to a new status
func (h *TowRequestHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	towRequest, err := h.towRequestService.UpdateStatus(c.Request.Context(), middleware.OrgID(c), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, towRequest)
}

// Live returns the realtime feed of recent tow requests
func (h *TowRequestHandler) Live(c *gin.Context) {
	items, err := h.towRequestService.Live(middleware.OrgID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func nullableCursor(cursor string) *string {
	if cursor == "" {
		return nil
	}
	return &cursor
}
