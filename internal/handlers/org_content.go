package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/alimgiray/lotdesk/internal/hours"
	"github.com/alimgiray/lotdesk/internal/middleware"
	"github.com/alimgiray/lotdesk/internal/models"
	"github.com/alimgiray/lotdesk/internal/services"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type OrgContentHandler struct {
	orgContentService    *services.OrgContentService
	exceptionDateService *services.ExceptionDateService
	exportService        *services.ExportService
}

func NewOrgContentHandler(
	orgContentService *services.OrgContentService,
	exceptionDateService *services.ExceptionDateService,
	exportService *services.ExportService,
) *OrgContentHandler {
	return &OrgContentHandler{
		orgContentService:    orgContentService,
		exceptionDateService: exceptionDateService,
		exportService:        exportService,
	}
}

type updateContentRequest struct {
	DefaultHoursOfOperation *string             `json:"default_hours_of_operation"`
	Schedule                *hours.WeekSchedule `json:"schedule"`
	DocumentsNeeded         *string             `json:"documents_needed"`
	ExtraCosts              *string             `json:"extra_costs"`
	AuctionTriggers         *string             `json:"auction_triggers"`
}

type appendItemRequest struct {
	Item string `json:"item"`
}

// GetContent returns the caller's organization content
func (h *OrgContentHandler) GetContent(c *gin.Context) {
	content, err := h.orgContentService.GetContent(middleware.OrgID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, content)
}

// UpdateContent applies a partial update to the content
func (h *OrgContentHandler) UpdateContent(c *gin.Context) {
	var req updateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	content, err := h.orgContentService.UpdateContent(middleware.OrgID(c), middleware.UserID(c), services.ContentPatch{
		DefaultHoursOfOperation: req.DefaultHoursOfOperation,
		Schedule:                req.Schedule,
		DocumentsNeeded:         req.DocumentsNeeded,
		ExtraCosts:              req.ExtraCosts,
		AuctionTriggers:         req.AuctionTriggers,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, content)
}

// GetHours returns the weekly schedule in structured and text form
func (h *OrgContentHandler) GetHours(c *gin.Context) {
	setting, err := h.orgContentService.GetSchedule(middleware.OrgID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	schedule := setting.Effective()
	c.JSON(http.StatusOK, gin.H{
		"configured": setting.IsConfigured(),
		"schedule":   schedule,
		"text":       hours.Format(schedule),
	})
}

// UpdateHours replaces the weekly schedule
func (h *OrgContentHandler) UpdateHours(c *gin.Context) {
	var schedule hours.WeekSchedule
	if err := c.ShouldBindJSON(&schedule); err != nil {
		respondBindError(c, err)
		return
	}

	text, err := h.orgContentService.SaveSchedule(middleware.OrgID(c), middleware.UserID(c), schedule)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"configured": true,
		"schedule":   schedule,
		"text":       text,
	})
}

// HoursOn resolves the hours for ?on=YYYY-MM-DD, defaulting to today
func (h *OrgContentHandler) HoursOn(c *gin.Context) {
	day := time.Now().UTC()
	if on := c.Query("on"); on != "" {
		parsed, err := time.Parse(time.DateOnly, on)
		if err != nil {
			respondError(c, &models.ValidationError{Field: "on", Message: "on must be a YYYY-MM-DD date"})
			return
		}
		day = parsed
	}

	resolution, err := h.exceptionDateService.HoursOn(middleware.OrgID(c), day)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resolution)
}

// OpenAt answers whether the lot is open at ?at=RFC3339, defaulting to now
func (h *OrgContentHandler) OpenAt(c *gin.Context) {
	at := time.Now()
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, &models.ValidationError{Field: "at", Message: "at must be an RFC 3339 timestamp"})
			return
		}
		at = parsed
	}

	open, resolution, err := h.exceptionDateService.IsOpenAt(middleware.OrgID(c), at)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"open":  open,
		"at":    at,
		"hours": resolution,
	})
}

// ExportHours downloads the schedule as an xlsx workbook
func (h *OrgContentHandler) ExportHours(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.exportService.ExportSchedule(middleware.OrgID(c), &buf); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="hours-of-operation.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ImportHours replaces the weekly schedule from an uploaded workbook
func (h *OrgContentHandler) ImportHours(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, &models.ValidationError{Field: "file", Message: "an xlsx file upload is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	text, err := h.exportService.ImportSchedule(middleware.OrgID(c), middleware.UserID(c), file)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"configured": true,
		"schedule":   hours.Parse(text),
		"text":       text,
	})
}

// AppendItem adds one bullet to a list field
func (h *OrgContentHandler) AppendItem(c *gin.Context) {
	field, err := models.ParseBulletField(c.Param("field"))
	if err != nil {
		respondError(c, err)
		return
	}

	var req appendItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	text, err := h.orgContentService.AppendBulletItem(middleware.OrgID(c), middleware.UserID(c), field, req.Item)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, bulletResponse(field, text))
}

// DeleteItem removes the bullet at :ordinal from a list field
func (h *OrgContentHandler) DeleteItem(c *gin.Context) {
	field, err := models.ParseBulletField(c.Param("field"))
	if err != nil {
		respondError(c, err)
		return
	}

	ordinal, err := strconv.Atoi(c.Param("ordinal"))
	if err != nil || ordinal < 0 {
		respondError(c, &models.ValidationError{Field: "ordinal", Message: "ordinal must be a non-negative integer"})
		return
	}

	text, err := h.orgContentService.DeleteBulletItem(middleware.OrgID(c), middleware.UserID(c), field, ordinal)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bulletResponse(field, text))
}

func bulletResponse(field models.BulletField, text string) gin.H {
	return gin.H{
		"field": field,
		"text":  text,
		"items": hours.Bullets(text),
	}
}
