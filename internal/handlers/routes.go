package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Health         *HealthHandler
	NotFound       *NotFoundHandler
	OrgContent     *OrgContentHandler
	ExceptionDates *ExceptionDateHandler
	TowRequests    *TowRequestHandler
}

// SetupRoutes mounts the public probes at the root and the API under /api/v1 behind auth
func SetupRoutes(router *gin.Engine, h *Handlers, auth gin.HandlerFunc) {
	router.HandleMethodNotAllowed = true
	router.NoRoute(h.NotFound.NotFound)
	router.NoMethod(h.NotFound.MethodNotAllowed)

	router.GET("/health", h.Health.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(auth)
	{
		api.GET("/orgs/content", h.OrgContent.GetContent)
		api.PATCH("/orgs/content", h.OrgContent.UpdateContent)
		api.POST("/orgs/content/:field/items", h.OrgContent.AppendItem)
		api.DELETE("/orgs/content/:field/items/:ordinal", h.OrgContent.DeleteItem)

		api.GET("/orgs/hours", h.OrgContent.GetHours)
		api.PUT("/orgs/hours", h.OrgContent.UpdateHours)
		api.GET("/orgs/hours/on", h.OrgContent.HoursOn)
		api.GET("/orgs/hours/open", h.OrgContent.OpenAt)
		api.GET("/orgs/hours/export", h.OrgContent.ExportHours)
		api.POST("/orgs/hours/import", h.OrgContent.ImportHours)

		api.GET("/orgs/exception-dates", h.ExceptionDates.ListExceptionDates)
		api.POST("/orgs/exception-dates", h.ExceptionDates.CreateExceptionDate)
		api.PATCH("/orgs/exception-dates/:id", h.ExceptionDates.UpdateExceptionDate)
		api.DELETE("/orgs/exception-dates/:id", h.ExceptionDates.DeleteExceptionDate)

		api.GET("/tow-requests", h.TowRequests.ListTowRequests)
		api.POST("/tow-requests", h.TowRequests.CreateTowRequest)
		api.GET("/tow-requests/live", h.TowRequests.Live)
		api.GET("/tow-requests/:id", h.TowRequests.GetTowRequest)
		api.PATCH("/tow-requests/:id/status", h.TowRequests.UpdateStatus)
	}
}
