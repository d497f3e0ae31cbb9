package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/freelancehub/internal/http/middleware"
	"github.com/nurpe/freelancehub/internal/model"
	"github.com/nurpe/freelancehub/internal/service"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

type Handler struct {
	projects      *service.ProjectService
	bids          *service.BidService
	deliverables  *service.DeliverableService
	notifications *service.NotificationService
	reports       *service.ReportService
	log           zerolog.Logger
}

type Services struct {
	Projects      *service.ProjectService
	Bids          *service.BidService
	Deliverables  *service.DeliverableService
	Notifications *service.NotificationService
	Reports       *service.ReportService
}

func NewHandler(services Services, log zerolog.Logger) *Handler {
	return &Handler{
		projects:      services.Projects,
		bids:          services.Bids,
		deliverables:  services.Deliverables,
		notifications: services.Notifications,
		reports:       services.Reports,
		log:           log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.GET("/healthz", h.healthz)

	api := router.Group("/api")
	api.Use(authMiddleware)

	api.POST("/projects", h.createProject)
	api.GET("/projects", h.listOpenProjects)
	api.GET("/projects/recent", h.listRecentProjects)
	api.GET("/projects/mine", h.listMyProjects)
	api.GET("/projects/assigned", h.listAssignedProjects)
	api.GET("/projects/:id", h.getProject)
	api.PUT("/projects/:id", h.updateProject)
	api.DELETE("/projects/:id", h.deleteProject)
	api.POST("/projects/:id/mark-for-review", h.markForReview)
	api.POST("/projects/:id/approve", h.approveProject)
	api.POST("/projects/:id/request-revisions", h.requestRevisions)

	api.GET("/projects/:id/bids", h.listProjectBids)
	api.POST("/projects/:id/bids", h.submitBid)
	api.GET("/projects/:id/bids/mine", h.getMyBidForProject)
	api.GET("/projects/:id/bids/export", h.exportBids)
	api.GET("/bids/mine", h.listMyBids)
	api.POST("/bids/:id/accept", h.acceptBid)
	api.POST("/bids/:id/reject", h.rejectBid)

	api.POST("/projects/:id/deliverables", h.uploadDeliverable)
	api.GET("/projects/:id/deliverables", h.listDeliverables)
	api.GET("/deliverables/:id/download", h.downloadDeliverable)

	api.GET("/projects/:id/statement", h.completionStatement)

	api.GET("/notifications", h.listNotifications)
	api.GET("/notifications/unread-count", h.unreadNotifications)
	api.POST("/notifications/read", h.markNotificationsRead)
}

func (h *Handler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// principal aborts with 401 when the auth middleware did not run.
func (h *Handler) principal(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
	}
	return principal, ok
}

func (h *Handler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) attachment(c *gin.Context, contentType string, result *service.ReportResult) {
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentType, result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidState), errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(c)).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}
