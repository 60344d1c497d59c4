package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/readtrack/internal/audit"
	"github.com/mrlokans/readtrack/internal/entities"
	"github.com/mrlokans/readtrack/internal/readings"
)

const (
	defaultEventsLimit = 25
	maxEventsLimit     = 100
)

type AuditController struct {
	auditService *audit.Service
	sanitizer    readings.Sanitizer
	log          *zap.Logger
}

func NewAuditController(auditService *audit.Service, sanitizer readings.Sanitizer, log *zap.Logger) *AuditController {
	return &AuditController{
		auditService: auditService,
		sanitizer:    sanitizer,
		log:          log,
	}
}

// GetAuditEvents returns the user's own audit events, newest first.
// GET /api/users/:user_id/events?type=&limit=&offset=
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}
	limit, offset := parsePagination(c, defaultEventsLimit, maxEventsLimit)

	var (
		events []entities.AuditEvent
		total  int64
		err    error
	)
	if eventType := c.Query("type"); eventType != "" {
		events, total, err = ac.auditService.GetEventsByType(c.Request.Context(), entities.AuditEventType(eventType), userID, limit, offset)
	} else {
		events, total, err = ac.auditService.GetEvents(c.Request.Context(), userID, limit, offset)
	}
	if err != nil {
		respondAppError(c, ac.log, err)
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}
	// Descriptions carry book titles; user agents are client-controlled.
	for i := range events {
		events[i].Description = ac.sanitizer.Sanitize(events[i].Description)
		events[i].UserAgent = ac.sanitizer.Sanitize(events[i].UserAgent)
	}

	c.JSON(http.StatusOK, newPaginatedResponse(events, total, limit, offset))
}
