package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appbilling "github.com/namjai/backend/internal/application/billing"
	appnotification "github.com/namjai/backend/internal/application/notification"
	"github.com/namjai/backend/internal/domain/notification"
	"github.com/namjai/backend/internal/infrastructure/scheduler"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping() error
}

// NotificationControl is the slice of the notification scheduler the handler
// needs for status reads and manual triggers
type NotificationControl interface {
	IsRunning() bool
	LastFiredAt() *time.Time
	Campaigns() []notification.Campaign
	TriggerCampaign(ctx context.Context, campaignID string) (appnotification.DispatchReport, error)
}

// SweepControl is the slice of the escalation sweep the handler needs
type SweepControl interface {
	IsRunning() bool
	LastRun() (*time.Time, appbilling.SweepStats)
	RunOnce(ctx context.Context) (appbilling.SweepStats, error)
}

// SystemHandler exposes health and scheduler operations
type SystemHandler struct {
	*BaseHandler
	db        Pinger
	notifier  NotificationControl
	sweeper   SweepControl
	startedAt time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db Pinger, notifier NotificationControl, sweeper SweepControl) *SystemHandler {
	return &SystemHandler{
		BaseHandler: NewBaseHandler(),
		db:          db,
		notifier:    notifier,
		sweeper:     sweeper,
		startedAt:   time.Now(),
	}
}

// RegisterRoutes registers the scheduler endpoints on the API group
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sched := rg.Group("/scheduler")
	sched.GET("/status", h.SchedulerStatus)
	sched.POST("/campaigns/:id/trigger", h.TriggerCampaign)
	sched.POST("/sweep/trigger", h.TriggerSweep)
}

// RegisterRootRoutes registers the unversioned health endpoints
func (h *SystemHandler) RegisterRootRoutes(engine *gin.Engine) {
	engine.GET("/health", h.Health)
	engine.GET("/ping", h.Ping)
}

// Health handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	status := "healthy"
	dbStatus := "up"
	httpStatus := http.StatusOK

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			status = "degraded"
			dbStatus = "down"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":   status,
		"database": dbStatus,
		"uptime":   time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// Ping handles GET /ping
func (h *SystemHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// SchedulerStatus handles GET /api/v1/scheduler/status
func (h *SystemHandler) SchedulerStatus(c *gin.Context) {
	lastSweep, sweepStats := h.sweeper.LastRun()

	campaigns := h.notifier.Campaigns()
	campaignIDs := make([]string, 0, len(campaigns))
	for _, campaign := range campaigns {
		campaignIDs = append(campaignIDs, campaign.ID)
	}

	h.Success(c, gin.H{
		"notifications": gin.H{
			"running":       h.notifier.IsRunning(),
			"last_fired_at": h.notifier.LastFiredAt(),
			"campaigns":     campaignIDs,
		},
		"escalation_sweep": gin.H{
			"running":     h.sweeper.IsRunning(),
			"last_run_at": lastSweep,
			"last_stats":  sweepStats,
		},
	})
}

// TriggerCampaign handles POST /api/v1/scheduler/campaigns/:id/trigger.
// Manual firing bypasses the calendar rule but still goes through the full
// dispatch path, audience resolution included.
func (h *SystemHandler) TriggerCampaign(c *gin.Context) {
	campaignID := c.Param("id")
	if campaignID == "" {
		h.BadRequest(c, "Campaign ID is required")
		return
	}

	report, err := h.notifier.TriggerCampaign(c.Request.Context(), campaignID)
	if err != nil {
		if errors.Is(err, scheduler.ErrCampaignNotFound) {
			h.NotFound(c, "Campaign not found: "+campaignID)
			return
		}
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// TriggerSweep handles POST /api/v1/scheduler/sweep/trigger
func (h *SystemHandler) TriggerSweep(c *gin.Context) {
	stats, err := h.sweeper.RunOnce(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}
