package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appbilling "github.com/namjai/backend/internal/application/billing"
	appnotification "github.com/namjai/backend/internal/application/notification"
	"github.com/namjai/backend/internal/domain/notification"
	"github.com/namjai/backend/internal/infrastructure/scheduler"
)

type fakePinger struct {
	err error
}

func (p *fakePinger) Ping() error { return p.err }

type fakeNotifier struct {
	running   bool
	lastFired *time.Time
	campaigns []notification.Campaign
	report    appnotification.DispatchReport
	err       error
}

func (f *fakeNotifier) IsRunning() bool                     { return f.running }
func (f *fakeNotifier) LastFiredAt() *time.Time             { return f.lastFired }
func (f *fakeNotifier) Campaigns() []notification.Campaign  { return f.campaigns }
func (f *fakeNotifier) TriggerCampaign(ctx context.Context, campaignID string) (appnotification.DispatchReport, error) {
	return f.report, f.err
}

type fakeSweeper struct {
	running bool
	lastRun *time.Time
	stats   appbilling.SweepStats
	err     error
}

func (f *fakeSweeper) IsRunning() bool { return f.running }
func (f *fakeSweeper) LastRun() (*time.Time, appbilling.SweepStats) {
	return f.lastRun, f.stats
}
func (f *fakeSweeper) RunOnce(ctx context.Context) (appbilling.SweepStats, error) {
	return f.stats, f.err
}

func newSystemRouter(db Pinger, notifier NotificationControl, sweeper SweepControl) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewSystemHandler(db, notifier, sweeper)

	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/ping", h.Ping)
	r.GET("/api/v1/scheduler/status", h.SchedulerStatus)
	r.POST("/api/v1/scheduler/campaigns/:id/trigger", h.TriggerCampaign)
	r.POST("/api/v1/scheduler/sweep/trigger", h.TriggerSweep)
	return r
}

func TestHealth_DatabaseUp(t *testing.T) {
	r := newSystemRouter(&fakePinger{}, &fakeNotifier{}, &fakeSweeper{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestHealth_DatabaseDown(t *testing.T) {
	r := newSystemRouter(&fakePinger{err: errors.New("connection refused")}, &fakeNotifier{}, &fakeSweeper{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"down"`)
}

func TestPing(t *testing.T) {
	r := newSystemRouter(&fakePinger{}, &fakeNotifier{}, &fakeSweeper{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

func TestSchedulerStatus(t *testing.T) {
	fired := time.Date(2025, time.June, 5, 8, 0, 0, 0, time.UTC)
	swept := fired.Add(time.Hour)
	notifier := &fakeNotifier{
		running:   true,
		lastFired: &fired,
		campaigns: appnotification.DefaultCampaigns(),
	}
	sweeper := &fakeSweeper{
		running: true,
		lastRun: &swept,
		stats:   appbilling.SweepStats{Zones: 3, Evaluated: 42, Applied: 5},
	}
	r := newSystemRouter(&fakePinger{}, notifier, sweeper)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/scheduler/status", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Notifications struct {
				Running   bool     `json:"running"`
				Campaigns []string `json:"campaigns"`
			} `json:"notifications"`
			EscalationSweep struct {
				Running   bool `json:"running"`
				LastStats struct {
					Evaluated int `json:"evaluated"`
				} `json:"last_stats"`
			} `json:"escalation_sweep"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Data.Notifications.Running)
	assert.Len(t, resp.Data.Notifications.Campaigns, len(appnotification.DefaultCampaigns()))
	assert.Equal(t, 42, resp.Data.EscalationSweep.LastStats.Evaluated)
}

func TestTriggerCampaign_Success(t *testing.T) {
	notifier := &fakeNotifier{
		report: appnotification.DispatchReport{CampaignID: "member-overdue-red", Attempted: 4, Sent: 4},
	}
	r := newSystemRouter(&fakePinger{}, notifier, &fakeSweeper{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/scheduler/campaigns/member-overdue-red/trigger", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sent":4`)
}

func TestTriggerCampaign_NotFound(t *testing.T) {
	notifier := &fakeNotifier{err: scheduler.ErrCampaignNotFound}
	r := newSystemRouter(&fakePinger{}, notifier, &fakeSweeper{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/scheduler/campaigns/nope/trigger", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTriggerSweep_Success(t *testing.T) {
	sweeper := &fakeSweeper{stats: appbilling.SweepStats{Zones: 2, Evaluated: 10, Applied: 3}}
	r := newSystemRouter(&fakePinger{}, &fakeNotifier{}, sweeper)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/scheduler/sweep/trigger", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"applied":3`)
}

func TestTriggerSweep_Failure(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("listing active zones: connection reset")}
	r := newSystemRouter(&fakePinger{}, &fakeNotifier{}, sweeper)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/scheduler/sweep/trigger", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
