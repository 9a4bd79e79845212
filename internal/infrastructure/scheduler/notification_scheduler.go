package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	appnotification "github.com/namjai/backend/internal/application/notification"
	"github.com/namjai/backend/internal/domain/notification"
	infranotification "github.com/namjai/backend/internal/infrastructure/notification"
)

// tickerInterval is the interval at which the scheduler checks the clock
const tickerInterval = 1 * time.Minute

// NotificationSchedulerConfig holds the notification scheduler configuration
type NotificationSchedulerConfig struct {
	Enabled bool
	// FireHour and FireMinute set the single daily dispatch time shared by
	// all campaigns; which campaigns fire on a given day is decided by each
	// campaign's calendar rule.
	FireHour   int
	FireMinute int
}

// NotificationScheduler fires calendar campaigns once a day at the configured
// time. Each matching campaign runs in its own goroutine so a slow audience
// does not delay the others. Missed firings are not replayed after downtime.
type NotificationScheduler struct {
	config    NotificationSchedulerConfig
	campaigns []notification.Campaign
	service   *appnotification.CampaignService
	guard     infranotification.FireGuard
	now       func() time.Time
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	lastFired *time.Time
}

// NewNotificationScheduler creates a new NotificationScheduler
func NewNotificationScheduler(
	config NotificationSchedulerConfig,
	campaigns []notification.Campaign,
	service *appnotification.CampaignService,
	guard infranotification.FireGuard,
	logger *zap.Logger,
) *NotificationScheduler {
	return &NotificationScheduler{
		config:    config,
		campaigns: campaigns,
		service:   service,
		guard:     guard,
		now:       time.Now,
		logger:    logger,
	}
}

// Start starts the scheduler loop
func (s *NotificationScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.loop(ctx)

	s.logger.Info("Notification scheduler started",
		zap.Int("fire_hour", s.config.FireHour),
		zap.Int("fire_minute", s.config.FireMinute),
		zap.Int("campaigns", len(s.campaigns)))

	return nil
}

// Stop stops the scheduler and waits for in-flight firings to finish
func (s *NotificationScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Notification scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Notification scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the scheduler loop is active
func (s *NotificationScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// LastFiredAt returns when the scheduler last dispatched, nil if never
func (s *NotificationScheduler) LastFiredAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFired
}

// Campaigns returns the configured campaign calendar
func (s *NotificationScheduler) Campaigns() []notification.Campaign {
	return s.campaigns
}

// TriggerCampaign fires one campaign immediately by ID, bypassing the
// calendar rule and the fire guard. Used by the admin endpoint.
func (s *NotificationScheduler) TriggerCampaign(ctx context.Context, campaignID string) (appnotification.DispatchReport, error) {
	for _, campaign := range s.campaigns {
		if campaign.ID == campaignID {
			return s.service.Run(ctx, campaign)
		}
	}
	return appnotification.DispatchReport{}, ErrCampaignNotFound
}

func (s *NotificationScheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(tickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := s.now()
			if now.Hour() == s.config.FireHour && now.Minute() == s.config.FireMinute {
				s.fireMatching(ctx, now)
			}
		}
	}
}

// fireMatching dispatches every campaign whose rule matches today. The guard
// keeps multiple replicas from double-sending the same campaign on the same
// day.
func (s *NotificationScheduler) fireMatching(ctx context.Context, now time.Time) {
	fired := 0
	for _, campaign := range s.campaigns {
		if !campaign.Rule.Matches(now) {
			continue
		}
		if !s.guard.FirstFireToday(ctx, campaign.ID, now) {
			s.logger.Debug("Campaign already fired today",
				zap.String("campaign_id", campaign.ID))
			continue
		}

		fired++
		s.wg.Add(1)
		go func(c notification.Campaign) {
			defer s.wg.Done()
			if _, err := s.service.Run(ctx, c); err != nil {
				s.logger.Error("Campaign firing failed",
					zap.String("campaign_id", c.ID),
					zap.Error(err))
			}
		}(campaign)
	}

	if fired > 0 {
		s.mu.Lock()
		t := now
		s.lastFired = &t
		s.mu.Unlock()
		s.logger.Info("Campaigns dispatched",
			zap.Int("fired", fired),
			zap.Time("at", now))
	}
}
