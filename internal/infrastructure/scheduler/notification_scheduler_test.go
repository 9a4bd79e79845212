package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appnotification "github.com/namjai/backend/internal/application/notification"
	"github.com/namjai/backend/internal/domain/notification"
	infranotification "github.com/namjai/backend/internal/infrastructure/notification"
)

// fakeContacts returns a fixed audience for every predicate
type fakeContacts struct {
	contacts []notification.Contact
}

func (f *fakeContacts) QueryAudience(context.Context, notification.AudiencePredicate) ([]notification.Contact, error) {
	return f.contacts, nil
}

// recordingGateway collects sent messages
type recordingGateway struct {
	mu   sync.Mutex
	sent []string
}

func (g *recordingGateway) Send(_ context.Context, to, _ string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, to)
	return nil
}

func (g *recordingGateway) sentTo() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.sent...)
}

// blockingGuard refuses every firing
type blockingGuard struct{}

func (blockingGuard) FirstFireToday(context.Context, string, time.Time) bool { return false }

func testScheduler(gateway notification.Gateway, guard infranotification.FireGuard, campaigns []notification.Campaign) *NotificationScheduler {
	contacts := &fakeContacts{contacts: []notification.Contact{
		{ID: "A-1", Phone: "0812345678", Role: notification.RoleMember},
	}}
	service := appnotification.NewCampaignService(contacts, gateway, time.Second, zap.NewNop())
	return NewNotificationScheduler(
		NotificationSchedulerConfig{Enabled: true, FireHour: 8},
		campaigns,
		service,
		guard,
		zap.NewNop(),
	)
}

func campaignOnDay(id string, day int) notification.Campaign {
	return notification.Campaign{
		ID:       id,
		Rule:     notification.FixedDay(day),
		Audience: notification.AudiencePredicate{Role: notification.RoleMember},
		Message:  "Namjai: test message.",
	}
}

func TestNotificationScheduler_FiresMatchingCampaignsOnly(t *testing.T) {
	gateway := &recordingGateway{}
	s := testScheduler(gateway, infranotification.AlwaysFireGuard{}, []notification.Campaign{
		campaignOnDay("fires-today", 5),
		campaignOnDay("fires-another-day", 6),
	})

	s.fireMatching(context.Background(), time.Date(2026, time.June, 5, 8, 0, 0, 0, time.UTC))
	s.wg.Wait()

	assert.Equal(t, []string{"+66812345678"}, gateway.sentTo())
	require.NotNil(t, s.LastFiredAt())
}

func TestNotificationScheduler_GuardBlocksDuplicateFiring(t *testing.T) {
	gateway := &recordingGateway{}
	s := testScheduler(gateway, blockingGuard{}, []notification.Campaign{
		campaignOnDay("fires-today", 5),
	})

	s.fireMatching(context.Background(), time.Date(2026, time.June, 5, 8, 0, 0, 0, time.UTC))
	s.wg.Wait()

	assert.Empty(t, gateway.sentTo())
	assert.Nil(t, s.LastFiredAt())
}

func TestNotificationScheduler_TriggerCampaign(t *testing.T) {
	gateway := &recordingGateway{}
	s := testScheduler(gateway, infranotification.AlwaysFireGuard{}, []notification.Campaign{
		campaignOnDay("manual", 5),
	})

	report, err := s.TriggerCampaign(context.Background(), "manual")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)

	_, err = s.TriggerCampaign(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}

func TestNotificationScheduler_StartStop(t *testing.T) {
	gateway := &recordingGateway{}
	s := testScheduler(gateway, infranotification.AlwaysFireGuard{}, nil)

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	// Second start is a no-op
	require.NoError(t, s.Start(context.Background()))

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(stopCtx))
	assert.False(t, s.IsRunning())
}
