package notification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/namjai/backend/internal/domain/notification"
	"github.com/namjai/backend/internal/domain/shared"
)

// defaultSendTimeout bounds one gateway call so a stuck provider cannot hang
// a whole dispatch pass.
const defaultSendTimeout = 10 * time.Second

// DispatchReport summarizes one campaign firing
type DispatchReport struct {
	CampaignID  string    `json:"campaign_id"`
	Attempted   int       `json:"attempted"`
	Sent        int       `json:"sent"`
	Failed      int       `json:"failed"`
	Skipped     int       `json:"skipped"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// CampaignService resolves a campaign's audience and dispatches its message.
// Delivery is best-effort: a failed or unroutable recipient is counted and
// logged, never retried, and never blocks the rest of the audience.
type CampaignService struct {
	contacts    notification.ContactRepository
	gateway     notification.Gateway
	sendTimeout time.Duration
	logger      *zap.Logger
}

// NewCampaignService creates a new CampaignService
func NewCampaignService(
	contacts notification.ContactRepository,
	gateway notification.Gateway,
	sendTimeout time.Duration,
	logger *zap.Logger,
) *CampaignService {
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	return &CampaignService{
		contacts:    contacts,
		gateway:     gateway,
		sendTimeout: sendTimeout,
		logger:      logger,
	}
}

// Run fires one campaign: resolve the audience, then send the message to each
// recipient. Audience resolution failure aborts the firing; per-recipient
// failures do not.
func (s *CampaignService) Run(ctx context.Context, campaign notification.Campaign) (DispatchReport, error) {
	report := DispatchReport{
		CampaignID: campaign.ID,
		StartedAt:  time.Now(),
	}

	if err := campaign.Validate(); err != nil {
		return report, err
	}

	recipients, err := s.contacts.QueryAudience(ctx, campaign.Audience)
	if err != nil {
		return report, fmt.Errorf("%w: resolving audience for campaign %s: %v",
			shared.ErrStoreUnavailable, campaign.ID, err)
	}

	s.logger.Info("Campaign firing",
		zap.String("campaign_id", campaign.ID),
		zap.String("audience", campaign.Audience.Describe()),
		zap.Int("recipients", len(recipients)))

	for _, contact := range recipients {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		phone, ok := notification.NormalizePhone(contact.Phone)
		if !ok {
			report.Skipped++
			s.logger.Warn("Recipient skipped, phone not routable",
				zap.String("campaign_id", campaign.ID),
				zap.String("contact_id", contact.ID))
			continue
		}

		report.Attempted++
		if err := s.send(ctx, phone, campaign.Message); err != nil {
			report.Failed++
			s.logger.Error("Message dispatch failed",
				zap.String("campaign_id", campaign.ID),
				zap.String("contact_id", contact.ID),
				zap.Error(err))
			continue
		}
		report.Sent++
	}

	report.CompletedAt = time.Now()
	s.logger.Info("Campaign completed",
		zap.String("campaign_id", campaign.ID),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped))

	return report, nil
}

func (s *CampaignService) send(ctx context.Context, to, message string) error {
	sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()
	return s.gateway.Send(sendCtx, to, message)
}
