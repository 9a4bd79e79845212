package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"github.com/namjai/backend/internal/infrastructure/config"
)

// TwilioGateway sends SMS through the Twilio REST API. The client is built
// once at construction from explicit credentials; there is no lazy global
// initialization, so a misconfiguration surfaces at startup instead of on
// the first send.
type TwilioGateway struct {
	client *twilio.RestClient
	from   string
	logger *zap.Logger
}

// NewTwilioGateway creates a new TwilioGateway
func NewTwilioGateway(cfg config.TwilioConfig, logger *zap.Logger) (*TwilioGateway, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("twilio account SID and auth token are required")
	}
	if cfg.FromNumber == "" {
		return nil, fmt.Errorf("twilio from number is required")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	if cfg.SendTimeout > 0 {
		client.SetTimeout(cfg.SendTimeout)
	}

	return &TwilioGateway{
		client: client,
		from:   cfg.FromNumber,
		logger: logger,
	}, nil
}

// Send delivers one SMS. The recipient must already be in E.164 form.
func (g *TwilioGateway) Send(ctx context.Context, to, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(g.from)
	params.SetBody(message)

	resp, err := g.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send to %s: %w", to, err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	g.logger.Debug("SMS accepted by provider",
		zap.String("to", to),
		zap.String("message_sid", sid))
	return nil
}

// LogGateway writes messages to the log instead of a provider. Used in
// development and when no SMS credentials are configured.
type LogGateway struct {
	logger *zap.Logger
}

// NewLogGateway creates a new LogGateway
func NewLogGateway(logger *zap.Logger) *LogGateway {
	return &LogGateway{logger: logger}
}

// Send logs the message and reports success
func (g *LogGateway) Send(_ context.Context, to, message string) error {
	g.logger.Info("SMS (log gateway)",
		zap.String("to", to),
		zap.String("message", message),
		zap.Time("at", time.Now()))
	return nil
}
