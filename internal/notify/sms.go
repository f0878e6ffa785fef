package notify

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSOpts holds Twilio configuration for the SMS sender.
type SMSOpts struct {
	AccountSID string
	AuthToken  string
	From       string
	To         string
}

// SMSOption defines a configuration option for the SMS sender.
type SMSOption func(*SMSOpts)

// WithAccountSID sets the Twilio account SID.
func WithAccountSID(sid string) SMSOption {
	return func(o *SMSOpts) { o.AccountSID = sid }
}

// WithAuthToken sets the Twilio auth token.
func WithAuthToken(token string) SMSOption {
	return func(o *SMSOpts) { o.AuthToken = token }
}

// WithFromNumber sets the sending phone number.
func WithFromNumber(from string) SMSOption {
	return func(o *SMSOpts) { o.From = from }
}

// WithToNumber sets the user's phone number.
func WithToNumber(to string) SMSOption {
	return func(o *SMSOpts) { o.To = to }
}

// SMSSender delivers notifications as text messages via Twilio.
type SMSSender struct {
	client *twilio.RestClient
	from   string
	to     string
}

// NewSMSSender creates an SMS sender. Options fall back to the
// TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN, TWILIO_FROM_NUMBER, and
// QUITPULSE_PHONE environment variables.
func NewSMSSender(opts ...SMSOption) (*SMSSender, error) {
	var cfg SMSOpts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.AccountSID == "" {
		cfg.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	}
	if cfg.From == "" {
		cfg.From = os.Getenv("TWILIO_FROM_NUMBER")
	}
	if cfg.To == "" {
		cfg.To = os.Getenv("QUITPULSE_PHONE")
	}
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("twilio credentials not set")
	}
	if cfg.From == "" || cfg.To == "" {
		return nil, fmt.Errorf("twilio phone numbers not set")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})
	return &SMSSender{client: client, from: cfg.From, to: cfg.To}, nil
}

// Send delivers the notification as a single SMS.
func (s *SMSSender) Send(ctx context.Context, n Notification) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(s.to)
	params.SetFrom(s.from)
	params.SetBody(fmt.Sprintf("%s: %s", n.Title, n.Body))

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	slog.Debug("sms: notification delivered", "category", n.Category)
	return nil
}
