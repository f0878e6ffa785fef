package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// defaultPushTTL is how long (seconds) the push service may retain an
// undelivered message.
const defaultPushTTL = 30

// SubscriptionSource provides the stored browser push subscription, or nil
// when the user has not registered one.
type SubscriptionSource interface {
	PushSubscription() []byte
}

// WebPushOpts holds VAPID configuration for the web-push sender.
type WebPushOpts struct {
	Subscriber      string
	VAPIDPublicKey  string
	VAPIDPrivateKey string
}

// WebPushOption defines a configuration option for the web-push sender.
type WebPushOption func(*WebPushOpts)

// WithVAPIDSubject sets the VAPID subscriber contact (mailto: or URL).
func WithVAPIDSubject(subject string) WebPushOption {
	return func(o *WebPushOpts) { o.Subscriber = subject }
}

// WithVAPIDKeys sets the VAPID key pair.
func WithVAPIDKeys(publicKey, privateKey string) WebPushOption {
	return func(o *WebPushOpts) {
		o.VAPIDPublicKey = publicKey
		o.VAPIDPrivateKey = privateKey
	}
}

// WebPushSender delivers notifications to the user's registered browser push
// subscription.
type WebPushSender struct {
	cfg  WebPushOpts
	subs SubscriptionSource
}

// NewWebPushSender creates a web-push sender. Options fall back to the
// VAPID_SUBJECT, VAPID_PUBLIC_KEY, and VAPID_PRIVATE_KEY environment
// variables. It returns an error when the VAPID key pair is missing.
func NewWebPushSender(subs SubscriptionSource, opts ...WebPushOption) (*WebPushSender, error) {
	var cfg WebPushOpts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Subscriber == "" {
		cfg.Subscriber = os.Getenv("VAPID_SUBJECT")
	}
	if cfg.VAPIDPublicKey == "" {
		cfg.VAPIDPublicKey = os.Getenv("VAPID_PUBLIC_KEY")
	}
	if cfg.VAPIDPrivateKey == "" {
		cfg.VAPIDPrivateKey = os.Getenv("VAPID_PRIVATE_KEY")
	}
	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		return nil, fmt.Errorf("web push not configured: VAPID key pair missing")
	}
	return &WebPushSender{cfg: cfg, subs: subs}, nil
}

// Send pushes the notification to the registered subscription. A missing
// subscription is not an error; the notification is simply skipped.
func (s *WebPushSender) Send(ctx context.Context, n Notification) error {
	raw := s.subs.PushSubscription()
	if raw == nil {
		slog.Debug("webpush: no subscription registered, skipping", "category", n.Category)
		return nil
	}

	var sub webpush.Subscription
	if err := json.Unmarshal(raw, &sub); err != nil {
		return fmt.Errorf("corrupt push subscription: %w", err)
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal push payload: %w", err)
	}

	resp, err := webpush.SendNotification(payload, &sub, &webpush.Options{
		Subscriber:      s.cfg.Subscriber,
		VAPIDPublicKey:  s.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: s.cfg.VAPIDPrivateKey,
		TTL:             defaultPushTTL,
	})
	if err != nil {
		return fmt.Errorf("web push delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service rejected notification: status %d", resp.StatusCode)
	}
	slog.Debug("webpush: notification delivered", "category", n.Category, "status", resp.StatusCode)
	return nil
}
