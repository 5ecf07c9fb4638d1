package notify

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/landing-sop/contact-api/internal/submission"
)

const (
	defaultWindow   = 5 * time.Minute
	defaultStateTTL = 10 * time.Minute
)

var (
	errMissingSender    = errors.New("notify: sender is required")
	errMissingThrottle  = errors.New("notify: throttle store is required")
	errMissingRecipient = errors.New("notify: recipient is required")
)

// Sender delivers one notification message.
type Sender interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) error
}

// Config wires the notifier's dependencies.
type Config struct {
	Sender    Sender
	Throttle  ThrottleStore
	Recipient string
	Subject   string
	// Window is the minimum gap between sends; submissions inside it are
	// silently dropped. Defaults to 5 minutes.
	Window time.Duration
	// StateTTL is how long the last-sent timestamp is retained. Defaults to
	// 10 minutes.
	StateTTL time.Duration
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Notifier dispatches rate-limited email notifications for accepted
// submissions. The throttle is a single global gate shared across all
// submissions; it caps total notification volume rather than tracking
// individual senders.
type Notifier struct {
	sender    Sender
	throttle  ThrottleStore
	recipient string
	subject   string
	window    time.Duration
	stateTTL  time.Duration
	clock     func() time.Time
	logger    *zap.Logger
}

// New constructs a Notifier from its configuration.
func New(cfg Config) (*Notifier, error) {
	if cfg.Sender == nil {
		return nil, errMissingSender
	}
	if cfg.Throttle == nil {
		return nil, errMissingThrottle
	}
	if cfg.Recipient == "" {
		return nil, errMissingRecipient
	}

	window := cfg.Window
	if window <= 0 {
		window = defaultWindow
	}
	stateTTL := cfg.StateTTL
	if stateTTL <= 0 {
		stateTTL = defaultStateTTL
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Notifier{
		sender:    cfg.Sender,
		throttle:  cfg.Throttle,
		recipient: cfg.Recipient,
		subject:   cfg.Subject,
		window:    window,
		stateTTL:  stateTTL,
		clock:     clock,
		logger:    logger,
	}, nil
}

// Notify sends the notification for record unless a send already happened
// within the window. Best-effort: every failure is logged and swallowed so
// the submission outcome is never affected.
func (n *Notifier) Notify(ctx context.Context, record submission.Record) {
	now := n.clock()

	lastSentAt, known, err := n.throttle.LastSentAt(ctx)
	if err != nil {
		// Treat an unreadable throttle as unset; worst case is an extra mail.
		n.logger.Warn("throttle state read failed", zap.Error(err))
		known = false
	}
	if known && now.Sub(lastSentAt) <= n.window {
		n.logger.Debug("notification skipped, rate limited",
			zap.Time("last_sent_at", lastSentAt))
		return
	}

	textBody, htmlBody, err := renderBody(record)
	if err != nil {
		n.logger.Error("notification body render failed", zap.Error(err))
		return
	}

	if err := n.sender.Send(ctx, n.recipient, n.subject, textBody, htmlBody); err != nil {
		n.logger.Warn("notification send failed", zap.Error(err))
		return
	}

	if err := n.throttle.MarkSent(ctx, now, n.stateTTL); err != nil {
		n.logger.Warn("throttle state write failed", zap.Error(err))
	}

	n.logger.Info("notification sent", zap.String("recipient", n.recipient))
}
