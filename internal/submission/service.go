package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase   = errors.New("database handle is required")
	errMissingIDProvider = errors.New("id provider is required")
	noOpLogger           = zap.NewNop()

	// ErrBotDetected is returned when the abuse check trips; the caller only
	// ever sees the generic bot-detection message.
	ErrBotDetected = errors.New("submission: bot detected")
	// ErrStoreMisconfigured is returned when the submissions table is absent.
	// This is an operator setup error, never retried.
	ErrStoreMisconfigured = errors.New("submission: submissions table missing")
)

// ServiceError wraps an operation code with its underlying cause.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew     = "submission.service.new"
	opSubmit         = "submission.submit"
	opListRecords    = "submission.list_records"
	opListSuspicious = "submission.list_suspicious"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// IDProvider issues identifiers for suspicious-activity records.
type IDProvider interface {
	NewID() (string, error)
}

// Notifier dispatches the outbound notification for an accepted record.
// Implementations are best-effort: they must swallow their own failures.
type Notifier interface {
	Notify(ctx context.Context, record Record)
}

// ServiceConfig wires the submission pipeline's dependencies.
type ServiceConfig struct {
	Database       *gorm.DB
	Clock          func() time.Time
	IDProvider     IDProvider
	Notifier       Notifier
	MaxFieldLength int
	Logger         *zap.Logger
}

// Service runs the submission pipeline: validate, abuse-check, sanitize,
// persist, notify.
type Service struct {
	db         *gorm.DB
	clock      func() time.Time
	idProvider IDProvider
	notifier   Notifier
	validator  *Validator
	maxLen     int
	logger     *zap.Logger
}

// NewService constructs a Service from its configuration.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	if cfg.IDProvider == nil {
		return nil, newServiceError(opServiceNew, "missing_id_provider", errMissingIDProvider)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	maxLen := cfg.MaxFieldLength
	if maxLen <= 0 {
		maxLen = DefaultMaxFieldLength
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		db:         cfg.Database,
		clock:      clock,
		idProvider: cfg.IDProvider,
		notifier:   cfg.Notifier,
		validator:  NewValidator(maxLen),
		maxLen:     maxLen,
		logger:     logger,
	}, nil
}

// Submit runs one payload through the full pipeline. callerID is the best
// available identifier for the request origin (typically the client IP); it is
// only recorded in the suspicious-activity log. Persistence and notification
// are independent steps: notification failures never change the outcome.
func (s *Service) Submit(ctx context.Context, payload Payload, callerID string) (Record, error) {
	if err := s.validator.Validate(payload); err != nil {
		return Record{}, newServiceError(opSubmit, "validation", err)
	}

	if Detect(payload) == VerdictHoneypot {
		s.logSuspicious(ctx, honeypotReason, payload, callerID)
		return Record{}, newServiceError(opSubmit, "honeypot", ErrBotDetected)
	}

	now := s.clock().UTC()
	record := Record{
		SubmittedAtSeconds: payload.SubmittedAt(now).UTC().Unix(),
		ReceivedAtSeconds:  now.Unix(),
		Name:               Sanitize(payload.Name, s.maxLen),
		Farm:               Sanitize(payload.Farm, s.maxLen),
		Email:              Sanitize(payload.Email, s.maxLen),
		Phone:              Sanitize(payload.Phone, s.maxLen),
		FarmType:           Sanitize(payload.FarmType, s.maxLen),
		FarmSize:           Sanitize(payload.FarmSize, s.maxLen),
		Message:            Sanitize(payload.Message, s.maxLen),
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		if isMissingTable(err) {
			return Record{}, newServiceError(opSubmit, "store_misconfigured", fmt.Errorf("%w: %v", ErrStoreMisconfigured, err))
		}
		return Record{}, newServiceError(opSubmit, "persist", err)
	}

	s.logger.Info("submission stored",
		zap.Int64("record_id", record.ID),
		zap.String("email", record.Email))

	if s.notifier != nil {
		s.notifier.Notify(ctx, record)
	}

	return record, nil
}

// ListRecords returns stored submissions, newest first.
func (s *Service) ListRecords(ctx context.Context, limit, offset int) ([]Record, error) {
	records := make([]Record, 0, limit)
	err := s.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, newServiceError(opListRecords, "query", err)
	}
	return records, nil
}

// ListSuspicious returns suspicious-activity entries, newest first.
func (s *Service) ListSuspicious(ctx context.Context, limit, offset int) ([]SuspiciousActivity, error) {
	entries := make([]SuspiciousActivity, 0, limit)
	err := s.db.WithContext(ctx).
		Order("observed_at_s DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, newServiceError(opListSuspicious, "query", err)
	}
	return entries, nil
}

// logSuspicious appends to the suspicious-activity log. Best-effort: a logging
// failure must not keep the rejection from completing.
func (s *Service) logSuspicious(ctx context.Context, reason string, payload Payload, callerID string) {
	rawPayload, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to encode suspicious payload", zap.Error(err))
		rawPayload = []byte("{}")
	}

	id, err := s.idProvider.NewID()
	if err != nil {
		s.logger.Error("failed to issue suspicious activity id", zap.Error(err))
		return
	}

	entry := SuspiciousActivity{
		ID:                id,
		ObservedAtSeconds: s.clock().UTC().Unix(),
		Reason:            reason,
		PayloadJSON:       string(rawPayload),
		CallerID:          callerID,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.logger.Error("failed to record suspicious activity", zap.Error(err))
		return
	}

	s.logger.Warn("suspicious activity recorded",
		zap.String("reason", reason),
		zap.String("caller_id", callerID))
}

// SQLite reports a missing destination table as a plain query error; map it to
// the misconfiguration sentinel so the caller gets the remediation hint.
func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
