package authcore

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brightpath/authcore/kv"
)

// AuditEvent is one security-relevant occurrence: a login, a refusal, a
// revocation. Metadata is redacted before any sink sees it.
type AuditEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Email     string            `json:"email,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// AuditSink receives security events. Emit must not block the calling
// request path for longer than a log write; sinks that need buffering own
// their own goroutines.
type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

// NoOpSink discards every event. It is the default sink.
type NoOpSink struct{}

// Emit implements [AuditSink].
func (NoOpSink) Emit(context.Context, AuditEvent) {}

// sensitiveFields never reach a sink in the clear, whatever a caller puts
// into event metadata.
var sensitiveFields = map[string]struct{}{
	"password": {},
	"token":    {},
	"secret":   {},
	"key":      {},
}

func redactMetadata(metadata map[string]string) map[string]string {
	if len(metadata) == 0 {
		return nil
	}
	redacted := make(map[string]string, len(metadata))
	for k, v := range metadata {
		if _, sensitive := sensitiveFields[strings.ToLower(k)]; sensitive {
			redacted[k] = "[REDACTED]"
			continue
		}
		redacted[k] = v
	}
	return redacted
}

// LogrusSink writes events as structured log entries.
type LogrusSink struct {
	logger *logrus.Logger
}

// NewLogrusSink wraps a configured logrus logger. A nil logger uses the
// logrus standard logger.
func NewLogrusSink(logger *logrus.Logger) *LogrusSink {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogrusSink{logger: logger}
}

// Emit implements [AuditSink].
func (s *LogrusSink) Emit(ctx context.Context, event AuditEvent) {
	entry := s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"event_type": event.EventType,
		"success":    event.Success,
	})
	if event.UserID != "" {
		entry = entry.WithField("user_id", event.UserID)
	}
	if event.Email != "" {
		entry = entry.WithField("email", event.Email)
	}
	if event.Error != "" {
		entry = entry.WithField("error", event.Error)
	}
	for k, v := range event.Metadata {
		entry = entry.WithField(k, v)
	}

	if event.Success {
		entry.Info("security event")
		return
	}
	entry.Warn("security event")
}

// TrailSink appends events to a capped list in the shared store so every
// service instance shares one audit trail. Write failures are swallowed:
// the trail is best-effort and must never fail an authentication request.
type TrailSink struct {
	store kv.Store
	key   string
	size  int64
}

// NewTrailSink creates a trail of at most size events under key.
func NewTrailSink(store kv.Store, key string, size int64) *TrailSink {
	if key == "" {
		key = "security_events"
	}
	if size <= 0 {
		size = 1000
	}
	return &TrailSink{store: store, key: key, size: size}
}

// Emit implements [AuditSink].
func (s *TrailSink) Emit(ctx context.Context, event AuditEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.store.LPush(ctx, s.key, string(payload)); err != nil {
		return
	}
	_ = s.store.LTrim(ctx, s.key, 0, s.size-1)
}

// FanoutSink forwards each event to every wrapped sink in order.
type FanoutSink struct {
	sinks []AuditSink
}

// NewFanoutSink combines sinks; nil entries are dropped.
func NewFanoutSink(sinks ...AuditSink) *FanoutSink {
	kept := make([]AuditSink, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			kept = append(kept, sink)
		}
	}
	return &FanoutSink{sinks: kept}
}

// Emit implements [AuditSink].
func (s *FanoutSink) Emit(ctx context.Context, event AuditEvent) {
	for _, sink := range s.sinks {
		sink.Emit(ctx, event)
	}
}
