package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"betScope/internal/metrics"
)

// Status is the user-facing category of a lifecycle notification.
type Status string

const (
	StatusSubmitting Status = "submitting"
	StatusConfirming Status = "confirming"
	StatusSuccess    Status = "success"
	StatusFailure    Status = "failure"
)

// Notification describes one transaction lifecycle event.
type Notification struct {
	SubmissionID string `json:"submission_id"`
	Status       Status `json:"status"`
	Message      string `json:"message"`
	TxHash       string `json:"tx_hash,omitempty"`
	Fallback     bool   `json:"fallback,omitempty"`
	Timestamp    int64  `json:"timestamp"`
}

// Notifier delivers lifecycle notifications to a sink.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Notify(context.Context, Notification) error { return nil }

type namedNotifier struct {
	name     string
	notifier Notifier
}

// Multi fans a notification out to several sinks. A failing sink is logged
// and counted; the others still receive the notification.
type Multi struct {
	sinks  []namedNotifier
	logger *zap.Logger
}

// NewMulti builds an empty fan-out.
func NewMulti(logger *zap.Logger) *Multi {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Multi{logger: logger}
}

// Add registers a sink under name, used in logs and metrics.
func (m *Multi) Add(name string, n Notifier) *Multi {
	if n != nil {
		m.sinks = append(m.sinks, namedNotifier{name: name, notifier: n})
	}
	return m
}

// Len returns the number of registered sinks.
func (m *Multi) Len() int {
	return len(m.sinks)
}

// Notify delivers n to every sink and joins their errors.
func (m *Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, sink := range m.sinks {
		if err := sink.notifier.Notify(ctx, n); err != nil {
			metrics.NotifyFailuresTotal.WithLabelValues(sink.name).Inc()
			m.logger.Warn("notification failed",
				zap.String("sink", sink.name),
				zap.String("submission_id", n.SubmissionID),
				zap.String("status", string(n.Status)),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
