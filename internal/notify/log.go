package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes notifications to a zap logger. Failures are logged at
// warn level, everything else at info.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(_ context.Context, n Notification) error {
	fields := []zap.Field{
		zap.String("submission_id", n.SubmissionID),
		zap.String("status", string(n.Status)),
	}
	if n.TxHash != "" {
		fields = append(fields, zap.String("tx_hash", n.TxHash))
	}
	if n.Fallback {
		fields = append(fields, zap.Bool("fallback", true))
	}

	if n.Status == StatusFailure {
		l.logger.Warn(n.Message, fields...)
		return nil
	}
	l.logger.Info(n.Message, fields...)
	return nil
}
