package notify

import (
	"context"

	"github.com/volume-club/reader-api/internal/platform/logger"
)

// LogSender records the dispatch instead of delivering it. Real email
// delivery is operational plumbing owned by the platform; local and test
// deployments read the code off the log.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, email, code string) error {
	_ = ctx
	s.log.Info("verification code dispatched", "email", email, "code", code)
	return nil
}
