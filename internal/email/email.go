package email

import (
	"context"

	"go.uber.org/zap"
)

// Sender delivers loyalty-program emails. The default implementation only
// logs; a real SMTP transport plugs in behind the same methods.
type Sender struct {
	logger *zap.Logger
}

func NewSender(logger *zap.Logger) *Sender {
	return &Sender{logger: logger}
}

func (s *Sender) SendWelcome(_ context.Context, to, name string) error {
	s.logger.Info("welcome email sent",
		zap.String("to", to),
		zap.String("name", name))
	return nil
}

func (s *Sender) SendMilesCredited(_ context.Context, to, name string, pointsAdded, newBalance int) error {
	s.logger.Info("miles credited email sent",
		zap.String("to", to),
		zap.String("name", name),
		zap.Int("points_added", pointsAdded),
		zap.Int("new_balance", newBalance))
	return nil
}
