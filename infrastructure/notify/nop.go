package notify

import (
	"context"

	"ipo_automation/domain/entities"
	"ipo_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// NopNotifier logs notifications instead of sending them. It stands in when
// no bot is configured or the bot failed to start.
type NopNotifier struct {
	logger logrus.FieldLogger
}

// NewNopNotifier - creates a notifier that only logs
func NewNopNotifier(logger logrus.FieldLogger) *NopNotifier {
	return &NopNotifier{logger: logger}
}

func (n *NopNotifier) Notify(ctx context.Context, msg entities.Notification) error {
	n.logger.WithField("kind", msg.Kind).Info("notification skipped, no bot configured")
	return nil
}

var _ interfaces.Notifier = (*NopNotifier)(nil)
