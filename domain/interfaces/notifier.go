package interfaces

import (
	"context"

	"ipo_automation/domain/entities"
)

// Notifier delivers run status messages
type Notifier interface {
	Notify(ctx context.Context, n entities.Notification) error
}
