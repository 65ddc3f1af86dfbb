package events

import (
	"context"

	"github.com/yashrajoria/course-store/services/course-api/models"
)

// Publisher forwards verified payment events downstream.
type Publisher interface {
	Publish(ctx context.Context, event models.PaymentEvent) error
	Close() error
}

// Noop drops events. Used when no sink is configured.
type Noop struct{}

func (Noop) Publish(context.Context, models.PaymentEvent) error { return nil }
func (Noop) Close() error                                        { return nil }
