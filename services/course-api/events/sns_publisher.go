package events

import (
	"context"
	"encoding/json"
	"fmt"

	awspkg "github.com/yashrajoria/course-store/pkg/aws"
	"github.com/yashrajoria/course-store/services/course-api/models"
)

type SNSPublisher struct {
	client   awspkg.SNSPublisher
	topicARN string
}

func NewSNSPublisher(client awspkg.SNSPublisher, topicARN string) (*SNSPublisher, error) {
	if topicARN == "" {
		return nil, fmt.Errorf("payment topic ARN not set")
	}
	return &SNSPublisher{client: client, topicARN: topicARN}, nil
}

func (p *SNSPublisher) Publish(ctx context.Context, event models.PaymentEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return p.client.Publish(ctx, p.topicARN, msgBytes)
}

func (p *SNSPublisher) Close() error { return nil }
