package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	awspkg "github.com/yashrajoria/course-store/pkg/aws"
	apperrors "github.com/yashrajoria/course-store/services/common/errors"
	"github.com/yashrajoria/course-store/services/common/logger"
	"github.com/yashrajoria/course-store/services/common/middleware"
	"github.com/yashrajoria/course-store/services/course-api/events"
	"github.com/yashrajoria/course-store/services/course-api/models"
	"github.com/yashrajoria/course-store/services/course-api/webhook"
)

type PaymentWebhookController struct {
	Verifier  webhook.Verifier
	Publisher events.Publisher
	Metrics   awspkg.MetricsRecorder
	now       func() time.Time
}

func NewPaymentWebhookController(v webhook.Verifier, p events.Publisher, metrics awspkg.MetricsRecorder) *PaymentWebhookController {
	if p == nil {
		p = events.Noop{}
	}
	return &PaymentWebhookController{Verifier: v, Publisher: p, Metrics: metrics, now: time.Now}
}

// Handle verifies the provider signature over the raw body before anything
// else looks at it. The response never says why a signature was refused.
func (pc *PaymentWebhookController) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			c.AbortWithStatusJSON(apperrors.ErrPayloadTooLarge.Code, apperrors.ErrPayloadTooLarge)
			return
		}
		logger.Error(c, "Failed to read webhook body", err)
		c.String(http.StatusBadRequest, apperrors.ErrSignatureMismatch.Message)
		return
	}

	provider := pc.Verifier.Provider()
	if err := pc.Verifier.Verify(body, c.GetHeader(pc.Verifier.SignatureHeader())); err != nil {
		logger.Warn(c, "Webhook signature verification failed", zap.String("provider", provider), zap.String("ip", c.ClientIP()))
		pc.count(c, awspkg.MetricWebhooksRejected, provider)
		c.String(http.StatusBadRequest, apperrors.ErrSignatureMismatch.Message)
		return
	}

	event := pc.toEvent(c, provider, body)
	logger.Info(c, "Processing payment webhook",
		zap.String("provider", provider),
		zap.String("event_type", event.Type),
		zap.String("event_id", event.ID),
	)
	pc.count(c, awspkg.MetricWebhooksVerified, provider)

	if err := pc.Publisher.Publish(c, event); err != nil {
		logger.Error(c, "Failed to publish payment event", err, zap.String("event_id", event.ID))
	}

	c.String(http.StatusOK, "ok")
}

// envelope covers both providers: Razorpay names the event in "event",
// Stripe in "type" next to its own "id".
type envelope struct {
	ID    string `json:"id"`
	Event string `json:"event"`
	Type  string `json:"type"`
}

func (pc *PaymentWebhookController) toEvent(c *gin.Context, provider string, body []byte) models.PaymentEvent {
	event := models.PaymentEvent{
		Provider:   provider,
		ReceivedAt: pc.now().UTC(),
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		logger.Warn(c, "Verified webhook body is not a JSON object", zap.Error(err))
		event.Payload, _ = json.Marshal(string(body))
	} else {
		event.Payload = json.RawMessage(body)
	}

	event.Type = env.Event
	if event.Type == "" {
		event.Type = env.Type
	}
	if event.Type == "" {
		event.Type = "unknown"
	}

	switch {
	case c.GetHeader("X-Razorpay-Event-Id") != "":
		event.ID = c.GetHeader("X-Razorpay-Event-Id")
	case env.ID != "":
		event.ID = env.ID
	default:
		event.ID = uuid.NewString()
	}
	return event
}

func (pc *PaymentWebhookController) count(ctx context.Context, metric, provider string) {
	if pc.Metrics == nil {
		return
	}
	_ = pc.Metrics.RecordCount(ctx, metric, map[string]string{"Provider": provider})
}
