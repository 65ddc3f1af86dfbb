package models

import (
	"encoding/json"
	"time"
)

// PaymentEvent is forwarded to the events sink once a webhook signature checks out.
type PaymentEvent struct {
	ID         string          `json:"id"`
	Provider   string          `json:"provider"` // "razorpay" or "stripe"
	Type       string          `json:"type"`     // provider event name, e.g. "payment.captured"
	ReceivedAt time.Time       `json:"received_at"`
	Payload    json.RawMessage `json:"payload"`
}
