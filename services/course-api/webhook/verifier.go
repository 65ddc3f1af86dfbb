// Package webhook authenticates payment provider callbacks. Every check runs on
// the raw request bytes; nothing is parsed before a signature matches.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v80/webhook"

	apperrors "github.com/yashrajoria/course-store/services/common/errors"
)

const (
	ProviderRazorpay = "razorpay"
	ProviderStripe   = "stripe"
)

// ErrSignatureMismatch is returned for every rejected payload, whatever the reason.
var ErrSignatureMismatch = apperrors.ErrSignatureMismatch

var errEmptySecret = errors.New("webhook secret is empty")

// Verifier checks a claimed signature against the raw body.
type Verifier interface {
	Verify(payload []byte, signature string) error
	SignatureHeader() string
	Provider() string
}

// HMACVerifier implements the Razorpay scheme: lowercase hex HMAC-SHA256 of the body.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) (*HMACVerifier, error) {
	if secret == "" {
		return nil, errEmptySecret
	}
	return &HMACVerifier{secret: []byte(secret)}, nil
}

// Sign returns the signature a sender holding the same secret would attach.
func (v *HMACVerifier) Sign(payload []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares the claimed header text with the canonical lowercase hex
// digest, so any change to the header, letter case included, is a mismatch.
func (v *HMACVerifier) Verify(payload []byte, signature string) error {
	if !hmac.Equal([]byte(v.Sign(payload)), []byte(signature)) {
		return ErrSignatureMismatch
	}
	return nil
}

func (v *HMACVerifier) SignatureHeader() string { return "X-Razorpay-Signature" }
func (v *HMACVerifier) Provider() string        { return ProviderRazorpay }

// StripeVerifier checks the timestamped Stripe-Signature header.
type StripeVerifier struct {
	secret    string
	tolerance time.Duration
}

func NewStripeVerifier(secret string) (*StripeVerifier, error) {
	if secret == "" {
		return nil, errEmptySecret
	}
	return &StripeVerifier{secret: secret, tolerance: webhook.DefaultTolerance}, nil
}

func (v *StripeVerifier) Verify(payload []byte, signature string) error {
	if err := webhook.ValidatePayloadWithTolerance(payload, signature, v.secret, v.tolerance); err != nil {
		return ErrSignatureMismatch
	}
	return nil
}

func (v *StripeVerifier) SignatureHeader() string { return "Stripe-Signature" }
func (v *StripeVerifier) Provider() string        { return ProviderStripe }

// New builds the verifier for provider.
func New(provider, secret string) (Verifier, error) {
	switch provider {
	case ProviderRazorpay:
		v, err := NewHMACVerifier(secret)
		if err != nil {
			return nil, err
		}
		return v, nil
	case ProviderStripe:
		v, err := NewStripeVerifier(secret)
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported webhook provider %q", provider)
	}
}
