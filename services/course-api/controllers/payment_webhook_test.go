package controllers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yashrajoria/course-store/services/common/middleware"
	"github.com/yashrajoria/course-store/services/course-api/models"
	"github.com/yashrajoria/course-store/services/course-api/webhook"
)

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, event models.PaymentEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockPublisher) Close() error { return nil }

func newWebhookRouter(t *testing.T, pub *MockPublisher) (*gin.Engine, *webhook.HMACVerifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	v, err := webhook.NewHMACVerifier("s")
	require.NoError(t, err)
	pc := NewPaymentWebhookController(v, pub, nil)
	pc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	router := gin.New()
	router.POST("/api/payment/webhook", middleware.BodyLimit(100<<10), pc.Handle)
	return router, v
}

func sendWebhook(router *gin.Engine, body []byte, sig string, headers map[string]string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, "/api/payment/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if sig != "" {
		req.Header.Set("X-Razorpay-Signature", sig)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestPaymentWebhook(t *testing.T) {
	t.Run("valid signature - 200 ok and event forwarded", func(t *testing.T) {
		pub := new(MockPublisher)
		router, v := newWebhookRouter(t, pub)
		body := []byte(`{"event":"payment.captured","payload":{"amount":49900}}`)

		pub.On("Publish", mock.Anything, mock.MatchedBy(func(e models.PaymentEvent) bool {
			return e.ID == "evt_razor_1" && e.Provider == "razorpay" && e.Type == "payment.captured" &&
				string(e.Payload) == string(body) && e.ReceivedAt.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
		})).Return(nil).Once()

		recorder := sendWebhook(router, body, v.Sign(body), map[string]string{"X-Razorpay-Event-Id": "evt_razor_1"})

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "ok", recorder.Body.String())
		pub.AssertExpectations(t)
	})

	t.Run("empty object body with secret s", func(t *testing.T) {
		pub := new(MockPublisher)
		router, v := newWebhookRouter(t, pub)
		pub.On("Publish", mock.Anything, mock.MatchedBy(func(e models.PaymentEvent) bool {
			return e.Type == "unknown" && e.ID != ""
		})).Return(nil).Once()

		recorder := sendWebhook(router, []byte("{}"), v.Sign([]byte("{}")), nil)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	rejected := map[string]func(v *webhook.HMACVerifier) ([]byte, string){
		"missing signature": func(*webhook.HMACVerifier) ([]byte, string) { return []byte("{}"), "" },
		"garbage signature": func(*webhook.HMACVerifier) ([]byte, string) { return []byte("{}"), "not-a-signature" },
		"tampered body": func(v *webhook.HMACVerifier) ([]byte, string) {
			return []byte(`{"event":"payment.captured","amount":1}`), v.Sign([]byte(`{"event":"payment.captured","amount":100}`))
		},
	}
	for name, build := range rejected {
		t.Run(name+" - 400 invalid signature", func(t *testing.T) {
			pub := new(MockPublisher)
			router, v := newWebhookRouter(t, pub)
			body, sig := build(v)

			recorder := sendWebhook(router, body, sig, nil)

			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Equal(t, "invalid signature", recorder.Body.String())
			pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
		})
	}

	t.Run("publish failure still acknowledges", func(t *testing.T) {
		pub := new(MockPublisher)
		router, v := newWebhookRouter(t, pub)
		body := []byte(`{"event":"refund.processed"}`)
		pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("sns down")).Once()

		recorder := sendWebhook(router, body, v.Sign(body), nil)
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("oversized body - 413", func(t *testing.T) {
		pub := new(MockPublisher)
		router, v := newWebhookRouter(t, pub)
		body := []byte(`{"event":"x","pad":"` + strings.Repeat("a", 101<<10) + `"}`)

		recorder := sendWebhook(router, body, v.Sign(body), nil)
		assert.Equal(t, http.StatusRequestEntityTooLarge, recorder.Code)
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})
}
