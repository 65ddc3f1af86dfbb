package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	awspkg "github.com/yashrajoria/course-store/pkg/aws"
	apperrors "github.com/yashrajoria/course-store/services/common/errors"
	"github.com/yashrajoria/course-store/services/common/logger"
	"github.com/yashrajoria/course-store/services/common/middleware"
	"github.com/yashrajoria/course-store/services/course-api/controllers"
)

// Options carries what the router needs beyond the controllers.
type Options struct {
	AllowedOrigins      []string
	TrustedProxies      []string // nil trusts no proxy headers
	MaxBodyBytes        int64
	WebhookMaxBodyBytes int64
	AuthLimiter         *middleware.RateLimiter
	Metrics             awspkg.MetricsRecorder
}

func NewRouter(ac *controllers.AuthController, pc *controllers.PaymentWebhookController, opts Options) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(
		gin.Recovery(),
		logger.RequestLogger(),
		middleware.SecurityHeaders(),
		middleware.CORS(opts.AllowedOrigins),
		middleware.MetricsMiddleware(opts.Metrics, "course-api"),
		apperrors.ErrorMiddleware(),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	// login and register draw from one bucket per client
	auth := r.Group("/api/auth")
	auth.Use(
		middleware.RateLimitMiddleware(opts.AuthLimiter, opts.Metrics),
		middleware.BodyLimit(opts.MaxBodyBytes),
	)
	auth.POST("/register", ac.Register)
	auth.POST("/login", ac.Login)

	r.POST("/api/payment/webhook", middleware.BodyLimit(opts.WebhookMaxBodyBytes), pc.Handle)

	return r, nil
}
