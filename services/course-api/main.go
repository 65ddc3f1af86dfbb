package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	awspkg "github.com/yashrajoria/course-store/pkg/aws"
	"github.com/yashrajoria/course-store/services/common/logger"
	"github.com/yashrajoria/course-store/services/common/middleware"
	"github.com/yashrajoria/course-store/services/course-api/config"
	"github.com/yashrajoria/course-store/services/course-api/controllers"
	"github.com/yashrajoria/course-store/services/course-api/database"
	"github.com/yashrajoria/course-store/services/course-api/events"
	"github.com/yashrajoria/course-store/services/course-api/models"
	"github.com/yashrajoria/course-store/services/course-api/repository"
	"github.com/yashrajoria/course-store/services/course-api/routes"
	"github.com/yashrajoria/course-store/services/course-api/services"
	"github.com/yashrajoria/course-store/services/course-api/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[CourseAPI] Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, awsErr := awspkg.LoadAWSConfig(ctx)

	if cfg.CloudWatchEnable && awsErr == nil {
		cw, err := awspkg.NewCloudWatchLogsClient(ctx, awsCfg, cfg.LogGroup, "course-api")
		if err != nil {
			log.Printf("[CourseAPI] CloudWatch logs unavailable: %v", err)
			err = logger.Initialize(cfg.Env)
		} else {
			err = logger.InitializeWithWriter(cfg.Env, cw)
		}
		if err != nil {
			log.Fatalf("[CourseAPI] Failed to initialize logger: %v", err)
		}
	} else if err := logger.Initialize(cfg.Env); err != nil {
		log.Fatalf("[CourseAPI] Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	var metrics awspkg.MetricsRecorder
	if cfg.CloudWatchEnable && awsErr == nil {
		metrics = awspkg.NewMetricsClient(awsCfg, cfg.MetricsNamespace)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Log.Fatal("Could not connect to PostgreSQL", zap.Error(err))
	}
	if err := models.Migrate(db); err != nil {
		logger.Log.Fatal("Migration failed", zap.Error(err))
	}

	secret := cfg.WebhookSecret
	if secret == "" {
		if awsErr != nil {
			logger.Log.Fatal("AWS config required to fetch webhook secret", zap.Error(awsErr))
		}
		secret, err = awspkg.NewSecretsClient(awsCfg).GetSecret(ctx, cfg.WebhookSecretName)
		if err != nil {
			logger.Log.Fatal("Failed to fetch webhook secret", zap.String("name", cfg.WebhookSecretName), zap.Error(err))
		}
	}
	verifier, err := webhook.New(cfg.WebhookProvider, secret)
	if err != nil {
		logger.Log.Fatal("Invalid webhook configuration", zap.Error(err))
	}

	publisher := newPublisher(cfg, awsCfg, awsErr)
	defer publisher.Close()

	tokens, err := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Log.Fatal("Invalid token configuration", zap.Error(err))
	}
	authService := services.NewAuthService(repository.NewUserRepository(db), tokens)

	limiter := middleware.NewWindowLimiter(cfg.AuthRateWindow, cfg.AuthRateMax)
	go limiter.Sweep(ctx)

	router, err := routes.NewRouter(
		controllers.NewAuthController(authService, metrics),
		controllers.NewPaymentWebhookController(verifier, publisher, metrics),
		routes.Options{
			AllowedOrigins:      cfg.AllowedOrigins,
			TrustedProxies:      cfg.TrustedProxies,
			MaxBodyBytes:        cfg.MaxBodyBytes,
			WebhookMaxBodyBytes: cfg.WebhookMaxBodyBytes,
			AuthLimiter:         limiter,
			Metrics:             metrics,
		},
	)
	if err != nil {
		logger.Log.Fatal("Invalid router configuration", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Course API started", zap.String("port", cfg.Port), zap.String("webhook_provider", cfg.WebhookProvider))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Shutdown error", zap.Error(err))
		os.Exit(1)
	}
	logger.Log.Info("Server shutdown complete")
}

func newPublisher(cfg *config.Config, awsCfg sdkaws.Config, awsErr error) events.Publisher {
	switch cfg.EventsSink {
	case "sns":
		if awsErr != nil {
			logger.Log.Fatal("AWS config required for SNS events", zap.Error(awsErr))
		}
		p, err := events.NewSNSPublisher(awspkg.NewSNSClient(awsCfg), cfg.PaymentTopicARN)
		if err != nil {
			logger.Log.Fatal("Invalid SNS configuration", zap.Error(err))
		}
		return p
	case "kafka":
		return events.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	default:
		logger.Log.Warn("No events sink configured; verified webhooks are acknowledged only")
		return events.Noop{}
	}
}
