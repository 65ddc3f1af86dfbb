package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const localFrontend = "http://localhost:5500"

type Config struct {
	Port string
	Env  string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	JWTSecret string
	TokenTTL  time.Duration

	AllowedOrigins      []string
	MaxBodyBytes        int64
	WebhookMaxBodyBytes int64
	AuthRateWindow      time.Duration
	AuthRateMax         int
	TrustedProxies      []string // empty: client IP is the socket peer

	WebhookProvider   string // razorpay | stripe
	WebhookSecret     string
	WebhookSecretName string // Secrets Manager name, used when WebhookSecret is empty

	EventsSink       string // sns | kafka | "" (disabled)
	PaymentTopicARN  string
	KafkaBrokers     []string
	KafkaTopic       string
	CloudWatchEnable bool
	LogGroup         string
	MetricsNamespace string
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() (*Config, error) {
	provider := strings.ToLower(getEnv("WEBHOOK_PROVIDER", "razorpay"))

	cfg := &Config{
		Port:                getEnv("PORT", "5000"),
		Env:                 getEnv("APP_ENV", "development"),
		PostgresUser:        os.Getenv("POSTGRES_USER"),
		PostgresPassword:    os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:          os.Getenv("POSTGRES_DB"),
		PostgresHost:        getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:        getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:     getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone:    getEnv("POSTGRES_TIMEZONE", "UTC"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		TokenTTL:            getDuration("TOKEN_TTL", 24*time.Hour),
		AllowedOrigins:      allowedOrigins(),
		MaxBodyBytes:        int64(getInt("MAX_BODY_BYTES", 50<<10)),
		WebhookMaxBodyBytes: int64(getInt("WEBHOOK_MAX_BODY_BYTES", 100<<10)),
		AuthRateWindow:      getDuration("AUTH_RATE_WINDOW", 15*time.Minute),
		AuthRateMax:         getInt("AUTH_RATE_MAX", 10),
		TrustedProxies:      splitList(os.Getenv("TRUSTED_PROXIES")),
		WebhookProvider:     provider,
		WebhookSecretName:   os.Getenv("WEBHOOK_SECRET_NAME"),
		EventsSink:          strings.ToLower(os.Getenv("EVENTS_SINK")),
		PaymentTopicARN:     os.Getenv("PAYMENT_SNS_TOPIC_ARN"),
		KafkaBrokers:        splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:          getEnv("KAFKA_PAYMENT_TOPIC", "payment-events"),
		CloudWatchEnable:    os.Getenv("CLOUDWATCH_ENABLED") == "true",
		LogGroup:            getEnv("CLOUDWATCH_LOG_GROUP", "/course-store/course-api"),
		MetricsNamespace:    getEnv("CLOUDWATCH_NAMESPACE", "CourseStore"),
	}

	switch provider {
	case "razorpay":
		cfg.WebhookSecret = os.Getenv("RAZORPAY_WEBHOOK_SECRET")
	case "stripe":
		cfg.WebhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")
	default:
		return nil, fmt.Errorf("unknown WEBHOOK_PROVIDER %q", provider)
	}

	var missing []string
	if cfg.PostgresUser == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if cfg.PostgresPassword == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if cfg.PostgresDB == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if cfg.WebhookSecret == "" && cfg.WebhookSecretName == "" {
		missing = append(missing, strings.ToUpper(provider)+"_WEBHOOK_SECRET or WEBHOOK_SECRET_NAME")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	switch cfg.EventsSink {
	case "", "kafka":
	case "sns":
		if cfg.PaymentTopicARN == "" {
			return nil, fmt.Errorf("PAYMENT_SNS_TOPIC_ARN is required when EVENTS_SINK=sns")
		}
	default:
		return nil, fmt.Errorf("unknown EVENTS_SINK %q", cfg.EventsSink)
	}

	return cfg, nil
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresPort, c.PostgresSSLMode, c.PostgresTimeZone)
}

func allowedOrigins() []string {
	origins := []string{localFrontend}
	if fe := os.Getenv("FRONTEND_URL"); fe != "" {
		origins = append(origins, fe)
	}
	return append(origins, splitList(os.Getenv("ALLOWED_ORIGINS"))...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
