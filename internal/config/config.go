package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string

	DatabaseURL string

	RedisURL string

	JWTSecret string

	ResendAPIKey string
	FromEmail    string

	FCMServerKey string
	FCMEndpoint  string

	WebhookSecret string

	QueueMaxAttempts  int
	QueueBaseDelay    time.Duration
	QueueMaxDelay     time.Duration
	QueueLeaseTTL     time.Duration
	QueuePollInterval time.Duration
	DispatchTimeout   time.Duration
	DispatchWorkers   int

	RateLimitMax    int
	RateLimitWindow time.Duration

	ThresholdBands string
	AlertChannels  string

	MetricsPort string

	CORSOrigins string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		JWTSecret: getEnv("JWT_SECRET", ""),

		ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		FromEmail:    getEnv("FROM_EMAIL", "alerts@example.com"),

		FCMServerKey: getEnv("FCM_SERVER_KEY", ""),
		FCMEndpoint:  getEnv("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send"),

		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),

		QueueMaxAttempts:  getIntEnv("QUEUE_MAX_ATTEMPTS", 3),
		QueueBaseDelay:    getDurationEnv("QUEUE_BASE_DELAY", time.Second),
		QueueMaxDelay:     getDurationEnv("QUEUE_MAX_DELAY", 5*time.Minute),
		QueueLeaseTTL:     getDurationEnv("QUEUE_LEASE_TTL", 2*time.Minute),
		QueuePollInterval: getDurationEnv("QUEUE_POLL_INTERVAL", time.Second),
		DispatchTimeout:   getDurationEnv("DISPATCH_TIMEOUT", 30*time.Second),
		DispatchWorkers:   getIntEnv("DISPATCH_WORKERS", 4),

		RateLimitMax:    getIntEnv("RATE_LIMIT_MAX", 1000),
		RateLimitWindow: getDurationEnv("RATE_LIMIT_WINDOW", 5*time.Second),

		ThresholdBands: getEnv("THRESHOLD_BANDS", "75:BUDGET_WARNING:MEDIUM,100:BUDGET_EXCEEDED:HIGH"),
		AlertChannels:  getEnv("ALERT_CHANNELS", "IN_APP,EMAIL,PUSH"),

		MetricsPort: getEnv("METRICS_PORT", "9091"),

		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
