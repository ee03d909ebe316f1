package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Payment  PaymentConfig
	WhatsApp WhatsAppConfig
	Auth     AuthConfig
	Chat     ChatConfig
	BaseURL  string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Brokers  []string
	GroupID  string
	Topics   TopicConfig
	MockMode bool
	Enabled  bool
}

type TopicConfig struct {
	OrderPlaced    string
	OrderCancelled string
}

// PaymentConfig selects the gateway provider and carries credentials
// for both. Provider is "cashfree" or "stripe".
type PaymentConfig struct {
	Provider           string
	CashfreeBaseURL    string
	CashfreeClientID   string
	CashfreeSecret     string
	CashfreeAPIVersion string
	StripeSecretKey    string
	SurchargePct       float64
}

type WhatsAppConfig struct {
	BaseURL      string
	Username     string
	Password     string
	SourceNumber string
	TemplateID   string
	Enabled      bool
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type ChatConfig struct {
	SessionTTL time.Duration
}

func Load() *Config {
	kafkaEnabled := getEnvBool("KAFKA_ENABLED", true)
	mockMode := getEnvBool("KAFKA_MOCK_MODE", false)

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Username:     getEnv("DB_USERNAME", "canteen_user"),
			Password:     getEnv("DB_PASSWORD", "canteen_pass"),
			Database:     getEnv("DB_NAME", "canteen"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", ""),
		},
		Kafka: KafkaConfig{
			Brokers:  []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			GroupID:  getEnv("KAFKA_GROUP_ID", "canteen-service-group"),
			Enabled:  kafkaEnabled,
			MockMode: mockMode,
			Topics: TopicConfig{
				OrderPlaced:    getEnv("KAFKA_TOPIC_ORDER_PLACED", "canteen.order.placed"),
				OrderCancelled: getEnv("KAFKA_TOPIC_ORDER_CANCELLED", "canteen.order.cancelled"),
			},
		},
		Payment: PaymentConfig{
			Provider:           getEnv("PAYMENT_PROVIDER", "cashfree"),
			CashfreeBaseURL:    getEnv("CASHFREE_BASE_URL", "https://sandbox.cashfree.com/pg"),
			CashfreeClientID:   getEnv("CASHFREE_CLIENT_ID", ""),
			CashfreeSecret:     getEnv("CASHFREE_CLIENT_SECRET", ""),
			CashfreeAPIVersion: getEnv("CASHFREE_API_VERSION", "2023-08-01"),
			StripeSecretKey:    getEnv("STRIPE_SECRET_KEY", ""),
			SurchargePct:       getEnvFloat("GATEWAY_SURCHARGE_PCT", 0),
		},
		WhatsApp: WhatsAppConfig{
			BaseURL:      getEnv("WHATSAPP_BASE_URL", "https://iqwhatsapp.airtel.in/gateway/airtel-xchange/v2"),
			Username:     getEnv("WHATSAPP_USERNAME", ""),
			Password:     getEnv("WHATSAPP_PASSWORD", ""),
			SourceNumber: getEnv("WHATSAPP_SOURCE_NUMBER", ""),
			TemplateID:   getEnv("WHATSAPP_TEMPLATE_ID", ""),
			Enabled:      getEnvBool("WHATSAPP_ENABLED", true),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "dev-only-secret"),
			TokenTTL:  time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,
		},
		Chat: ChatConfig{
			SessionTTL: time.Duration(getEnvInt("SESSION_TTL_MINUTES", 30)) * time.Minute,
		},
		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),
	}
}

// DSN builds the postgres connection string for the bun/pq driver.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
