package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	Features FeatureFlags
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers     []string
	OrdersTopic string
}

// AuthConfig selects the identity provider. Mode "firebase" verifies bearer
// tokens against Firebase; mode "jwt" verifies locally signed HMAC tokens and
// is intended for development and tests.
type AuthConfig struct {
	Mode            string
	CredentialsFile string
	ProjectID       string
	JWTSecret       string
	Issuer          string
	Audience        string
}

type FeatureFlags struct {
	// DropUnknownZeroQuantity makes cart updates drop a zero-quantity item
	// that is not already in the cart. Off by default for legacy parity,
	// where such an update inserts a zero-quantity line.
	DropUnknownZeroQuantity bool
	// RejectEmptyOrder refuses order creation from an empty cart instead of
	// producing a zero-value order.
	RejectEmptyOrder  bool
	EnableOrderEvents bool
	EnableCartCache   bool
}

type LoggingConfig struct {
	Level    string
	FilePath string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
			IdleTimeout:  time.Duration(getEnvInt("SERVER_IDLE_TIMEOUT", 60)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:         getEnvString("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnvString("DB_USER", "shopsphere"),
			Password:     getEnvString("DB_PASSWORD", "shopsphere"),
			Name:         getEnvString("DB_NAME", "shopsphere"),
			SSLMode:      getEnvString("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME", 300)) * time.Second,
		},
		Redis: RedisConfig{
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("REDIS_TTL", 900)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:     []string{getEnvString("KAFKA_BROKER", "localhost:9092")},
			OrdersTopic: getEnvString("KAFKA_ORDERS_TOPIC", "shopsphere.orders"),
		},
		Auth: AuthConfig{
			Mode:            getEnvString("AUTH_MODE", "firebase"),
			CredentialsFile: getEnvString("FIREBASE_CREDENTIALS_FILE", "serviceAccount.json"),
			ProjectID:       getEnvString("FIREBASE_PROJECT_ID", ""),
			JWTSecret:       getEnvString("AUTH_JWT_SECRET", ""),
			Issuer:          getEnvString("AUTH_JWT_ISSUER", "shopsphere"),
			Audience:        getEnvString("AUTH_JWT_AUDIENCE", "shopsphere-api"),
		},
		Features: FeatureFlags{
			DropUnknownZeroQuantity: getEnvBool("FEATURES_DROP_UNKNOWN_ZERO_QTY", false),
			RejectEmptyOrder:        getEnvBool("FEATURES_REJECT_EMPTY_ORDER", false),
			EnableOrderEvents:       getEnvBool("FEATURES_ENABLE_ORDER_EVENTS", false),
			EnableCartCache:         getEnvBool("FEATURES_ENABLE_CART_CACHE", false),
		},
		Logging: LoggingConfig{
			Level:    getEnvString("LOG_LEVEL", "info"),
			FilePath: getEnvString("LOG_FILE", "./logs/app.log"),
		},
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
