package config

import (
	"os"
	"strconv"
)

// Config holds every setting the service reads from the environment.
type Config struct {
	Port           string
	Environment    string
	Domain         string
	AllowedOrigins string

	MongoURI      string
	MongoDatabase string

	RedisAddress      string
	RedisPassword     string
	SubmitLimitQueue  string
	SubmitLimitPerDay int
	DraftTTLHours     int
	MaxUploadMemoryMB int

	JWTSecret string

	GeocoderURL    string
	GeocoderAPIKey string

	UploadDir                string
	BlobSweepIntervalMinutes int

	AMQPURL      string
	AMQPExchange string

	LogFormat string
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("GO_ENV", "development"),
		Domain:         getEnv("DOMAIN", ""),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		MongoURI:      getEnv("MONGODB_URI", ""),
		MongoDatabase: getEnv("MONGODB_DATABASE", "maintenance"),

		RedisAddress:      getEnv("REDIS_ADDRESS", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		SubmitLimitQueue:  getEnv("REDIS_QUEUE_FOR_SUBMIT_LIMIT", "submit_limit"),
		SubmitLimitPerDay: getEnvInt("SUBMIT_LIMIT_PER_DAY", 20),
		DraftTTLHours:     getEnvInt("DRAFT_TTL_HOURS", 24),
		MaxUploadMemoryMB: getEnvInt("MAX_UPLOAD_MEMORY_MB", 32),

		JWTSecret: getEnv("JWT_SECRET", ""),

		GeocoderURL:    getEnv("GEOCODER_URL", "https://api.opencagedata.com/geocode/v1/json"),
		GeocoderAPIKey: getEnv("GEOCODER_API_KEY", ""),

		UploadDir:                getEnv("UPLOAD_DIR", "./uploads"),
		BlobSweepIntervalMinutes: getEnvInt("BLOB_SWEEP_INTERVAL_MINUTES", 60),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "maintenance"),

		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// IsProduction reports whether cookies must be issued for HTTPS.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
