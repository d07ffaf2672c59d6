package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Order feed configuration
	OrderFeedWSURL string

	// Database configuration
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string

	// Redis configuration
	RedisHost     string
	RedisPassword string
	RedisPort     string

	// HTTP API port
	APIPort int

	// Recommendation configuration
	Recommend RecommendConfig

	// Background job configuration
	Jobs JobsConfig
}

// RecommendConfig holds default per-tenant recommendation parameters.
// Tenants can override these through the config API; defaults apply
// until an override is stored.
type RecommendConfig struct {
	// Co-occurrence thresholds
	MinConfidence    float64
	MinLift          float64
	MinTimesTogether int

	// Category popularity weights
	Weight7Days   float64
	Weight30Days  float64
	WeightAllTime float64

	// Meal complement rules
	AppetizerPriceCap float64
	MaxCartForStarter int

	// Trending window
	TrendingWindowMinutes int
	TrendingMinOrders     int

	// Serving
	DefaultLimit            int
	CacheTTLSeconds         int
	DefaultAlgorithmVersion string
}

// JobsConfig holds scheduling parameters for background workers
type JobsConfig struct {
	// Statistics recalculation
	RecalcIntervalMinutes int
	RecalcOrderThreshold  int

	// Performance aggregation
	AggregateIntervalMinutes int

	// Event tracker queue
	EventQueueSize int
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		OrderFeedWSURL: getEnvOrDefault("ORDER_FEED_WS_URL", "ws://localhost:9000/feed/orders"),

		// Database configuration
		DatabaseHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DatabasePort:     getEnvOrDefault("DB_PORT", "5432"),
		DatabaseName:     getEnvOrDefault("DB_NAME", "qrmenu_reco"),
		DatabaseUser:     getEnvOrDefault("DB_USER", "qrmenu"),
		DatabasePassword: getEnvOrDefault("DB_PASSWORD", "qrmenu123"),

		// Redis configuration
		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		APIPort: getEnvInt("API_PORT", 8080),

		Recommend: RecommendConfig{
			// Defaults match the MVP engine: 15% confidence, 2 co-occurrences
			MinConfidence:    getEnvFloat("RECO_MIN_CONFIDENCE", 0.15),
			MinLift:          getEnvFloat("RECO_MIN_LIFT", 1.0),
			MinTimesTogether: getEnvInt("RECO_MIN_TIMES_TOGETHER", 2),

			Weight7Days:   getEnvFloat("RECO_WEIGHT_7D", 3.0),
			Weight30Days:  getEnvFloat("RECO_WEIGHT_30D", 1.0),
			WeightAllTime: getEnvFloat("RECO_WEIGHT_ALLTIME", 0.5),

			AppetizerPriceCap: getEnvFloat("RECO_APPETIZER_PRICE_CAP", 8.0),
			MaxCartForStarter: getEnvInt("RECO_MAX_CART_FOR_STARTER", 2),

			TrendingWindowMinutes: getEnvInt("RECO_TRENDING_WINDOW_MIN", 60),
			TrendingMinOrders:     getEnvInt("RECO_TRENDING_MIN_ORDERS", 3),

			DefaultLimit:            getEnvInt("RECO_DEFAULT_LIMIT", 3),
			CacheTTLSeconds:         getEnvInt("RECO_CACHE_TTL_SEC", 60),
			DefaultAlgorithmVersion: getEnvOrDefault("RECO_DEFAULT_ALGO_VERSION", "v1"),
		},

		Jobs: JobsConfig{
			RecalcIntervalMinutes: getEnvInt("JOBS_RECALC_INTERVAL_MIN", 15),
			RecalcOrderThreshold:  getEnvInt("JOBS_RECALC_ORDER_THRESHOLD", 25),

			AggregateIntervalMinutes: getEnvInt("JOBS_AGGREGATE_INTERVAL_MIN", 60),

			EventQueueSize: getEnvInt("JOBS_EVENT_QUEUE_SIZE", 1024),
		},
	}
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvFloat gets environment variable as float64 or returns default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var floatValue float64
	if _, err := fmt.Sscanf(value, "%f", &floatValue); err != nil {
		return defaultValue
	}
	return floatValue
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
