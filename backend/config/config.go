package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	JWTSecret  string
	JWTTTL     time.Duration
	ServerPort string
	LogMode    string

	CORSOrigins    string
	RequestTimeout time.Duration

	// Object storage (Supabase-compatible REST API)
	StorageURL     string
	StorageKey     string
	StorageBucket  string
	ImageMaxWidth  int
	UploadMaxBytes int

	// Empty RedisAddr disables the progress cache.
	RedisAddr string
	CacheTTL  time.Duration
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "elc_portal"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		JWTSecret:      getEnv("JWT_SECRET", "secret"),
		JWTTTL:         getDuration("JWT_TTL", 72*time.Hour),
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		LogMode:        getEnv("LOG_MODE", "development"),
		CORSOrigins:    getEnv("CORS_ORIGINS", "*"),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 10*time.Second),
		StorageURL:     strings.TrimRight(getEnv("STORAGE_URL", ""), "/"),
		StorageKey:     getEnv("STORAGE_KEY", ""),
		StorageBucket:  getEnv("STORAGE_BUCKET", "course-images"),
		ImageMaxWidth:  getInt("IMAGE_MAX_WIDTH", 1600),
		UploadMaxBytes: getInt("UPLOAD_MAX_BYTES", 5*1024*1024),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		CacheTTL:       getDuration("CACHE_TTL", 5*time.Minute),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil && v >= 0 {
		return v
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
