package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	JWTSecret          string
	BaseURL            string
	DBHost             string
	DBPort             string
	DBUser             string
	DBPass             string
	DBName             string
	DBNameTest         string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	MinioHost          string
	MinioPort          string
	MinioUsername      string
	MinioPassword      string
	BucketName         string
	BucketNameTest     string
	RabbitMQURL        string
	RabbitMQPrefetch   int
	AccessLogWorkers   int
	ShareExpireDays    int
	ShareMaxExpireDays int
	SweepInterval      time.Duration
	SweepBatchSize     int
	SweepRetryMax      int
	SweepRetryDelay    time.Duration
	DownloadChunkSize  int
	DownloadRate       float64
	DownloadBurst      int
}

var AppConfig Config

// getEnv returns the environment value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return parsed
}

// InitConfig loads configuration from the environment.
func InitConfig() {
	rabbitHost := getEnv("RABBITMQ_HOST", "localhost")
	rabbitPort := getEnv("RABBITMQ_PORT", "5672")
	rabbitUser := getEnv("RABBITMQ_USER", "guest")
	rabbitPass := getEnv("RABBITMQ_PASSWORD", "guest")
	rabbitVhost := getEnv("RABBITMQ_VHOST", "/")
	rabbitURL := getEnv("RABBITMQ_URL", "")
	if rabbitURL == "" {
		rabbitURL = fmt.Sprintf(
			"amqp://%s:%s@%s:%s/%s",
			url.PathEscape(rabbitUser),
			url.PathEscape(rabbitPass),
			rabbitHost,
			rabbitPort,
			url.PathEscape(rabbitVhost),
		)
	}
	AppConfig = Config{
		JWTSecret:          getEnv("JWT_SECRET", "l=ax+b"),
		BaseURL:            getEnv("APP_BASE_URL", ""),
		DBHost:             getEnv("DB_HOST", "localhost"),
		DBPort:             getEnv("DB_PORT", "3306"),
		DBUser:             getEnv("DB_USER", "root"),
		DBPass:             getEnv("DB_PASS", "root"),
		DBName:             getEnv("DB_NAME", "ShareVault"),
		DBNameTest:         getEnv("DB_NAME_TEST", "ShareVault_Test"),
		RedisHost:          getEnv("REDIS_HOST", "localhost"),
		RedisPort:          getEnv("REDIS_PORT", "6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            0,
		MinioHost:          getEnv("MINIO_HOST", "localhost"),
		MinioPort:          getEnv("MINIO_PORT", "9000"),
		MinioUsername:      getEnv("MINIO_USERNAME", "minioadmin"),
		MinioPassword:      getEnv("MINIO_PASSWORD", "minioadmin"),
		BucketName:         getEnv("BUCKET_NAME", "sharevault"),
		BucketNameTest:     getEnv("BUCKET_NAME_TEST", "sharevault-test"),
		RabbitMQURL:        rabbitURL,
		RabbitMQPrefetch:   getEnvInt("RABBITMQ_PREFETCH", 8),
		AccessLogWorkers:   getEnvInt("ACCESS_LOG_WORKERS", 2),
		ShareExpireDays:    getEnvInt("SHARE_EXPIRE_DAYS", 7),
		ShareMaxExpireDays: getEnvInt("SHARE_MAX_EXPIRE_DAYS", 365),
		SweepInterval:      getEnvDuration("SWEEP_INTERVAL", 5*time.Minute),
		SweepBatchSize:     getEnvInt("SWEEP_BATCH_SIZE", 200),
		SweepRetryMax:      getEnvInt("SWEEP_RETRY_MAX", 3),
		SweepRetryDelay:    getEnvDuration("SWEEP_RETRY_DELAY", 500*time.Millisecond),
		DownloadChunkSize:  getEnvInt("DOWNLOAD_CHUNK_SIZE", 512*1024),
		DownloadRate:       getEnvFloat("DOWNLOAD_RATE", 5),
		DownloadBurst:      getEnvInt("DOWNLOAD_BURST", 10),
	}
}
