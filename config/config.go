package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env        string `env:"ENV, default=prod"`
	ServerPort int    `env:"SERVER_PORT, default=8080"`
	Log        LogConfig
	Auth       AuthConfig
	Database   DatabaseConfig
	MQ         MQConfig
	Storage    StorageConfig
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL, default=info"`
	Pretty bool   `env:"LOG_PRETTY, default=false"`
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"JWT_TTL, default=24h"`
	// BcryptWorkFactor is the bcrypt cost used when hashing passwords.
	BcryptWorkFactor int `env:"BCRYPT_WORK_FACTOR, default=12"`
	// LoginRatePerMinute and LoginBurst bound /auth requests per client IP.
	LoginRatePerMinute int `env:"LOGIN_RATE_PER_MINUTE, default=10"`
	LoginBurst         int `env:"LOGIN_BURST, default=5"`
}

type DatabaseConfig struct {
	Host         string `env:"DB_HOST, default=localhost"`
	Port         int    `env:"DB_PORT, default=5432"`
	User         string `env:"DB_USER, default=messagely"`
	Password     string `env:"DB_PASSWORD, default=password"`
	DBName       string `env:"DB_NAME, default=messagely"`
	UseSSL       bool   `env:"DB_USE_SSL, default=false"`
	MaxOpenConns int    `env:"DB_MAX_OPEN_CONNS, default=25"`
	MaxIdleConns int    `env:"DB_MAX_IDLE_CONNS, default=5"`
}

// MQConfig selects the message bus backend. Backend is "rabbitmq", "pubsub"
// or empty to disable event publishing.
type MQConfig struct {
	Backend  string `env:"MQ_BACKEND"`
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL             string `env:"RABBITMQ_URL"`
	QueueDurable    bool   `env:"RABBITMQ_QUEUE_DURABLE, default=true"`
	QueueAutoDelete bool   `env:"RABBITMQ_QUEUE_AUTO_DELETE, default=false"`
	PrefetchCount   int    `env:"RABBITMQ_PREFETCH_COUNT, default=10"`
}

type PubSubConfig struct {
	ProjectID          string `env:"PUBSUB_PROJECT_ID"`
	CredentialsFile    string `env:"PUBSUB_CREDENTIALS_FILE"`
	SubscriptionSuffix string `env:"PUBSUB_SUBSCRIPTION_SUFFIX, default=-sub"`
}

// StorageConfig selects the object storage backend used for archives.
// Backend is "minio", "gcs", "s3" or empty to disable archiving.
type StorageConfig struct {
	Backend string `env:"STORAGE_BACKEND"`
	Minio   MinioConfig
	GCS     GCSConfig
	S3      S3Config
}

type MinioConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET, default=messagely-archives"`
	UseSSL    bool   `env:"MINIO_USE_SSL, default=false"`
}

type GCSConfig struct {
	Bucket          string `env:"GCS_BUCKET"`
	ProjectID       string `env:"GCS_PROJECT_ID"`
	CredentialsFile string `env:"GCS_CREDENTIALS_FILE"`
}

type S3Config struct {
	Region    string `env:"S3_REGION, default=us-east-1"`
	Endpoint  string `env:"S3_ENDPOINT"`
	AccessKey string `env:"S3_ACCESS_KEY"`
	SecretKey string `env:"S3_SECRET_KEY"`
	Bucket    string `env:"S3_BUCKET"`
}

// LoadConfig reads configuration from the process environment. In dev mode a
// local .env file is loaded first.
func LoadConfig() (Config, error) {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}
	return load(context.Background(), envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
