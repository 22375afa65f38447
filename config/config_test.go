package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptWorkFactor)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Empty(t, cfg.MQ.Backend)
	assert.Empty(t, cfg.Storage.Backend)
	assert.Equal(t, "-sub", cfg.MQ.PubSub.SubscriptionSuffix)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"SERVER_PORT":        "9090",
		"JWT_SECRET":         "s3cret",
		"JWT_TTL":            "90m",
		"BCRYPT_WORK_FACTOR": "4",
		"DB_HOST":            "db",
		"DB_USE_SSL":         "true",
		"MQ_BACKEND":         "rabbitmq",
		"RABBITMQ_URL":       "amqp://guest:guest@mq:5672/",
		"STORAGE_BACKEND":    "minio",
		"MINIO_ENDPOINT":     "minio:9000",
	}))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 90*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 4, cfg.Auth.BcryptWorkFactor)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.True(t, cfg.Database.UseSSL)
	assert.Equal(t, "rabbitmq", cfg.MQ.Backend)
	assert.Equal(t, "amqp://guest:guest@mq:5672/", cfg.MQ.RabbitMQ.URL)
	assert.Equal(t, "minio", cfg.Storage.Backend)
	assert.Equal(t, "minio:9000", cfg.Storage.Minio.Endpoint)
}

func TestLoad_InvalidValue(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"SERVER_PORT": "not-a-number",
	}))
	require.Error(t, err)
}
