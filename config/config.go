package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type (
	Config struct {
		App             App
		HTTP            HTTP
		Log             Log
		PG              PG
		S3              S3
		OutboxRelay     OutboxRelay
		Kafka           Kafka
		KafkaController KafkaController
		IDCodec         IDCodec
		Image           Image
		Session         Session
		Swagger         Swagger
	}

	App struct {
		Name    string `env:"APP_NAME" envDefault:"pixelvault"`
		Version string `env:"APP_VERSION" envDefault:"0.1.0"`
	}

	HTTP struct {
		Port           string        `env:"HTTP_PORT,required"`
		UsePreforkMode bool          `env:"HTTP_USE_PREFORK_MODE" envDefault:"false"`
		ReadTimeout    time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout   time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL,required"`
	}

	PG struct {
		PoolMax     int    `env:"PG_POOL_MAX,required"`
		URL         string `env:"PG_URL,required"`
		AutoMigrate bool   `env:"PG_AUTO_MIGRATE" envDefault:"true"`
	}

	S3 struct {
		Endpoint       string        `env:"S3_ENDPOINT,required"`
		AccessKey      string        `env:"S3_ACCESS_KEY,required"`
		SecretKey      string        `env:"S3_SECRET_KEY,required"`
		Bucket         string        `env:"S3_BUCKET,required"`
		Region         string        `env:"S3_REGION" envDefault:"garage"`
		UsePathStyle   bool          `env:"S3_USE_PATH_STYLE" envDefault:"true"`
		ConnAttempts   int           `env:"S3_CONN_ATTEMPTS" envDefault:"10"`
		CfgLoadTimeout time.Duration `env:"S3_LOAD_CFG_TIMEOUT" envDefault:"10s"`
	}

	Kafka struct {
		Brokers []string `env:"KAFKA_BROKERS,required"`
		GroupID string   `env:"KAFKA_GROUP_ID,required"`
		Topic   string   `env:"KAFKA_TOPIC,required"`
	}

	OutboxRelay struct {
		PollInterval        time.Duration `env:"OUTBOX_RELAY_POLL_INTERVAL" envDefault:"2s"`
		MarkFailedInterval  time.Duration `env:"OUTBOX_RELAY_MARK_FAILED_INTERVAL" envDefault:"2m"`
		CleanupInterval     time.Duration `env:"OUTBOX_RELAY_CLEANUP_INTERVAL" envDefault:"24h"`
		ProcessBatchTimeout time.Duration `env:"OUTBOX_RELAY_PROCESS_BATCH_TIMEOUT" envDefault:"15s"`
		ShutdownTimeout     time.Duration `env:"OUTBOX_RELAY_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		BatchSize           int           `env:"OUTBOX_RELAY_BATCH_SIZE" envDefault:"100"`
		MaxRetries          int           `env:"OUTBOX_RELAY_MAX_RETRIES" envDefault:"3"`
	}

	KafkaController struct {
		CommitTimeout   time.Duration `env:"KAFKA_CONTROLLER_COMMIT_TIMEOUT" envDefault:"2s"`
		ProcessTimeout  time.Duration `env:"KAFKA_CONTROLLER_PROCESS_TIMEOUT" envDefault:"30s"` // download original, re-derive, upload, update row
		ShutdownTimeout time.Duration `env:"KAFKA_CONTROLLER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
		Workers         int           `env:"KAFKA_CONTROLLER_WORKERS" envDefault:"0"` // 0 = runtime.NumCPU()
		RetryAttempts   int           `env:"KAFKA_CONTROLLER_RETRY_ATTEMPTS" envDefault:"3"`
		RetryBackoff    time.Duration `env:"KAFKA_CONTROLLER_RETRY_BACKOFF" envDefault:"500ms"`
		MaxRequeues     int           `env:"KAFKA_CONTROLLER_MAX_REQUEUES" envDefault:"5"`
		ReadBackoff     time.Duration `env:"KAFKA_CONTROLLER_READ_BACKOFF" envDefault:"1s"`
	}

	IDCodec struct {
		Salt      string `env:"ID_CODEC_SALT,required,notEmpty"`
		MinLength int    `env:"ID_CODEC_MIN_LENGTH" envDefault:"6"`
		Alphabet  string `env:"ID_CODEC_ALPHABET"`
	}

	Image struct {
		ThumbnailSize         int   `env:"IMAGE_THUMBNAIL_SIZE" envDefault:"150"`
		ThumbnailQuality      int   `env:"IMAGE_THUMBNAIL_QUALITY" envDefault:"85"`
		FullQuality           int   `env:"IMAGE_FULL_QUALITY" envDefault:"92"`
		FullMaxDim            int   `env:"IMAGE_FULL_MAX_DIM" envDefault:"0"`
		PlaceholderGrid       int   `env:"IMAGE_PLACEHOLDER_GRID" envDefault:"32"`
		PlaceholderComponentX int   `env:"IMAGE_PLACEHOLDER_COMPONENTS_X" envDefault:"4"`
		PlaceholderComponentY int   `env:"IMAGE_PLACEHOLDER_COMPONENTS_Y" envDefault:"4"`
		MaxUploadSize         int64 `env:"IMAGE_MAX_UPLOAD_SIZE" envDefault:"20971520"`
	}

	Session struct {
		CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"pv_session"`
	}

	Swagger struct {
		Enabled bool `env:"SWAGGER_ENABLED" envDefault:"false"`
	}
)

func New() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.IDCodec.MinLength < 0 {
		return fmt.Errorf("ID_CODEC_MIN_LENGTH must not be negative, got %d", c.IDCodec.MinLength)
	}

	if c.Image.ThumbnailSize <= 0 {
		return fmt.Errorf("IMAGE_THUMBNAIL_SIZE must be positive, got %d", c.Image.ThumbnailSize)
	}

	for name, q := range map[string]int{
		"IMAGE_THUMBNAIL_QUALITY": c.Image.ThumbnailQuality,
		"IMAGE_FULL_QUALITY":      c.Image.FullQuality,
	} {
		if q < 1 || q > 100 {
			return fmt.Errorf("%s must be within 1..100, got %d", name, q)
		}
	}

	if c.Image.PlaceholderComponentX < 1 || c.Image.PlaceholderComponentX > 9 ||
		c.Image.PlaceholderComponentY < 1 || c.Image.PlaceholderComponentY > 9 {
		return fmt.Errorf("placeholder components must be within 1..9, got %dx%d",
			c.Image.PlaceholderComponentX, c.Image.PlaceholderComponentY)
	}

	if c.KafkaController.RetryAttempts < 1 {
		return fmt.Errorf("KAFKA_CONTROLLER_RETRY_ATTEMPTS must be at least 1, got %d", c.KafkaController.RetryAttempts)
	}

	if c.KafkaController.MaxRequeues < 0 {
		return fmt.Errorf("KAFKA_CONTROLLER_MAX_REQUEUES must not be negative, got %d", c.KafkaController.MaxRequeues)
	}

	return nil
}
