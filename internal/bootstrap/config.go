// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package bootstrap

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/LerianStudio/pagehost/internal/adapters/http/in"
	"github.com/LerianStudio/pagehost/internal/adapters/minio/blob"
	"github.com/LerianStudio/pagehost/internal/adapters/mongodb/artifact"
	"github.com/LerianStudio/pagehost/internal/adapters/mongodb/referral"
	"github.com/LerianStudio/pagehost/internal/adapters/rabbitmq"
	"github.com/LerianStudio/pagehost/internal/adapters/shortener"
	"github.com/LerianStudio/pagehost/internal/services"
	"github.com/LerianStudio/pagehost/pkg/constant"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	mongoDB "github.com/LerianStudio/lib-commons/v3/commons/mongo"
	libOtel "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	libRabbitMQ "github.com/LerianStudio/lib-commons/v3/commons/rabbitmq"
	libRedis "github.com/LerianStudio/lib-commons/v3/commons/redis"
	libZap "github.com/LerianStudio/lib-commons/v3/commons/zap"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds the application's configurable parameters read from environment variables.
type Config struct {
	EnvName                 string `env:"ENV_NAME"`
	ServerAddress           string `env:"SERVER_ADDRESS"`
	LogLevel                string `env:"LOG_LEVEL"`
	OtelServiceName         string `env:"OTEL_RESOURCE_SERVICE_NAME"`
	OtelLibraryName         string `env:"OTEL_LIBRARY_NAME"`
	OtelServiceVersion      string `env:"OTEL_RESOURCE_SERVICE_VERSION"`
	OtelDeploymentEnv       string `env:"OTEL_RESOURCE_DEPLOYMENT_ENVIRONMENT"`
	OtelColExporterEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	EnableTelemetry         bool   `env:"ENABLE_TELEMETRY"`
	// MongoDB
	MongoURI        string `env:"MONGO_URI"`
	MongoDBHost     string `env:"MONGO_HOST"`
	MongoDBName     string `env:"MONGO_NAME"`
	MongoDBUser     string `env:"MONGO_USER"`
	MongoDBPassword string `env:"MONGO_PASSWORD"`
	MongoDBPort     string `env:"MONGO_PORT"`
	MaxPoolSize     int    `env:"MONGO_MAX_POOL_SIZE"`
	// Redis
	RedisHost     string `env:"REDIS_HOST"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`
	RedisProtocol int    `env:"REDIS_PROTOCOL" default:"3"`
	// RabbitMQ
	RabbitURI              string `env:"RABBITMQ_URI"`
	RabbitMQHost           string `env:"RABBITMQ_HOST"`
	RabbitMQPortHost       string `env:"RABBITMQ_PORT_HOST"`
	RabbitMQPortAMQP       string `env:"RABBITMQ_PORT_AMQP"`
	RabbitMQUser           string `env:"RABBITMQ_DEFAULT_USER"`
	RabbitMQPass           string `env:"RABBITMQ_DEFAULT_PASS"`
	RabbitMQExchange       string `env:"RABBITMQ_EXCHANGE" default:"pagehost.events"`
	RabbitMQEventsQueue    string `env:"RABBITMQ_EVENTS_QUEUE" default:"pagehost.events.queue"`
	RabbitMQHealthCheckURL string `env:"RABBITMQ_HEALTH_CHECK_URL"`
	// MinIO
	MinioEndpoint  string `env:"MINIO_ENDPOINT"`
	MinioAccessKey string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey string `env:"MINIO_SECRET_KEY"`
	MinioUseSSL    bool   `env:"MINIO_USE_SSL"`
	MinioBucket    string `env:"MINIO_BUCKET" default:"pagehost"`
	PublicBaseURL  string `env:"PUBLIC_BASE_URL"`
	// Shortener
	TinyURLEndpoint string `env:"TINYURL_ENDPOINT" default:"https://api.tinyurl.com/create"`
	TinyURLToken    string `env:"TINYURL_API_TOKEN"`
	// Admission limits
	MaxFileSizeBytes    int64 `env:"MAX_FILE_SIZE_BYTES"`
	MaxArchiveSizeBytes int64 `env:"MAX_ARCHIVE_SIZE_BYTES"`
	MaxArchiveEntries   int   `env:"MAX_ARCHIVE_ENTRIES"`
	BaseSlots           int   `env:"BASE_SLOTS"`
	BonusPerReferral    int   `env:"BONUS_PER_REFERRAL"`
	RetentionDays       int   `env:"RETENTION_DAYS"`
	PendingUploadTTLMin int   `env:"PENDING_UPLOAD_TTL_MINUTES"`
	// Sweeper
	SweepInitialDelayMin int `env:"SWEEP_INITIAL_DELAY_MINUTES"`
	SweepIntervalHours   int `env:"SWEEP_INTERVAL_HOURS"`
	// Throttle
	RateLimitEnabled    bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RateLimitGlobalMax  int  `env:"RATE_LIMIT_GLOBAL_MAX" default:"120"`
	RateLimitUploadMax  int  `env:"RATE_LIMIT_UPLOAD_MAX" default:"10"`
	RateLimitWindowSecs int  `env:"RATE_LIMIT_WINDOW_SECONDS" default:"60"`
	// Admin
	AdminID string `env:"ADMIN_ID"`
}

func (cfg *Config) limits() services.Limits {
	limits := services.Limits{
		MaxFileSize:       cfg.MaxFileSizeBytes,
		MaxArchiveSize:    cfg.MaxArchiveSizeBytes,
		MaxArchiveEntries: cfg.MaxArchiveEntries,
		BaseSlots:         cfg.BaseSlots,
		BonusPerReferral:  cfg.BonusPerReferral,
		RetentionDays:     cfg.RetentionDays,
		PendingUploadTTL:  time.Duration(cfg.PendingUploadTTLMin) * time.Minute,
	}

	if limits.MaxFileSize <= 0 {
		limits.MaxFileSize = constant.DefaultMaxFileSize
	}

	if limits.MaxArchiveSize <= 0 {
		limits.MaxArchiveSize = constant.DefaultMaxArchiveSize
	}

	if limits.MaxArchiveEntries <= 0 {
		limits.MaxArchiveEntries = constant.DefaultMaxArchiveEntries
	}

	if limits.BaseSlots <= 0 {
		limits.BaseSlots = constant.DefaultBaseSlots
	}

	if limits.BonusPerReferral <= 0 {
		limits.BonusPerReferral = constant.DefaultBonusPerReferral
	}

	if limits.RetentionDays <= 0 {
		limits.RetentionDays = constant.DefaultRetentionDays
	}

	if limits.PendingUploadTTL <= 0 {
		limits.PendingUploadTTL = constant.DefaultPendingUploadTTL
	}

	return limits
}

// InitServers initializes and wires the application's dependencies and returns the Service instance.
func InitServers() *Service {
	cfg := &Config{}

	if err := libCommons.SetConfigFromEnvVars(cfg); err != nil {
		panic(err)
	}

	logger := libZap.InitializeLogger()

	telemetry := libOtel.InitializeTelemetry(&libOtel.TelemetryConfig{
		LibraryName:               cfg.OtelLibraryName,
		ServiceName:               cfg.OtelServiceName,
		ServiceVersion:            cfg.OtelServiceVersion,
		DeploymentEnv:             cfg.OtelDeploymentEnv,
		CollectorExporterEndpoint: cfg.OtelColExporterEndpoint,
		EnableTelemetry:           cfg.EnableTelemetry,
		Logger:                    logger,
	})

	// Init mongo DB connection
	escapedPass := url.QueryEscape(cfg.MongoDBPassword)
	mongoSource := fmt.Sprintf("%s://%s:%s@%s:%s",
		cfg.MongoURI, cfg.MongoDBUser, escapedPass, cfg.MongoDBHost, cfg.MongoDBPort)

	if cfg.MaxPoolSize <= 0 {
		cfg.MaxPoolSize = 100
	}

	mongoConnection := &mongoDB.MongoConnection{
		ConnectionStringSource: mongoSource,
		Database:               cfg.MongoDBName,
		Logger:                 logger,
		MaxPoolSize:            uint64(cfg.MaxPoolSize),
	}

	// Init redis connection for the upload throttle
	redisConnection := &libRedis.RedisConnection{
		Address:  strings.Split(cfg.RedisHost, ","),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Protocol: cfg.RedisProtocol,
		Logger:   logger,
	}

	// Init rabbitmq connection for outbound events
	rabbitSource := fmt.Sprintf("%s://%s:%s@%s:%s",
		cfg.RabbitURI, cfg.RabbitMQUser, cfg.RabbitMQPass, cfg.RabbitMQHost, cfg.RabbitMQPortAMQP)

	rabbitMQConnection := &libRabbitMQ.RabbitMQConnection{
		ConnectionStringSource: rabbitSource,
		HealthCheckURL:         cfg.RabbitMQHealthCheckURL,
		Host:                   cfg.RabbitMQHost,
		Port:                   cfg.RabbitMQPortHost,
		User:                   cfg.RabbitMQUser,
		Pass:                   cfg.RabbitMQPass,
		Queue:                  cfg.RabbitMQEventsQueue,
		Logger:                 logger,
	}

	// Init minio client for hosted document blobs
	minioClient, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		panic(err)
	}

	blobRepository := blob.NewMinioRepository(minioClient, cfg.MinioBucket, cfg.PublicBaseURL)

	ctx, cancel := context.WithTimeout(context.Background(), constant.ConnectionTimeout)
	defer cancel()

	if err := blobRepository.EnsureBucket(ctx); err != nil {
		logger.Warnf("Failed to ensure bucket %s (non-fatal): %v", cfg.MinioBucket, err)
	}

	artifactRepository := artifact.NewArtifactMongoDBRepository(mongoConnection)
	referralRepository := referral.NewReferralMongoDBRepository(mongoConnection)
	producer := rabbitmq.NewProducerRabbitMQ(rabbitMQConnection, cfg.RabbitMQExchange)

	limits := cfg.limits()

	var urlShortener shortener.Shortener
	if cfg.TinyURLToken != "" {
		urlShortener = shortener.NewTinyURLShortener(cfg.TinyURLEndpoint, cfg.TinyURLToken, logger)
	} else {
		logger.Info("No shortener token configured, publishing long URLs")
	}

	pending := services.NewPendingUploads(limits.PendingUploadTTL, logger)

	registryService := &services.UseCase{
		ArtifactRepo: artifactRepository,
		ReferralRepo: referralRepository,
		BlobRepo:     blobRepository,
		Shortener:    urlShortener,
		Events:       producer,
		Pending:      pending,
		Limits:       limits,
	}

	artifactHandler := &in.ArtifactHandler{Service: registryService}
	referralHandler := &in.ReferralHandler{Service: registryService, AdminID: cfg.AdminID}

	throttle := in.ThrottleConfig{
		Enabled:   cfg.RateLimitEnabled,
		GlobalMax: cfg.RateLimitGlobalMax,
		UploadMax: cfg.RateLimitUploadMax,
		Window:    time.Duration(cfg.RateLimitWindowSecs) * time.Second,
		Storage:   in.NewRedisStorage(redisConnection, logger),
	}

	readiness := &in.ReadinessDeps{
		MongoConnection:    mongoConnection,
		RabbitMQConnection: rabbitMQConnection,
		RedisConnection:    redisConnection,
		MinioClient:        minioClient,
		Bucket:             cfg.MinioBucket,
	}

	httpApp := in.NewRoutes(logger, telemetry, artifactHandler, referralHandler, throttle, readiness)
	serverAPI := NewServer(cfg, httpApp, logger, telemetry)

	sweeper := NewSweeper(cfg, registryService, logger)

	return &Service{
		Server:             serverAPI,
		Sweeper:            sweeper,
		Logger:             logger,
		pendingUploads:     pending,
		mongoConnection:    mongoConnection,
		rabbitMQConnection: rabbitMQConnection,
		redisConnection:    redisConnection,
	}
}
