// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package in

import (
	"context"
	"time"

	"github.com/LerianStudio/pagehost/pkg/model"
	"github.com/LerianStudio/pagehost/pkg/net/http"

	"github.com/LerianStudio/lib-commons/v3/commons/log"
	mongoDB "github.com/LerianStudio/lib-commons/v3/commons/mongo"
	commonsHTTP "github.com/LerianStudio/lib-commons/v3/commons/net/http"
	"github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	libRabbitmq "github.com/LerianStudio/lib-commons/v3/commons/rabbitmq"
	libRedis "github.com/LerianStudio/lib-commons/v3/commons/redis"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/minio/minio-go/v7"
)

const readinessCheckTimeout = 2 * time.Second

// ReadinessDeps holds the dependency connections needed for the /ready endpoint.
type ReadinessDeps struct {
	MongoConnection    *mongoDB.MongoConnection
	RabbitMQConnection *libRabbitmq.RabbitMQConnection
	RedisConnection    *libRedis.RedisConnection
	MinioClient        *minio.Client
	Bucket             string
}

// NewRoutes creates a new fiber router with the specified handlers and middleware.
func NewRoutes(lg log.Logger, tl *opentelemetry.Telemetry, artifactHandler *ArtifactHandler, referralHandler *ReferralHandler, throttle ThrottleConfig, deps *ReadinessDeps) *fiber.App {
	f := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			return commonsHTTP.HandleFiberError(ctx, err)
		},
	})
	tlMid := commonsHTTP.NewTelemetryMiddleware(tl)

	f.Use(tlMid.WithTelemetry(tl))
	f.Use(cors.New())
	f.Use(commonsHTTP.WithHTTPLogging(commonsHTTP.WithCustomLogger(lg)))
	f.Use(ThrottleMiddleware(throttle))

	// Artifact routes
	f.Post("/v1/users/:user_id/artifacts", artifactHandler.Upload)
	f.Post("/v1/users/:user_id/artifacts/pending/:ticket", http.WithBody(new(model.ResolveUploadInput), artifactHandler.Resolve))
	f.Get("/v1/users/:user_id/artifacts", artifactHandler.List)
	f.Delete("/v1/users/:user_id/artifacts/:index", artifactHandler.Delete)
	f.Get("/v1/users/:user_id/capacity", artifactHandler.Capacity)

	// Referral routes
	f.Post("/v1/users/:user_id/session", http.WithBody(new(model.StartSessionInput), referralHandler.StartSession))
	f.Post("/v1/users/:user_id/bonus", http.WithBody(new(model.GrantBonusInput), referralHandler.GrantBonus))
	f.Get("/v1/referrals/leaderboard", referralHandler.Leaderboard)

	// Health
	f.Get("/health", commonsHTTP.Ping)

	// Readiness - checks all dependency connections
	f.Get("/ready", readinessHandler(deps))

	// Version
	f.Get("/version", commonsHTTP.Version)

	f.Use(tlMid.EndTracingSpans)

	return f
}

// dependencyResult represents the health status of a single dependency in the readiness check.
type dependencyResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// readinessHandler returns a Fiber handler that checks all dependency connections.
// Each dependency is checked with a 2-second timeout. Returns 200 if all healthy, 503 otherwise.
func readinessHandler(deps *ReadinessDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		httpStatus := fiber.StatusOK
		results := make(map[string]*dependencyResult)

		results["mongodb"] = checkMongoDB(deps.MongoConnection)
		results["rabbitmq"] = checkRabbitMQ(deps.RabbitMQConnection)
		results["redis"] = checkRedis(deps.RedisConnection)
		results["storage"] = checkStorage(deps.MinioClient, deps.Bucket)

		for _, result := range results {
			if result.Status != "ready" {
				httpStatus = fiber.StatusServiceUnavailable

				break
			}
		}

		overallStatus := "ready"
		if httpStatus == fiber.StatusServiceUnavailable {
			overallStatus = "not_ready"
		}

		return commonsHTTP.JSONResponse(c, httpStatus, fiber.Map{
			"status":       overallStatus,
			"dependencies": results,
		})
	}
}

// checkMongoDB pings the MongoDB connection with a timeout.
func checkMongoDB(conn *mongoDB.MongoConnection) *dependencyResult {
	if conn == nil {
		return &dependencyResult{Status: "not_ready", Message: "connection not configured"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), readinessCheckTimeout)
	defer cancel()

	db, err := conn.GetDB(ctx)
	if err != nil {
		return &dependencyResult{Status: "not_ready", Message: "failed to get connection"}
	}

	if err = db.Ping(ctx, nil); err != nil {
		return &dependencyResult{Status: "not_ready", Message: "ping failed"}
	}

	return &dependencyResult{Status: "ready"}
}

// checkRabbitMQ verifies the RabbitMQ connection is alive.
func checkRabbitMQ(conn *libRabbitmq.RabbitMQConnection) *dependencyResult {
	if conn == nil {
		return &dependencyResult{Status: "not_ready", Message: "connection not configured"}
	}

	if !conn.Connected || conn.Connection == nil || conn.Connection.IsClosed() {
		return &dependencyResult{Status: "not_ready", Message: "connection is closed"}
	}

	if !conn.HealthCheck() {
		return &dependencyResult{Status: "not_ready", Message: "health check failed"}
	}

	return &dependencyResult{Status: "ready"}
}

// checkRedis pings the Redis/Valkey connection with a timeout.
func checkRedis(conn *libRedis.RedisConnection) *dependencyResult {
	if conn == nil {
		return &dependencyResult{Status: "not_ready", Message: "connection not configured"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), readinessCheckTimeout)
	defer cancel()

	client, err := conn.GetClient(ctx)
	if err != nil {
		return &dependencyResult{Status: "not_ready", Message: "failed to get client"}
	}

	if _, err = client.Ping(ctx).Result(); err != nil {
		return &dependencyResult{Status: "not_ready", Message: "ping failed"}
	}

	return &dependencyResult{Status: "ready"}
}

// checkStorage verifies the MinIO endpoint is reachable by probing the bucket.
func checkStorage(client *minio.Client, bucket string) *dependencyResult {
	if client == nil {
		return &dependencyResult{Status: "not_ready", Message: "storage client not configured"}
	}

	ctx, cancel := context.WithTimeout(context.Background(), readinessCheckTimeout)
	defer cancel()

	if _, err := client.BucketExists(ctx, bucket); err != nil {
		return &dependencyResult{Status: "not_ready", Message: "storage connectivity check failed"}
	}

	return &dependencyResult{Status: "ready"}
}
