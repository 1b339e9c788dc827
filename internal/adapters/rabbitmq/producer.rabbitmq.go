// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package rabbitmq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/LerianStudio/pagehost/pkg"
	"github.com/LerianStudio/pagehost/pkg/constant"
	"github.com/LerianStudio/pagehost/pkg/model"

	libCommons "github.com/LerianStudio/lib-commons/v3/commons"
	libConstants "github.com/LerianStudio/lib-commons/v3/commons/constants"
	libOpentelemetry "github.com/LerianStudio/lib-commons/v3/commons/opentelemetry"
	libRabbitmq "github.com/LerianStudio/lib-commons/v3/commons/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel/attribute"
)

// sleepFunc is the function used for sleeping between retries.
// Overridable in tests for deterministic behavior.
var sleepFunc = time.Sleep

// EventPublisher publishes registry events to the broker. Publishing is
// best-effort from the caller's point of view: a failed publish never fails
// the operation that produced the event.
//
//go:generate mockgen --destination=producer.rabbitmq.mock.go --package=rabbitmq . EventPublisher
type EventPublisher interface {
	Publish(ctx context.Context, key string, message model.EventMessage) error
}

// ProducerRabbitMQRepository is a rabbitmq implementation of the event publisher.
type ProducerRabbitMQRepository struct {
	conn     *libRabbitmq.RabbitMQConnection
	exchange string
}

// Compile-time interface satisfaction check.
var _ EventPublisher = (*ProducerRabbitMQRepository)(nil)

// NewProducerRabbitMQ returns a new instance of ProducerRabbitMQRepository using the given rabbitmq connection.
// Connection is established lazily on first use to avoid panic during initialization.
func NewProducerRabbitMQ(c *libRabbitmq.RabbitMQConnection, exchange string) *ProducerRabbitMQRepository {
	prmq := &ProducerRabbitMQRepository{
		conn:     c,
		exchange: exchange,
	}

	// Try to connect but don't panic if it fails; EnsureChannel retries on
	// first publish.
	_, err := c.GetNewConnect()
	if err != nil {
		c.Logger.Errorf("Failed to connect to RabbitMQ during initialization: %v", err)
		c.Logger.Warn("RabbitMQ connection will be retried on first event publish")
	} else {
		c.Logger.Info("RabbitMQ producer connected successfully")
	}

	return prmq
}

// Publish sends an event to the exchange under the given routing key. On each
// attempt it calls EnsureChannel() to restore the channel if the connection
// dropped, then publishes. Retries up to ProducerMaxRetries with exponential
// backoff and full jitter to prevent thundering herd after a broker restart.
func (prmq *ProducerRabbitMQRepository) Publish(ctx context.Context, key string, message model.EventMessage) error {
	logger, tracer, reqID, _ := libCommons.NewTrackingFromContext(ctx)

	ctx, spanProducer := tracer.Start(ctx, "repository.rabbitmq.publish_event")
	defer spanProducer.End()

	spanProducer.SetAttributes(
		attribute.String("app.request.request_id", reqID),
		attribute.String("app.request.exchange", prmq.exchange),
		attribute.String("app.request.key", key),
	)

	err := libOpentelemetry.SetSpanAttributesFromStruct(&spanProducer, "app.request.rabbitmq.message", message)
	if err != nil {
		libOpentelemetry.HandleSpanError(&spanProducer, "Failed to convert event message to JSON string", err)
	}

	body, err := json.Marshal(message)
	if err != nil {
		libOpentelemetry.HandleSpanError(&spanProducer, "Failed to marshal event message struct", err)

		logger.Errorf("Failed to marshal event message struct")

		return err
	}

	headers := amqp.Table{
		libConstants.HeaderID: reqID,
		"x-retry-count":       0,
	}

	libOpentelemetry.InjectTraceHeadersIntoQueue(ctx, (*map[string]any)(&headers))

	backoff := constant.ProducerInitialBackoff

	var publishErr error

	for attempt := 0; attempt <= constant.ProducerMaxRetries; attempt++ {
		if chanErr := prmq.conn.EnsureChannel(); chanErr != nil {
			logger.Errorf("EnsureChannel failed (attempt %d/%d): %v", attempt+1, constant.ProducerMaxRetries+1, chanErr)

			spanProducer.SetAttributes(
				attribute.Int("app.request.rabbitmq.retry_attempt", attempt),
			)

			if attempt == constant.ProducerMaxRetries {
				libOpentelemetry.HandleSpanError(&spanProducer, "Failed to ensure RabbitMQ channel after all retries", chanErr)

				return chanErr
			}

			sleepDuration := pkg.FullJitter(backoff)

			logger.Infof("Retrying EnsureChannel in %v (attempt %d/%d)", sleepDuration, attempt+1, constant.ProducerMaxRetries+1)

			sleepFunc(sleepDuration)

			backoff = pkg.NextBackoff(backoff)

			continue
		}

		publishErr = prmq.conn.Channel.Publish(
			prmq.exchange,
			key,
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				Headers:      headers,
				Body:         body,
			})

		if publishErr == nil {
			logger.Infof("Event %s published successfully", key)

			return nil
		}

		logger.Errorf("Publish failed (attempt %d/%d): %v", attempt+1, constant.ProducerMaxRetries+1, publishErr)

		spanProducer.SetAttributes(
			attribute.Int("app.request.rabbitmq.retry_attempt", attempt),
		)

		if attempt == constant.ProducerMaxRetries {
			libOpentelemetry.HandleSpanError(&spanProducer, "Failed to publish event after all retries", publishErr)

			return publishErr
		}

		sleepDuration := pkg.FullJitter(backoff)

		logger.Infof("Retrying publish in %v (attempt %d/%d)", sleepDuration, attempt+1, constant.ProducerMaxRetries+1)

		sleepFunc(sleepDuration)

		backoff = pkg.NextBackoff(backoff)
	}

	return publishErr
}
