package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sethvargo/go-retry"

	"github.com/arnesssr/nextpms-orders/internal/application"
	"github.com/arnesssr/nextpms-orders/internal/domain"
	"github.com/arnesssr/nextpms-orders/internal/logger"
)

type ConsumerConfig struct {
	Brokers string
	Topic   string
	GroupID string
}

type orderIngestor interface {
	CreateOrder(ctx context.Context, o *domain.Order) error
}

// StartConsumer reads order intake documents from the intake topic and feeds
// them to the orders service. Messages that cannot possibly succeed (bad
// JSON, failed validation, duplicates) are committed and skipped; transient
// failures hold the current message and retry it under backoff, so the
// offset never advances past an order that was not ingested.
func StartConsumer(ctx context.Context, svc *application.OrdersService, cfg ConsumerConfig) (*kafka.Reader, error) {
	brokers := strings.Split(cfg.Brokers, ",")

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:         brokers,
		GroupID:         cfg.GroupID,
		Topic:           cfg.Topic,
		MinBytes:        1,
		MaxBytes:        10e6,
		CommitInterval:  0,
		StartOffset:     kafka.FirstOffset,
		ReadLagInterval: -1,
	})

	logger.Info("kafka consumer starting", "brokers", cfg.Brokers, "topic", cfg.Topic, "group", cfg.GroupID)

	go func() {
		defer r.Close()

		for {
			m, err := r.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("kafka fetch error", "err", err)
				time.Sleep(300 * time.Millisecond)
				continue
			}

			if err := processIntake(ctx, svc, m.Value); err != nil {
				return
			}

			if err := r.CommitMessages(ctx, m); err != nil {
				logger.Warn("kafka commit failed", "err", err)
			}
		}
	}()
	return r, nil
}

// processIntake works a single intake payload to completion: ingested, or
// classified as poison. Poison payloads return nil so the caller commits
// past them; a transient failure retries the same payload under backoff.
// Only a cancelled context is returned as an error.
func processIntake(ctx context.Context, svc orderIngestor, value []byte) error {
	var o domain.Order
	if err := json.Unmarshal(value, &o); err != nil {
		logger.Warn("kafka invalid json, skip and commit", "err", err)
		return nil
	}

	backoff := retry.WithCappedDuration(10*time.Second, retry.NewFibonacci(300*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := svc.CreateOrder(ctx, &o); err != nil {
			var verr *application.ValidationError
			if errors.As(err, &verr) || errors.Is(err, application.ErrOrderAlreadyExists) {
				return err
			}
			logger.Warn("kafka add order failed, will retry", "err", err)
			return retry.RetryableError(err)
		}
		return nil
	})

	switch {
	case err == nil:
		logger.Info("order ingested", "order_id", o.ID)
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		var verr *application.ValidationError
		if errors.As(err, &verr) {
			logger.Warn("kafka order rejected, skip and commit", "errors", verr.Errors)
		} else {
			logger.Warn("kafka duplicate order, skip and commit", "order_id", o.ID)
		}
		return nil
	}
}
