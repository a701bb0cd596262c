// Package stream hands finished classification records off to downstream
// consumers over Kafka. Consumers own persistence and any notification
// fan-out; this package only serializes and produces.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/procurisk/triage/internal/models"
)

// PublisherConfig contains configurable parameters for the Kafka publisher.
type PublisherConfig struct {
	// Brokers is the list of Kafka broker addresses (host:port).
	Brokers []string

	// Topic is the topic classification records are written to.
	Topic string

	// MaxAttempts is how many times a produce is retried on transient error.
	// Defaults to 3 if <= 0.
	MaxAttempts int

	// WriteTimeout is the per-attempt timeout for writes. Defaults to 10s.
	WriteTimeout time.Duration

	// Balancer decides partition selection. If nil, a Hash balancer is used
	// so records with the same key land on the same partition.
	Balancer kafka.Balancer
}

// Publisher wraps a kafka-go Writer with produce-with-retries behavior.
type Publisher struct {
	writer      *kafka.Writer
	maxAttempts int
	logger      *zap.Logger
}

func NewPublisher(cfg PublisherConfig, logger *zap.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic required")
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.Balancer == nil {
		cfg.Balancer = &kafka.Hash{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     cfg.Balancer,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequireAll,
	}
	return &Publisher{
		writer:      w,
		maxAttempts: cfg.MaxAttempts,
		logger:      logger,
	}, nil
}

// PublishResult produces one pipeline result as a JSON record keyed by result
// ID, retrying transient failures up to MaxAttempts.
func (p *Publisher) PublishResult(ctx context.Context, res *models.PipelineResult) error {
	if res == nil {
		return fmt.Errorf("nil result")
	}
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(res.ID.String()),
		Value: payload,
		Time:  res.Classification.DetectionTime,
	}

	var lastErr error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err := p.writer.WriteMessages(ctx, msg); err != nil {
			lastErr = err
			p.logger.Warn("kafka write failed",
				zap.Int("attempt", attempt),
				zap.String("resultId", res.ID.String()),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
			continue
		}
		return nil
	}
	return fmt.Errorf("publish result %s after %d attempts: %w", res.ID, p.maxAttempts, lastErr)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
