// Package worker consumes notification events from RabbitMQ.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/diewo77/jobboard/internal/events"
	"github.com/diewo77/jobboard/internal/mq"
	"github.com/diewo77/jobboard/internal/notifier"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one delivery body. notifier.Service implements it.
type Handler interface {
	Handle(ctx context.Context, key string, body []byte) error
}

type Config struct {
	RabbitURL   string
	Topology    mq.Topology
	ServiceName string
	// HandleTimeout bounds one delivery, mail sending included.
	HandleTimeout time.Duration
}

type Consumer struct {
	cfg     Config
	handler Handler
	mq      *mq.Consumer
}

func NewConsumer(cfg Config, h Handler) *Consumer {
	if cfg.HandleTimeout <= 0 {
		cfg.HandleTimeout = 30 * time.Second
	}
	return &Consumer{cfg: cfg, handler: h}
}

// Connect dials the broker and declares queue, bindings and dead-lettering.
func (c *Consumer) Connect() error {
	cons, err := mq.NewConsumer(c.cfg.RabbitURL, c.cfg.Topology)
	if err != nil {
		return err
	}
	c.mq = cons
	return nil
}

func (c *Consumer) Close() {
	if c.mq != nil {
		_ = c.mq.Close()
	}
}

// Run consumes until ctx is cancelled or the channel closes.
func (c *Consumer) Run(ctx context.Context) error {
	msgs, err := c.mq.Deliveries(ctx, c.cfg.ServiceName)
	if err != nil {
		return fmt.Errorf("consume failed: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.Process(ctx, d)
		}
	}
}

// Process handles one delivery and settles it. Unknown keys are acked.
// Failures are nacked without requeue so that the queue's dead-letter
// exchange keeps them.
func (c *Consumer) Process(ctx context.Context, d amqp.Delivery) {
	hctx, cancel := context.WithTimeout(ctx, c.cfg.HandleTimeout)
	defer cancel()

	err := c.handler.Handle(hctx, d.RoutingKey, d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, notifier.ErrUnknownEvent):
		log.Printf("[worker] skip unknown key=%s", d.RoutingKey)
		_ = d.Ack(false)
	case errors.Is(err, events.ErrMalformed):
		log.Printf("[worker] malformed payload key=%s err=%v -> dead-letter", d.RoutingKey, err)
		_ = d.Nack(false, false)
	default:
		log.Printf("[worker] handle error key=%s err=%v -> dead-letter", d.RoutingKey, err)
		_ = d.Nack(false, false)
	}
}
