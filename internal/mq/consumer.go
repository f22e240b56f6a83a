package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Topology describes the consumer side: a durable queue bound to the
// exchange, with an optional dead-letter exchange and queue.
type Topology struct {
	Exchange string
	Queue    string
	Bindings []string
	Prefetch int
	DLX      string
	DLQ      string
}

// QueueArgs returns the declaration arguments of the main queue.
func (t Topology) QueueArgs() amqp.Table {
	args := amqp.Table{}
	if t.DLX != "" {
		args["x-dead-letter-exchange"] = t.DLX
	}
	return args
}

// Consumer holds a channel with the topology declared.
type Consumer struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	topo Topology
}

// NewConsumer dials url and declares t.
func NewConsumer(url string, t Topology) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declare(ch, t); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Consumer{conn: conn, ch: ch, topo: t}, nil
}

func declare(ch *amqp.Channel, t Topology) error {
	if err := declareExchange(ch, t.Exchange); err != nil {
		return err
	}
	if t.DLX != "" {
		if err := declareExchange(ch, t.DLX); err != nil {
			return err
		}
		if _, err := ch.QueueDeclare(t.DLQ, true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare dlq: %w", err)
		}
		if err := ch.QueueBind(t.DLQ, "#", t.DLX, false, nil); err != nil {
			return fmt.Errorf("bind dlq: %w", err)
		}
	}
	q, err := ch.QueueDeclare(t.Queue, true, false, false, false, t.QueueArgs())
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	for _, key := range t.Bindings {
		if err := ch.QueueBind(q.Name, key, t.Exchange, false, nil); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	prefetch := t.Prefetch
	if prefetch <= 0 {
		prefetch = 8
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	return nil
}

// Deliveries starts consuming with manual acknowledgements.
func (c *Consumer) Deliveries(ctx context.Context, tag string) (<-chan amqp.Delivery, error) {
	return c.ch.ConsumeWithContext(ctx, c.topo.Queue, tag, false, false, false, false, nil)
}

func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
