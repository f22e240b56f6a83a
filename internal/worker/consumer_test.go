package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/diewo77/jobboard/internal/events"
	"github.com/diewo77/jobboard/internal/notifier"
	amqp "github.com/rabbitmq/amqp091-go"
)

type ackRecorder struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *ackRecorder) Ack(uint64, bool) error { a.acked = true; return nil }
func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}
func (a *ackRecorder) Reject(_ uint64, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}

type handlerFunc func(ctx context.Context, key string, body []byte) error

func (f handlerFunc) Handle(ctx context.Context, key string, body []byte) error { return f(ctx, key, body) }

func TestProcess(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantAck  bool
		wantNack bool
	}{
		{"delivered", nil, true, false},
		{"unknown key", fmt.Errorf("%w: x.y", notifier.ErrUnknownEvent), true, false},
		{"malformed", fmt.Errorf("%w: eof", events.ErrMalformed), false, true},
		{"send failed", errors.New("gmail 500"), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &ackRecorder{}
			c := NewConsumer(Config{}, handlerFunc(func(context.Context, string, []byte) error { return tt.err }))
			c.Process(context.Background(), amqp.Delivery{Acknowledger: rec, RoutingKey: "job.created", Body: []byte(`{}`)})
			if rec.acked != tt.wantAck || rec.nacked != tt.wantNack {
				t.Errorf("acked=%v nacked=%v, want %v/%v", rec.acked, rec.nacked, tt.wantAck, tt.wantNack)
			}
			if rec.requeue {
				t.Error("failed deliveries must not be requeued")
			}
		})
	}
}

func TestProcess_WithNotifierService(t *testing.T) {
	rec := &ackRecorder{}
	c := NewConsumer(Config{}, notifier.NewService(notifier.NewConsole()))
	c.Process(context.Background(), amqp.Delivery{
		Acknowledger: rec,
		RoutingKey:   events.RKJobCreated,
		Body:         []byte(`{"jobId":"j1","title":"Go Dev","employerEmail":"eve@x.io"}`),
	})
	if !rec.acked {
		t.Fatal("expected ack")
	}
}
