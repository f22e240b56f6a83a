package notify

import (
	"context"
	"encoding/json"
	"fmt"
)

// Handler consumes an encoded event. notifier.Service implements it.
type Handler interface {
	Handle(ctx context.Context, key string, body []byte) error
}

// LocalSink delivers events in-process when no broker is configured. The
// payload goes through the same JSON encoding as the broker path.
type LocalSink struct {
	h Handler
}

func NewLocalSink(h Handler) *LocalSink {
	return &LocalSink{h: h}
}

func (s *LocalSink) Publish(ctx context.Context, key string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.h.Handle(ctx, key, b)
}
