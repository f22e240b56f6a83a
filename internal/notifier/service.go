package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/jobboard/internal/events"
)

// ErrUnknownEvent is returned for routing keys this service does not mail.
var ErrUnknownEvent = errors.New("unknown event")

// Service decodes events and sends the matching emails.
type Service struct {
	mailer Mailer
}

func NewService(m Mailer) *Service {
	return &Service{mailer: m}
}

// Handle processes one encoded event. Decoding failures wrap
// events.ErrMalformed.
func (s *Service) Handle(ctx context.Context, key string, body []byte) error {
	var msgs []Message
	switch key {
	case events.RKApplicationSubmitted:
		ev, err := events.Decode[events.ApplicationSubmitted](body)
		if err != nil {
			return err
		}
		if msgs, err = ComposeApplication(ev); err != nil {
			return err
		}
	case events.RKJobCreated:
		ev, err := events.Decode[events.JobCreated](body)
		if err != nil {
			return err
		}
		m, err := ComposeJobCreated(ev)
		if err != nil {
			return err
		}
		msgs = []Message{m}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, key)
	}

	var errs []error
	for _, m := range msgs {
		if m.To == "" {
			continue
		}
		if err := s.mailer.Send(ctx, m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
