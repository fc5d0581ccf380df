package alerts

import (
	"context"
	"errors"
	"fmt"
)

// MultiSender fans a single alert out to every configured destination. One
// destination failing never blocks delivery to the rest; failures are
// collected and reported together after all sends have been attempted.
type MultiSender struct {
	senders []Sender
}

func NewMultiSender(senders ...Sender) *MultiSender {
	return &MultiSender{senders: senders}
}

func (m *MultiSender) Send(ctx context.Context, payload *AlertPayload) error {
	var errs []error
	for i, sender := range m.senders {
		if err := sender.Send(ctx, payload); err != nil {
			errs = append(errs, fmt.Errorf("destination %d of %d: %w", i+1, len(m.senders), err))
		}
	}
	return errors.Join(errs...)
}
