package alerts

import (
	"context"
	"errors"
	"testing"
)

type recordingSender struct {
	calls int
	err   error
}

func (r *recordingSender) Send(ctx context.Context, payload *AlertPayload) error {
	r.calls++
	return r.err
}

func TestMultiSenderDeliversToAllDespiteFailure(t *testing.T) {
	failing := &recordingSender{err: errors.New("webhook down")}
	working := &recordingSender{}

	m := NewMultiSender(failing, working)
	err := m.Send(context.Background(), &AlertPayload{Kind: "MEGA_SIGNAL"})

	if working.calls != 1 {
		t.Errorf("working sender called %d times, want 1", working.calls)
	}
	if err == nil {
		t.Fatal("Send() = nil, want the failing destination's error")
	}
	if !errors.Is(err, failing.err) {
		t.Errorf("Send() = %v, want it to wrap %v", err, failing.err)
	}
}

func TestMultiSenderAllHealthy(t *testing.T) {
	a, b := &recordingSender{}, &recordingSender{}
	if err := NewMultiSender(a, b).Send(context.Background(), &AlertPayload{}); err != nil {
		t.Fatalf("Send() = %v, want nil", err)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("calls = %d, %d; want 1, 1", a.calls, b.calls)
	}
}
