package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWaitUsesBurstCapacity(t *testing.T) {
	l := New(10)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	// A fresh limiter starts with a full bucket.
	for i := 0; i < 10; i++ {
		if err := l.Wait(ctx); err != nil {
			t.Fatalf("Wait %d: %v", i, err)
		}
	}
}

func TestWaitHonorsCancellation(t *testing.T) {
	// One token every 10 seconds; the bucket starts well short of a full token.
	l := New(0.1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx); err != context.DeadlineExceeded {
		t.Errorf("Wait() = %v, want context.DeadlineExceeded", err)
	}
}

func TestTakeRefills(t *testing.T) {
	l := New(100)
	for l.take() {
	}

	time.Sleep(30 * time.Millisecond) // ~3 tokens at 100/s
	if !l.take() {
		t.Error("bucket did not refill over time")
	}
}

func TestNewRejectsNonPositiveRate(t *testing.T) {
	l := New(-5)
	if l.rate != 1.0 {
		t.Errorf("rate = %v, want fallback of 1.0", l.rate)
	}
}
