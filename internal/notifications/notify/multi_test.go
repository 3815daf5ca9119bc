package notify

import (
	"context"
	"errors"
	"testing"
)

type countingChannel struct {
	calls int
	err   error
}

func (c *countingChannel) Send(_ context.Context, _ string) error {
	c.calls++
	return c.err
}

func TestMultiChannelFansOut(t *testing.T) {
	first := &countingChannel{}
	second := &countingChannel{}
	multi := NewMultiChannel(first, nil, second)

	if err := multi.Send(context.Background(), "drill"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Fatalf("expected one delivery per channel, got %d and %d", first.calls, second.calls)
	}
}

func TestMultiChannelReturnsFirstErrorAfterAllAttempts(t *testing.T) {
	firstErr := errors.New("first down")
	first := &countingChannel{err: firstErr}
	second := &countingChannel{err: errors.New("second down")}
	third := &countingChannel{}
	multi := NewMultiChannel(first, second, third)

	err := multi.Send(context.Background(), "drill")
	if !errors.Is(err, firstErr) {
		t.Fatalf("expected first error to surface, got %v", err)
	}
	if third.calls != 1 {
		t.Fatalf("expected delivery attempt to continue past failures, got %d", third.calls)
	}
}
