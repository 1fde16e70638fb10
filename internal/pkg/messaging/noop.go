package messaging

import (
	"context"
	"time"

	"go.uber.org/atomic"
)

// Noop accepts and discards messages.
type Noop struct {
	closed atomic.Bool
}

// NewNoop returns a discarding client.
func NewNoop() *Noop {
	return &Noop{}
}

// Publish validates the request and drops the message.
func (n *Noop) Publish(ctx context.Context, destination string, _ OutgoingMessage) (PublishResult, error) {
	if err := validatePublish(ctx, destination); err != nil {
		return PublishResult{}, err
	}
	if n.closed.Load() {
		return PublishResult{}, ErrClosed
	}
	return PublishResult{Destination: destination, Timestamp: time.Now()}, nil
}

// Close marks the client closed.
func (n *Noop) Close() error {
	n.closed.Store(true)
	return nil
}
