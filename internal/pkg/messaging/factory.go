package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Driver names accepted by NewFromDriver.
const (
	DriverNone         = "none"
	DriverNSQ          = "nsq"
	DriverNATS         = "nats"
	DriverKafka        = "kafka"
	DriverGooglePubSub = "google-pubsub"
)

var ErrUnknownDriver = errors.New("messaging: unknown driver")

// FactoryOptions holds the settings of every backend; only the selected
// driver's block is read.
type FactoryOptions struct {
	NSQ    NSQConfig
	Kafka  KafkaConfig
	NATS   NATSConfig
	PubSub PubSubConfig
}

type constructor func(context.Context, FactoryOptions) (Client, error)

var constructors = map[string]constructor{
	DriverNone: func(context.Context, FactoryOptions) (Client, error) {
		return NewNoop(), nil
	},
	DriverNSQ: func(_ context.Context, o FactoryOptions) (Client, error) {
		return asClient(NewNSQ(o.NSQ))
	},
	DriverKafka: func(_ context.Context, o FactoryOptions) (Client, error) {
		return asClient(NewKafka(o.Kafka))
	},
	DriverNATS: func(_ context.Context, o FactoryOptions) (Client, error) {
		return asClient(NewNATS(o.NATS))
	},
	DriverGooglePubSub: func(ctx context.Context, o FactoryOptions) (Client, error) {
		return asClient(NewPubSub(ctx, o.PubSub))
	},
}

// asClient keeps a failed constructor from leaking a typed nil Client.
func asClient[T Client](c T, err error) (Client, error) {
	if err != nil {
		return nil, err
	}
	return c, nil
}

// NewFromDriver builds the client named by driver, case-insensitively.
// An empty name means DriverNone.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Client, error) {
	name := strings.ToLower(strings.TrimSpace(driver))
	if name == "" {
		name = DriverNone
	}

	build, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
	return build(ctx, opts)
}
