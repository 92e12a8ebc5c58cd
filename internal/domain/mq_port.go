package domain

import "context"

type Message struct {
	Key   []byte
	Value []byte
	// Type is the event type, carried as a header by brokers that support it.
	Type string
}

// PublisherPort delivers state-change events to a broker.
type PublisherPort interface {
	Publish(ctx context.Context, msgs ...Message) error
	Close() error
}
