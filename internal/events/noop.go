package events

import "context"

// NoopProducer drops events. Used when kafka is disabled.
type NoopProducer struct{}

func NewNoopProducer() *NoopProducer { return &NoopProducer{} }

func (NoopProducer) Produce(ctx context.Context, event *ChatEvent) error { return nil }

func (NoopProducer) Close() error { return nil }
