// Package events defines the publisher consumed by the transaction manager
// to announce ledger changes. Delivery is best-effort: a posting that has
// committed is never rolled back because a downstream consumer is down.
package events

import "context"

// Topics for ledger change events.
const (
	TopicTransactionPosted   = "ledger.transaction.posted"
	TopicTransactionReversed = "ledger.transaction.reversed"
)

// Publisher publishes ledger change events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
}

// Nop is a Publisher that discards every event. It is the default for
// callers embedding the ledger as a plain library.
type Nop struct{}

// Publish implements Publisher.
func (Nop) Publish(ctx context.Context, topic string, event any) error {
	return nil
}
