package ports

import "github.com/KhazixW2/MaaMCP/internal/domain"

// MessageQueue is the bounded FIFO buffer between the worker and the consumer.
// Enqueue returns false when the queue is full; the producer sheds the newest
// message instead of blocking. Implementations carry their own lock so that
// Len stays linearizable with enqueue/dequeue.
type MessageQueue interface {
	Enqueue(m domain.Message) bool
	DequeueBatch(max int) []domain.Message
	Len() int
	Clear()
}
