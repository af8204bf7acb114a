package queue

import (
	"sync"

	"github.com/KhazixW2/MaaMCP/internal/domain"
	"github.com/KhazixW2/MaaMCP/internal/ports"
)

// MemQueue is a bounded in-memory queue that preserves FIFO ordering.
// When full, Enqueue refuses the newest message; earlier messages are
// never evicted.
type MemQueue struct {
	mu   sync.Mutex
	data []domain.Message
	cap  int
}

func NewMemQueue(capacity int) *MemQueue {
	return &MemQueue{
		data: make([]domain.Message, 0, capacity),
		cap:  capacity,
	}
}

func (q *MemQueue) Enqueue(m domain.Message) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.data) >= q.cap {
		return false
	}
	q.data = append(q.data, m)
	return true
}

func (q *MemQueue) DequeueBatch(max int) []domain.Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.data) == 0 {
		return nil
	}
	if max <= 0 || max > len(q.data) {
		max = len(q.data)
	}
	out := make([]domain.Message, max)
	copy(out, q.data[:max])
	q.data = append(q.data[:0], q.data[max:]...)
	return out
}

func (q *MemQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.data)
}

func (q *MemQueue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.data = q.data[:0]
}

var _ ports.MessageQueue = (*MemQueue)(nil)
