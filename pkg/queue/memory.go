package queue

import (
	"fmt"
	"sync"
)

// InMemoryQueue implements an in-memory queue over a buffered channel.
type InMemoryQueue struct {
	ch   chan interface{}
	lock sync.Mutex
}

// NewInMemoryQueue creates a new queue holding at most capacity items.
func NewInMemoryQueue(capacity int) *InMemoryQueue {
	return &InMemoryQueue{
		ch: make(chan interface{}, capacity),
	}
}

// Enqueue adds an item to the end of the queue. It never blocks: a
// full queue returns an error instead of stalling the producer.
func (q *InMemoryQueue) Enqueue(item interface{}) error {
	q.lock.Lock()
	defer q.lock.Unlock()
	select {
	case q.ch <- item:
		return nil
	default:
		return fmt.Errorf("queue is full (capacity %d)", cap(q.ch))
	}
}

// ReadAllMessages drains and returns all pending items in the queue.
func (q *InMemoryQueue) ReadAllMessages() ([]interface{}, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	var messages []interface{}
	for len(q.ch) > 0 {
		messages = append(messages, <-q.ch)
	}
	return messages, nil
}

// Size returns the current size of the queue.
func (q *InMemoryQueue) Size() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return len(q.ch)
}
