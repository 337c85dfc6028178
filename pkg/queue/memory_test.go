package queue_test

import (
	"testing"

	"github.com/cardgrid/scramble/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryQueue(t *testing.T) {
	q := queue.NewInMemoryQueue(10)

	require.NoError(t, q.Enqueue("one"))
	require.NoError(t, q.Enqueue("two"))
	assert.Equal(t, 2, q.Size())

	messages, err := q.ReadAllMessages()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"one", "two"}, messages)
	assert.Equal(t, 0, q.Size())
}

func TestInMemoryQueueEmpty(t *testing.T) {
	q := queue.NewInMemoryQueue(10)

	messages, err := q.ReadAllMessages()
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestInMemoryQueueFull(t *testing.T) {
	q := queue.NewInMemoryQueue(2)

	require.NoError(t, q.Enqueue(1))
	require.NoError(t, q.Enqueue(2))
	assert.Error(t, q.Enqueue(3))

	// Draining frees capacity again.
	_, err := q.ReadAllMessages()
	require.NoError(t, err)
	assert.NoError(t, q.Enqueue(3))
}
