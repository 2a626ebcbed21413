package memory_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaychat/internal/domain"
	"relaychat/internal/store/memory"
)

func msg(i int) domain.Message {
	return domain.Message{
		ID:   domain.MessageID(fmt.Sprintf("m%d", i)),
		From: "alice",
		To:   "bob",
		Body: fmt.Sprintf("hello %d", i),
	}
}

func TestQueue_FIFO(t *testing.T) {
	q := memory.NewQueues()
	q.Create("bob")

	for i := range 20 {
		require.NoError(t, q.Enqueue("bob", msg(i)))
	}
	n, err := q.Len("bob")
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	for i := range 20 {
		got, ok, err := q.DrainOne("bob")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, msg(i), got)
	}

	_, ok, err := q.DrainOne("bob")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQueue_MissingMailbox(t *testing.T) {
	q := memory.NewQueues()

	require.ErrorIs(t, q.Enqueue("carol", msg(1)), domain.ErrQueueNotFound)
	_, _, err := q.DrainOne("carol")
	require.ErrorIs(t, err, domain.ErrQueueNotFound)
	_, err = q.Changed("carol")
	require.ErrorIs(t, err, domain.ErrQueueNotFound)
	assert.False(t, q.Exists("carol"))
}

func TestQueue_CreateKeepsContents(t *testing.T) {
	q := memory.NewQueues()
	q.Create("bob")
	require.NoError(t, q.Enqueue("bob", msg(1)))

	q.Create("bob")
	n, err := q.Len("bob")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestQueue_RestorePutsMessageAtHead(t *testing.T) {
	q := memory.NewQueues()
	q.Create("bob")
	require.NoError(t, q.Enqueue("bob", msg(1)))
	require.NoError(t, q.Enqueue("bob", msg(2)))

	first, ok, err := q.DrainOne("bob")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, q.Restore("bob", first))

	again, ok, err := q.DrainOne("bob")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, msg(1), again)
}

func TestQueue_ChangedClosedOnEnqueue(t *testing.T) {
	q := memory.NewQueues()
	q.Create("bob")

	ch, err := q.Changed("bob")
	require.NoError(t, err)

	select {
	case <-ch:
		t.Fatal("changed channel closed before enqueue")
	default:
	}

	require.NoError(t, q.Enqueue("bob", msg(1)))

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("changed channel not closed after enqueue")
	}

	next, err := q.Changed("bob")
	require.NoError(t, err)
	assert.NotEqual(t, ch, next)
}

func TestQueue_ConcurrentDrainAtMostOnce(t *testing.T) {
	q := memory.NewQueues()
	q.Create("bob")
	const total = 500
	for i := range total {
		require.NoError(t, q.Enqueue("bob", msg(i)))
	}

	var (
		mu   sync.Mutex
		seen = make(map[domain.MessageID]int)
		wg   sync.WaitGroup
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				m, ok, err := q.DrainOne("bob")
				if err != nil || !ok {
					return
				}
				mu.Lock()
				seen[m.ID]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, total)
	for id, n := range seen {
		assert.Equal(t, 1, n, "message %s drained %d times", id, n)
	}
}
