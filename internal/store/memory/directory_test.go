package memory_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaychat/internal/domain"
	"relaychat/internal/store/memory"
)

func newDirectory() (*memory.Directory, *memory.Queues) {
	queues := memory.NewQueues()
	return memory.NewDirectory(queues), queues
}

func TestRegister_CreatesEntryAndQueue(t *testing.T) {
	dir, queues := newDirectory()

	h, err := dir.Register("alice", "")
	require.NoError(t, err)
	assert.NotEmpty(t, h.ID)
	assert.Equal(t, domain.Username("alice"), h.Name)
	assert.Equal(t, "relay:"+h.ID+"@alice", h.URI())

	c, err := dir.Lookup("alice")
	require.NoError(t, err)
	assert.True(t, c.Active)
	assert.Equal(t, h, c.Handle)
	assert.True(t, queues.Exists("alice"))
}

func TestRegister_InvalidName(t *testing.T) {
	dir, queues := newDirectory()

	for _, name := range []domain.Username{"", "   ", "a\nb", domain.Username(strings.Repeat("x", memory.MaxNameLength+1))} {
		_, err := dir.Register(name, "")
		require.ErrorIs(t, err, domain.ErrInvalidName, "name %q", name)
		require.ErrorIs(t, err, domain.ErrInvalidRequest)
		assert.False(t, queues.Exists(name))
	}
	assert.Empty(t, dir.List())
}

func TestRegister_TwiceOverwritesHandleAndKeepsQueue(t *testing.T) {
	dir, queues := newDirectory()

	first, err := dir.Register("bob", "")
	require.NoError(t, err)
	require.NoError(t, queues.Enqueue("bob", domain.Message{ID: "m1", From: "alice", To: "bob", Body: "hi"}))
	require.NoError(t, dir.SetActive("bob", false))

	second, err := dir.Register("bob", "http://bob.example/cb")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	c, err := dir.Lookup("bob")
	require.NoError(t, err)
	assert.Equal(t, second, c.Handle)
	assert.True(t, c.Active, "re-registration reactivates the client")

	msg, ok, err := queues.DrainOne("bob")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hi", msg.Body)
}

func TestLookup_NotFound(t *testing.T) {
	dir, _ := newDirectory()
	_, err := dir.Lookup("ghost")
	require.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestLookup_CaseSensitive(t *testing.T) {
	dir, _ := newDirectory()
	_, err := dir.Register("Alice", "")
	require.NoError(t, err)

	_, err = dir.Lookup("alice")
	require.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestSetActive(t *testing.T) {
	dir, _ := newDirectory()
	_, err := dir.Register("alice", "")
	require.NoError(t, err)

	require.NoError(t, dir.SetActive("alice", false))
	c, err := dir.Lookup("alice")
	require.NoError(t, err)
	assert.False(t, c.Active)

	require.ErrorIs(t, dir.SetActive("ghost", true), domain.ErrClientNotFound)
}

func TestSearch(t *testing.T) {
	dir, _ := newDirectory()
	for _, n := range []domain.Username{"alice", "bob", "Albert"} {
		_, err := dir.Register(n, "")
		require.NoError(t, err)
	}

	assert.Equal(t, []domain.Username{"Albert", "alice", "bob"}, dir.Search(""))
	assert.Equal(t, []domain.Username{"Albert", "alice"}, dir.Search("al"))
	assert.Equal(t, []domain.Username{"Albert", "alice"}, dir.Search("AL"))
	assert.Empty(t, dir.Search("zed"))
}

func TestListAndSearch_Idempotent(t *testing.T) {
	dir, _ := newDirectory()
	for _, n := range []domain.Username{"carol", "alice", "bob"} {
		_, err := dir.Register(n, "")
		require.NoError(t, err)
	}

	assert.Equal(t, dir.List(), dir.List())
	assert.Equal(t, dir.Search("o"), dir.Search("o"))
	assert.Equal(t, []domain.Username{"alice", "bob", "carol"}, dir.List())
}

func TestRegister_ConcurrentLastWins(t *testing.T) {
	dir, _ := newDirectory()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := dir.Register("dup", "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, []domain.Username{"dup"}, dir.List())
	_, err := dir.Lookup("dup")
	require.NoError(t, err)
}
