package clients_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaychat/internal/crypto"
	"relaychat/internal/domain"
	"relaychat/internal/services/clients"
	"relaychat/internal/store/memory"
)

type countingRecorder struct{ n int }

func (r *countingRecorder) RecordRegistration(context.Context) { r.n++ }

func newService(t *testing.T) (*clients.Service, *memory.Queues, *countingRecorder) {
	t.Helper()
	queues := memory.NewQueues()
	rec := &countingRecorder{}
	return clients.New(memory.NewDirectory(queues), rec, nil), queues, rec
}

func TestRegister_ReturnsURIAndFingerprint(t *testing.T) {
	svc, queues, rec := newService(t)

	reg, err := svc.Register(context.Background(), "alice", "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(reg.ClientURI, "relay:"+reg.Handle+"@"))
	assert.True(t, strings.HasSuffix(reg.ClientURI, "@alice"))
	assert.Equal(t, domain.Fingerprint(crypto.Fingerprint([]byte(reg.Handle))), reg.Fingerprint)
	assert.True(t, queues.Exists("alice"))
	assert.Equal(t, 1, rec.n)
}

func TestRegister_Callback(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "http://127.0.0.1:9000/inbox")
	require.NoError(t, err)
	c, err := svc.Lookup("alice")
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/inbox", c.Handle.Callback)

	for _, bad := range []string{"ftp://host/x", "not a url", "http://", "/relative"} {
		_, err := svc.Register(ctx, "bob", bad)
		require.ErrorIs(t, err, domain.ErrInvalidRequest, bad)
	}
	require.NoError(t, svc.Validate("alice"))
	require.ErrorIs(t, svc.Validate("bob"), domain.ErrClientNotFound)
}

func TestRegister_InvalidName(t *testing.T) {
	svc, _, rec := newService(t)

	_, err := svc.Register(context.Background(), "  ", "")
	require.ErrorIs(t, err, domain.ErrInvalidName)
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Zero(t, rec.n)
}

func TestRegister_TwiceIssuesNewHandle(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, "alice", "")
	require.NoError(t, err)
	second, err := svc.Register(ctx, "alice", "")
	require.NoError(t, err)

	assert.NotEqual(t, first.Handle, second.Handle)
	assert.NotEqual(t, first.Fingerprint, second.Fingerprint)
}

func TestValidate(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Register(context.Background(), "alice", "")
	require.NoError(t, err)

	require.NoError(t, svc.Validate("alice"))
	require.ErrorIs(t, svc.Validate("Alice"), domain.ErrClientNotFound)
	require.ErrorIs(t, svc.Validate(""), domain.ErrInvalidRequest)
}

func TestListSearchSetActive(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	for _, n := range []domain.Username{"bob", "alice", "Al"} {
		_, err := svc.Register(ctx, n, "")
		require.NoError(t, err)
	}

	assert.Equal(t, []domain.Username{"Al", "alice", "bob"}, svc.List())
	assert.Equal(t, []domain.Username{"Al", "alice"}, svc.Search("al"))

	require.NoError(t, svc.SetActive(ctx, "bob", false))
	c, err := svc.Lookup("bob")
	require.NoError(t, err)
	assert.False(t, c.Active)

	require.ErrorIs(t, svc.SetActive(ctx, "carol", true), domain.ErrClientNotFound)
}
