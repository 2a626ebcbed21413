package push_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaychat/internal/domain"
	"relaychat/internal/push"
)

type stubPusher struct {
	err   error
	calls int
}

func (s *stubPusher) TryDeliver(context.Context, domain.Client, domain.Message) error {
	s.calls++
	return s.err
}

func TestChain_SkipsNoRoute(t *testing.T) {
	first := &stubPusher{err: domain.ErrNoRoute}
	second := &stubPusher{}
	third := &stubPusher{}

	err := push.Chain{first, second, third}.TryDeliver(context.Background(), domain.Client{}, domain.Message{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Zero(t, third.calls)
}

func TestChain_StopsAtFirstRealAttempt(t *testing.T) {
	first := &stubPusher{err: domain.ErrUnreachable}
	second := &stubPusher{}

	err := push.Chain{first, second}.TryDeliver(context.Background(), domain.Client{}, domain.Message{})
	require.ErrorIs(t, err, domain.ErrUnreachable)
	assert.Zero(t, second.calls)
}

func TestChain_EmptyIsNoRoute(t *testing.T) {
	err := push.Chain{}.TryDeliver(context.Background(), domain.Client{}, domain.Message{})
	require.ErrorIs(t, err, domain.ErrNoRoute)
	require.ErrorIs(t, err, domain.ErrUnreachable)
}
