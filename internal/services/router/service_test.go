package router_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaychat/internal/domain"
	"relaychat/internal/services/router"
	"relaychat/internal/store/memory"
)

// fakePusher records push attempts and answers with a fixed result.
type fakePusher struct {
	mu       sync.Mutex
	attempts []domain.Message
	result   func(ctx context.Context) error
}

func (p *fakePusher) TryDeliver(ctx context.Context, _ domain.Client, msg domain.Message) error {
	p.mu.Lock()
	p.attempts = append(p.attempts, msg)
	p.mu.Unlock()
	if p.result == nil {
		return nil
	}
	return p.result(ctx)
}

func (p *fakePusher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.attempts)
}

func failWith(err error) func(context.Context) error {
	return func(context.Context) error { return err }
}

// recorder captures outcomes passed to the router's Recorder.
type recorder struct {
	mu       sync.Mutex
	outcomes []domain.Outcome
	pushes   int
}

func (r *recorder) RecordSend(_ context.Context, o domain.Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func (r *recorder) RecordPush(context.Context, time.Duration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushes++
}

type fixture struct {
	dir    *memory.Directory
	queues *memory.Queues
	pusher *fakePusher
	rec    *recorder
	svc    *router.Service
}

func newFixture(t *testing.T, cfg router.Config, names ...domain.Username) *fixture {
	t.Helper()
	queues := memory.NewQueues()
	dir := memory.NewDirectory(queues)
	for _, n := range names {
		_, err := dir.Register(n, "")
		require.NoError(t, err)
	}
	p := &fakePusher{}
	rec := &recorder{}
	return &fixture{
		dir:    dir,
		queues: queues,
		pusher: p,
		rec:    rec,
		svc:    router.New(dir, queues, p, cfg, rec, nil),
	}
}

func TestSend_Delivered(t *testing.T) {
	f := newFixture(t, router.Config{}, "alice", "bob")

	r, err := f.svc.Send(context.Background(), "alice", "bob", "hi")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDelivered, r.Outcome)
	assert.NotEmpty(t, r.ID)
	assert.Equal(t, 1, f.pusher.count())

	n, err := f.queues.Len("bob")
	require.NoError(t, err)
	assert.Zero(t, n, "delivered messages never touch the queue")
	assert.Equal(t, []domain.Outcome{domain.OutcomeDelivered}, f.rec.outcomes)
}

func TestSend_UnreachableFallsBackToQueue(t *testing.T) {
	f := newFixture(t, router.Config{}, "alice", "bob")
	f.pusher.result = failWith(domain.ErrUnreachable)

	r, err := f.svc.Send(context.Background(), "alice", "bob", "hi")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeQueuedFallback, r.Outcome)
	assert.Equal(t, 1, f.pusher.count(), "exactly one push attempt")

	msg, ok, err := f.queues.DrainOne("bob")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, r.ID, msg.ID)
	assert.Equal(t, domain.Event{From: "alice", Message: "hi"}, msg.Event())

	_, ok, err = f.queues.DrainOne("bob")
	require.NoError(t, err)
	assert.False(t, ok, "message queued exactly once")
}

func TestSend_NoRouteFallsBackToQueue(t *testing.T) {
	f := newFixture(t, router.Config{}, "alice", "bob")
	f.pusher.result = failWith(domain.ErrNoRoute)

	r, err := f.svc.Send(context.Background(), "alice", "bob", "hi")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeQueuedFallback, r.Outcome)
}

func TestSend_PushTimeoutFallsBackToQueue(t *testing.T) {
	f := newFixture(t, router.Config{PushTimeout: 20 * time.Millisecond}, "alice", "bob")
	f.pusher.result = func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}

	start := time.Now()
	r, err := f.svc.Send(context.Background(), "alice", "bob", "slow")
	require.NoError(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, domain.OutcomeQueuedFallback, r.Outcome)

	n, err := f.queues.Len("bob")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSend_RejectedIsDropped(t *testing.T) {
	f := newFixture(t, router.Config{}, "alice", "bob")
	f.pusher.result = failWith(domain.ErrRejected)

	r, err := f.svc.Send(context.Background(), "alice", "bob", "hi")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDropped, r.Outcome)

	n, err := f.queues.Len("bob")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSend_InactiveIsDroppedWithoutPush(t *testing.T) {
	f := newFixture(t, router.Config{}, "alice", "bob")
	require.NoError(t, f.dir.SetActive("bob", false))

	r, err := f.svc.Send(context.Background(), "alice", "bob", "hi")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDroppedInactive, r.Outcome)
	assert.Zero(t, f.pusher.count())

	n, err := f.queues.Len("bob")
	require.NoError(t, err)
	assert.Zero(t, n, "inactive recipients never get queued messages")
}

func TestSend_InactiveNotFoundPolicy(t *testing.T) {
	f := newFixture(t, router.Config{InactivePolicy: router.InactiveNotFound}, "alice", "bob")
	require.NoError(t, f.dir.SetActive("bob", false))

	_, err := f.svc.Send(context.Background(), "alice", "bob", "hi")
	require.ErrorIs(t, err, domain.ErrRecipientNotFound)
	assert.Zero(t, f.pusher.count())
}

func TestSend_RecipientNotFound(t *testing.T) {
	f := newFixture(t, router.Config{}, "alice")

	for _, from := range []domain.Username{"alice", "nobody"} {
		_, err := f.svc.Send(context.Background(), from, "carol", "hi")
		require.ErrorIs(t, err, domain.ErrRecipientNotFound)
	}
	assert.False(t, f.queues.Exists("carol"), "no queue is created for unknown recipients")
	assert.Zero(t, f.pusher.count())
}

func TestSend_InvalidRequest(t *testing.T) {
	f := newFixture(t, router.Config{}, "alice", "bob")

	cases := []struct{ from, to, body string }{
		{"", "bob", "hi"},
		{"alice", "", "hi"},
		{"alice", "bob", ""},
		{"", "carol", "hi"},
	}
	for _, c := range cases {
		_, err := f.svc.Send(context.Background(), domain.Username(c.from), domain.Username(c.to), c.body)
		require.ErrorIs(t, err, domain.ErrInvalidRequest, "%+v", c)
	}
	assert.Zero(t, f.pusher.count())
}

func TestSend_ToSelf(t *testing.T) {
	f := newFixture(t, router.Config{}, "alice")

	r, err := f.svc.Send(context.Background(), "alice", "alice", "note to self")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDelivered, r.Outcome)
}

func TestSend_QueueOrderMatchesSendOrder(t *testing.T) {
	f := newFixture(t, router.Config{}, "alice", "bob")
	f.pusher.result = failWith(errors.Join(domain.ErrUnreachable, errors.New("dial tcp: refused")))

	bodies := []string{"one", "two", "three", "four"}
	for _, b := range bodies {
		_, err := f.svc.Send(context.Background(), "alice", "bob", b)
		require.NoError(t, err)
	}
	for _, want := range bodies {
		msg, ok, err := f.queues.DrainOne("bob")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want, msg.Body)
	}
}

func TestSend_NilPusherQueuesEverything(t *testing.T) {
	queues := memory.NewQueues()
	dir := memory.NewDirectory(queues)
	_, err := dir.Register("bob", "")
	require.NoError(t, err)
	svc := router.New(dir, queues, nil, router.Config{}, nil, nil)

	r, err := svc.Send(context.Background(), "alice", "bob", "hi")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeQueuedFallback, r.Outcome)
}
