package httpapi

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SenderRateLimiter limits how often each sender may call send. Entries
// for senders idle longer than twice the cleanup interval are dropped.
type SenderRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*senderEntry
	rate     rate.Limit
	burst    int
	cleanup  time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

type senderEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewSenderRateLimiter creates a limiter allowing perSecond sends per
// sender with the given burst, and starts its cleanup loop.
func NewSenderRateLimiter(perSecond float64, burst int, cleanupInterval time.Duration) *SenderRateLimiter {
	l := &SenderRateLimiter{
		limiters: make(map[string]*senderEntry),
		rate:     rate.Limit(perSecond),
		burst:    burst,
		cleanup:  cleanupInterval,
		stopCh:   make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether sender may send now.
func (l *SenderRateLimiter) Allow(sender string) bool {
	now := time.Now()

	l.mu.Lock()
	entry, ok := l.limiters[sender]
	if !ok {
		entry = &senderEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.limiters[sender] = entry
	}
	entry.lastSeen = now
	limiter := entry.limiter
	l.mu.Unlock()

	return limiter.AllowN(now, 1)
}

// Len returns the number of tracked senders.
func (l *SenderRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

func (l *SenderRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.removeStale(time.Now())
		case <-l.stopCh:
			return
		}
	}
}

func (l *SenderRateLimiter) removeStale(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	threshold := now.Add(-l.cleanup * 2)
	for sender, entry := range l.limiters {
		if entry.lastSeen.Before(threshold) {
			delete(l.limiters, sender)
		}
	}
}

// Stop stops the cleanup loop.
func (l *SenderRateLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}
