package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	ActionSendMessage = "send_message"
	ActionAIChat      = "ai_chat"
	ActionPositivity  = "positivity"
	ActionAuth        = "auth"
)

// Policy describes how many events an action allows per minute.
type Policy struct {
	PerMinute int
	Burst     int
}

func (p Policy) limiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(p.PerMinute)), p.Burst)
}

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter manages one limiter per key and action.
type RateLimiter struct {
	policies      map[string]Policy
	defaultPolicy Policy
	entries       map[string]*entry
	mutex         sync.Mutex
	now           func() time.Time
}

func NewRateLimiter(policies map[string]Policy) *RateLimiter {
	p := make(map[string]Policy, len(policies))
	for action, policy := range policies {
		if policy.PerMinute <= 0 {
			continue
		}
		if policy.Burst <= 0 {
			policy.Burst = policy.PerMinute
		}
		p[action] = policy
	}

	return &RateLimiter{
		policies:      p,
		defaultPolicy: Policy{PerMinute: 20, Burst: 20},
		entries:       make(map[string]*entry),
		now:           time.Now,
	}
}

// DefaultPolicies builds the per-action table from configured throughput.
func DefaultPolicies(messagesPerMinute, aiPerMinute int) map[string]Policy {
	return map[string]Policy{
		ActionSendMessage: {PerMinute: messagesPerMinute, Burst: messagesPerMinute},
		ActionAIChat:      {PerMinute: aiPerMinute, Burst: aiPerMinute},
		ActionPositivity:  {PerMinute: aiPerMinute, Burst: 2},
		ActionAuth:        {PerMinute: 10, Burst: 5},
	}
}

// Allow consumes one event for key/action. When refused it reports how long
// until the next event would be admitted.
func (rl *RateLimiter) Allow(key, action string) (bool, time.Duration) {
	e := rl.get(key, action)

	now := rl.now()
	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (rl *RateLimiter) get(key, action string) *entry {
	id := key + ":" + action

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	e, ok := rl.entries[id]
	if !ok {
		policy, known := rl.policies[action]
		if !known {
			policy = rl.defaultPolicy
		}
		e = &entry{limiter: policy.limiter()}
		rl.entries[id] = e
	}
	e.lastSeen = rl.now()
	return e
}

// Cleanup drops limiters idle for longer than maxIdle.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	removed := 0
	now := rl.now()
	for id, e := range rl.entries {
		if now.Sub(e.lastSeen) > maxIdle {
			delete(rl.entries, id)
			removed++
		}
	}
	return removed
}

// StartCleanupRoutine sweeps idle limiters until done is closed.
func (rl *RateLimiter) StartCleanupRoutine(done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			case <-done:
				return
			}
		}
	}()
}
