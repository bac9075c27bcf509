package fetch

import (
	"math/rand/v2"
	"time"

	"github.com/lohithgpbasu/stockfeed/internal/model"
)

// DecisionKind names the follow-up action for a failed attempt.
type DecisionKind int

const (
	// DecisionRetryAfter waits Delay and tries again.
	DecisionRetryAfter DecisionKind = iota
	// DecisionRenewSession trades the session in and retries immediately.
	DecisionRenewSession
	// DecisionGiveUp stops retrying and records the failure.
	DecisionGiveUp
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionRetryAfter:
		return "retry_after"
	case DecisionRenewSession:
		return "renew_session"
	case DecisionGiveUp:
		return "give_up"
	default:
		return "unknown"
	}
}

// Decision is the policy's verdict for one failed attempt.
type Decision struct {
	Kind  DecisionKind
	Delay time.Duration
}

// Policy decides what happens after a failed fetch attempt. Auth failures
// take priority over the attempt budget: the first one renews the session
// regardless of attempt count, a second one after renewal gives up.
type Policy struct {
	MaxRetries int           // Attempt budget per symbol (default: 3)
	BaseDelay  time.Duration // Backoff unit, scaled by attempt (default: 1s)
	Jitter     bool          // Randomize backoff to 0.5x-1.5x
}

// DefaultPolicy returns the retry policy used in production.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		Jitter:     true,
	}
}

// Decide maps a failed attempt to its follow-up action. attempt is 1-based;
// renewed reports whether this fetch already renewed the session once.
func (p Policy) Decide(attempt int, kind model.ErrorKind, renewed bool) Decision {
	if kind.IsAuth() {
		if renewed {
			return Decision{Kind: DecisionGiveUp}
		}
		return Decision{Kind: DecisionRenewSession}
	}

	if attempt >= p.MaxRetries {
		return Decision{Kind: DecisionGiveUp}
	}

	delay := p.BaseDelay * time.Duration(attempt)
	if p.Jitter && delay > 0 {
		// Jitter: delay * (0.5 to 1.5)
		delay = delay/2 + time.Duration(rand.Int64N(int64(delay)))
	}

	return Decision{Kind: DecisionRetryAfter, Delay: delay}
}
