// Package safety consults a threat-intelligence oracle before a short link
// redirects to its destination.
package safety

import (
	"context"

	"go.uber.org/zap"
)

// Verdict is the outcome of a safety check.
type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictSafe
	VerdictUnsafe
)

func (v Verdict) String() string {
	switch v {
	case VerdictSafe:
		return "safe"
	case VerdictUnsafe:
		return "unsafe"
	default:
		return "unknown"
	}
}

// Oracle looks up threat matches for a URL.
type Oracle interface {
	// Lookup reports whether url has at least one threat match.
	Lookup(ctx context.Context, url string) (unsafe bool, err error)
}

// Policy decides how an Unknown verdict is treated.
type Policy int

const (
	// FailOpen lets the redirect proceed when the oracle cannot answer.
	FailOpen Policy = iota
	// FailClosed shows the warning page when the oracle cannot answer.
	FailClosed
)

// Gate wraps an Oracle with an explicit failure policy. A Gate without an
// oracle is disabled and lets everything through.
type Gate struct {
	oracle Oracle
	policy Policy
	logger *zap.Logger
}

// NewGate creates a gate. oracle may be nil to disable checking.
func NewGate(oracle Oracle, policy Policy, logger *zap.Logger) *Gate {
	return &Gate{oracle: oracle, policy: policy, logger: logger}
}

// Enabled reports whether an oracle is configured.
func (g *Gate) Enabled() bool {
	return g.oracle != nil
}

// Check classifies url. Oracle failures yield VerdictUnknown.
func (g *Gate) Check(ctx context.Context, url string) Verdict {
	if g.oracle == nil {
		return VerdictSafe
	}

	unsafe, err := g.oracle.Lookup(ctx, url)
	if err != nil {
		g.logger.Warn("safety oracle failed",
			zap.Bool("fail_closed", g.policy == FailClosed),
			zap.Error(err),
		)

		return VerdictUnknown
	}

	if unsafe {
		return VerdictUnsafe
	}

	return VerdictSafe
}

// Allow reports whether a redirect to url may proceed under the gate's
// policy, along with the verdict it was based on.
func (g *Gate) Allow(ctx context.Context, url string) (bool, Verdict) {
	verdict := g.Check(ctx, url)

	switch verdict {
	case VerdictSafe:
		return true, verdict
	case VerdictUnsafe:
		return false, verdict
	default:
		return g.policy == FailOpen, verdict
	}
}
