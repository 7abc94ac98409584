package budget

// Budget is a snapshot of the summary token budget.
type Budget struct {
	tokensLimit     int64
	tokensUsed      int64
	tokensRemaining int64
	resetsAt        int64 // unix millis, formatted at the transport layer
}

// New creates a Budget snapshot. A limit of 0 means unlimited.
func New(limit, used, remaining, resetsAt int64) Budget {
	return Budget{
		tokensLimit:     limit,
		tokensUsed:      used,
		tokensRemaining: remaining,
		resetsAt:        resetsAt,
	}
}

// TokensLimit returns the token cap, 0 when unlimited.
func (b Budget) TokensLimit() int64 { return b.tokensLimit }

// TokensUsed returns tokens consumed in the period.
func (b Budget) TokensUsed() int64 { return b.tokensUsed }

// TokensRemaining returns tokens left, -1 when unlimited.
func (b Budget) TokensRemaining() int64 { return b.tokensRemaining }

// IsExhausted reports whether a limited budget is spent.
func (b Budget) IsExhausted() bool { return b.tokensLimit > 0 && b.tokensRemaining <= 0 }

// ResetsAt returns the reset timestamp (unix millis), 0 when the period never resets.
func (b Budget) ResetsAt() int64 { return b.resetsAt }
