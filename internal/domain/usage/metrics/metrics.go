package metrics

// Metrics is the summary token consumption over one report period.
type Metrics struct {
	tokens int64
	limit  int64
}

// New creates a Metrics snapshot. A limit of 0 means the period is unlimited.
func New(tokens, limit int64) Metrics {
	return Metrics{tokens: tokens, limit: limit}
}

// Tokens returns the tokens consumed.
func (m Metrics) Tokens() int64 { return m.tokens }

// Utilization returns the consumed share of the limit in percent, capped at 100.
// Unlimited periods report 0.
func (m Metrics) Utilization() float64 {
	if m.limit <= 0 {
		return 0
	}
	pct := float64(m.tokens) * 100 / float64(m.limit)
	return min(pct, 100)
}
