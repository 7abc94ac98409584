package usage

import (
	"testing"

	"github.com/kailas-cloud/paperdigest/internal/domain/usage/budget"
	"github.com/kailas-cloud/paperdigest/internal/domain/usage/metrics"
)

func TestNewReport(t *testing.T) {
	m := metrics.New(48000, 1000000)
	b := budget.New(1000000, 48000, 952000, 1702600000)

	r := NewReport(PeriodMonth, 1700000000, 1702600000, "groq", m, b)

	if r.Period() != PeriodMonth {
		t.Errorf("Period() = %q", r.Period())
	}
	if r.PeriodStart() != 1700000000 {
		t.Errorf("PeriodStart() = %d", r.PeriodStart())
	}
	if r.PeriodEnd() != 1702600000 {
		t.Errorf("PeriodEnd() = %d", r.PeriodEnd())
	}
	if r.Provider() != "groq" {
		t.Errorf("Provider() = %q", r.Provider())
	}
	if r.Metrics().Tokens() != 48000 {
		t.Errorf("Metrics().Tokens() = %d", r.Metrics().Tokens())
	}
	if r.Budget().TokensLimit() != 1000000 {
		t.Errorf("Budget().TokensLimit() = %d", r.Budget().TokensLimit())
	}
}

func TestParsePeriod(t *testing.T) {
	tests := map[string]Period{
		"day":   PeriodDay,
		"month": PeriodMonth,
		"total": PeriodTotal,
		"":      PeriodMonth,
		"year":  PeriodMonth,
	}
	for in, want := range tests {
		if got := ParsePeriod(in); got != want {
			t.Errorf("ParsePeriod(%q) = %q, want %q", in, got, want)
		}
	}
}
