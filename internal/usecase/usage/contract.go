package usage

// BudgetReader exposes the summary token counters of the active provider.
// Remaining values are -1 when the matching limit is unset.
type BudgetReader interface {
	Provider() string
	DailyLimit() int64
	DailyUsed() int64
	RemainingDaily() int64
	MonthlyLimit() int64
	MonthlyUsed() int64
	RemainingMonthly() int64
}
