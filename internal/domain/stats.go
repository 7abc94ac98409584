package domain

import "time"

// Stats is the global store overview.
type Stats struct {
	TotalPapers   int
	Subscriptions int
	TotalVotes    int
	Collections   int
	LastFetch     time.Time
}
