package paper

// Sort orders for stored paper listings.
const (
	SortDate  = "date"
	SortVotes = "votes"
	SortTitle = "title"
)

// IsValidSort reports whether s names a supported listing order.
func IsValidSort(s string) bool {
	return s == SortDate || s == SortVotes || s == SortTitle
}

// ListQuery selects a page of stored papers.
type ListQuery struct {
	Limit   int
	Offset  int
	Keyword string
	Sort    string
}
