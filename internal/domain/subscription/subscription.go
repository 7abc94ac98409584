package subscription

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxKeywordLength bounds a subscription keyword.
const MaxKeywordLength = 100

// Subscription is a keyword the fetch pipeline filters papers by.
type Subscription struct {
	keyword   string
	createdAt time.Time
}

// Normalize trims and lower-cases a keyword.
func Normalize(keyword string) string {
	return strings.ToLower(strings.Join(strings.Fields(keyword), " "))
}

// New validates and creates a Subscription.
func New(keyword string) (Subscription, error) {
	kw := Normalize(keyword)
	if kw == "" {
		return Subscription{}, fmt.Errorf("keyword is required")
	}
	if utf8.RuneCountInString(kw) > MaxKeywordLength {
		return Subscription{}, fmt.Errorf("keyword too long (max %d)", MaxKeywordLength)
	}
	return Subscription{keyword: kw, createdAt: time.Now().UTC()}, nil
}

// Reconstruct creates a Subscription without validation (storage hydration).
func Reconstruct(keyword string, createdAt time.Time) Subscription {
	return Subscription{keyword: keyword, createdAt: createdAt}
}

// Keyword returns the normalized keyword.
func (s Subscription) Keyword() string { return s.keyword }

// CreatedAt returns when the subscription was added.
func (s Subscription) CreatedAt() time.Time { return s.createdAt }

// Keywords extracts the keyword strings.
func Keywords(subs []Subscription) []string {
	out := make([]string, len(subs))
	for i, s := range subs {
		out[i] = s.keyword
	}
	return out
}
