package collection

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Limits for user-supplied collection text.
const (
	MaxNameLength        = 100
	MaxDescriptionLength = 1000
)

// Bookmark is a paper saved into a collection.
type Bookmark struct {
	PaperID string
	AddedAt time.Time
}

// Collection is a named set of bookmarked papers (immutable value object).
type Collection struct {
	id          string
	name        string
	description string
	createdAt   int64
	bookmarks   []Bookmark
}

// New validates and creates a Collection with a fresh id.
func New(name, description string) (Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Collection{}, fmt.Errorf("collection name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return Collection{}, fmt.Errorf("collection name too long (max %d)", MaxNameLength)
	}
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return Collection{}, fmt.Errorf("collection description too long (max %d)", MaxDescriptionLength)
	}

	return Collection{
		id:          uuid.NewString(),
		name:        name,
		description: strings.TrimSpace(description),
		createdAt:   time.Now().UnixMilli(),
	}, nil
}

// Reconstruct creates a Collection without validation (storage hydration).
func Reconstruct(id, name, description string, createdAt int64, bookmarks []Bookmark) Collection {
	return Collection{
		id:          id,
		name:        name,
		description: description,
		createdAt:   createdAt,
		bookmarks:   bookmarks,
	}
}

// ID returns the collection UUID.
func (c Collection) ID() string { return c.id }

// Name returns the unique collection name.
func (c Collection) Name() string { return c.name }

// Description returns the free-form description.
func (c Collection) Description() string { return c.description }

// CreatedAt returns the creation timestamp (unix millis).
func (c Collection) CreatedAt() int64 { return c.createdAt }

// Bookmarks returns the saved papers, most recent first.
func (c Collection) Bookmarks() []Bookmark { return c.bookmarks }

// PaperIDs returns the ids of the bookmarked papers.
func (c Collection) PaperIDs() []string {
	ids := make([]string, len(c.bookmarks))
	for i, b := range c.bookmarks {
		ids[i] = b.PaperID
	}
	return ids
}

// IsValidID reports whether s is a well-formed collection id.
func IsValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
