package library

import (
	"context"

	"github.com/webstack/backend/internal/domain/shared"
)

// BookRepository stores books. Reads resolve the publisher reference.
type BookRepository interface {
	shared.CrudRepository[Book, string]
	// Stream calls fn for each stored book as the cursor yields it.
	// Iteration stops at the first error returned by fn.
	Stream(ctx context.Context, fn func(*Book) error) error
	UpdateTitle(ctx context.Context, id, title string) error
	DeleteAll(ctx context.Context) error
}

// PublisherRepository stores publishers
type PublisherRepository interface {
	shared.CrudRepository[Publisher, string]
	FindByIDs(ctx context.Context, ids []string) ([]Publisher, error)
	AddBook(ctx context.Context, publisherID, bookID string) error
	RemoveBook(ctx context.Context, publisherID, bookID string) error
}
