package library

import "github.com/webstack/backend/internal/domain/shared"

// Event type constants
const (
	EventTypeBookSaved   = "BookSaved"
	EventTypeBookDeleted = "BookDeleted"
)

// BookSavedEvent is published after a book upsert or title change
type BookSavedEvent struct {
	shared.BaseDomainEvent
	BookID      string `json:"book_id"`
	Title       string `json:"title"`
	PublisherID string `json:"publisher_id,omitempty"`
}

// NewBookSavedEvent creates a BookSavedEvent
func NewBookSavedEvent(b *Book) *BookSavedEvent {
	return &BookSavedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookSaved, AggregateTypeBook, b.ID),
		BookID:          b.ID,
		Title:           b.Title,
		PublisherID:     b.PublisherID(),
	}
}

// BookDeletedEvent is published after a book is removed
type BookDeletedEvent struct {
	shared.BaseDomainEvent
	BookID string `json:"book_id"`
}

// NewBookDeletedEvent creates a BookDeletedEvent
func NewBookDeletedEvent(id string) *BookDeletedEvent {
	return &BookDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookDeleted, AggregateTypeBook, id),
		BookID:          id,
	}
}
