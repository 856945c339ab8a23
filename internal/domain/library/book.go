// Package library holds the document side of the store: books with an
// embedded author and a reference to their publisher.
package library

import (
	"strings"

	"github.com/webstack/backend/internal/domain/shared"
)

// AggregateTypeBook is the aggregate type recorded on book events
const AggregateTypeBook = "Book"

// Book is stored as a single document. The author is embedded, the
// publisher is a reference resolved on read.
type Book struct {
	ID        string
	Title     string
	Author    Author
	Publisher *Publisher
}

// Author is embedded in its book
type Author struct {
	Name  string
	Phone string
}

// NewBook creates a book. An empty id is filled in by the repository on save.
func NewBook(id, title string, author Author) *Book {
	return &Book{ID: id, Title: title, Author: author}
}

// Validate checks the fields of a book about to be saved
func (b *Book) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return shared.Errorf(shared.ErrInvalidInput, "book title is required")
	}
	if b.Publisher != nil && strings.TrimSpace(b.Publisher.ID) == "" {
		return shared.Errorf(shared.ErrInvalidInput, "publisher id is required when a publisher is set")
	}
	return nil
}

// PublisherID returns the referenced publisher id, or "" when none is set
func (b *Book) PublisherID() string {
	if b.Publisher == nil {
		return ""
	}
	return b.Publisher.ID
}

// PublishWith links the book to a publisher and records the book on the
// publisher's side.
func (b *Book) PublishWith(p *Publisher) {
	b.Publisher = p
	if b.ID != "" {
		p.AddBook(b.ID)
	}
}
