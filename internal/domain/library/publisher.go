package library

import (
	"slices"
	"strings"

	"github.com/webstack/backend/internal/domain/shared"
)

// Publisher keeps the ids of the books it published
type Publisher struct {
	ID         string
	Name       string
	PostalCode string
	Books      []string
}

// NewPublisher creates a publisher with no books
func NewPublisher(id, name, postalCode string) *Publisher {
	return &Publisher{ID: id, Name: name, PostalCode: postalCode, Books: []string{}}
}

// Validate checks the publisher fields
func (p *Publisher) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return shared.Errorf(shared.ErrInvalidInput, "publisher id is required")
	}
	return nil
}

// AddBook records a book id; adding the same id twice is a no-op
func (p *Publisher) AddBook(bookID string) {
	if !slices.Contains(p.Books, bookID) {
		p.Books = append(p.Books, bookID)
	}
}

// RemoveBook forgets a book id
func (p *Publisher) RemoveBook(bookID string) {
	p.Books = slices.DeleteFunc(p.Books, func(id string) bool { return id == bookID })
}

// HasBook reports whether the publisher lists the book
func (p *Publisher) HasBook(bookID string) bool {
	return slices.Contains(p.Books, bookID)
}
