package library

import (
	"github.com/samber/lo"
	"github.com/webstack/backend/internal/domain/library"
)

// AuthorDTO is the embedded author of a book
type AuthorDTO struct {
	Name  string `json:"name" binding:"max=255"`
	Phone string `json:"phone" binding:"max=64"`
}

// PublisherRef names the publisher of a book being saved.
// The publisher is created when it does not exist yet.
type PublisherRef struct {
	ID         string `json:"id" binding:"required,max=128"`
	Name       string `json:"name" binding:"max=255"`
	PostalCode string `json:"postalCode" binding:"max=32"`
}

// SaveBookRequest is the body of PUT /book. An empty id is generated.
type SaveBookRequest struct {
	ID        string        `json:"id" binding:"max=128"`
	Title     string        `json:"title" binding:"required,max=255"`
	Author    AuthorDTO     `json:"author"`
	Publisher *PublisherRef `json:"publisher"`
}

// UpdateTitleRequest is the body of PATCH /books/:id/title
type UpdateTitleRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

// ToDomain converts the request into a book without its publisher
func (r SaveBookRequest) ToDomain() *library.Book {
	return library.NewBook(r.ID, r.Title, library.Author{Name: r.Author.Name, Phone: r.Author.Phone})
}

// PublisherResponse is the JSON form of a publisher
type PublisherResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	PostalCode string   `json:"postalCode"`
	Books      []string `json:"books"`
}

// BookResponse is the JSON form of a book with its resolved publisher
type BookResponse struct {
	ID        string             `json:"id"`
	Title     string             `json:"title"`
	Author    AuthorDTO          `json:"author"`
	Publisher *PublisherResponse `json:"publisher"`
}

// ToPublisherResponse converts a domain publisher
func ToPublisherResponse(p *library.Publisher) PublisherResponse {
	books := p.Books
	if books == nil {
		books = []string{}
	}
	return PublisherResponse{ID: p.ID, Name: p.Name, PostalCode: p.PostalCode, Books: books}
}

// ToPublisherResponses converts a list of domain publishers
func ToPublisherResponses(publishers []library.Publisher) []PublisherResponse {
	return lo.Map(publishers, func(p library.Publisher, _ int) PublisherResponse {
		return ToPublisherResponse(&p)
	})
}

// ToBookResponse converts a domain book
func ToBookResponse(b *library.Book) BookResponse {
	resp := BookResponse{
		ID:     b.ID,
		Title:  b.Title,
		Author: AuthorDTO{Name: b.Author.Name, Phone: b.Author.Phone},
	}
	if b.Publisher != nil {
		p := ToPublisherResponse(b.Publisher)
		resp.Publisher = &p
	}
	return resp
}

// ToBookResponses converts a list of domain books
func ToBookResponses(books []library.Book) []BookResponse {
	return lo.Map(books, func(b library.Book, _ int) BookResponse {
		return ToBookResponse(&b)
	})
}
