package testutil

import (
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/samber/lo"
	salesapp "github.com/webstack/backend/internal/application/sales"
	"github.com/webstack/backend/internal/domain/library"
)

// PublisherIDSuffix is appended to a book id to name its fixture publisher
const PublisherIDSuffix = "_publisher"

// BookRow is one row of a book fixture table.
// Author is "name, phone" and Publisher is "name, postalCode"; trailing cells may be omitted.
type BookRow struct {
	ID        string
	Title     string
	Author    string
	Publisher string
}

// Book builds the book of the row. The publisher id is the book id plus
// PublisherIDSuffix and the publisher lists the book.
func (r BookRow) Book() *library.Book {
	name, phone := splitPair(r.Author)
	b := library.NewBook(r.ID, r.Title, library.Author{Name: name, Phone: phone})

	pubName, postalCode := splitPair(r.Publisher)
	b.PublishWith(library.NewPublisher(r.ID+PublisherIDSuffix, pubName, postalCode))
	return b
}

// BookRowFromMap reads a row keyed by column header.
func BookRowFromMap(m map[string]string) BookRow {
	return BookRow{ID: m["id"], Title: m["title"], Author: m["author"], Publisher: m["publisher"]}
}

// BooksFromRows builds one book per row.
func BooksFromRows(rows ...BookRow) []*library.Book {
	return lo.Map(rows, func(r BookRow, _ int) *library.Book { return r.Book() })
}

func splitPair(cell string) (string, string) {
	first, second, _ := strings.Cut(cell, ",")
	return strings.TrimSpace(first), strings.TrimSpace(second)
}

// CustomerFaker produces customer requests from a seeded gofakeit source.
type CustomerFaker struct {
	faker *gofakeit.Faker
}

// NewCustomerFaker creates a faker. The same seed yields the same customers.
func NewCustomerFaker(seed uint64) *CustomerFaker {
	return &CustomerFaker{faker: gofakeit.New(seed)}
}

// Customer returns a fully populated save request for id.
func (f *CustomerFaker) Customer(id int64) salesapp.SaveCustomerRequest {
	return salesapp.SaveCustomerRequest{
		ID:           id,
		Name:         f.faker.Name(),
		PhoneNumbers: []string{f.faker.Phone(), f.faker.Phone()},
		Addresses: []salesapp.AddressRequest{
			{
				AddressLine1: f.faker.Street(),
				City:         f.faker.City(),
				PostalCode:   f.faker.Zip(),
			},
			{
				AddressLine1: f.faker.Street(),
				AddressLine2: "Suite " + f.faker.DigitN(3),
				City:         f.faker.City(),
				PostalCode:   f.faker.Zip(),
				HighRiseExtension: &salesapp.HighRiseExtensionRequest{
					Suite:      f.faker.DigitN(3),
					Floor:      f.faker.DigitN(2),
					BuzzerCode: f.faker.LetterN(4),
				},
			},
		},
		MealPreferences: map[string]string{
			"breakfast": f.faker.Breakfast(),
			"lunch":     f.faker.Lunch(),
			"dinner":    f.faker.Dinner(),
		},
		ShippingContact: &salesapp.ShippingContactRequest{
			Name:        f.faker.Name(),
			PhoneNumber: f.faker.Phone(),
		},
	}
}

// Customers returns requests for ids first..first+n-1.
func (f *CustomerFaker) Customers(first int64, n int) []salesapp.SaveCustomerRequest {
	return lo.Times(n, func(i int) salesapp.SaveCustomerRequest {
		return f.Customer(first + int64(i))
	})
}
