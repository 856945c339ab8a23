package library

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/webstack/backend/internal/domain/library"
	"github.com/webstack/backend/internal/domain/shared"
)

// MockBookRepository is a mock implementation of library.BookRepository
type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) FindAll(ctx context.Context) ([]library.Book, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]library.Book), args.Error(1)
}

func (m *MockBookRepository) FindByID(ctx context.Context, id string) (*library.Book, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*library.Book), args.Error(1)
}

func (m *MockBookRepository) Save(ctx context.Context, book *library.Book) error {
	args := m.Called(ctx, book)
	return args.Error(0)
}

func (m *MockBookRepository) DeleteByID(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBookRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// Stream feeds the []library.Book return value to fn one by one
func (m *MockBookRepository) Stream(ctx context.Context, fn func(*library.Book) error) error {
	args := m.Called(ctx)
	if books, ok := args.Get(0).([]library.Book); ok {
		for i := range books {
			if err := fn(&books[i]); err != nil {
				return err
			}
		}
	}
	return args.Error(1)
}

func (m *MockBookRepository) UpdateTitle(ctx context.Context, id, title string) error {
	args := m.Called(ctx, id, title)
	return args.Error(0)
}

func (m *MockBookRepository) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockPublisherRepository is a mock implementation of library.PublisherRepository
type MockPublisherRepository struct {
	mock.Mock
}

func (m *MockPublisherRepository) FindAll(ctx context.Context) ([]library.Publisher, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]library.Publisher), args.Error(1)
}

func (m *MockPublisherRepository) FindByIDs(ctx context.Context, ids []string) ([]library.Publisher, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]library.Publisher), args.Error(1)
}

func (m *MockPublisherRepository) FindByID(ctx context.Context, id string) (*library.Publisher, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*library.Publisher), args.Error(1)
}

func (m *MockPublisherRepository) Save(ctx context.Context, publisher *library.Publisher) error {
	args := m.Called(ctx, publisher)
	return args.Error(0)
}

func (m *MockPublisherRepository) DeleteByID(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPublisherRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPublisherRepository) AddBook(ctx context.Context, publisherID, bookID string) error {
	args := m.Called(ctx, publisherID, bookID)
	return args.Error(0)
}

func (m *MockPublisherRepository) RemoveBook(ctx context.Context, publisherID, bookID string) error {
	args := m.Called(ctx, publisherID, bookID)
	return args.Error(0)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

var (
	_ library.BookRepository      = (*MockBookRepository)(nil)
	_ library.PublisherRepository = (*MockPublisherRepository)(nil)
	_ shared.EventPublisher       = (*MockEventPublisher)(nil)
)
