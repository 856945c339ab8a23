// Package library contains the application services of the document store.
package library

import (
	"context"
	"errors"

	"github.com/webstack/backend/internal/domain/library"
	"github.com/webstack/backend/internal/domain/shared"
	"github.com/webstack/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// BookService handles book operations and keeps publisher book lists in step
type BookService struct {
	bookRepo       library.BookRepository
	publisherRepo  library.PublisherRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewBookService creates a new BookService. publisher may be nil.
func NewBookService(
	bookRepo library.BookRepository,
	publisherRepo library.PublisherRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *BookService {
	return &BookService{
		bookRepo:       bookRepo,
		publisherRepo:  publisherRepo,
		eventPublisher: publisher,
		logger:         logger,
	}
}

// List returns every book with its publisher resolved
func (s *BookService) List(ctx context.Context) (_ []BookResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "book", "list")
	defer func() { telemetry.EndSpan(span, err) }()

	books, err := s.bookRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToBookResponses(books), nil
}

// Stream calls fn for each book as the store yields it.
// It stops at the first error from fn or when ctx is done.
func (s *BookService) Stream(ctx context.Context, fn func(BookResponse) error) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "book", "stream")
	defer func() { telemetry.EndSpan(span, err) }()

	var count int64
	err = s.bookRepo.Stream(ctx, func(b *library.Book) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		count++
		return fn(ToBookResponse(b))
	})
	span.SetAttributes(attribute.Int64("books.streamed", count))
	return err
}

// GetByID returns a book by id
func (s *BookService) GetByID(ctx context.Context, id string) (*BookResponse, error) {
	book, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToBookResponse(book)
	return &resp, nil
}

// Save inserts or replaces a book. A referenced publisher is created when
// missing and records the book id; a publisher the book no longer
// references forgets it.
func (s *BookService) Save(ctx context.Context, req SaveBookRequest) (_ *BookResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "book", "save", attribute.String("book.id", req.ID))
	defer func() { telemetry.EndSpan(span, err) }()

	book := req.ToDomain()
	if req.Publisher != nil {
		book.Publisher = &library.Publisher{ID: req.Publisher.ID}
	}
	if err := book.Validate(); err != nil {
		return nil, err
	}

	previousPublisher := ""
	if book.ID != "" {
		existing, err := s.bookRepo.FindByID(ctx, book.ID)
		switch {
		case err == nil:
			previousPublisher = existing.PublisherID()
		case !errors.Is(err, shared.ErrNotFound):
			return nil, err
		}
	}

	if req.Publisher != nil {
		publisher, err := s.upsertPublisher(ctx, *req.Publisher)
		if err != nil {
			return nil, err
		}
		if err := s.publisherRepo.Save(ctx, publisher); err != nil {
			return nil, err
		}
		book.Publisher = publisher
	}

	if err := s.bookRepo.Save(ctx, book); err != nil {
		return nil, err
	}

	if book.Publisher != nil {
		if err := s.publisherRepo.AddBook(ctx, book.Publisher.ID, book.ID); err != nil {
			return nil, err
		}
		book.PublishWith(book.Publisher)
	}

	if previousPublisher != "" && previousPublisher != book.PublisherID() {
		s.detach(ctx, previousPublisher, book.ID)
	}

	publishAll(ctx, s.eventPublisher, s.logger, library.NewBookSavedEvent(book))
	s.logger.Info("book saved",
		zap.String("book_id", book.ID),
		zap.String("publisher_id", book.PublisherID()),
	)

	resp := ToBookResponse(book)
	return &resp, nil
}

func (s *BookService) upsertPublisher(ctx context.Context, ref PublisherRef) (*library.Publisher, error) {
	publisher, err := s.publisherRepo.FindByID(ctx, ref.ID)
	if errors.Is(err, shared.ErrNotFound) {
		return library.NewPublisher(ref.ID, ref.Name, ref.PostalCode), nil
	}
	if err != nil {
		return nil, err
	}
	if ref.Name != "" {
		publisher.Name = ref.Name
	}
	if ref.PostalCode != "" {
		publisher.PostalCode = ref.PostalCode
	}
	return publisher, nil
}

// UpdateTitle changes the title of an existing book
func (s *BookService) UpdateTitle(ctx context.Context, id, title string) (_ *BookResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "book", "update_title", attribute.String("book.id", id))
	defer func() { telemetry.EndSpan(span, err) }()

	book := library.Book{ID: id, Title: title}
	if err := book.Validate(); err != nil {
		return nil, err
	}
	if err := s.bookRepo.UpdateTitle(ctx, id, title); err != nil {
		return nil, err
	}

	updated, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	publishAll(ctx, s.eventPublisher, s.logger, library.NewBookSavedEvent(updated))

	resp := ToBookResponse(updated)
	return &resp, nil
}

// Delete removes a book and pulls its id from its publisher
func (s *BookService) Delete(ctx context.Context, id string) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "book", "delete", attribute.String("book.id", id))
	defer func() { telemetry.EndSpan(span, err) }()

	book, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.bookRepo.DeleteByID(ctx, id); err != nil {
		return err
	}
	if publisherID := book.PublisherID(); publisherID != "" {
		s.detach(ctx, publisherID, id)
	}

	publishAll(ctx, s.eventPublisher, s.logger, library.NewBookDeletedEvent(id))
	s.logger.Info("book deleted", zap.String("book_id", id))
	return nil
}

// detach is best effort: a dangling id in a publisher's list is harmless
func (s *BookService) detach(ctx context.Context, publisherID, bookID string) {
	err := s.publisherRepo.RemoveBook(ctx, publisherID, bookID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		s.logger.Warn("failed to remove book from publisher",
			zap.String("publisher_id", publisherID),
			zap.String("book_id", bookID),
			zap.Error(err),
		)
	}
}

// Count returns the number of stored books
func (s *BookService) Count(ctx context.Context) (int64, error) {
	return s.bookRepo.Count(ctx)
}

func publishAll(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger, events ...shared.DomainEvent) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, events...); err != nil {
		logger.Error("failed to publish events", zap.Error(err))
	}
}
