package testutil

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/samber/lo"
	"github.com/webstack/backend/internal/domain/library"
	"github.com/webstack/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LibraryStore keeps books and publishers in memory with the semantics of the
// document repositories: publisher references are resolved on read, missing
// references resolve to nil, and a blank id is generated on save.
type LibraryStore struct {
	mu         sync.RWMutex
	books      map[string]bookEntry
	order      []string
	publishers map[string]library.Publisher
}

type bookEntry struct {
	book        library.Book
	publisherID string
}

// NewLibraryStore creates an empty store.
func NewLibraryStore() *LibraryStore {
	return &LibraryStore{
		books:      make(map[string]bookEntry),
		publishers: make(map[string]library.Publisher),
	}
}

// Books returns the book repository view of the store.
func (s *LibraryStore) Books() *MemoryBookRepository {
	return &MemoryBookRepository{store: s}
}

// Publishers returns the publisher repository view of the store.
func (s *LibraryStore) Publishers() *MemoryPublisherRepository {
	return &MemoryPublisherRepository{store: s}
}

// Seed stores books with their publishers, the way a fixture table is loaded.
func (s *LibraryStore) Seed(ctx context.Context, books ...*library.Book) error {
	for _, b := range books {
		if b.Publisher != nil {
			if err := s.Publishers().Save(ctx, b.Publisher); err != nil {
				return err
			}
		}
		if err := s.Books().Save(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

// must hold at least the read lock
func (s *LibraryStore) resolve(e bookEntry) library.Book {
	b := e.book
	b.Publisher = nil
	if p, ok := s.publishers[e.publisherID]; ok {
		p.Books = slices.Clone(p.Books)
		b.Publisher = &p
	}
	return b
}

// MemoryBookRepository implements library.BookRepository over a LibraryStore.
type MemoryBookRepository struct {
	store *LibraryStore
}

// FindAll returns the books in insertion order.
func (r *MemoryBookRepository) FindAll(_ context.Context) ([]library.Book, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return lo.Map(r.store.order, func(id string, _ int) library.Book {
		return r.store.resolve(r.store.books[id])
	}), nil
}

// Stream calls fn for each book in insertion order.
func (r *MemoryBookRepository) Stream(ctx context.Context, fn func(*library.Book) error) error {
	books, err := r.FindAll(ctx)
	if err != nil {
		return err
	}
	for i := range books {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(&books[i]); err != nil {
			return err
		}
	}
	return nil
}

// FindByID returns shared.ErrNotFound for an unknown id.
func (r *MemoryBookRepository) FindByID(_ context.Context, id string) (*library.Book, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	e, ok := r.store.books[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	b := r.store.resolve(e)
	return &b, nil
}

// Save stores the book and its publisher reference. The publisher itself is not written.
func (r *MemoryBookRepository) Save(_ context.Context, book *library.Book) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if book.ID == "" {
		book.ID = primitive.NewObjectID().Hex()
	}
	if _, ok := r.store.books[book.ID]; !ok {
		r.store.order = append(r.store.order, book.ID)
	}
	stored := *book
	stored.Publisher = nil
	r.store.books[book.ID] = bookEntry{book: stored, publisherID: book.PublisherID()}
	return nil
}

// UpdateTitle changes the title of a stored book.
func (r *MemoryBookRepository) UpdateTitle(_ context.Context, id, title string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.books[id]
	if !ok {
		return shared.ErrNotFound
	}
	e.book.Title = title
	r.store.books[id] = e
	return nil
}

// DeleteByID removes a book.
func (r *MemoryBookRepository) DeleteByID(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.books[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.store.books, id)
	r.store.order = slices.DeleteFunc(r.store.order, func(s string) bool { return s == id })
	return nil
}

// DeleteAll removes every book.
func (r *MemoryBookRepository) DeleteAll(_ context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	clear(r.store.books)
	r.store.order = nil
	return nil
}

// Count returns the number of books.
func (r *MemoryBookRepository) Count(_ context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.books)), nil
}

// MemoryPublisherRepository implements library.PublisherRepository over a LibraryStore.
type MemoryPublisherRepository struct {
	store *LibraryStore
}

// FindAll returns the publishers ordered by id.
func (r *MemoryPublisherRepository) FindAll(_ context.Context) ([]library.Publisher, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.sorted(lo.Keys(r.store.publishers)), nil
}

// FindByIDs returns the known publishers among ids, ordered by id.
func (r *MemoryPublisherRepository) FindByIDs(_ context.Context, ids []string) ([]library.Publisher, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	known := lo.Filter(lo.Uniq(ids), func(id string, _ int) bool {
		_, ok := r.store.publishers[id]
		return ok
	})
	return r.sorted(known), nil
}

// must hold at least the read lock
func (r *MemoryPublisherRepository) sorted(ids []string) []library.Publisher {
	sort.Strings(ids)
	return lo.Map(ids, func(id string, _ int) library.Publisher {
		p := r.store.publishers[id]
		p.Books = slices.Clone(p.Books)
		return p
	})
}

// FindByID returns shared.ErrNotFound for an unknown id.
func (r *MemoryPublisherRepository) FindByID(_ context.Context, id string) (*library.Publisher, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	p, ok := r.store.publishers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	p.Books = slices.Clone(p.Books)
	return &p, nil
}

// Save inserts or replaces a publisher.
func (r *MemoryPublisherRepository) Save(_ context.Context, publisher *library.Publisher) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if publisher.ID == "" {
		publisher.ID = primitive.NewObjectID().Hex()
	}
	stored := *publisher
	stored.Books = slices.Clone(publisher.Books)
	if stored.Books == nil {
		stored.Books = []string{}
	}
	r.store.publishers[publisher.ID] = stored
	return nil
}

// AddBook adds a book id to the publisher unless already present.
func (r *MemoryPublisherRepository) AddBook(_ context.Context, publisherID, bookID string) error {
	return r.update(publisherID, func(p *library.Publisher) { p.AddBook(bookID) })
}

// RemoveBook removes a book id from the publisher.
func (r *MemoryPublisherRepository) RemoveBook(_ context.Context, publisherID, bookID string) error {
	return r.update(publisherID, func(p *library.Publisher) { p.RemoveBook(bookID) })
}

func (r *MemoryPublisherRepository) update(id string, fn func(*library.Publisher)) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.publishers[id]
	if !ok {
		return shared.ErrNotFound
	}
	p.Books = slices.Clone(p.Books)
	fn(&p)
	r.store.publishers[id] = p
	return nil
}

// DeleteByID removes a publisher. Books keep their dangling reference.
func (r *MemoryPublisherRepository) DeleteByID(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.publishers[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.store.publishers, id)
	return nil
}

// Count returns the number of publishers.
func (r *MemoryPublisherRepository) Count(_ context.Context) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return int64(len(r.store.publishers)), nil
}

var (
	_ library.BookRepository      = (*MemoryBookRepository)(nil)
	_ library.PublisherRepository = (*MemoryPublisherRepository)(nil)
)
