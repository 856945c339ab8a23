package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	libraryapp "github.com/webstack/backend/internal/application/library"
	"github.com/webstack/backend/internal/domain/library"
	"github.com/webstack/backend/internal/domain/shared"
	"github.com/webstack/backend/internal/infrastructure/mongodb"
	"github.com/webstack/backend/tests/testutil"
	"go.uber.org/zap"
)

type libraryServices struct {
	books      *mongodb.MongoBookRepository
	publishers *mongodb.MongoPublisherRepository
	svc        *libraryapp.BookService
}

func newLibraryServices(t *testing.T) *libraryServices {
	t.Helper()
	client := NewMongoDatabase(t)
	publishers := mongodb.NewMongoPublisherRepository(client.Database())
	books := mongodb.NewMongoBookRepository(client.Database(), publishers)
	return &libraryServices{
		books:      books,
		publishers: publishers,
		svc:        libraryapp.NewBookService(books, publishers, &testutil.RecordingPublisher{}, zap.NewNop()),
	}
}

func (s *libraryServices) seed(t *testing.T, rows ...testutil.BookRow) {
	t.Helper()
	ctx := testutil.ContextWithTimeout(t, testTimeout)
	for _, b := range testutil.BooksFromRows(rows...) {
		require.NoError(t, s.publishers.Save(ctx, b.Publisher))
		require.NoError(t, s.books.Save(ctx, b))
	}
}

var libraryRows = []testutil.BookRow{
	{ID: "b1", Title: "Dune", Author: "Frank Herbert, 555-0101", Publisher: "Chilton, 19087"},
	{ID: "b2", Title: "Emma", Author: "Jane Austen, 555-0102", Publisher: "Murray, 20000"},
	{ID: "b3", Title: "Neuromancer", Author: "William Gibson, 555-0103", Publisher: "Ace, 10014"},
}

func TestMongo_StreamResolvesPublishers(t *testing.T) {
	s := newLibraryServices(t)
	s.seed(t, libraryRows...)
	ctx := testutil.ContextWithTimeout(t, testTimeout)

	var streamed []*library.Book
	err := s.books.Stream(ctx, func(b *library.Book) error {
		streamed = append(streamed, b)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, streamed, 3)

	assert.Equal(t, "b1", streamed[0].ID)
	require.NotNil(t, streamed[0].Publisher)
	assert.Equal(t, "Chilton", streamed[0].Publisher.Name)
	assert.Equal(t, []string{"b1"}, streamed[0].Publisher.Books)
	require.NotNil(t, streamed[1].Publisher)
	assert.Equal(t, "20000", streamed[1].Publisher.PostalCode)
	assert.Equal(t, "Jane Austen", streamed[1].Author.Name)
	assert.Equal(t, "555-0102", streamed[1].Author.Phone)

	count, err := s.books.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestMongo_DanglingPublisherResolvesToNil(t *testing.T) {
	s := newLibraryServices(t)
	s.seed(t, libraryRows[0])
	ctx := testutil.ContextWithTimeout(t, testTimeout)

	require.NoError(t, s.publishers.DeleteByID(ctx, "b1"+testutil.PublisherIDSuffix))

	book, err := s.books.FindByID(ctx, "b1")
	require.NoError(t, err)
	assert.Nil(t, book.Publisher)
}

func TestMongo_BookServiceLifecycle(t *testing.T) {
	s := newLibraryServices(t)
	ctx := testutil.ContextWithTimeout(t, testTimeout)

	saved, err := s.svc.Save(ctx, libraryapp.SaveBookRequest{
		Title:     "Snow Crash",
		Author:    libraryapp.AuthorDTO{Name: "Neal Stephenson"},
		Publisher: &libraryapp.PublisherRef{ID: "bantam", Name: "Bantam", PostalCode: "10019"},
	})
	require.NoError(t, err)
	assert.Len(t, saved.ID, 24, "generated ids are object id hex strings")

	publisher, err := s.publishers.FindByID(ctx, "bantam")
	require.NoError(t, err)
	assert.Equal(t, []string{saved.ID}, publisher.Books)

	renamed, err := s.svc.UpdateTitle(ctx, saved.ID, "Snow Crash (2nd ed.)")
	require.NoError(t, err)
	assert.Equal(t, "Snow Crash (2nd ed.)", renamed.Title)
	assert.Equal(t, "Neal Stephenson", renamed.Author.Name)

	require.NoError(t, s.svc.Delete(ctx, saved.ID))
	_, err = s.books.FindByID(ctx, saved.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	publisher, err = s.publishers.FindByID(ctx, "bantam")
	require.NoError(t, err)
	assert.Empty(t, publisher.Books)

	_, err = s.svc.UpdateTitle(ctx, saved.ID, "Gone")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestMongo_AddBookIsIdempotent(t *testing.T) {
	s := newLibraryServices(t)
	ctx := testutil.ContextWithTimeout(t, testTimeout)

	require.NoError(t, s.publishers.Save(ctx, library.NewPublisher("p1", "House", "1000")))
	require.NoError(t, s.publishers.AddBook(ctx, "p1", "b1"))
	require.NoError(t, s.publishers.AddBook(ctx, "p1", "b1"))
	require.NoError(t, s.publishers.AddBook(ctx, "p1", "b2"))

	p, err := s.publishers.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b2"}, p.Books)

	assert.ErrorIs(t, s.publishers.AddBook(ctx, "missing", "b1"), shared.ErrNotFound)
}
