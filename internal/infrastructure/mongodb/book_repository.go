package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/webstack/backend/internal/domain/library"
	"github.com/webstack/backend/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// dbRef is the standard MongoDB DBRef layout
type dbRef struct {
	Ref string `bson:"$ref"`
	ID  string `bson:"$id"`
}

type authorDocument struct {
	Name  string `bson:"name"`
	Phone string `bson:"phone,omitempty"`
}

type bookDocument struct {
	ID        string         `bson:"_id"`
	Title     string         `bson:"title"`
	Author    authorDocument `bson:"author"`
	Publisher *dbRef         `bson:"publisher,omitempty"`
}

func bookFromDomain(b *library.Book) bookDocument {
	doc := bookDocument{
		ID:     b.ID,
		Title:  b.Title,
		Author: authorDocument{Name: b.Author.Name, Phone: b.Author.Phone},
	}
	if id := b.PublisherID(); id != "" {
		doc.Publisher = &dbRef{Ref: PublishersCollection, ID: id}
	}
	return doc
}

// toDomain builds the book; a reference to a missing publisher resolves to nil
func (d bookDocument) toDomain(publishers publisherCache) library.Book {
	b := library.Book{
		ID:     d.ID,
		Title:  d.Title,
		Author: library.Author{Name: d.Author.Name, Phone: d.Author.Phone},
	}
	if d.Publisher != nil {
		if p := publishers[d.Publisher.ID]; p != nil {
			cp := *p
			b.Publisher = &cp
		}
	}
	return b
}

// publisherCache holds resolved publishers by id. A nil entry records a dangling reference.
type publisherCache map[string]*library.Publisher

// MongoBookRepository implements library.BookRepository.
// Publishers are stored in their own collection and resolved on read.
type MongoBookRepository struct {
	coll       *mongo.Collection
	publishers *MongoPublisherRepository
}

// NewMongoBookRepository creates a repository over the book collection
func NewMongoBookRepository(db *mongo.Database, publishers *MongoPublisherRepository) *MongoBookRepository {
	return &MongoBookRepository{coll: db.Collection(BooksCollection), publishers: publishers}
}

var sortByID = options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

// FindAll returns every book ordered by id with its publisher resolved
func (r *MongoBookRepository) FindAll(ctx context.Context) ([]library.Book, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, sortByID)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	var docs []bookDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode books: %w", err)
	}

	publishers := publisherCache{}
	if err := r.resolve(ctx, docs, publishers); err != nil {
		return nil, err
	}
	return lo.Map(docs, func(d bookDocument, _ int) library.Book {
		return d.toDomain(publishers)
	}), nil
}

// Stream decodes books one cursor batch at a time and hands each to fn.
// Publishers of a batch are loaded with a single query; ids seen before are not queried again.
// Iteration stops at the first error from fn or the cursor.
func (r *MongoBookRepository) Stream(ctx context.Context, fn func(*library.Book) error) error {
	cursor, err := r.coll.Find(ctx, bson.D{}, sortByID)
	if err != nil {
		return fmt.Errorf("failed to query books: %w", err)
	}
	defer cursor.Close(ctx)

	publishers := publisherCache{}
	var batch []bookDocument
	for cursor.Next(ctx) {
		var doc bookDocument
		if err := cursor.Decode(&doc); err != nil {
			return fmt.Errorf("failed to decode book: %w", err)
		}
		batch = append(batch, doc)
		if cursor.RemainingBatchLength() > 0 {
			continue
		}
		if err := r.emit(ctx, batch, publishers, fn); err != nil {
			return err
		}
		batch = batch[:0]
	}
	if err := cursor.Err(); err != nil {
		return err
	}
	return r.emit(ctx, batch, publishers, fn)
}

func (r *MongoBookRepository) emit(ctx context.Context, docs []bookDocument, publishers publisherCache, fn func(*library.Book) error) error {
	if len(docs) == 0 {
		return nil
	}
	if err := r.resolve(ctx, docs, publishers); err != nil {
		return err
	}
	for _, doc := range docs {
		book := doc.toDomain(publishers)
		if err := fn(&book); err != nil {
			return err
		}
	}
	return nil
}

// resolve loads the publishers referenced by docs that are not cached yet with one $in query
func (r *MongoBookRepository) resolve(ctx context.Context, docs []bookDocument, cache publisherCache) error {
	missing := lo.Uniq(lo.FilterMap(docs, func(d bookDocument, _ int) (string, bool) {
		if d.Publisher == nil {
			return "", false
		}
		_, seen := cache[d.Publisher.ID]
		return d.Publisher.ID, !seen
	}))
	if len(missing) == 0 {
		return nil
	}
	found, err := r.publishers.FindByIDs(ctx, missing)
	if err != nil {
		return err
	}
	for _, id := range missing {
		cache[id] = nil
	}
	for i := range found {
		cache[found[i].ID] = &found[i]
	}
	return nil
}

// FindByID finds a book by id
func (r *MongoBookRepository) FindByID(ctx context.Context, id string) (*library.Book, error) {
	var doc bookDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load book: %w", err)
	}

	publishers := publisherCache{}
	if err := r.resolve(ctx, []bookDocument{doc}, publishers); err != nil {
		return nil, err
	}
	book := doc.toDomain(publishers)
	return &book, nil
}

// Save inserts or replaces the book document. An empty id is generated.
// The publisher is stored as a reference and is not written.
func (r *MongoBookRepository) Save(ctx context.Context, book *library.Book) error {
	if book.ID == "" {
		book.ID = primitive.NewObjectID().Hex()
	}
	doc := bookFromDomain(book)
	_, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: doc.ID}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save book: %w", err)
	}
	return nil
}

// UpdateTitle changes only the title of an existing book
func (r *MongoBookRepository) UpdateTitle(ctx context.Context, id, title string) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "title", Value: title}}}},
	)
	if err != nil {
		return fmt.Errorf("failed to update book title: %w", err)
	}
	if result.MatchedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByID removes a book
func (r *MongoBookRepository) DeleteByID(ctx context.Context, id string) error {
	result, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if result.DeletedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteAll removes every book
func (r *MongoBookRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.coll.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("failed to delete books: %w", err)
	}
	return nil
}

// Count returns the number of books
func (r *MongoBookRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{})
}

var _ library.BookRepository = (*MongoBookRepository)(nil)
