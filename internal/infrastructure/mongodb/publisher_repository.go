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

type publisherDocument struct {
	ID         string   `bson:"_id"`
	Name       string   `bson:"name"`
	PostalCode string   `bson:"postalCode"`
	Books      []string `bson:"books"`
}

func (d publisherDocument) toDomain() library.Publisher {
	return library.Publisher{
		ID:         d.ID,
		Name:       d.Name,
		PostalCode: d.PostalCode,
		Books:      lo.Ternary(d.Books == nil, []string{}, d.Books),
	}
}

func publisherFromDomain(p *library.Publisher) publisherDocument {
	return publisherDocument{
		ID:         p.ID,
		Name:       p.Name,
		PostalCode: p.PostalCode,
		Books:      lo.Ternary(p.Books == nil, []string{}, p.Books),
	}
}

// MongoPublisherRepository implements library.PublisherRepository
type MongoPublisherRepository struct {
	coll *mongo.Collection
}

// NewMongoPublisherRepository creates a repository over the publishers collection
func NewMongoPublisherRepository(db *mongo.Database) *MongoPublisherRepository {
	return &MongoPublisherRepository{coll: db.Collection(PublishersCollection)}
}

// FindAll returns every publisher ordered by id
func (r *MongoPublisherRepository) FindAll(ctx context.Context) ([]library.Publisher, error) {
	return r.find(ctx, bson.D{})
}

// FindByIDs returns the publishers among ids that exist
func (r *MongoPublisherRepository) FindByIDs(ctx context.Context, ids []string) ([]library.Publisher, error) {
	if len(ids) == 0 {
		return []library.Publisher{}, nil
	}
	return r.find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: lo.Uniq(ids)}}}})
}

func (r *MongoPublisherRepository) find(ctx context.Context, filter bson.D) ([]library.Publisher, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query publishers: %w", err)
	}
	var docs []publisherDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode publishers: %w", err)
	}
	return lo.Map(docs, func(d publisherDocument, _ int) library.Publisher {
		return d.toDomain()
	}), nil
}

// FindByID finds a publisher by id
func (r *MongoPublisherRepository) FindByID(ctx context.Context, id string) (*library.Publisher, error) {
	var doc publisherDocument
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load publisher: %w", err)
	}
	p := doc.toDomain()
	return &p, nil
}

// Save inserts or replaces the publisher document. An empty id is generated.
func (r *MongoPublisherRepository) Save(ctx context.Context, publisher *library.Publisher) error {
	if publisher.ID == "" {
		publisher.ID = primitive.NewObjectID().Hex()
	}
	doc := publisherFromDomain(publisher)
	_, err := r.coll.ReplaceOne(ctx, bson.D{{Key: "_id", Value: doc.ID}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save publisher: %w", err)
	}
	publisher.Books = doc.Books
	return nil
}

// AddBook adds a book id to the publisher's list unless already present
func (r *MongoPublisherRepository) AddBook(ctx context.Context, publisherID, bookID string) error {
	return r.update(ctx, publisherID, bson.D{{Key: "$addToSet", Value: bson.D{{Key: "books", Value: bookID}}}})
}

// RemoveBook removes a book id from the publisher's list
func (r *MongoPublisherRepository) RemoveBook(ctx context.Context, publisherID, bookID string) error {
	return r.update(ctx, publisherID, bson.D{{Key: "$pull", Value: bson.D{{Key: "books", Value: bookID}}}})
}

func (r *MongoPublisherRepository) update(ctx context.Context, id string, update bson.D) error {
	result, err := r.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return fmt.Errorf("failed to update publisher: %w", err)
	}
	if result.MatchedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByID removes a publisher
func (r *MongoPublisherRepository) DeleteByID(ctx context.Context, id string) error {
	result, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("failed to delete publisher: %w", err)
	}
	if result.DeletedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count returns the number of publishers
func (r *MongoPublisherRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.D{})
}

var _ library.PublisherRepository = (*MongoPublisherRepository)(nil)
