package library

import (
	"context"

	"github.com/webstack/backend/internal/domain/library"
)

// PublisherService exposes read access to publishers.
// Publishers are written through BookService.
type PublisherService struct {
	publisherRepo library.PublisherRepository
}

// NewPublisherService creates a new PublisherService
func NewPublisherService(publisherRepo library.PublisherRepository) *PublisherService {
	return &PublisherService{publisherRepo: publisherRepo}
}

// List returns every publisher
func (s *PublisherService) List(ctx context.Context) ([]PublisherResponse, error) {
	publishers, err := s.publisherRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToPublisherResponses(publishers), nil
}

// GetByID returns a publisher by id
func (s *PublisherService) GetByID(ctx context.Context, id string) (*PublisherResponse, error) {
	publisher, err := s.publisherRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToPublisherResponse(publisher)
	return &resp, nil
}
