// Package sales contains the application services of the relational store.
package sales

import (
	"context"
	"time"

	"github.com/webstack/backend/internal/domain/sales"
	"github.com/webstack/backend/internal/domain/shared"
	"github.com/webstack/backend/internal/infrastructure/cache"
	"github.com/webstack/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CustomerService handles customer business operations
type CustomerService struct {
	customerRepo   sales.CustomerRepository
	cache          cache.Cache
	cacheTTL       time.Duration
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// CustomerServiceOption configures a CustomerService
type CustomerServiceOption func(*CustomerService)

// WithCustomerCache caches the customer list. A zero ttl uses the cache default.
func WithCustomerCache(c cache.Cache, ttl time.Duration) CustomerServiceOption {
	return func(s *CustomerService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithCustomerEvents publishes customer events after each write
func WithCustomerEvents(publisher shared.EventPublisher) CustomerServiceOption {
	return func(s *CustomerService) {
		s.eventPublisher = publisher
	}
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo sales.CustomerRepository, logger *zap.Logger, opts ...CustomerServiceOption) *CustomerService {
	s := &CustomerService{
		customerRepo: customerRepo,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns every customer. The result is served from the cache when present.
func (s *CustomerService) List(ctx context.Context) (_ []CustomerResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "list")
	defer func() { telemetry.EndSpan(span, err) }()

	if s.cache != nil {
		var cached []CustomerResponse
		hit, cacheErr := cache.GetJSON(ctx, s.cache, cache.CustomerListKey, &cached)
		if cacheErr != nil {
			s.logger.Warn("customer list cache read failed", zap.Error(cacheErr))
		} else if hit {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return cached, nil
		}
	}

	customers, err := s.customerRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := ToCustomerResponses(customers)

	if s.cache != nil {
		if cacheErr := cache.SetJSON(ctx, s.cache, cache.CustomerListKey, responses, s.cacheTTL); cacheErr != nil {
			s.logger.Warn("customer list cache write failed", zap.Error(cacheErr))
		}
	}
	return responses, nil
}

// GetByID returns a customer by id
func (s *CustomerService) GetByID(ctx context.Context, id int64) (_ *CustomerResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "get", attribute.Int64("customer.id", id))
	defer func() { telemetry.EndSpan(span, err) }()

	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// Save inserts or replaces the customer and returns the stored record
func (s *CustomerService) Save(ctx context.Context, req SaveCustomerRequest) (_ *CustomerResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "save", attribute.Int64("customer.id", req.ID))
	defer func() { telemetry.EndSpan(span, err) }()

	customer := req.ToDomain()
	if err := customer.Validate(); err != nil {
		return nil, err
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	s.publish(ctx, sales.NewCustomerSavedEvent(customer))
	s.logger.Info("customer saved", zap.Int64("customer_id", customer.ID))

	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// Delete removes a customer with its owned collections
func (s *CustomerService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "delete", attribute.Int64("customer.id", id))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := s.customerRepo.DeleteByID(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, sales.NewCustomerDeletedEvent(id))
	s.logger.Info("customer deleted", zap.Int64("customer_id", id))
	return nil
}

// Count returns the number of stored customers
func (s *CustomerService) Count(ctx context.Context) (int64, error) {
	return s.customerRepo.Count(ctx)
}

// publish logs and swallows publish failures; the write has already succeeded
func (s *CustomerService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish customer events", zap.Error(err))
	}
}
