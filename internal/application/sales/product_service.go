package sales

import (
	"context"

	"github.com/webstack/backend/internal/domain/sales"
	"github.com/webstack/backend/internal/domain/shared"
	"github.com/webstack/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ProductService handles product business operations
type ProductService struct {
	productRepo    sales.ProductRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new ProductService. publisher may be nil.
func NewProductService(productRepo sales.ProductRepository, publisher shared.EventPublisher, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo:    productRepo,
		eventPublisher: publisher,
		logger:         logger,
	}
}

// List returns every product with its invoice ids
func (s *ProductService) List(ctx context.Context) (_ []ProductResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "list")
	defer func() { telemetry.EndSpan(span, err) }()

	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToProductResponses(products), nil
}

// GetByID returns a product by id
func (s *ProductService) GetByID(ctx context.Context, id int64) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Save creates the product when the request has no id and updates it otherwise
func (s *ProductService) Save(ctx context.Context, req SaveProductRequest) (_ *ProductResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "save", attribute.Int64("product.id", req.ID))
	defer func() { telemetry.EndSpan(span, err) }()

	product := req.ToDomain()
	if err := product.Validate(); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	publishAll(ctx, s.eventPublisher, s.logger, sales.NewProductSavedEvent(product))
	s.logger.Info("product saved", zap.Int64("product_id", product.ID))

	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete removes a product and unlinks it from its invoices
func (s *ProductService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "product", "delete", attribute.Int64("product.id", id))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := s.productRepo.DeleteByID(ctx, id); err != nil {
		return err
	}
	publishAll(ctx, s.eventPublisher, s.logger, sales.NewProductDeletedEvent(id))
	s.logger.Info("product deleted", zap.Int64("product_id", id))
	return nil
}
