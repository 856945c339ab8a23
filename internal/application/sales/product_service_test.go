package sales

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/webstack/backend/internal/domain/sales"
	"github.com/webstack/backend/internal/domain/shared"
	"go.uber.org/zap"
)

func TestProductService_Save(t *testing.T) {
	repo := new(MockProductRepository)
	publisher := new(MockEventPublisher)
	svc := NewProductService(repo, publisher, zap.NewNop())

	repo.On("Save", mock.Anything, mock.AnythingOfType("*sales.Product")).Run(func(args mock.Arguments) {
		p := args.Get(1).(*sales.Product)
		p.ID = 21
		p.InvoiceIDs = []int64{4}
	}).Return(nil)
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		return len(events) == 1 && events[0].EventType() == sales.EventTypeProductSaved
	})).Return(nil)

	resp, err := svc.Save(context.Background(), SaveProductRequest{Name: "Widget", Number: 3})
	require.NoError(t, err)

	assert.Equal(t, ProductResponse{ID: 21, Name: "Widget", Number: 3, InvoiceIDs: []int64{4}}, *resp)
	publisher.AssertExpectations(t)
}

func TestProductService_Save_RejectsNegativeNumber(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo, nil, zap.NewNop())

	_, err := svc.Save(context.Background(), SaveProductRequest{Name: "Widget", Number: -1})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestProductService_List_RendersEmptyInvoiceIDs(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo, nil, zap.NewNop())

	repo.On("FindAll", mock.Anything).Return([]sales.Product{{ID: 1, Name: "Bolt"}}, nil)

	products, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.NotNil(t, products[0].InvoiceIDs)
	assert.Empty(t, products[0].InvoiceIDs)
}

func TestProductService_GetAndDelete(t *testing.T) {
	repo := new(MockProductRepository)
	svc := NewProductService(repo, nil, zap.NewNop())

	repo.On("FindByID", mock.Anything, int64(2)).Return(&sales.Product{ID: 2, Name: "Nut", InvoiceIDs: []int64{}}, nil)
	repo.On("FindByID", mock.Anything, int64(3)).Return(nil, shared.ErrNotFound)
	repo.On("DeleteByID", mock.Anything, int64(2)).Return(nil)

	got, err := svc.GetByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Nut", got.Name)

	_, err = svc.GetByID(context.Background(), 3)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, svc.Delete(context.Background(), 2))
}
