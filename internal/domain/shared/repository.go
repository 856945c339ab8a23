package shared

import "context"

// CrudRepository is the storage contract shared by every aggregate repository.
// FindByID and DeleteByID return ErrNotFound when the id is unknown.
type CrudRepository[T any, ID comparable] interface {
	FindAll(ctx context.Context) ([]T, error)
	FindByID(ctx context.Context, id ID) (*T, error)
	Save(ctx context.Context, entity *T) error
	DeleteByID(ctx context.Context, id ID) error
	Count(ctx context.Context) (int64, error)
}
