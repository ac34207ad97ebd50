package category

import "context"

type CategoryService interface {
	List(ctx context.Context) ([]CategoryResponse, error)
	Get(ctx context.Context, id int64) (CategoryResponse, error)
}
