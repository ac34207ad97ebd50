package category

import (
	"context"
	"fmt"

	"github.com/wfo-tracker/attendance-backend-go/internal/domain/category"
)

type CategoryServiceImpl struct {
	category.CategoryRepository
}

// List implements category.CategoryService.
func (s *CategoryServiceImpl) List(ctx context.Context) ([]category.CategoryResponse, error) {
	categories, err := s.CategoryRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	responses := make([]category.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		responses = append(responses, c.ToResponse())
	}
	return responses, nil
}

// Get implements category.CategoryService.
func (s *CategoryServiceImpl) Get(ctx context.Context, id int64) (category.CategoryResponse, error) {
	c, err := s.CategoryRepository.GetByID(ctx, id)
	if err != nil {
		return category.CategoryResponse{}, err
	}
	return c.ToResponse(), nil
}

func NewCategoryService(categoryRepo category.CategoryRepository) category.CategoryService {
	return &CategoryServiceImpl{CategoryRepository: categoryRepo}
}
