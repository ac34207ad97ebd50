package category

// CategoryResponse represents the response structure for a category.
type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
