package http

import (
	"net/http"

	"github.com/wfo-tracker/attendance-backend-go/internal/domain/category"
	"github.com/wfo-tracker/attendance-backend-go/internal/handler/http/response"
)

type CategoryHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
}

type categoryHandlerImpl struct {
	categoryService category.CategoryService
}

func NewCategoryHandler(categoryService category.CategoryService) CategoryHandler {
	return &categoryHandlerImpl{categoryService: categoryService}
}

func (h *categoryHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.categoryService.List(r.Context())
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, result)
}

func (h *categoryHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		handleParamError(w, r, err)
		return
	}

	result, err := h.categoryService.Get(r.Context(), id)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, result)
}
