package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/huynhvq/inventory-tracker/internal/apperr"
	"github.com/huynhvq/inventory-tracker/internal/service"
	"github.com/huynhvq/inventory-tracker/pkg/validator"
)

type productHandler struct {
	productSvc service.ProductService
	validator  validator.Validator
}

func newProductHandler(productSvc service.ProductService) *productHandler {
	return &productHandler{
		productSvc: productSvc,
		validator:  validator.NewDefaultValidator(),
	}
}

// productRequest is the body for create and update. Quantity and Price are
// decoded through pointers so a missing field is distinguishable from a
// zero value.
type productRequest struct {
	Name     string   `json:"name" validate:"required"`
	Sku      string   `json:"sku" validate:"required"`
	Quantity *int     `json:"quantity" validate:"required,gte=0"`
	Price    *float64 `json:"price" validate:"required,gte=0"`
	Category string   `json:"category" validate:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *productHandler) listProducts(s *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := h.productSvc.ListAllProducts(r.Context())
		if err != nil {
			s.handleResponseError(w, r, err)
			return
		}

		s.respondJSON(w, r, http.StatusOK, products)
	}
}

func (h *productHandler) getProduct(s *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseProductID(r)
		if err != nil {
			s.handleResponseError(w, r, err)
			return
		}

		product, err := h.productSvc.GetProduct(r.Context(), id)
		if err != nil {
			s.handleResponseError(w, r, err)
			return
		}

		s.respondJSON(w, r, http.StatusOK, product)
	}
}

func (h *productHandler) createProduct(s *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := h.decodeProductRequest(r)
		if err != nil {
			s.handleResponseError(w, r, err)
			return
		}

		product, err := h.productSvc.CreateProduct(r.Context(), params)
		if err != nil {
			s.handleResponseError(w, r, err)
			return
		}

		s.respondJSON(w, r, http.StatusCreated, product)
	}
}

func (h *productHandler) updateProduct(s *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseProductID(r)
		if err != nil {
			s.handleResponseError(w, r, err)
			return
		}

		params, err := h.decodeProductRequest(r)
		if err != nil {
			s.handleResponseError(w, r, err)
			return
		}

		product, err := h.productSvc.UpdateProduct(r.Context(), id, params)
		if err != nil {
			s.handleResponseError(w, r, err)
			return
		}

		s.respondJSON(w, r, http.StatusOK, product)
	}
}

func (h *productHandler) deleteProduct(s *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseProductID(r)
		if err != nil {
			s.handleResponseError(w, r, err)
			return
		}

		if err := h.productSvc.DeleteProduct(r.Context(), id); err != nil {
			s.handleResponseError(w, r, err)
			return
		}

		s.respondJSON(w, r, http.StatusOK, messageResponse{Message: "Product deleted successfully"})
	}
}

func (h *productHandler) decodeProductRequest(r *http.Request) (service.ProductParams, error) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return service.ProductParams{}, apperr.InvalidRequestBodyErr.WrapParent(err)
	}

	if err := h.validator.Validate(req); err != nil {
		return service.ProductParams{}, err
	}

	return service.ProductParams{
		Name:     req.Name,
		Sku:      req.Sku,
		Quantity: *req.Quantity,
		Price:    *req.Price,
		Category: req.Category,
	}, nil
}

// parseProductID reads the id route parameter. A value that is not a UUID
// cannot name any product, so it is reported as not found rather than as a
// malformed request.
func parseProductID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.ProductNotFoundErr.WrapParent(err)
	}
	return id, nil
}
