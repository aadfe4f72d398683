package handler

import (
	"context"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/hitoshi/automata/internal/middleware"
	"github.com/hitoshi/automata/internal/model"
	"github.com/hitoshi/automata/internal/product"
)

// ProductServiceInterface は製品ハンドラーが必要とするサービスインターフェース。
type ProductServiceInterface interface {
	Create(ctx context.Context, userID int64, in product.Input) (*model.Product, error)
	Update(ctx context.Context, userID, id int64, in product.Input) (*model.Product, error)
	Get(ctx context.Context, userID, id int64) (*model.Product, error)
	List(ctx context.Context, userID int64, page model.PageRequest) (model.Page[*model.Product], error)
	Delete(ctx context.Context, userID, id int64) error
}

// ProductHandler は製品管理のHTTPハンドラー。全ての操作は認証済みユーザーの製品に限定される。
type ProductHandler struct {
	service ProductServiceInterface
}

// NewProductHandler はProductHandlerを生成する。
func NewProductHandler(service ProductServiceInterface) *ProductHandler {
	return &ProductHandler{service: service}
}

// productRequest は製品の作成・更新リクエストのボディ。
type productRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

func (r productRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.RuneLength(1, product.MaxNameLength)),
		validation.Field(&r.Price, validation.Required, validation.Min(product.MinPrice), validation.Max(product.MaxPrice)),
	)
}

func (r productRequest) input() product.Input {
	return product.Input{Name: r.Name, Price: r.Price}
}

// Create は製品を登録する。
// POST /api/v1/products/new-product
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req productRequest
	if !decodeJSON(w, r, &req) || !validate(w, req) {
		return
	}

	p, err := h.service.Create(r.Context(), userID, req.input())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, "Product created", p)
}

// Update は製品を更新する。
// PUT /api/v1/products/update/{productId}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	var req productRequest
	if !decodeJSON(w, r, &req) || !validate(w, req) {
		return
	}

	p, err := h.service.Update(r.Context(), userID, id, req.input())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, "Product updated", p)
}

// Get は製品を1件返す。
// GET /api/v1/products/{productId}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "productId")
	if !ok {
		return
	}

	p, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, "Product fetched", p)
}

// List は製品をページ単位で返す。
// GET /api/v1/products?page=&size=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	page, ok := pageRequest(w, r)
	if !ok {
		return
	}

	result, err := h.service.List(r.Context(), userID, page)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, "Products fetched", result)
}

// Delete は製品を削除する。
// DELETE /api/v1/products/{productId}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "productId")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		handleServiceError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, "Product deleted", nil)
}
