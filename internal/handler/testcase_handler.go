package handler

import (
	"context"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/hitoshi/automata/internal/middleware"
	"github.com/hitoshi/automata/internal/model"
	"github.com/hitoshi/automata/internal/testcase"
)

// TestCaseServiceInterface はテストケースハンドラーが必要とするサービスインターフェース。
type TestCaseServiceInterface interface {
	Create(ctx context.Context, userID int64, in testcase.Input) (*model.TestCase, error)
	Update(ctx context.Context, userID, id int64, in testcase.Input) (*model.TestCase, error)
	UpdateStatus(ctx context.Context, userID, id int64, rawStatus string) (*model.TestCase, error)
	UpdatePriority(ctx context.Context, userID, id int64, rawPriority string) (*model.TestCase, error)
	Get(ctx context.Context, userID, id int64) (*model.TestCase, error)
	List(ctx context.Context, userID int64, page model.PageRequest) (model.Page[*model.TestCase], error)
	Delete(ctx context.Context, userID, id int64) error
}

// TestCaseHandler はテストケース管理のHTTPハンドラー。
type TestCaseHandler struct {
	service TestCaseServiceInterface
}

// NewTestCaseHandler はTestCaseHandlerを生成する。
func NewTestCaseHandler(service TestCaseServiceInterface) *TestCaseHandler {
	return &TestCaseHandler{service: service}
}

// testCaseRequest はテストケースの作成・更新リクエストのボディ。
// statusとpriorityは省略可能で、値の妥当性はサービス層で判定する。
type testCaseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
}

func (r testCaseRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.RuneLength(1, testcase.MaxTitleLength)),
		validation.Field(&r.Description, validation.RuneLength(0, 5000)),
	)
}

func (r testCaseRequest) input() testcase.Input {
	return testcase.Input{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
	}
}

// Create はテストケースを登録する。
// POST /api/v1/test-case/new
func (h *TestCaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req testCaseRequest
	if !decodeJSON(w, r, &req) || !validate(w, req) {
		return
	}

	tc, err := h.service.Create(r.Context(), userID, req.input())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, "Test case created", tc)
}

// Update はテストケースを更新する。
// PUT /api/v1/test-case/update/{testCaseId}
func (h *TestCaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "testCaseId")
	if !ok {
		return
	}
	var req testCaseRequest
	if !decodeJSON(w, r, &req) || !validate(w, req) {
		return
	}

	tc, err := h.service.Update(r.Context(), userID, id, req.input())
	if err != nil {
		handleServiceError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, "Test case updated", tc)
}

// UpdateStatus はテストケースの状態のみを更新する。
// PUT /api/v1/test-case/update-status/{testCaseId}?status=
func (h *TestCaseHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	h.updateField(w, r, "status", h.service.UpdateStatus)
}

// UpdatePriority はテストケースの優先度のみを更新する。
// PUT /api/v1/test-case/update-priority/{testCaseId}?priority=
func (h *TestCaseHandler) UpdatePriority(w http.ResponseWriter, r *http.Request) {
	h.updateField(w, r, "priority", h.service.UpdatePriority)
}

func (h *TestCaseHandler) updateField(
	w http.ResponseWriter,
	r *http.Request,
	param string,
	update func(ctx context.Context, userID, id int64, raw string) (*model.TestCase, error),
) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "testCaseId")
	if !ok {
		return
	}
	raw := r.URL.Query().Get(param)
	if err := validation.Validate(raw, validation.Required); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, model.NewValidationError(param+": "+err.Error()))
		return
	}

	tc, err := update(r.Context(), userID, id, raw)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, "Test case "+param+" updated", tc)
}

// Get はテストケースを1件返す。
// GET /api/v1/test-case/{testCaseId}
func (h *TestCaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "testCaseId")
	if !ok {
		return
	}

	tc, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, "Test case fetched", tc)
}

// List はテストケースをページ単位で返す。
// GET /api/v1/test-case?page=&size=
func (h *TestCaseHandler) List(w http.ResponseWriter, r *http.Request) {
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
	middleware.WriteJSON(w, http.StatusOK, "Test cases fetched", result)
}

// Delete はテストケースを削除する。
// DELETE /api/v1/test-case/{testCaseId}
func (h *TestCaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "testCaseId")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		handleServiceError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, "Test case deleted", nil)
}
