package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/hitoshi/automata/internal/middleware"
	"github.com/hitoshi/automata/internal/model"
)

// maxBodyBytes はJSONリクエストボディの上限。
const maxBodyBytes = 1 << 20

// decodeJSON はリクエストボディをdstにデコードし、失敗時は400を書き込んでfalseを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrCodeInvalidRequest,
			Message: "Malformed request body",
		})
		return false
	}
	return true
}

// validate はozzo-validationのルール検証を行い、失敗時は400を書き込んでfalseを返す。
func validate(w http.ResponseWriter, v validation.Validatable) bool {
	if err := v.Validate(); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			middleware.WriteError(w, http.StatusBadRequest, model.NewValidationError(verrs.Error()))
			return false
		}
		handleServiceError(w, err)
		return false
	}
	return true
}

// currentUserID は認証済みユーザーのIDを返す。
// 認証ゲートの内側でのみ呼ばれる前提だが、無い場合は401を書き込む。
func currentUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	user, err := middleware.CurrentUser(r.Context())
	if err != nil {
		middleware.WriteError(w, http.StatusUnauthorized, &model.APIError{
			Code:    model.ErrCodeUnauthorized,
			Message: "Authentication required",
		})
		return 0, false
	}
	return user.ID, true
}

// pathID はURLパラメーターを正の整数IDとして取り出す。
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		middleware.WriteError(w, http.StatusBadRequest, &model.APIError{
			Code:    model.ErrCodeInvalidRequest,
			Message: "Invalid " + name,
		})
		return 0, false
	}
	return id, true
}

// pageRequest はクエリのpage・sizeからページ指定を組み立てる。
// 省略時はpage=0、size=DefaultPageSize。
func pageRequest(w http.ResponseWriter, r *http.Request) (model.PageRequest, bool) {
	page, size := 0, model.DefaultPageSize
	q := r.URL.Query()

	var err error
	if v := q.Get("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, model.NewInvalidPageError("page must be an integer"))
			return model.PageRequest{}, false
		}
	}
	if v := q.Get("size"); v != "" {
		if size, err = strconv.Atoi(v); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, model.NewInvalidPageError("size must be an integer"))
			return model.PageRequest{}, false
		}
	}

	req, err := model.NewPageRequest(page, size)
	if err != nil {
		handleServiceError(w, err)
		return model.PageRequest{}, false
	}
	return req, true
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteError(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeInvalidRequest, model.ErrCodeValidationFailed,
		model.ErrCodeInvalidStatus, model.ErrCodeInvalidPriority, model.ErrCodeInvalidPage:
		return http.StatusBadRequest
	case model.ErrCodeEmailInUse, model.ErrCodeUsernameInUse,
		model.ErrCodeDuplicateProduct, model.ErrCodeDuplicateTestCase:
		return http.StatusConflict
	case model.ErrCodeProductNotFound, model.ErrCodeTestCaseNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeLoginFailed:
		return http.StatusForbidden
	case model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
