package handler

import (
	"context"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/hitoshi/automata/internal/middleware"
	"github.com/hitoshi/automata/internal/model"
	"github.com/hitoshi/automata/internal/token"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Login は資格情報を照合してアクセストークンを発行する。
	Login(ctx context.Context, username, password string) (*token.AccessToken, error)
	// IsEmailAvailable はメールアドレスが未登録かを返す。
	IsEmailAvailable(ctx context.Context, email string) (bool, error)
	// IsUsernameAvailable はユーザー名が未登録かを返す。
	IsUsernameAvailable(ctx context.Context, username string) (bool, error)
}

// AuthHandler はログインと登録可否確認のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate はログインリクエストの必須項目を検証する。
func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// Login はユーザー名とパスワードでログインし、アクセストークンを返す。
// POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) || !validate(w, req) {
		return
	}

	accessToken, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, "Login Successful", accessToken)
}

// EmailAvailability はメールアドレスが登録可能かを返す。
// GET /api/v1/auth/email-availability?email=
func (h *AuthHandler) EmailAvailability(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, model.NewValidationError("email: "+err.Error()))
		return
	}

	available, err := h.service.IsEmailAvailable(r.Context(), email)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeAvailability(w, "Email", available)
}

// UsernameAvailability はユーザー名が登録可能かを返す。
// GET /api/v1/auth/username-availability?username=
func (h *AuthHandler) UsernameAvailability(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if err := validation.Validate(username, validation.Required); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, model.NewValidationError("username: "+err.Error()))
		return
	}

	available, err := h.service.IsUsernameAvailable(r.Context(), username)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeAvailability(w, "Username", available)
}

// writeAvailability は登録可能なら200、既に使われていれば409を返す。
func writeAvailability(w http.ResponseWriter, subject string, available bool) {
	if available {
		middleware.WriteJSON(w, http.StatusOK, subject+" is available", nil)
		return
	}
	middleware.WriteJSON(w, http.StatusConflict, subject+" is not available", nil)
}
