package handler

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/hitoshi/automata/internal/middleware"
	"github.com/hitoshi/automata/internal/model"
	"github.com/hitoshi/automata/internal/user"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Register はユーザーを新規登録する。
	Register(ctx context.Context, in user.RegisterInput) (*model.User, error)
	// Get はIDでユーザーを取得する。
	Get(ctx context.Context, id int64) (*model.User, error)
}

// UserHandler はユーザー管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate はユーザー名4〜20文字、メール形式、パスワード強度を検証する。
func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username,
			validation.Required,
			validation.RuneLength(4, 20),
			validation.Match(usernamePattern).Error("must contain only letters, digits, '_', '.' or '-'"),
		),
		validation.Field(&r.Email, validation.Required, validation.RuneLength(0, 255), is.Email),
		validation.Field(&r.Password,
			validation.Required,
			validation.RuneLength(8, 20),
			validation.By(strongPassword),
		),
	)
}

// strongPassword は大文字・小文字・数字・記号をそれぞれ1文字以上含むかを検証する。
func strongPassword(value interface{}) error {
	s, _ := value.(string)
	var upper, lower, digit, symbol bool
	for _, c := range s {
		switch {
		case unicode.IsUpper(c):
			upper = true
		case unicode.IsLower(c):
			lower = true
		case unicode.IsDigit(c):
			digit = true
		case unicode.IsPunct(c) || unicode.IsSymbol(c):
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return errors.New("must contain an upper case letter, a lower case letter, a digit and a symbol")
	}
	return nil
}

// Register はユーザーを登録する。
// POST /api/v1/users/register, POST /api/v1/users/new-user
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) || !validate(w, req) {
		return
	}

	created, err := h.service.Register(r.Context(), user.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, "User registered", created)
}

// Me は認証済みユーザーの情報を返す。
// GET /api/v1/users/user
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	u, err := h.service.Get(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, "User fetched", u)
}
