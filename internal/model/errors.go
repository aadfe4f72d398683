// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// Codeはクライアントが機械的に判別するための安定した識別子。
type APIError struct {
	Code    string // エラーコード
	Message string // エラーメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeEmailInUse          = "EMAIL_IN_USE"
	ErrCodeUsernameInUse       = "USERNAME_IN_USE"
	ErrCodeLoginFailed         = "LOGIN_FAILED"
	ErrCodeProductNotFound     = "PRODUCT_NOT_FOUND"
	ErrCodeDuplicateProduct    = "DUPLICATE_PRODUCT"
	ErrCodeTestCaseNotFound    = "TESTCASE_NOT_FOUND"
	ErrCodeDuplicateTestCase   = "DUPLICATE_TESTCASE"
	ErrCodeInvalidStatus       = "INVALID_STATUS"
	ErrCodeInvalidPriority     = "INVALID_PRIORITY"
	ErrCodeInvalidPage         = "INVALID_PAGE"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeInternal            = "INTERNAL_ERROR"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeMissingAuthHeader   = "MISSING_AUTH_HEADER"
	ErrCodeMalformedAuthHeader = "MALFORMED_AUTH_HEADER"
	ErrCodeInvalidToken        = "INVALID_TOKEN"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
)

// NewValidationError は入力値検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Message: reason,
	}
}

// NewEmailInUseError はメールアドレス重複エラーを生成する。
func NewEmailInUseError() *APIError {
	return &APIError{
		Code:    ErrCodeEmailInUse,
		Message: "Email is already in use",
	}
}

// NewUsernameInUseError はユーザー名重複エラーを生成する。
func NewUsernameInUseError() *APIError {
	return &APIError{
		Code:    ErrCodeUsernameInUse,
		Message: "Username is already in use",
	}
}

// NewLoginFailedError はログイン失敗エラーを生成する。
// ユーザー不在とパスワード不一致は区別しない。
func NewLoginFailedError() *APIError {
	return &APIError{
		Code:    ErrCodeLoginFailed,
		Message: "Login Failed",
	}
}

// NewProductNotFoundError は製品未検出エラーを生成する。
func NewProductNotFoundError(id int64) *APIError {
	return &APIError{
		Code:    ErrCodeProductNotFound,
		Message: fmt.Sprintf("Product not found: %d", id),
	}
}

// NewDuplicateProductError は同名製品の重複エラーを生成する。
func NewDuplicateProductError() *APIError {
	return &APIError{
		Code:    ErrCodeDuplicateProduct,
		Message: "Product with same name already exists",
	}
}

// NewTestCaseNotFoundError はテストケース未検出エラーを生成する。
func NewTestCaseNotFoundError(id int64) *APIError {
	return &APIError{
		Code:    ErrCodeTestCaseNotFound,
		Message: fmt.Sprintf("TestCase not found: %d", id),
	}
}

// NewDuplicateTestCaseError は同名テストケースの重複エラーを生成する。
func NewDuplicateTestCaseError() *APIError {
	return &APIError{
		Code:    ErrCodeDuplicateTestCase,
		Message: "TestCase with same title already exists",
	}
}

// NewInvalidStatusError は未定義のテストケース状態エラーを生成する。
func NewInvalidStatusError(status string) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidStatus,
		Message: fmt.Sprintf("Invalid test case status: %q", status),
	}
}

// NewInvalidPriorityError は未定義のテストケース優先度エラーを生成する。
func NewInvalidPriorityError(priority string) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidPriority,
		Message: fmt.Sprintf("Invalid test case priority: %q", priority),
	}
}

// NewInvalidPageError は不正なページ指定エラーを生成する。
func NewInvalidPageError(reason string) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidPage,
		Message: fmt.Sprintf("Invalid page request: %s", reason),
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeUserNotFound,
		Message: "User not found",
	}
}
