package auth

import "errors"

// 認証処理のエラー種別。トークン検証の失敗は token.ErrInvalidToken で表す。
var (
	// ErrMissingHeader はAuthorizationヘッダーが無いことを表す。
	ErrMissingHeader = errors.New("authorization header is missing")
	// ErrMalformedHeader はAuthorizationヘッダーが "Bearer <token>" 形式でないことを表す。
	ErrMalformedHeader = errors.New("authorization header is malformed")
	// ErrUserNotFound はトークンのsubjectに対応するユーザーが存在しないことを表す。
	ErrUserNotFound = errors.New("user not found")
	// ErrBadCredentials はログイン時のユーザー名またはパスワードの不一致を表す。
	ErrBadCredentials = errors.New("bad credentials")
)
