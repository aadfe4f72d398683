package middleware

import "net/http"

// apiHeader はレスポンスヘッダー名と値の組。
type apiHeader struct {
	name  string
	value string
}

// apiResponseHeaders はJSON APIの全レスポンスに付与するヘッダー。
// レスポンスはHTMLとして描画されず、アクセストークンやユーザー情報を含むことがある。
var apiResponseHeaders = []apiHeader{
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "no-referrer"},
	{"Cache-Control", "no-store"},
	{"Pragma", "no-cache"},
}

// NewSecurityHeadersMiddleware は apiResponseHeaders をハンドラー実行前に設定する。
// ハンドラーが同じヘッダーを設定した場合はハンドラー側の値が残る。
func NewSecurityHeadersMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for _, header := range apiResponseHeaders {
				h.Set(header.name, header.value)
			}
			next.ServeHTTP(w, r)
		})
	}
}
