package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/automata/internal/auth"
	"github.com/hitoshi/automata/internal/metrics"
	"github.com/hitoshi/automata/internal/model"
	"github.com/hitoshi/automata/internal/token"
)

// 認証ゲートのレスポンスメッセージ。
const (
	MsgIncorrectAuthStructure = "Incorrect Auth Structure"
	MsgInvalidCredentials     = "Invalid Credentials"
)

// DefaultExemptPaths は認証不要なパスプレフィックス。
var DefaultExemptPaths = []string{
	"/api/v1/users/register",
	"/api/v1/auth/login",
	"/api/v1/auth/email-availability",
	"/api/v1/auth/username-availability",
	"/api/v1/users/new-user",
	"/swagger-ui",
	"/v3/api-docs",
}

// 認証ゲートの判定結果。メトリクスのラベルに使う。
const (
	OutcomeExempt          = "exempt"
	OutcomeAuthenticated   = "authenticated"
	OutcomeMissingHeader   = "missing_header"
	OutcomeMalformedHeader = "malformed_header"
	OutcomeInvalidToken    = "invalid_token"
	OutcomeUserNotFound    = "user_not_found"
	OutcomeError           = "error"
)

// TokenParser は署名付きトークンを検証する。
type TokenParser interface {
	Parse(raw string) (*token.Details, error)
}

// IdentityResolver はトークンのsubjectからIdentityを解決する。
type IdentityResolver interface {
	Resolve(ctx context.Context, subject string) (*model.Identity, error)
}

// AuthGate はリクエストごとに認証の要否を判定し、Identityを解決するゲート。
// 除外パス集合は生成後に変更しないため、並行リクエストから安全に参照できる。
type AuthGate struct {
	exempt   []string
	parser   TokenParser
	resolver IdentityResolver
	metrics  metrics.MetricsCollector
}

// NewAuthGate はAuthGateを生成する。exemptがnilの場合はDefaultExemptPathsを使う。
func NewAuthGate(exempt []string, parser TokenParser, resolver IdentityResolver, collector metrics.MetricsCollector) *AuthGate {
	if exempt == nil {
		exempt = DefaultExemptPaths
	}
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &AuthGate{
		exempt:   append([]string(nil), exempt...),
		parser:   parser,
		resolver: resolver,
		metrics:  collector,
	}
}

// IsExempt はパスが除外パスのいずれかで始まるかを返す。
func (g *AuthGate) IsExempt(path string) bool {
	for _, prefix := range g.exempt {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Middleware は認証ゲートのミドルウェアを返す。
// 除外パスはヘッダーを見ずに通過させる。それ以外は認証に成功した場合のみ
// Identityをコンテキストに注入して次のハンドラーへ渡し、失敗時は401で打ち切る。
func (g *AuthGate) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if g.IsExempt(r.URL.Path) {
				g.metrics.RecordAuthOutcome(OutcomeExempt)
				next.ServeHTTP(w, r)
				return
			}

			ctx, err := g.authenticate(r)
			if err != nil {
				rej := classifyRejection(err)
				g.metrics.RecordAuthOutcome(rej.outcome)
				slog.Warn("authentication rejected",
					slog.String("outcome", rej.outcome),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				writeRejection(w, rej)
				return
			}

			g.metrics.RecordAuthOutcome(OutcomeAuthenticated)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticate はヘッダー抽出、トークン検証、Identity解決を行い、
// Identityを含むコンテキストを返す。途中のpanicもエラーとして返す。
func (g *AuthGate) authenticate(r *http.Request) (ctx context.Context, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			ctx, err = nil, fmt.Errorf("panic during authentication: %v", rec)
		}
	}()

	raw, err := extractBearer(r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}

	details, err := g.parser.Parse(raw)
	if err != nil {
		return nil, err
	}

	ctx = r.Context()
	if _, ok := IdentityFromContext(ctx); ok {
		return ctx, nil
	}

	identity, err := g.resolver.Resolve(ctx, details.Subject)
	if err != nil {
		return nil, err
	}

	return recordIdentity(ctx, identity), nil
}

// extractBearer は "Bearer <token>" 形式のヘッダー値からトークンを取り出す。
// 空白1つで区切った2要素で、先頭が大文字小文字を区別して "Bearer" である必要がある。
func extractBearer(header string) (string, error) {
	if header == "" {
		return "", auth.ErrMissingHeader
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != token.TypeBearer || parts[1] == "" {
		return "", auth.ErrMalformedHeader
	}
	return parts[1], nil
}

// rejection は認証失敗の種別とクライアントに返す内容。
type rejection struct {
	outcome string
	code    string
	message string
}

// classifyRejection は認証失敗のエラーをレスポンス内容に変換する。
// ヘッダー形式の誤りと資格情報の誤りはメッセージとコードで区別する。
func classifyRejection(err error) rejection {
	switch {
	case errors.Is(err, auth.ErrMissingHeader):
		return rejection{OutcomeMissingHeader, model.ErrCodeMissingAuthHeader, MsgIncorrectAuthStructure}
	case errors.Is(err, auth.ErrMalformedHeader):
		return rejection{OutcomeMalformedHeader, model.ErrCodeMalformedAuthHeader, MsgIncorrectAuthStructure}
	case errors.Is(err, token.ErrInvalidToken):
		return rejection{OutcomeInvalidToken, model.ErrCodeInvalidToken, MsgInvalidCredentials}
	case errors.Is(err, auth.ErrUserNotFound):
		return rejection{OutcomeUserNotFound, model.ErrCodeInvalidCredentials, MsgInvalidCredentials}
	default:
		return rejection{OutcomeError, model.ErrCodeInvalidCredentials, MsgInvalidCredentials}
	}
}

func writeRejection(w http.ResponseWriter, rej rejection) {
	w.Header().Set("error", rej.message)
	WriteError(w, http.StatusUnauthorized, &model.APIError{
		Code:    rej.code,
		Message: rej.message,
	})
}
