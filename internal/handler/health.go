package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hitoshi/automata/internal/middleware"
	"github.com/hitoshi/automata/internal/model"
)

// HealthChecker はデータベース等の依存先の疎通を確認する。
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthCheckerFunc は関数をHealthCheckerとして扱うためのアダプタ。
type HealthCheckerFunc func(ctx context.Context) error

// Ping はf(ctx)を呼び出す。
func (f HealthCheckerFunc) Ping(ctx context.Context) error { return f(ctx) }

// healthTimeout はヘルスチェック1回あたりのタイムアウト。
const healthTimeout = 2 * time.Second

// Health は依存先の疎通を確認し、正常なら200、異常なら503を返す。
// GET /health
func Health(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
			defer cancel()
			if err := checker.Ping(ctx); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				middleware.WriteError(w, http.StatusServiceUnavailable, &model.APIError{
					Code:    model.ErrCodeInternal,
					Message: "Service unavailable",
				})
				return
			}
		}
		middleware.WriteJSON(w, http.StatusOK, "ok", nil)
	}
}
