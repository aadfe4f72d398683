package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/automata/internal/metrics"
	"github.com/hitoshi/automata/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	Metrics           metrics.MetricsCollector
	CORSAllowedOrigin string
	AuthGate          *middleware.AuthGate
	RateLimiter       *middleware.RateLimiter

	// ヘルスチェック
	Health HealthChecker

	// サービス
	AuthService     AuthServiceInterface
	UserService     UserServiceInterface
	ProductService  ProductServiceInterface
	TestCaseService TestCaseServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS → AuthGate → RateLimit(General)
//
// /health は認証ゲートの外に配置する。除外パスの判定は認証ゲート自身が行う。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger, deps.Metrics))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService)
	userHandler := NewUserHandler(deps.UserService)
	productHandler := NewProductHandler(deps.ProductService)
	testCaseHandler := NewTestCaseHandler(deps.TestCaseService)

	r.Get("/health", Health(deps.Health))

	r.Group(func(r chi.Router) {
		r.Use(deps.AuthGate.Middleware())
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/v3/api-docs", APIDocs)

		r.Route("/api/v1", func(r chi.Router) {
			r.Route("/auth", func(r chi.Router) {
				r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", authHandler.Login)
				r.Get("/email-availability", authHandler.EmailAvailability)
				r.Get("/username-availability", authHandler.UsernameAvailability)
			})

			r.Route("/users", func(r chi.Router) {
				r.Post("/register", userHandler.Register)
				r.Post("/new-user", userHandler.Register)
				r.Get("/user", userHandler.Me)
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", productHandler.List)
				r.Post("/new-product", productHandler.Create)
				r.Put("/update/{productId}", productHandler.Update)
				r.Get("/{productId}", productHandler.Get)
				r.Delete("/{productId}", productHandler.Delete)
			})

			r.Route("/test-case", func(r chi.Router) {
				r.Get("/", testCaseHandler.List)
				r.Post("/new", testCaseHandler.Create)
				r.Put("/update/{testCaseId}", testCaseHandler.Update)
				r.Put("/update-status/{testCaseId}", testCaseHandler.UpdateStatus)
				r.Put("/update-priority/{testCaseId}", testCaseHandler.UpdatePriority)
				r.Get("/{testCaseId}", testCaseHandler.Get)
				r.Delete("/{testCaseId}", testCaseHandler.Delete)
			})
		})
	})

	return r
}
