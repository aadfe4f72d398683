package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/automata/internal/auth"
	"github.com/hitoshi/automata/internal/config"
	"github.com/hitoshi/automata/internal/database"
	"github.com/hitoshi/automata/internal/handler"
	"github.com/hitoshi/automata/internal/logger"
	"github.com/hitoshi/automata/internal/metrics"
	"github.com/hitoshi/automata/internal/middleware"
	"github.com/hitoshi/automata/internal/product"
	"github.com/hitoshi/automata/internal/repository"
	"github.com/hitoshi/automata/internal/security"
	"github.com/hitoshi/automata/internal/testcase"
	"github.com/hitoshi/automata/internal/token"
	"github.com/hitoshi/automata/internal/user"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, "info")

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再セットアップ
	logger.SetupDefault(w, cfg.LogLevel)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandMigrate:
		steps, err := ParseRollbackSteps(args)
		if err != nil {
			return fmt.Errorf("invalid rollback steps: %w", err)
		}
		return runMigrate(cfg, steps)
	default:
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg)
	}
}

// Server はAPIサーバーの構成要素。
type Server struct {
	Handler     http.Handler
	RateLimiter *middleware.RateLimiter
	Registry    *prometheus.Registry
}

// Close はバックグラウンドで動作する構成要素を停止する。
func (s *Server) Close() {
	s.RateLimiter.Stop()
}

// NewServer は設定とDB接続から全依存関係をワイヤリングし、ルーターを構築する。
func NewServer(cfg *config.Config, db *sql.DB) (*Server, error) {
	// 1. メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// 2. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	productRepo := repository.NewPostgresProductRepo(db)
	testCaseRepo := repository.NewPostgresTestCaseRepo(db)

	// 3. トークンCodec
	codec, err := token.NewCodec(token.Config{
		Issuer:    cfg.Auth.Issuer,
		Audience:  cfg.Auth.Audience,
		SecretKey: cfg.Auth.SecretKey,
		Validity:  cfg.Auth.TokenValidity,
		Location:  cfg.Auth.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token codec: %w", err)
	}

	// 4. ドメインサービスの初期化
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	sanitizer := security.NewInputSanitizer()

	authService := auth.NewService(auth.NewCredentialVerifier(userRepo, hasher), codec, userRepo, collector)
	userService := user.NewService(userRepo, hasher)
	productService := product.NewService(productRepo, sanitizer)
	testCaseService := testcase.NewService(testCaseRepo, sanitizer)

	// 5. 認証ゲートとレート制限
	exempt := append(append([]string(nil), middleware.DefaultExemptPaths...), cfg.Auth.ExtraExemptPaths...)
	gate := middleware.NewAuthGate(exempt, codec, auth.NewIdentityResolver(userRepo), collector)
	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfigPerMinute(cfg.RateLimitGeneral, cfg.RateLimitLogin))

	// 6. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		Metrics:           collector,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		AuthGate:          gate,
		RateLimiter:       limiter,
		Health: handler.HealthCheckerFunc(func(ctx context.Context) error {
			return db.PingContext(ctx)
		}),
		AuthService:     authService,
		UserService:     userService,
		ProductService:  productService,
		TestCaseService: testCaseService,
	})

	return &Server{Handler: router, RateLimiter: limiter, Registry: registry}, nil
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、APIサーバーとメトリクスサーバーを起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := database.Ping(ctx, db, 5*time.Second); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. 依存関係のワイヤリング
	srv, err := NewServer(cfg, db)
	if err != nil {
		return err
	}
	defer srv.Close()

	// 3. HTTPサーバーの起動
	apiServer := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      srv.Handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metrics.SetupMetricsRoute(srv.Registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	for _, s := range []*http.Server{apiServer, metricsServer} {
		go func(s *http.Server) {
			slog.Info("HTTP server starting", slog.String("addr", s.Addr))
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("listen %s: %w", s.Addr, err)
			}
		}(s)
	}

	select {
	case <-ctx.Done():
		slog.Info("shutting down servers...")
	case err := <-errCh:
		slog.Error("server listen error", slog.String("error", err.Error()))
		shutdown(apiServer, metricsServer)
		return err
	}

	if err := shutdown(apiServer, metricsServer); err != nil {
		return err
	}

	slog.Info("servers stopped gracefully")
	return nil
}

// shutdown は各サーバーを最大30秒待ってから停止する。
func shutdown(servers ...*http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var errs []error
	for _, s := range servers {
		if err := s.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown %s: %w", s.Addr, err))
		}
	}
	return errors.Join(errs...)
}

// runMigrate はデータベースマイグレーションを実行する。
// rollbackStepsが正の場合はその件数だけ取り消し、それ以外は未適用分を全て適用する。
func runMigrate(cfg *config.Config, rollbackSteps int) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		slog.Int("rollback_steps", rollbackSteps),
	)

	if rollbackSteps > 0 {
		if err := database.RollbackMigrations(cfg.DatabaseURL, rollbackSteps); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		slog.Info("database migrations rolled back")
		return nil
	}

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	target := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(target)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
