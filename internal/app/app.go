package app

import (
	"context"
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

	"github.com/hitoshi/taskify/internal/auth"
	"github.com/hitoshi/taskify/internal/config"
	"github.com/hitoshi/taskify/internal/database"
	"github.com/hitoshi/taskify/internal/handler"
	"github.com/hitoshi/taskify/internal/logger"
	"github.com/hitoshi/taskify/internal/metrics"
	"github.com/hitoshi/taskify/internal/repository"
	"github.com/hitoshi/taskify/internal/security"
	"github.com/hitoshi/taskify/internal/todo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	dbPingTimeout   = 5 * time.Second
	shutdownTimeout = 30 * time.Second
	seedTimeout     = 10 * time.Second
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再初期化
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
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
		slog.String("frontend_url", cfg.FrontendURL),
	)

	switch cmd {
	case CommandMigrate:
		opts, err := ParseMigrateOptions(args[1:])
		if err != nil {
			return err
		}
		return runMigrate(cfg, opts)
	default:
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := database.Ping(ctx, db, dbPingTimeout); err != nil {
		return err
	}

	slog.Info("database connection established")

	// 2. メトリクス
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(reg)

	// 3. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	todoRepo := repository.NewPostgresTodoRepo(db)
	taskRepo := repository.NewPostgresTaskRepo(db)

	// 4. ドメインサービスの初期化
	tokenCodec, err := auth.NewTokenCodec(cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("failed to create token codec: %w", err)
	}
	sanitizer := security.NewTextSanitizer()

	authService := auth.NewService(
		userRepo, auth.NewBcryptHasher(cfg.BcryptCost), tokenCodec, sanitizer, collector,
		auth.ServiceConfig{
			GuestEmail:    cfg.GuestEmail,
			GuestPassword: cfg.GuestPassword,
		},
	)
	todoService := todo.NewService(todoRepo, taskRepo, sanitizer)
	taskService := todo.NewTaskService(taskRepo, sanitizer)

	// 5. ゲストアカウントの用意（失敗してもサーバーは起動する）
	seedCtx, cancelSeed := context.WithTimeout(ctx, seedTimeout)
	if err := authService.EnsureGuestUser(seedCtx); err != nil {
		slog.Warn("failed to ensure guest user", slog.String("error", err.Error()))
	}
	cancelSeed()

	// 6. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		TokenVerifier:     tokenCodec,
		CORSAllowedOrigin: cfg.FrontendURL,
		HealthChecker:     db,

		Metrics:         collector,
		MetricsGatherer: reg,

		AuthService: authService,
		AuthConfig:  handler.AuthHandlerConfig{CookieSecure: cfg.CookieSecure},
		UserService: authService,

		TodoService: todoService,
		TaskService: taskService,
	})

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return serve(ctx, server)
}

// serve はHTTPサーバーを起動し、ctxのキャンセルでグレースフルシャットダウンする。
func serve(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はmigrateサブコマンドの動作（up / down / version）を実行する。
func runMigrate(cfg *config.Config, opts MigrateOptions) error {
	dbURL := maskDatabaseURL(cfg.DatabaseURL)

	switch opts.Action {
	case MigrateDown:
		slog.Warn("rolling back database migrations",
			slog.String("database_url", dbURL),
			slog.Int("steps", opts.Steps),
		)
		if err := database.RollbackMigrations(cfg.DatabaseURL, opts.Steps); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
	case MigrateVersion:
		sv, err := database.CurrentSchemaVersion(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		slog.Info("schema version",
			slog.Bool("applied", sv.Applied),
			slog.Uint64("version", uint64(sv.Version)),
			slog.Bool("dirty", sv.Dirty),
		)
		return nil
	default:
		slog.Info("applying database migrations", slog.String("database_url", dbURL))
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	slog.Info("database migrations completed", slog.String("action", string(opts.Action)))
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	return checkHealth(fmt.Sprintf("http://localhost:%s/health", port))
}

func checkHealth(healthURL string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(healthURL)
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
func maskDatabaseURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "***"
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
