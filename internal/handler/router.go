package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/taskify/internal/metrics"
	"github.com/hitoshi/taskify/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	HealthChecker     HealthChecker

	// メトリクス（nilの場合は記録・公開しない）
	Metrics         metrics.MetricsCollector
	MetricsGatherer prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ユーザー
	UserService UserServiceInterface

	// TODO・タスク
	TodoService TodoServiceInterface
	TaskService TaskServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → Logging → Metrics → CORS → OriginGuard
//
// 認証ルート（/auth/*）は公開し、/v1/* は認証ミドルウェアのグループ内に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.AuthConfig.CookieSecure))
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewOriginGuardMiddleware(deps.CORSAllowedOrigin))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	userHandler := NewUserHandler(deps.UserService)
	todoHandler := NewTodoHandler(deps.TodoService)
	taskHandler := NewTaskHandler(deps.TaskService)

	// --- 認証不要のルート ---

	r.Get("/", Welcome)
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/v1/signup", authHandler.Signup)
		r.Post("/v1/signin", authHandler.Signin)
		r.Post("/guest/signin", authHandler.GuestSignin)
		r.Get("/check", authHandler.Check)
		r.Post("/logout", authHandler.Logout)
	})

	// --- 認証が必要なルート ---
	var rejections middleware.TokenRejectionRecorder
	if deps.Metrics != nil {
		rejections = deps.Metrics
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier, rejections))

		r.Get("/v1/user", userHandler.Me)

		// TODO管理
		r.Route("/v1/todos", func(r chi.Router) {
			r.Get("/", todoHandler.ListTodos)
			r.Post("/", todoHandler.CreateTodo)
			r.Get("/{todoId}", todoHandler.GetTodo)
			r.Delete("/{todoId}", todoHandler.DeleteTodo)
		})

		// タスク管理
		r.Route("/v1/todo/tasks", func(r chi.Router) {
			r.Post("/", taskHandler.CreateTask)
			r.Post("/{taskId}/status", taskHandler.UpdateTaskStatus)
			r.Delete("/{taskId}", taskHandler.DeleteTask)
		})
	})

	return r
}
