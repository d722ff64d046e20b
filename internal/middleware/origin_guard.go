package middleware

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/taskify/internal/model"
)

// ErrCodeForbiddenOrigin は許可されていないオリジンからの状態変更リクエストを表す。
const ErrCodeForbiddenOrigin = "FORBIDDEN_ORIGIN"

// NewOriginGuardMiddleware は状態変更リクエストのOriginヘッダーを検証するミドルウェアを返す。
// セッションCookieはSameSite=Noneで送信されるため、他サイトからのPOST/DELETEを拒否する。
// Originヘッダーが無いリクエスト（curl等の非ブラウザクライアント）は通過させる。
func NewOriginGuardMiddleware(allowedOrigin string) func(next http.Handler) http.Handler {
	allowed := normalizeOrigin(allowedOrigin)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			origin := r.Header.Get("Origin")
			if origin != "" && normalizeOrigin(origin) != allowed {
				slog.Warn("cross-origin request rejected",
					slog.String("origin", origin),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				WriteErrorResponse(w, http.StatusForbidden, &model.APIError{
					Code:    ErrCodeForbiddenOrigin,
					Message: "origin not allowed",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isSafeMethod はHTTPメソッドが安全（読み取り専用）かどうかを判定する。
func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
