// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hitoshi/taskify/internal/auth"
	"github.com/hitoshi/taskify/internal/model"
)

// AccessTokenCookieName はセッショントークンを保持するCookieの名前。
const AccessTokenCookieName = "accessToken"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// identityContextKey はリクエストコンテキストに認証済みIdentityを格納するためのキー。
var identityContextKey = contextKey("identity")

// Identity は認証ゲートが解決したリクエスト主体。
type Identity struct {
	UserID string
	Role   string
}

// TokenVerifier はセッショントークン検証のインターフェース。
type TokenVerifier interface {
	Verify(token string) (*model.Claims, error)
}

// TokenRejectionRecorder はトークン拒否を記録するインターフェース。
type TokenRejectionRecorder interface {
	RecordTokenRejected(reason string)
}

// NewAuthMiddleware はaccessToken Cookieのセッショントークンを検証するミドルウェアを返す。
// 検証に成功した場合はIdentityをリクエストコンテキストに注入する。
// 資格情報ストアには一切アクセスしない。
// recorderはnilでもよい。
func NewAuthMiddleware(verifier TokenVerifier, recorder TokenRejectionRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(AccessTokenCookieName)
			if err != nil || cookie.Value == "" {
				if recorder != nil {
					recorder.RecordTokenRejected("missing")
				}
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError("token required"))
				return
			}

			claims, err := verifier.Verify(cookie.Value)
			if err != nil {
				reason := auth.FailureReason(err)
				slog.Warn("session token rejected",
					slog.String("reason", reason),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				if recorder != nil {
					recorder.RecordTokenRejected(reason)
				}
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError("invalid or expired token"))
				return
			}

			identity := Identity{UserID: claims.UserID, Role: claims.Role}
			setRequestUserID(r.Context(), identity.UserID)
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// IdentityFromContext はリクエストコンテキストからIdentityを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	if !ok || identity.UserID == "" {
		return Identity{}, false
	}
	return identity, true
}

// UserIDFromContext はリクエストコンテキストからユーザーIDを取得する。
func UserIDFromContext(ctx context.Context) (string, error) {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return "", fmt.Errorf("user ID not found in context")
	}
	return identity.UserID, nil
}

// ContextWithIdentity はコンテキストにIdentityを注入する。
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// ContextWithUserID はコンテキストにユーザーロールのIdentityを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return ContextWithIdentity(ctx, Identity{UserID: userID, Role: model.RoleUser})
}
