// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/taskify/internal/auth"
	"github.com/hitoshi/taskify/internal/middleware"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Signup(ctx context.Context, fullName, email, password string) (*auth.Result, error)
	Signin(ctx context.Context, email, password string) (*auth.Result, error)
	GuestSignin(ctx context.Context) (*auth.Result, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieSecure bool
}

// AuthHandler はサインアップ・サインイン・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

type signupRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

type checkResponse struct {
	IsLoggedIn bool `json:"isLoggedIn"`
}

// Signup は新規ユーザーを登録し、セッションCookieを発行する。
// POST /auth/v1/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Signup(r.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusCreated, authResponse{
		Message: "User registered successfully!",
		User:    toUserResponse(result.User),
	})
}

// Signin はメールアドレスとパスワードで認証し、セッションCookieを発行する。
// POST /auth/v1/signin
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req signinRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.Signin(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, authResponse{
		Message: "User signed in successfully!",
		User:    toUserResponse(result.User),
	})
}

// GuestSignin はゲストアカウントでサインインする。
// POST /auth/guest/signin
func (h *AuthHandler) GuestSignin(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GuestSignin(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.setSessionCookie(w, result.Token)
	writeJSON(w, http.StatusOK, authResponse{
		Message: "User signed in successfully!",
		User:    toUserResponse(result.User),
	})
}

// Check はセッションCookieの有無を返す。トークンの検証は行わない。
// GET /auth/check
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(middleware.AccessTokenCookieName)
	writeJSON(w, http.StatusOK, checkResponse{IsLoggedIn: err == nil && cookie.Value != ""})
}

// Logout はセッションCookieをクリアする。Cookieが無くても成功する。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, h.sessionCookie("", -1))
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logout successfully"})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, h.sessionCookie(token, int(auth.SessionTTL/time.Second)))
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.AccessTokenCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteNoneMode,
	}
}
