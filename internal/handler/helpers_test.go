package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/taskify/internal/auth"
	"github.com/hitoshi/taskify/internal/middleware"
	"github.com/hitoshi/taskify/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	signupFn      func(ctx context.Context, fullName, email, password string) (*auth.Result, error)
	signinFn      func(ctx context.Context, email, password string) (*auth.Result, error)
	guestSigninFn func(ctx context.Context) (*auth.Result, error)
}

func (m *mockAuthService) Signup(ctx context.Context, fullName, email, password string) (*auth.Result, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, fullName, email, password)
	}
	return nil, nil
}

func (m *mockAuthService) Signin(ctx context.Context, email, password string) (*auth.Result, error) {
	if m.signinFn != nil {
		return m.signinFn(ctx, email, password)
	}
	return nil, nil
}

func (m *mockAuthService) GuestSignin(ctx context.Context) (*auth.Result, error) {
	if m.guestSigninFn != nil {
		return m.guestSigninFn(ctx)
	}
	return nil, nil
}

type mockUserService struct {
	currentUserFn func(ctx context.Context, userID string) (*model.PublicUser, error)
}

func (m *mockUserService) CurrentUser(ctx context.Context, userID string) (*model.PublicUser, error) {
	if m.currentUserFn != nil {
		return m.currentUserFn(ctx, userID)
	}
	return nil, model.NewUserNotFoundError()
}

type mockTodoService struct {
	listFn   func(ctx context.Context, ownerID string) ([]model.Todo, error)
	getFn    func(ctx context.Context, ownerID, todoID string) (*model.TodoDetail, error)
	createFn func(ctx context.Context, ownerID, title string) (*model.Todo, error)
	deleteFn func(ctx context.Context, ownerID, todoID string) (*model.Todo, error)
}

func (m *mockTodoService) List(ctx context.Context, ownerID string) ([]model.Todo, error) {
	if m.listFn != nil {
		return m.listFn(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockTodoService) Get(ctx context.Context, ownerID, todoID string) (*model.TodoDetail, error) {
	if m.getFn != nil {
		return m.getFn(ctx, ownerID, todoID)
	}
	return nil, model.NewTodoNotFoundError()
}

func (m *mockTodoService) Create(ctx context.Context, ownerID, title string) (*model.Todo, error) {
	if m.createFn != nil {
		return m.createFn(ctx, ownerID, title)
	}
	return nil, nil
}

func (m *mockTodoService) Delete(ctx context.Context, ownerID, todoID string) (*model.Todo, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ownerID, todoID)
	}
	return nil, model.NewTodoNotFoundError()
}

type mockTaskService struct {
	createFn       func(ctx context.Context, ownerID, todoID, title, status string) (*model.Task, error)
	updateStatusFn func(ctx context.Context, ownerID, taskID, status string) (*model.Task, error)
	deleteFn       func(ctx context.Context, ownerID, taskID string) (*model.Task, error)
}

func (m *mockTaskService) Create(ctx context.Context, ownerID, todoID, title, status string) (*model.Task, error) {
	if m.createFn != nil {
		return m.createFn(ctx, ownerID, todoID, title, status)
	}
	return nil, nil
}

func (m *mockTaskService) UpdateStatus(ctx context.Context, ownerID, taskID, status string) (*model.Task, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, ownerID, taskID, status)
	}
	return nil, model.NewTaskNotFoundError()
}

func (m *mockTaskService) Delete(ctx context.Context, ownerID, taskID string) (*model.Task, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ownerID, taskID)
	}
	return nil, model.NewTaskNotFoundError()
}

// compile-time interface check
var (
	_ AuthServiceInterface = (*auth.Service)(nil)
	_ UserServiceInterface = (*auth.Service)(nil)
	_ AuthServiceInterface = (*mockAuthService)(nil)
	_ TodoServiceInterface = (*mockTodoService)(nil)
	_ TaskServiceInterface = (*mockTaskService)(nil)
)

// --- ヘルパー ---

// withUserID はテスト用に認証済みユーザーIDをコンテキストに注入するヘルパー。
func withUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.ContextWithUserID(r.Context(), userID))
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// jsonRequest はJSONボディ付きのリクエストを生成する。
func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// parseErrorBody はレスポンスボディからエラーレスポンスをパースするヘルパー。
func parseErrorBody(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return body
}

// decodeBody はレスポンスボディを任意の型にデコードするヘルパー。
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response: %v (body=%s)", err, w.Body.String())
	}
}

// findCookie はレスポンスから指定名のCookieを探す。
func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
