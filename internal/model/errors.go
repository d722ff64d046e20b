package model

import "fmt"

// ErrorKind はエラーの分類を表す。HTTP境界でステータスコードへ変換される。
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindUnauthenticated    ErrorKind = "unauthenticated"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindConflict           ErrorKind = "conflict"
	KindNotFound           ErrorKind = "not_found"
	KindInternal           ErrorKind = "internal"
)

// APIError はサービス層が返すタグ付きエラー。
// Messageはそのままクライアントに返却されるため、内部詳細を含めてはならない。
type APIError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeUnauthenticated    = "UNAUTHENTICATED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeEmailRegistered    = "EMAIL_ALREADY_REGISTERED"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeTodoNotFound       = "TODO_NOT_FOUND"
	ErrCodeTaskNotFound       = "TASK_NOT_FOUND"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// NewUnauthenticatedError は認証トークン不備のエラーを生成する。
func NewUnauthenticatedError(message string) *APIError {
	return &APIError{
		Kind:    KindUnauthenticated,
		Code:    ErrCodeUnauthenticated,
		Message: message,
	}
}

// NewInvalidCredentialsError はサインイン失敗エラーを生成する。
// メールアドレス未登録とパスワード不一致を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Kind:    KindInvalidCredentials,
		Code:    ErrCodeInvalidCredentials,
		Message: "Invalid email or password",
	}
}

// NewEmailConflictError はメールアドレス重複エラーを生成する。
func NewEmailConflictError() *APIError {
	return &APIError{
		Kind:    KindConflict,
		Code:    ErrCodeEmailRegistered,
		Message: "This email is already registered.",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Code:    ErrCodeUserNotFound,
		Message: "User not found",
	}
}

// NewTodoNotFoundError はTODOが見つからない場合のエラーを生成する。
// 他ユーザー所有のTODOもこのエラーになる。
func NewTodoNotFoundError() *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Code:    ErrCodeTodoNotFound,
		Message: "Todo not found",
	}
}

// NewTaskNotFoundError はタスクが見つからない場合のエラーを生成する。
func NewTaskNotFoundError() *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Code:    ErrCodeTaskNotFound,
		Message: "Task not found",
	}
}

// NewInternalError は内部エラーを生成する。
// messageはクライアントに返す汎用文言で、原因はログにのみ記録すること。
func NewInternalError(message string) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Code:    ErrCodeInternal,
		Message: message,
	}
}
