// Package auth はパスワード認証、セッショントークンの発行・検証を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/hitoshi/taskify/internal/metrics"
	"github.com/hitoshi/taskify/internal/model"
	"github.com/hitoshi/taskify/internal/repository"
	"github.com/hitoshi/taskify/internal/security"
)

// PasswordHasher はパスワードのハッシュ化と照合のインターフェース。
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenIssuer はセッショントークン発行のインターフェース。
type TokenIssuer interface {
	Issue(userID, role string, ttl time.Duration) (string, error)
}

// AuthEventRecorder は認証イベントの記録インターフェース。
type AuthEventRecorder interface {
	RecordAuthEvent(event, outcome string)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	GuestEmail    string
	GuestPassword string
	GuestFullName string
}

// Result はサインアップ・サインイン成功時の戻り値。
// Tokenはハンドラーでクッキーに設定する。
type Result struct {
	Token string
	User  model.PublicUser
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo  repository.UserRepository
	hasher    PasswordHasher
	tokens    TokenIssuer
	sanitizer security.TextSanitizer
	recorder  AuthEventRecorder
	config    ServiceConfig
	now       func() time.Time
}

// NewService はServiceを生成する。recorderはnilでもよい。
func NewService(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	sanitizer security.TextSanitizer,
	recorder AuthEventRecorder,
	config ServiceConfig,
) *Service {
	if config.GuestFullName == "" {
		config.GuestFullName = "Guest User"
	}
	return &Service{
		userRepo:  userRepo,
		hasher:    hasher,
		tokens:    tokens,
		sanitizer: sanitizer,
		recorder:  recorder,
		config:    config,
		now:       time.Now,
	}
}

// Signup は新規ユーザーを登録し、セッショントークンを発行する。
func (s *Service) Signup(ctx context.Context, fullName, email, password string) (*Result, error) {
	fullName = s.sanitizer.Sanitize(fullName)
	email = normalizeEmail(email)

	if fullName == "" || email == "" || strings.TrimSpace(password) == "" {
		s.record(metrics.EventSignup, metrics.OutcomeValidationError)
		return nil, model.NewValidationError("All fields are required")
	}
	if utf8.RuneCountInString(email) > MaxEmailLength {
		s.record(metrics.EventSignup, metrics.OutcomeValidationError)
		return nil, model.NewValidationError(fmt.Sprintf("Email must be at most %d characters", MaxEmailLength))
	}
	if len(password) > MaxPasswordBytes {
		s.record(metrics.EventSignup, metrics.OutcomeValidationError)
		return nil, model.NewValidationError(fmt.Sprintf("Password must be at most %d bytes", MaxPasswordBytes))
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.record(metrics.EventSignup, metrics.OutcomeError)
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		s.record(metrics.EventSignup, metrics.OutcomeConflict)
		return nil, model.NewEmailConflictError()
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		s.record(metrics.EventSignup, metrics.OutcomeError)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		ID:           uuid.New().String(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: digest,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			s.record(metrics.EventSignup, metrics.OutcomeConflict)
			return nil, model.NewEmailConflictError()
		}
		s.record(metrics.EventSignup, metrics.OutcomeError)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	result, err := s.issue(user)
	if err != nil {
		s.record(metrics.EventSignup, metrics.OutcomeError)
		return nil, err
	}

	slog.Info("user registered", slog.String("user_id", user.ID))
	s.record(metrics.EventSignup, metrics.OutcomeSuccess)
	return result, nil
}

// Signin はメールアドレスとパスワードで認証し、セッショントークンを発行する。
// メールアドレス未登録とパスワード不一致は同一のエラーを返す。
func (s *Service) Signin(ctx context.Context, email, password string) (*Result, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		s.record(metrics.EventSignin, metrics.OutcomeValidationError)
		return nil, model.NewValidationError("Email and password are required")
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.record(metrics.EventSignin, metrics.OutcomeError)
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil || !s.hasher.Verify(password, user.PasswordHash) {
		s.record(metrics.EventSignin, metrics.OutcomeInvalidCredentials)
		return nil, model.NewInvalidCredentialsError()
	}

	result, err := s.issue(user)
	if err != nil {
		s.record(metrics.EventSignin, metrics.OutcomeError)
		return nil, err
	}

	slog.Info("user signed in", slog.String("user_id", user.ID))
	s.record(metrics.EventSignin, metrics.OutcomeSuccess)
	return result, nil
}

// GuestSignin は設定済みのゲストアカウントでサインインする。
// 失敗理由に関わらずクライアントには内部エラーとして返し、原因はログにのみ記録する。
func (s *Service) GuestSignin(ctx context.Context) (*Result, error) {
	fail := func(reason string, err error) (*Result, error) {
		attrs := []any{slog.String("reason", reason)}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}
		slog.Error("guest signin failed", attrs...)
		s.record(metrics.EventGuestSignin, metrics.OutcomeError)
		return nil, model.NewInternalError("Failed to sign in guest user")
	}

	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(s.config.GuestEmail))
	if err != nil {
		return fail("lookup", err)
	}
	if user == nil {
		return fail("guest user not found", nil)
	}
	if !s.hasher.Verify(s.config.GuestPassword, user.PasswordHash) {
		return fail("guest password mismatch", nil)
	}

	result, err := s.issue(user)
	if err != nil {
		return fail("token", err)
	}

	s.record(metrics.EventGuestSignin, metrics.OutcomeSuccess)
	return result, nil
}

// EnsureGuestUser はゲストアカウントが存在しない場合に作成する。
// 起動時に呼び出し、新規データベースでもゲストサインインが利用できるようにする。
func (s *Service) EnsureGuestUser(ctx context.Context) error {
	email := normalizeEmail(s.config.GuestEmail)
	if email == "" || s.config.GuestPassword == "" {
		return errors.New("guest credentials are not configured")
	}

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to find guest user: %w", err)
	}
	if existing != nil {
		return nil
	}

	digest, err := s.hasher.Hash(s.config.GuestPassword)
	if err != nil {
		return fmt.Errorf("failed to hash guest password: %w", err)
	}

	now := s.now()
	guest := &model.User{
		ID:           uuid.New().String(),
		FullName:     s.config.GuestFullName,
		Email:        email,
		PasswordHash: digest,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, guest); err != nil {
		// 複数インスタンスの同時起動
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil
		}
		return fmt.Errorf("failed to create guest user: %w", err)
	}

	slog.Info("guest user created", slog.String("user_id", guest.ID))
	return nil
}

// CurrentUser は認証済みユーザーの公開情報を返す。
func (s *Service) CurrentUser(ctx context.Context, userID string) (*model.PublicUser, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, model.NewUserNotFoundError()
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	public := user.Public()
	return &public, nil
}

// issue はユーザーのセッショントークンを発行する。
func (s *Service) issue(user *model.User) (*Result, error) {
	token, err := s.tokens.Issue(user.ID, model.RoleUser, SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}
	return &Result{Token: token, User: user.Public()}, nil
}

func (s *Service) record(event, outcome string) {
	if s.recorder != nil {
		s.recorder.RecordAuthEvent(event, outcome)
	}
}

// MaxEmailLength はメールアドレスの最大文字数（users.emailの列長と一致させる）。
const MaxEmailLength = 320

// normalizeEmail は前後の空白を除去し小文字化する。
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
