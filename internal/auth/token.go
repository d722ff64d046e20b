package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/taskify/internal/model"
)

// SessionTTL はセッショントークンの有効期間。リフレッシュは行わない。
const SessionTTL = time.Hour

// トークン検証失敗の種別
var (
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenInvalidSignature = errors.New("token signature invalid")
	ErrTokenExpired          = errors.New("token expired")
)

// sessionClaims はJWTペイロードの構造。
type sessionClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec はHS256署名のセッショントークンを発行・検証する。
// 秘密鍵は生成後に変更されないため、複数goroutineから同時に利用してよい。
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// NewTokenCodec はTokenCodecを生成する。秘密鍵が空の場合はエラーを返す。
func NewTokenCodec(secret string) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	return &TokenCodec{
		secret: []byte(secret),
		now:    time.Now,
	}, nil
}

// WithClock は時刻取得関数を差し替えたTokenCodecを返す。テスト用。
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	return &TokenCodec{secret: c.secret, now: now}
}

// Issue は指定ユーザーのセッショントークンを発行する。
func (c *TokenCodec) Issue(userID, role string, ttl time.Duration) (string, error) {
	now := c.now()
	claims := sessionClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiryCeil(now.Add(ttl))),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// expiryCeil はexpを秒単位に切り上げる。
// NumericDateは秒精度のため、切り捨てると発行時刻+TTLより前に失効してしまう。
func expiryCeil(t time.Time) time.Time {
	if floor := t.Truncate(time.Second); floor.Before(t) {
		return floor.Add(time.Second)
	}
	return t
}

// Verify はトークンの署名と有効期限を検証し、クレームを返す。
// 失敗時はErrTokenMalformed, ErrTokenInvalidSignature, ErrTokenExpiredのいずれかを返す。
func (c *TokenCodec) Verify(token string) (*model.Claims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenInvalidSignature
		default:
			return nil, ErrTokenMalformed
		}
	}

	if claims.UserID == "" {
		return nil, ErrTokenMalformed
	}

	result := &model.Claims{
		UserID: claims.UserID,
		Role:   claims.Role,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		result.ExpiresAt = claims.ExpiresAt.Time
	}
	return result, nil
}

// FailureReason はVerifyが返したエラーをメトリクス・ログ用の短い理由文字列に変換する。
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenInvalidSignature):
		return "invalid_signature"
	default:
		return "malformed"
	}
}
