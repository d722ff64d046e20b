// Package model はドメインモデルを定義する。
package model

import "time"

// RoleUser は一般ユーザーのロール。現状ロールはこの1種類のみ。
const RoleUser = "user"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptダイジェストで、APIレスポンスには決して含めない。
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser はクライアントに返却してよいユーザー情報のみを保持する。
type PublicUser struct {
	ID       string
	FullName string
	Email    string
}

// Public はパスワードダイジェストを除いた公開ビューを返す。
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
	}
}

// Claims はセッショントークンに含まれるクレームを表す。
// 永続化されず、署名済みトークンの中にのみ存在する。
type Claims struct {
	UserID    string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
