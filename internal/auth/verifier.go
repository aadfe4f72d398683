package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/hitoshi/automata/internal/model"
)

// UserLookup はユーザー名でユーザーを検索する。見つからない場合はnilを返す。
type UserLookup interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

// CredentialVerifier はログイン時のユーザー名とパスワードを照合する。
type CredentialVerifier struct {
	users  UserLookup
	hasher PasswordHasher

	dummyOnce sync.Once
	dummyHash string
}

// NewCredentialVerifier はCredentialVerifierを生成する。
func NewCredentialVerifier(users UserLookup, hasher PasswordHasher) *CredentialVerifier {
	return &CredentialVerifier{users: users, hasher: hasher}
}

// Verify はユーザー名とパスワードを照合し、一致すればユーザーを返す。
// ユーザー不在とパスワード不一致はどちらも ErrBadCredentials になる。
// ユーザー不在の場合もダミーハッシュとの照合を行い、応答時間を揃える。
func (v *CredentialVerifier) Verify(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" || password == "" {
		return nil, ErrBadCredentials
	}

	user, err := v.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		v.hasher.Verify(password, v.placeholderHash())
		return nil, ErrBadCredentials
	}

	if !v.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrBadCredentials
	}

	return user, nil
}

// placeholderHash は存在しないユーザーとの照合に使うハッシュを初回のみ生成する。
// 実ユーザーと同じハッシャー・コストで生成する。
func (v *CredentialVerifier) placeholderHash() string {
	v.dummyOnce.Do(func() {
		hash, err := v.hasher.Hash("automata-placeholder-password")
		if err == nil {
			v.dummyHash = hash
		}
	})
	return v.dummyHash
}
