// Package model はドメインモデルを定義する。
package model

import (
	"strings"
	"time"
)

// User はサービス利用ユーザーを表す。
// PasswordHashはJSONに出力しない。
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedOn    time.Time `json:"createdOn"`
}

// NormalizeEmail は保存・検索に使う形へメールアドレスを揃える（前後空白除去と小文字化）。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authority はユーザーに付与された権限を表す。
// 現状は権限モデルを持たないため、常に空集合となる。
type Authority string

// Identity はリクエスト単位で解決された認証済みプリンシパル。
// リクエストコンテキストにのみ保持し、リクエスト間で共有しない。
type Identity struct {
	User        *User
	Authorities []Authority
}
