package middleware

import (
	"context"
	"errors"

	"github.com/hitoshi/automata/internal/model"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// identityContextKey はリクエストコンテキストにIdentityを格納するためのキー。
var identityContextKey = contextKey("identity")

// ErrNoIdentity は認証済みIdentityがコンテキストに無いことを表す。
var ErrNoIdentity = errors.New("identity not found in context")

// ContextWithIdentity はコンテキストにIdentityを注入する。
// 認証ゲート以外ではテストで使用する。
func ContextWithIdentity(ctx context.Context, identity *model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext はリクエストコンテキストからIdentityを取得する。
// 認証ゲートを通過したリクエストでのみ有効。
func IdentityFromContext(ctx context.Context) (*model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*model.Identity)
	if !ok || identity == nil || identity.User == nil {
		return nil, false
	}
	return identity, true
}

// CurrentUser は認証済みユーザーを返す。
func CurrentUser(ctx context.Context) (*model.User, error) {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, ErrNoIdentity
	}
	return identity.User, nil
}

// CurrentAuthorities は認証済みユーザーの権限集合を返す。現状は常に空。
func CurrentAuthorities(ctx context.Context) ([]model.Authority, error) {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return nil, ErrNoIdentity
	}
	return identity.Authorities, nil
}

// identitySlot はロギングミドルウェアが用意するリクエスト単位の書き戻し先。
// 内側の認証ゲートが解決したユーザー名を外側のログに渡すために使う。
type identitySlot struct {
	username string
}

var identitySlotContextKey = contextKey("identity_slot")

func withIdentitySlot(ctx context.Context, slot *identitySlot) context.Context {
	return context.WithValue(ctx, identitySlotContextKey, slot)
}

// recordIdentity はIdentityをコンテキストに注入し、書き戻し先があればユーザー名を記録する。
func recordIdentity(ctx context.Context, identity *model.Identity) context.Context {
	if slot, ok := ctx.Value(identitySlotContextKey).(*identitySlot); ok && identity != nil && identity.User != nil {
		slot.username = identity.User.Username
	}
	return ContextWithIdentity(ctx, identity)
}
