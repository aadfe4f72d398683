package auth

import (
	"context"
	"fmt"

	"github.com/hitoshi/automata/internal/model"
)

// IdentityResolver は検証済みトークンのsubject（ユーザー名）からIdentityを解決する。
type IdentityResolver struct {
	users UserLookup
}

// NewIdentityResolver はIdentityResolverを生成する。
func NewIdentityResolver(users UserLookup) *IdentityResolver {
	return &IdentityResolver{users: users}
}

// Resolve はsubjectに対応するユーザーを検索し、Identityを返す。
// 権限モデルを持たないため、Authoritiesは常に空集合。
func (r *IdentityResolver) Resolve(ctx context.Context, subject string) (*model.Identity, error) {
	if subject == "" {
		return nil, ErrUserNotFound
	}

	user, err := r.users.FindByUsername(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, subject)
	}

	return &model.Identity{
		User:        user,
		Authorities: []model.Authority{},
	}, nil
}
