// Package auth はログイン、パスワード照合、トークンからのIdentity解決を提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/automata/internal/metrics"
	"github.com/hitoshi/automata/internal/model"
	"github.com/hitoshi/automata/internal/token"
)

// TokenIssuer はユーザーに対してアクセストークンを発行する。
type TokenIssuer interface {
	Issue(user *model.User) (*token.AccessToken, error)
}

// UserExistence はメールアドレス・ユーザー名の登録有無を確認する。
type UserExistence interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	verifier *CredentialVerifier
	issuer   TokenIssuer
	users    UserExistence
	metrics  metrics.MetricsCollector
}

// NewService はServiceを生成する。collectorがnilの場合はメトリクスを記録しない。
func NewService(
	verifier *CredentialVerifier,
	issuer TokenIssuer,
	users UserExistence,
	collector metrics.MetricsCollector,
) *Service {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	return &Service{
		verifier: verifier,
		issuer:   issuer,
		users:    users,
		metrics:  collector,
	}
}

// Login はユーザー名とパスワードを照合し、アクセストークンを発行する。
// 照合に失敗した場合は LOGIN_FAILED の APIError を返す。
func (s *Service) Login(ctx context.Context, username, password string) (*token.AccessToken, error) {
	user, err := s.verifier.Verify(ctx, username, password)
	if err != nil {
		s.metrics.RecordLogin(false)
		if errors.Is(err, ErrBadCredentials) {
			slog.Warn("login failed", slog.String("username", username))
			return nil, model.NewLoginFailedError()
		}
		return nil, fmt.Errorf("failed to verify credentials: %w", err)
	}

	at, err := s.issuer.Issue(user)
	if err != nil {
		s.metrics.RecordLogin(false)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.RecordLogin(true)
	s.metrics.RecordTokenIssued()
	slog.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return at, nil
}

// IsEmailAvailable はメールアドレスが未登録であればtrueを返す。
// 登録時と同じ正規化を行ってから照会する。
func (s *Service) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	exists, err := s.users.ExistsByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		return false, fmt.Errorf("failed to check email availability: %w", err)
	}
	return !exists, nil
}

// IsUsernameAvailable はユーザー名が未登録であればtrueを返す。
func (s *Service) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("failed to check username availability: %w", err)
	}
	return !exists, nil
}
