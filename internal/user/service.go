// Package user はユーザー登録とプロフィール取得のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/automata/internal/auth"
	"github.com/hitoshi/automata/internal/model"
	"github.com/hitoshi/automata/internal/repository"
)

// RegisterInput はユーザー登録の入力。形式の検証はハンドラー層で済ませておく。
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Service はユーザー管理のサービス層。
type Service struct {
	userRepo repository.UserRepository
	hasher   auth.PasswordHasher
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, hasher auth.PasswordHasher) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// Register はユーザーを登録する。
// メールアドレスは小文字に正規化する。重複時は EMAIL_IN_USE / USERNAME_IN_USE を返す。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := model.NormalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)

	emailTaken, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("メールアドレスの確認に失敗しました: %w", err)
	}
	if emailTaken {
		return nil, model.NewEmailInUseError()
	}

	usernameTaken, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("ユーザー名の確認に失敗しました: %w", err)
	}
	if usernameTaken {
		return nil, model.NewUsernameInUseError()
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// 存在確認と作成の間に他リクエストが登録した場合
		if constraint, ok := repository.DuplicateConstraint(err); ok {
			if constraint == repository.ConstraintUsersEmail {
				return nil, model.NewEmailInUseError()
			}
			return nil, model.NewUsernameInUseError()
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("ユーザーを登録しました",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Get は指定IDのユーザーを取得する。存在しない場合は USER_NOT_FOUND を返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return user, nil
}
