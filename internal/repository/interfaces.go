// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/automata/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByUsername はユーザー名でユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// ExistsByEmail はメールアドレスが登録済みかどうかを返す。
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByUsername はユーザー名が登録済みかどうかを返す。
	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// Create はユーザーを作成し、採番されたIDと作成日時をuserに設定する。
	// 一意制約違反の場合は *DuplicateError を返す。
	Create(ctx context.Context, user *model.User) error
}

// ProductRepository は製品データの永続化インターフェース。
// すべての操作は所有者のユーザーIDで絞り込む。
type ProductRepository interface {
	// Create は製品を作成し、IDと日時をproductに設定する。
	Create(ctx context.Context, product *model.Product) error

	// Update は製品の名前と価格を更新する。対象が無い場合はfalseを返す。
	Update(ctx context.Context, product *model.Product) (bool, error)

	// FindByID は所有者の製品を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, userID, id int64) (*model.Product, error)

	// ListByUserID は所有者の製品を作成日時の降順で返し、総件数も返す。
	ListByUserID(ctx context.Context, userID int64, page model.PageRequest) ([]*model.Product, int64, error)

	// Delete は所有者の製品を削除する。対象が無い場合はfalseを返す。
	Delete(ctx context.Context, userID, id int64) (bool, error)
}

// TestCaseRepository はテストケースデータの永続化インターフェース。
// すべての操作は所有者のユーザーIDで絞り込む。
type TestCaseRepository interface {
	// Create はテストケースを作成し、IDと日時をtestCaseに設定する。
	Create(ctx context.Context, testCase *model.TestCase) error

	// Update はタイトル・説明・状態・優先度を更新する。対象が無い場合はfalseを返す。
	Update(ctx context.Context, testCase *model.TestCase) (bool, error)

	// FindByID は所有者のテストケースを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, userID, id int64) (*model.TestCase, error)

	// ListByUserID は所有者のテストケースを作成日時の降順で返し、総件数も返す。
	ListByUserID(ctx context.Context, userID int64, page model.PageRequest) ([]*model.TestCase, int64, error)

	// Delete は所有者のテストケースを削除する。対象が無い場合はfalseを返す。
	Delete(ctx context.Context, userID, id int64) (bool, error)
}
