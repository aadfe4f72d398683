// Package product は所有者単位の製品管理を提供する。
package product

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"unicode/utf8"

	"github.com/hitoshi/automata/internal/model"
	"github.com/hitoshi/automata/internal/repository"
	"github.com/hitoshi/automata/internal/security"
)

// 製品の入力制約。productsテーブルの列定義（VARCHAR(100), NUMERIC(12,2)）と一致させる。
const (
	MaxNameLength = 100
	MinPrice      = 0.01
	MaxPrice      = 9999999999.99
)

// Input は製品の作成・更新の入力。
type Input struct {
	Name  string
	Price float64
}

// Service は製品管理のサービス層。全ての操作は所有者のユーザーIDで絞り込む。
type Service struct {
	repo      repository.ProductRepository
	sanitizer security.Sanitizer
}

// NewService はServiceを生成する。
func NewService(repo repository.ProductRepository, sanitizer security.Sanitizer) *Service {
	return &Service{repo: repo, sanitizer: sanitizer}
}

// normalize は名前をサニタイズし、価格を小数点以下2桁に丸める。
func (s *Service) normalize(in Input) (Input, error) {
	name := s.sanitizer.Text(in.Name)
	if name == "" {
		return Input{}, model.NewValidationError("name must not be blank")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return Input{}, model.NewValidationError(fmt.Sprintf("name must be at most %d characters", MaxNameLength))
	}
	price := math.Round(in.Price*100) / 100
	if price < MinPrice {
		return Input{}, model.NewValidationError(fmt.Sprintf("price must be at least %.2f", MinPrice))
	}
	if price > MaxPrice {
		return Input{}, model.NewValidationError(fmt.Sprintf("price must be at most %.2f", MaxPrice))
	}
	return Input{Name: name, Price: price}, nil
}

// Create は製品を作成する。同じ所有者が同名の製品を持つ場合は DUPLICATE_PRODUCT を返す。
func (s *Service) Create(ctx context.Context, userID int64, in Input) (*model.Product, error) {
	in, err := s.normalize(in)
	if err != nil {
		return nil, err
	}

	p := &model.Product{Name: in.Name, Price: in.Price, UserID: userID}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateProductError()
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	slog.Info("product created",
		slog.Int64("user_id", userID),
		slog.Int64("product_id", p.ID),
	)
	return p, nil
}

// Update は製品の名前と価格を更新する。
func (s *Service) Update(ctx context.Context, userID, id int64, in Input) (*model.Product, error) {
	in, err := s.normalize(in)
	if err != nil {
		return nil, err
	}

	p := &model.Product{ID: id, Name: in.Name, Price: in.Price, UserID: userID}
	found, err := s.repo.Update(ctx, p)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateProductError()
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if !found {
		return nil, model.NewProductNotFoundError(id)
	}
	return p, nil
}

// Get は所有者の製品を取得する。
func (s *Service) Get(ctx context.Context, userID, id int64) (*model.Product, error) {
	p, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if p == nil {
		return nil, model.NewProductNotFoundError(id)
	}
	return p, nil
}

// List は所有者の製品を新しい順にページングして返す。
func (s *Service) List(ctx context.Context, userID int64, page model.PageRequest) (model.Page[*model.Product], error) {
	products, total, err := s.repo.ListByUserID(ctx, userID, page)
	if err != nil {
		return model.Page[*model.Product]{}, fmt.Errorf("failed to list products: %w", err)
	}
	return model.NewPage(products, page, total), nil
}

// Delete は所有者の製品を削除する。
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	deleted, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if !deleted {
		return model.NewProductNotFoundError(id)
	}

	slog.Info("product deleted",
		slog.Int64("user_id", userID),
		slog.Int64("product_id", id),
	)
	return nil
}
