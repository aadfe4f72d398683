package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/automata/internal/model"
)

// PostgresProductRepo はPostgreSQLを使用した製品リポジトリ。
type PostgresProductRepo struct {
	db *sql.DB
}

// NewPostgresProductRepo はPostgresProductRepoを生成する。
func NewPostgresProductRepo(db *sql.DB) *PostgresProductRepo {
	return &PostgresProductRepo{db: db}
}

const productColumns = `id, name, price, user_id, created_on, updated_on`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	p := &model.Product{}
	if err := row.Scan(&p.ID, &p.Name, &p.Price, &p.UserID, &p.CreatedOn, &p.UpdatedOn); err != nil {
		return nil, err
	}
	return p, nil
}

// Create は製品を作成し、IDと日時をproductに設定する。
func (r *PostgresProductRepo) Create(ctx context.Context, product *model.Product) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO products (name, price, user_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_on, updated_on`,
		product.Name, product.Price, product.UserID,
	).Scan(&product.ID, &product.CreatedOn, &product.UpdatedOn)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", translateError(err))
	}
	return nil
}

// Update は製品の名前と価格を更新する。対象が無い場合はfalseを返す。
func (r *PostgresProductRepo) Update(ctx context.Context, product *model.Product) (bool, error) {
	err := r.db.QueryRowContext(ctx,
		`UPDATE products SET name = $1, price = $2, updated_on = now()
		 WHERE id = $3 AND user_id = $4
		 RETURNING created_on, updated_on`,
		product.Name, product.Price, product.ID, product.UserID,
	).Scan(&product.CreatedOn, &product.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to update product: %w", translateError(err))
	}
	return true, nil
}

// FindByID は所有者の製品を取得する。見つからない場合はnilを返す。
func (r *PostgresProductRepo) FindByID(ctx context.Context, userID, id int64) (*model.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}
	return p, nil
}

// ListByUserID は所有者の製品を作成日時の降順で返し、総件数も返す。
func (r *PostgresProductRepo) ListByUserID(ctx context.Context, userID int64, page model.PageRequest) ([]*model.Product, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM products WHERE user_id = $1`,
		userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products
		 WHERE user_id = $1
		 ORDER BY created_on DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		userID, page.Size, page.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, total, nil
}

// Delete は所有者の製品を削除する。対象が無い場合はfalseを返す。
func (r *PostgresProductRepo) Delete(ctx context.Context, userID, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM products WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ ProductRepository = (*PostgresProductRepo)(nil)
