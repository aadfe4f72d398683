package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/automata/internal/model"
)

// PostgresTestCaseRepo はPostgreSQLを使用したテストケースリポジトリ。
type PostgresTestCaseRepo struct {
	db *sql.DB
}

// NewPostgresTestCaseRepo はPostgresTestCaseRepoを生成する。
func NewPostgresTestCaseRepo(db *sql.DB) *PostgresTestCaseRepo {
	return &PostgresTestCaseRepo{db: db}
}

const testCaseColumns = `id, title, description, status, priority, user_id, created_on, updated_on`

func scanTestCase(row rowScanner) (*model.TestCase, error) {
	tc := &model.TestCase{}
	err := row.Scan(&tc.ID, &tc.Title, &tc.Description, &tc.Status, &tc.Priority,
		&tc.UserID, &tc.CreatedOn, &tc.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return tc, nil
}

// Create はテストケースを作成し、IDと日時をtestCaseに設定する。
func (r *PostgresTestCaseRepo) Create(ctx context.Context, testCase *model.TestCase) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO test_cases (title, description, status, priority, user_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_on, updated_on`,
		testCase.Title, testCase.Description, testCase.Status, testCase.Priority, testCase.UserID,
	).Scan(&testCase.ID, &testCase.CreatedOn, &testCase.UpdatedOn)
	if err != nil {
		return fmt.Errorf("failed to insert test case: %w", translateError(err))
	}
	return nil
}

// Update はタイトル・説明・状態・優先度を更新する。対象が無い場合はfalseを返す。
func (r *PostgresTestCaseRepo) Update(ctx context.Context, testCase *model.TestCase) (bool, error) {
	err := r.db.QueryRowContext(ctx,
		`UPDATE test_cases
		 SET title = $1, description = $2, status = $3, priority = $4, updated_on = now()
		 WHERE id = $5 AND user_id = $6
		 RETURNING created_on, updated_on`,
		testCase.Title, testCase.Description, testCase.Status, testCase.Priority,
		testCase.ID, testCase.UserID,
	).Scan(&testCase.CreatedOn, &testCase.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to update test case: %w", translateError(err))
	}
	return true, nil
}

// FindByID は所有者のテストケースを取得する。見つからない場合はnilを返す。
func (r *PostgresTestCaseRepo) FindByID(ctx context.Context, userID, id int64) (*model.TestCase, error) {
	tc, err := scanTestCase(r.db.QueryRowContext(ctx,
		`SELECT `+testCaseColumns+` FROM test_cases WHERE id = $1 AND user_id = $2`,
		id, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find test case by ID: %w", err)
	}
	return tc, nil
}

// ListByUserID は所有者のテストケースを作成日時の降順で返し、総件数も返す。
func (r *PostgresTestCaseRepo) ListByUserID(ctx context.Context, userID int64, page model.PageRequest) ([]*model.TestCase, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM test_cases WHERE user_id = $1`,
		userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count test cases: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+testCaseColumns+` FROM test_cases
		 WHERE user_id = $1
		 ORDER BY created_on DESC, id DESC
		 LIMIT $2 OFFSET $3`,
		userID, page.Size, page.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list test cases: %w", err)
	}
	defer rows.Close()

	var testCases []*model.TestCase
	for rows.Next() {
		tc, err := scanTestCase(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan test case: %w", err)
		}
		testCases = append(testCases, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate test cases: %w", err)
	}

	return testCases, total, nil
}

// Delete は所有者のテストケースを削除する。対象が無い場合はfalseを返す。
func (r *PostgresTestCaseRepo) Delete(ctx context.Context, userID, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM test_cases WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete test case: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ TestCaseRepository = (*PostgresTestCaseRepo)(nil)
