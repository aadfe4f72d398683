package repository

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrDuplicate は一意制約違反を表す。
// 具体的な制約名は DuplicateError から取得する。
var ErrDuplicate = errors.New("duplicate key")

// 一意制約名。マイグレーションで定義した名前と一致させる。
const (
	ConstraintUsersUsername     = "users_username_key"
	ConstraintUsersEmail        = "users_email_key"
	ConstraintProductsUserName  = "products_user_id_name_key"
	ConstraintTestCasesUserName = "test_cases_user_id_title_key"
)

// pqUniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const pqUniqueViolation = "23505"

// DuplicateError は一意制約違反の詳細を保持する。
type DuplicateError struct {
	Constraint string
	cause      error
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate key violates %s", e.Constraint)
}

// Is は errors.Is(err, ErrDuplicate) を満たす。
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

func (e *DuplicateError) Unwrap() error {
	return e.cause
}

// translateError はドライバエラーを一意制約違反に変換する。該当しない場合はそのまま返す。
func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
		return &DuplicateError{Constraint: pqErr.Constraint, cause: err}
	}
	return err
}

// DuplicateConstraint は err が一意制約違反であれば制約名を返す。
func DuplicateConstraint(err error) (string, bool) {
	var dupErr *DuplicateError
	if errors.As(err, &dupErr) {
		return dupErr.Constraint, true
	}
	return "", false
}
