package user

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hitoshi/automata/internal/auth"
	"github.com/hitoshi/automata/internal/model"
	"github.com/hitoshi/automata/internal/repository"
	"github.com/lib/pq"
)

// --- モック ---

type mockUserRepo struct {
	users    map[string]*model.User
	createFn func(ctx context.Context, user *model.User) error
	nextID   int64
}

func newMockUserRepo(existing ...*model.User) *mockUserRepo {
	m := &mockUserRepo{users: map[string]*model.User{}, nextID: 100}
	for _, u := range existing {
		m.users[u.Username] = u
	}
	return m
}

func (m *mockUserRepo) FindByID(_ context.Context, id int64) (*model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	return m.users[username], nil
}

func (m *mockUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, ok := m.users[username]
	return ok, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	m.nextID++
	user.ID = m.nextID
	m.users[user.Username] = user
	return nil
}

type mockHasher struct{}

func (mockHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }
func (mockHasher) Verify(plain, hash string) bool    { return hash == "hashed:"+plain }

// --- compile-time interface checks ---
var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ auth.PasswordHasher = mockHasher{}

var existingUser = &model.User{ID: 1, Username: "alice", Email: "alice@example.com"}

func assertAPIErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *model.APIError", err)
	}
	if apiErr.Code != code {
		t.Errorf("Code = %q, want %q", apiErr.Code, code)
	}
}

// --- テスト ---

func TestRegister_Success_HashesPasswordAndNormalisesEmail(t *testing.T) {
	repo := newMockUserRepo(existingUser)
	svc := NewService(repo, mockHasher{})

	u, err := svc.Register(context.Background(), RegisterInput{
		Username: "bobby",
		Email:    "Bobby@Example.com ",
		Password: "S3cret!pw",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID == 0 {
		t.Error("ID should be assigned")
	}
	if u.Email != "bobby@example.com" {
		t.Errorf("Email = %q, want normalised %q", u.Email, "bobby@example.com")
	}
	if u.PasswordHash != "hashed:S3cret!pw" {
		t.Errorf("PasswordHash = %q, want hashed value", u.PasswordHash)
	}
}

func TestRegister_EmailInUse(t *testing.T) {
	svc := NewService(newMockUserRepo(existingUser), mockHasher{})

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "other",
		Email:    "ALICE@example.com",
		Password: "S3cret!pw",
	})
	assertAPIErrorCode(t, err, model.ErrCodeEmailInUse)
}

func TestRegister_UsernameInUse(t *testing.T) {
	svc := NewService(newMockUserRepo(existingUser), mockHasher{})

	_, err := svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "new@example.com",
		Password: "S3cret!pw",
	})
	assertAPIErrorCode(t, err, model.ErrCodeUsernameInUse)
}

func TestRegister_RaceOnCreate_MapsConstraint(t *testing.T) {
	tests := []struct {
		constraint string
		wantCode   string
	}{
		{repository.ConstraintUsersEmail, model.ErrCodeEmailInUse},
		{repository.ConstraintUsersUsername, model.ErrCodeUsernameInUse},
	}
	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			repo := newMockUserRepo()
			repo.createFn = func(context.Context, *model.User) error {
				return fmt.Errorf("failed to insert user: %w", &repository.DuplicateError{Constraint: tt.constraint})
			}
			svc := NewService(repo, mockHasher{})

			_, err := svc.Register(context.Background(), RegisterInput{Username: "carol", Email: "c@example.com", Password: "S3cret!pw"})
			assertAPIErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestRegister_CreateError_Propagates(t *testing.T) {
	dbErr := &pq.Error{Code: "08006"}
	repo := newMockUserRepo()
	repo.createFn = func(context.Context, *model.User) error { return dbErr }
	svc := NewService(repo, mockHasher{})

	_, err := svc.Register(context.Background(), RegisterInput{Username: "carol", Email: "c@example.com", Password: "S3cret!pw"})
	if !errors.Is(err, dbErr) {
		t.Errorf("err = %v, want wrapped db error", err)
	}
}

func TestGet(t *testing.T) {
	svc := NewService(newMockUserRepo(existingUser), mockHasher{})

	u, err := svc.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Username != "alice" {
		t.Errorf("Username = %q, want alice", u.Username)
	}

	_, err = svc.Get(context.Background(), 999)
	assertAPIErrorCode(t, err, model.ErrCodeUserNotFound)
}
