package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/automata/internal/middleware"
	"github.com/hitoshi/automata/internal/model"
	"github.com/hitoshi/automata/internal/product"
	"github.com/hitoshi/automata/internal/testcase"
	"github.com/hitoshi/automata/internal/token"
	"github.com/hitoshi/automata/internal/user"
)

// --- モック定義 ---

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	loginFn             func(ctx context.Context, username, password string) (*token.AccessToken, error)
	emailAvailableFn    func(ctx context.Context, email string) (bool, error)
	usernameAvailableFn func(ctx context.Context, username string) (bool, error)
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*token.AccessToken, error) {
	return m.loginFn(ctx, username, password)
}

func (m *mockAuthService) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	return m.emailAvailableFn(ctx, email)
}

func (m *mockAuthService) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	return m.usernameAvailableFn(ctx, username)
}

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	registerFn func(ctx context.Context, in user.RegisterInput) (*model.User, error)
	getFn      func(ctx context.Context, id int64) (*model.User, error)
}

func (m *mockUserService) Register(ctx context.Context, in user.RegisterInput) (*model.User, error) {
	return m.registerFn(ctx, in)
}

func (m *mockUserService) Get(ctx context.Context, id int64) (*model.User, error) {
	return m.getFn(ctx, id)
}

// mockProductService はProductServiceInterfaceのモック実装。
type mockProductService struct {
	createFn func(ctx context.Context, userID int64, in product.Input) (*model.Product, error)
	updateFn func(ctx context.Context, userID, id int64, in product.Input) (*model.Product, error)
	getFn    func(ctx context.Context, userID, id int64) (*model.Product, error)
	listFn   func(ctx context.Context, userID int64, page model.PageRequest) (model.Page[*model.Product], error)
	deleteFn func(ctx context.Context, userID, id int64) error
}

func (m *mockProductService) Create(ctx context.Context, userID int64, in product.Input) (*model.Product, error) {
	return m.createFn(ctx, userID, in)
}

func (m *mockProductService) Update(ctx context.Context, userID, id int64, in product.Input) (*model.Product, error) {
	return m.updateFn(ctx, userID, id, in)
}

func (m *mockProductService) Get(ctx context.Context, userID, id int64) (*model.Product, error) {
	return m.getFn(ctx, userID, id)
}

func (m *mockProductService) List(ctx context.Context, userID int64, page model.PageRequest) (model.Page[*model.Product], error) {
	return m.listFn(ctx, userID, page)
}

func (m *mockProductService) Delete(ctx context.Context, userID, id int64) error {
	return m.deleteFn(ctx, userID, id)
}

// mockTestCaseService はTestCaseServiceInterfaceのモック実装。
type mockTestCaseService struct {
	createFn         func(ctx context.Context, userID int64, in testcase.Input) (*model.TestCase, error)
	updateFn         func(ctx context.Context, userID, id int64, in testcase.Input) (*model.TestCase, error)
	updateStatusFn   func(ctx context.Context, userID, id int64, raw string) (*model.TestCase, error)
	updatePriorityFn func(ctx context.Context, userID, id int64, raw string) (*model.TestCase, error)
	getFn            func(ctx context.Context, userID, id int64) (*model.TestCase, error)
	listFn           func(ctx context.Context, userID int64, page model.PageRequest) (model.Page[*model.TestCase], error)
	deleteFn         func(ctx context.Context, userID, id int64) error
}

func (m *mockTestCaseService) Create(ctx context.Context, userID int64, in testcase.Input) (*model.TestCase, error) {
	return m.createFn(ctx, userID, in)
}

func (m *mockTestCaseService) Update(ctx context.Context, userID, id int64, in testcase.Input) (*model.TestCase, error) {
	return m.updateFn(ctx, userID, id, in)
}

func (m *mockTestCaseService) UpdateStatus(ctx context.Context, userID, id int64, raw string) (*model.TestCase, error) {
	return m.updateStatusFn(ctx, userID, id, raw)
}

func (m *mockTestCaseService) UpdatePriority(ctx context.Context, userID, id int64, raw string) (*model.TestCase, error) {
	return m.updatePriorityFn(ctx, userID, id, raw)
}

func (m *mockTestCaseService) Get(ctx context.Context, userID, id int64) (*model.TestCase, error) {
	return m.getFn(ctx, userID, id)
}

func (m *mockTestCaseService) List(ctx context.Context, userID int64, page model.PageRequest) (model.Page[*model.TestCase], error) {
	return m.listFn(ctx, userID, page)
}

func (m *mockTestCaseService) Delete(ctx context.Context, userID, id int64) error {
	return m.deleteFn(ctx, userID, id)
}

// compile-time interface check
var (
	_ AuthServiceInterface     = (*mockAuthService)(nil)
	_ UserServiceInterface     = (*mockUserService)(nil)
	_ ProductServiceInterface  = (*mockProductService)(nil)
	_ TestCaseServiceInterface = (*mockTestCaseService)(nil)
)

// --- ヘルパー ---

var alice = &model.User{ID: 7, Username: "alice", Email: "alice@example.com"}

// withUser はリクエストコンテキストに認証済みIdentityを注入する。
func withUser(req *http.Request, u *model.User) *http.Request {
	identity := &model.Identity{User: u, Authorities: []model.Authority{}}
	return req.WithContext(middleware.ContextWithIdentity(req.Context(), identity))
}

func jsonRequest(method, target, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// envelope はレスポンスのエンベロープ。dataは後からデコードする。
type envelope struct {
	Message    string          `json:"message"`
	Status     string          `json:"status"`
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Success    bool            `json:"success"`
	Code       string          `json:"code"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode envelope: %v\nbody: %s", err, w.Body.String())
	}
	return env
}

// withURLParam はchiのURLパラメーターをリクエストに設定する。
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
