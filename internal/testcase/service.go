// Package testcase は所有者単位のテストケース管理を提供する。
package testcase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/automata/internal/model"
	"github.com/hitoshi/automata/internal/repository"
	"github.com/hitoshi/automata/internal/security"
)

// MaxTitleLength はタイトルの最大文字数。test_cases.title の VARCHAR(200) に合わせる。
const MaxTitleLength = 200

// Input はテストケースの作成・更新の入力。
// StatusとPriorityが空の場合、作成時はデフォルト値、更新時は現在値を使う。
type Input struct {
	Title       string
	Description string
	Status      string
	Priority    string
}

// Service はテストケース管理のサービス層。全ての操作は所有者のユーザーIDで絞り込む。
type Service struct {
	repo      repository.TestCaseRepository
	sanitizer security.Sanitizer
}

// NewService はServiceを生成する。
func NewService(repo repository.TestCaseRepository, sanitizer security.Sanitizer) *Service {
	return &Service{repo: repo, sanitizer: sanitizer}
}

// ParseStatus は大文字小文字を区別せずに状態を解釈する。
func ParseStatus(raw string) (model.TestCaseStatus, error) {
	s := model.TestCaseStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", model.NewInvalidStatusError(raw)
	}
	return s, nil
}

// ParsePriority は大文字小文字を区別せずに優先度を解釈する。
func ParsePriority(raw string) (model.TestCasePriority, error) {
	p := model.TestCasePriority(strings.ToUpper(strings.TrimSpace(raw)))
	if !p.Valid() {
		return "", model.NewInvalidPriorityError(raw)
	}
	return p, nil
}

// apply は入力をテストケースに反映する。空の状態・優先度は tc の現在値を維持する。
func (s *Service) apply(tc *model.TestCase, in Input) error {
	title := s.sanitizer.Text(in.Title)
	if title == "" {
		return model.NewValidationError("title must not be blank")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return model.NewValidationError(fmt.Sprintf("title must be at most %d characters", MaxTitleLength))
	}
	tc.Title = title
	tc.Description = s.sanitizer.RichText(in.Description)

	if in.Status != "" {
		status, err := ParseStatus(in.Status)
		if err != nil {
			return err
		}
		tc.Status = status
	}
	if in.Priority != "" {
		priority, err := ParsePriority(in.Priority)
		if err != nil {
			return err
		}
		tc.Priority = priority
	}
	return nil
}

// Create はテストケースを作成する。状態の既定値はNOT_RUN、優先度の既定値はMEDIUM。
func (s *Service) Create(ctx context.Context, userID int64, in Input) (*model.TestCase, error) {
	tc := &model.TestCase{
		Status:   model.TestCaseStatusNotRun,
		Priority: model.TestCasePriorityMedium,
		UserID:   userID,
	}
	if err := s.apply(tc, in); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, tc); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateTestCaseError()
		}
		return nil, fmt.Errorf("failed to create test case: %w", err)
	}

	slog.Info("test case created",
		slog.Int64("user_id", userID),
		slog.Int64("test_case_id", tc.ID),
	)
	return tc, nil
}

// Update はテストケースを更新する。
func (s *Service) Update(ctx context.Context, userID, id int64, in Input) (*model.TestCase, error) {
	tc, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(tc, in); err != nil {
		return nil, err
	}
	return s.save(ctx, tc)
}

// UpdateStatus はテストケースの状態のみを更新する。
func (s *Service) UpdateStatus(ctx context.Context, userID, id int64, rawStatus string) (*model.TestCase, error) {
	status, err := ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	tc, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	tc.Status = status
	return s.save(ctx, tc)
}

// UpdatePriority はテストケースの優先度のみを更新する。
func (s *Service) UpdatePriority(ctx context.Context, userID, id int64, rawPriority string) (*model.TestCase, error) {
	priority, err := ParsePriority(rawPriority)
	if err != nil {
		return nil, err
	}
	tc, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	tc.Priority = priority
	return s.save(ctx, tc)
}

func (s *Service) save(ctx context.Context, tc *model.TestCase) (*model.TestCase, error) {
	found, err := s.repo.Update(ctx, tc)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewDuplicateTestCaseError()
		}
		return nil, fmt.Errorf("failed to update test case: %w", err)
	}
	if !found {
		return nil, model.NewTestCaseNotFoundError(tc.ID)
	}
	return tc, nil
}

// Get は所有者のテストケースを取得する。
func (s *Service) Get(ctx context.Context, userID, id int64) (*model.TestCase, error) {
	tc, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get test case: %w", err)
	}
	if tc == nil {
		return nil, model.NewTestCaseNotFoundError(id)
	}
	return tc, nil
}

// List は所有者のテストケースを新しい順にページングして返す。
func (s *Service) List(ctx context.Context, userID int64, page model.PageRequest) (model.Page[*model.TestCase], error) {
	testCases, total, err := s.repo.ListByUserID(ctx, userID, page)
	if err != nil {
		return model.Page[*model.TestCase]{}, fmt.Errorf("failed to list test cases: %w", err)
	}
	return model.NewPage(testCases, page, total), nil
}

// Delete は所有者のテストケースを削除する。
func (s *Service) Delete(ctx context.Context, userID, id int64) error {
	deleted, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to delete test case: %w", err)
	}
	if !deleted {
		return model.NewTestCaseNotFoundError(id)
	}

	slog.Info("test case deleted",
		slog.Int64("user_id", userID),
		slog.Int64("test_case_id", id),
	)
	return nil
}
