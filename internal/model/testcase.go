package model

import "time"

// TestCase はユーザーが所有するテストケースを表す。
type TestCase struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Status      TestCaseStatus   `json:"status"`
	Priority    TestCasePriority `json:"priority"`
	UserID      int64            `json:"-"`
	CreatedOn   time.Time        `json:"createdOn"`
	UpdatedOn   time.Time        `json:"updatedOn"`
}

// TestCaseStatus はテストケースの実行状態を表す。
type TestCaseStatus string

const (
	// TestCaseStatusNotRun は未実行（作成時のデフォルト）。
	TestCaseStatusNotRun TestCaseStatus = "NOT_RUN"
	// TestCaseStatusPassed は成功。
	TestCaseStatusPassed TestCaseStatus = "PASSED"
	// TestCaseStatusFailed は失敗。
	TestCaseStatusFailed TestCaseStatus = "FAILED"
	// TestCaseStatusBlocked は前提条件未達で実行不可。
	TestCaseStatusBlocked TestCaseStatus = "BLOCKED"
	// TestCaseStatusSkipped は意図的にスキップ。
	TestCaseStatusSkipped TestCaseStatus = "SKIPPED"
)

// Valid は定義済みの状態かどうかを返す。
func (s TestCaseStatus) Valid() bool {
	switch s {
	case TestCaseStatusNotRun, TestCaseStatusPassed, TestCaseStatusFailed,
		TestCaseStatusBlocked, TestCaseStatusSkipped:
		return true
	}
	return false
}

// TestCasePriority はテストケースの優先度を表す。
type TestCasePriority string

const (
	TestCasePriorityLow      TestCasePriority = "LOW"
	TestCasePriorityMedium   TestCasePriority = "MEDIUM"
	TestCasePriorityHigh     TestCasePriority = "HIGH"
	TestCasePriorityCritical TestCasePriority = "CRITICAL"
)

// Valid は定義済みの優先度かどうかを返す。
func (p TestCasePriority) Valid() bool {
	switch p {
	case TestCasePriorityLow, TestCasePriorityMedium, TestCasePriorityHigh, TestCasePriorityCritical:
		return true
	}
	return false
}
