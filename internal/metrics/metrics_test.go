package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// findMetricFamily はレジストリから指定名のメトリクスファミリーを取得する。
func findMetricFamily(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() == name {
			return mf
		}
	}
	t.Fatalf("%s metric not found", name)
	return nil
}

// counterWithLabel はラベル値が一致するカウンタの値を返す。
func counterWithLabel(mf *dto.MetricFamily, label, value string) float64 {
	for _, m := range mf.GetMetric() {
		for _, lp := range m.GetLabel() {
			if lp.GetName() == label && lp.GetValue() == value {
				return m.GetCounter().GetValue()
			}
		}
	}
	return -1
}

// TestNewCollector_ReturnsNonNil はCollectorが正常に生成されることを検証する。
func TestNewCollector_ReturnsNonNil(t *testing.T) {
	reg := prometheus.NewRegistry()
	if c := NewCollector(reg); c == nil {
		t.Fatal("expected non-nil Collector")
	}
}

// TestNewCollector_DoubleRegistrationPanics は同一レジストリへの二重登録がpanicすることを検証する。
func TestNewCollector_DoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	NewCollector(reg)
}

// TestRecordAuthOutcome_CountsPerOutcome は判定結果ごとにカウントされることを検証する。
func TestRecordAuthOutcome_CountsPerOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAuthOutcome("authenticated")
	c.RecordAuthOutcome("authenticated")
	c.RecordAuthOutcome("invalid_token")

	mf := findMetricFamily(t, reg, "automata_auth_gate_total")
	if got := counterWithLabel(mf, "outcome", "authenticated"); got != 2 {
		t.Errorf("authenticated = %v, want 2", got)
	}
	if got := counterWithLabel(mf, "outcome", "invalid_token"); got != 1 {
		t.Errorf("invalid_token = %v, want 1", got)
	}
}

// TestRecordLogin_SplitsSuccessAndFailure はログイン成否が別ラベルで記録されることを検証する。
func TestRecordLogin_SplitsSuccessAndFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin(true)
	c.RecordLogin(false)
	c.RecordLogin(false)

	mf := findMetricFamily(t, reg, "automata_login_total")
	if got := counterWithLabel(mf, "result", "success"); got != 1 {
		t.Errorf("success = %v, want 1", got)
	}
	if got := counterWithLabel(mf, "result", "failure"); got != 2 {
		t.Errorf("failure = %v, want 2", got)
	}
}

// TestRecordTokenIssued_IncrementsCounter はトークン発行数が増加することを検証する。
func TestRecordTokenIssued_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordTokenIssued()
	c.RecordTokenIssued()
	c.RecordTokenIssued()

	mf := findMetricFamily(t, reg, "automata_tokens_issued_total")
	if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 3 {
		t.Errorf("tokens_issued_total = %v, want 3", got)
	}
}

// TestRecordHTTPStatus_LabelsByCode はステータスコード別に記録されることを検証する。
func TestRecordHTTPStatus_LabelsByCode(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(401)
	c.RecordHTTPStatus(401)

	mf := findMetricFamily(t, reg, "automata_http_status_total")
	if got := counterWithLabel(mf, "status_code", "200"); got != 1 {
		t.Errorf("200 = %v, want 1", got)
	}
	if got := counterWithLabel(mf, "status_code", "401"); got != 2 {
		t.Errorf("401 = %v, want 2", got)
	}
}

// TestRecordRequestLatency_ObservesHistogram はヒストグラムに観測値が入ることを検証する。
func TestRecordRequestLatency_ObservesHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequestLatency(150 * time.Millisecond)

	mf := findMetricFamily(t, reg, "automata_http_request_duration_seconds")
	h := mf.GetMetric()[0].GetHistogram()
	if h.GetSampleCount() != 1 {
		t.Errorf("sample count = %d, want 1", h.GetSampleCount())
	}
	if h.GetSampleSum() < 0.149 || h.GetSampleSum() > 0.151 {
		t.Errorf("sample sum = %v, want ~0.15", h.GetSampleSum())
	}
}

// TestNopCollector_DoesNotPanic はNopCollectorが安全に呼び出せることを検証する。
func TestNopCollector_DoesNotPanic(t *testing.T) {
	var c MetricsCollector = NopCollector{}
	c.RecordAuthOutcome("exempt")
	c.RecordLogin(true)
	c.RecordTokenIssued()
	c.RecordHTTPStatus(500)
	c.RecordRequestLatency(time.Second)
}
