package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/automata/internal/model"
)

func fixResponseClock(t *testing.T, at time.Time) {
	t.Helper()
	orig := responseClock
	responseClock = func() time.Time { return at }
	t.Cleanup(func() { responseClock = orig })
}

func TestStatusName(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{http.StatusOK, "OK"},
		{http.StatusCreated, "CREATED"},
		{http.StatusAccepted, "ACCEPTED"},
		{http.StatusUnauthorized, "UNAUTHORIZED"},
		{http.StatusNotFound, "NOT_FOUND"},
		{http.StatusTooManyRequests, "TOO_MANY_REQUESTS"},
		{http.StatusTeapot, "IM_A_TEAPOT"},
		{http.StatusNonAuthoritativeInfo, "NON_AUTHORITATIVE_INFORMATION"},
		{999, "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := StatusName(tt.code); got != tt.want {
			t.Errorf("StatusName(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestWriteJSON_Envelope(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	fixResponseClock(t, at)

	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusCreated, "Product created", map[string]string{"name": "Widget"})

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var raw map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw["timeStamp"] != "2026-03-01T09:30:00Z" {
		t.Errorf("timeStamp = %v", raw["timeStamp"])
	}
	if raw["message"] != "Product created" || raw["status"] != "CREATED" || raw["statusCode"] != float64(201) || raw["success"] != true {
		t.Errorf("unexpected envelope: %v", raw)
	}
	if data, ok := raw["data"].(map[string]any); !ok || data["name"] != "Widget" {
		t.Errorf("data = %v", raw["data"])
	}
	if _, ok := raw["code"]; ok {
		t.Error("code should be omitted on success")
	}
}

func TestWriteError_Envelope(t *testing.T) {
	w := httptest.NewRecorder()
	WriteError(w, http.StatusConflict, model.NewEmailInUseError())

	var raw map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if raw["success"] != false || raw["code"] != model.ErrCodeEmailInUse || raw["status"] != "CONFLICT" {
		t.Errorf("unexpected envelope: %v", raw)
	}
	if _, ok := raw["data"]; ok {
		t.Error("data should be omitted on error")
	}
}

func TestWriteInternalServerError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteInternalServerError(w)

	var body Response
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w.Code != http.StatusInternalServerError || body.Code != model.ErrCodeInternal {
		t.Errorf("status/code = %d/%q", w.Code, body.Code)
	}
}

func TestRecoveryMiddleware_ReturnsEnvelope(t *testing.T) {
	handler := NewRecoveryMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("unexpected")
	}))

	w := serve(handler, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body Response
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != model.ErrCodeInternal || body.Success {
		t.Errorf("body = %+v", body)
	}
}

func TestIdentityFromContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := CurrentUser(req.Context()); err != ErrNoIdentity {
		t.Errorf("CurrentUser err = %v, want ErrNoIdentity", err)
	}
	if _, err := CurrentAuthorities(req.Context()); err != ErrNoIdentity {
		t.Errorf("CurrentAuthorities err = %v, want ErrNoIdentity", err)
	}

	ctx := ContextWithIdentity(req.Context(), &model.Identity{})
	if _, ok := IdentityFromContext(ctx); ok {
		t.Error("identity without user should not be reported")
	}

	ctx = ContextWithIdentity(req.Context(), &model.Identity{User: alice, Authorities: []model.Authority{}})
	user, err := CurrentUser(ctx)
	if err != nil || user.Username != "alice" {
		t.Errorf("CurrentUser = %v, %v", user, err)
	}
}
