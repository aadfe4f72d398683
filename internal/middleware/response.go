package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/automata/internal/model"
)

// Response は全APIレスポンスの統一エンベロープ。
// Statusはステータスコード名の大文字スネークケース（例: UNAUTHORIZED）。
type Response struct {
	TimeStamp  time.Time `json:"timeStamp"`
	Message    string    `json:"message"`
	Status     string    `json:"status"`
	StatusCode int       `json:"statusCode"`
	Data       any       `json:"data,omitempty"`
	Success    bool      `json:"success"`
	Code       string    `json:"code,omitempty"`
}

// responseClock はエンベロープのtimeStampに使う時刻源。テストで差し替える。
var responseClock = time.Now

// StatusName はHTTPステータスコードを大文字スネークケースの名前に変換する。
func StatusName(statusCode int) string {
	text := http.StatusText(statusCode)
	if text == "" {
		return "UNKNOWN"
	}
	text = strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(text)
	return strings.ToUpper(text)
}

// WriteJSON は成功レスポンスをエンベロープで書き込む。
func WriteJSON(w http.ResponseWriter, statusCode int, message string, data any) {
	writeEnvelope(w, statusCode, Response{
		Message: message,
		Data:    data,
		Success: statusCode < http.StatusBadRequest,
	})
}

// WriteError はエラーレスポンスをエンベロープで書き込む。
func WriteError(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	writeEnvelope(w, statusCode, Response{
		Message: apiErr.Message,
		Code:    apiErr.Code,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、クライアントには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, &model.APIError{
		Code:    model.ErrCodeInternal,
		Message: "An internal error occurred",
	})
}

func writeEnvelope(w http.ResponseWriter, statusCode int, body Response) {
	body.TimeStamp = responseClock()
	body.Status = StatusName(statusCode)
	body.StatusCode = statusCode

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}
