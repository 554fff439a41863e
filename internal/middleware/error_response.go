package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/kakeibo/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
// dataは常にnullで、入力検証エラーの場合のみerrorsを含む。
type ErrorResponseBody struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Data    any                `json:"data"`
	Errors  []FieldErrorEntity `json:"errors,omitempty"`
}

// FieldErrorEntity は入力項目ごとのエラー表現。
type FieldErrorEntity struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	body := ErrorResponseBody{
		Code:    apiErr.Code,
		Message: apiErr.Message,
	}
	for _, f := range apiErr.Fields {
		body.Errors = append(body.Errors, FieldErrorEntity{Field: f.Field, Message: f.Message})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:    model.ErrCodeInternal,
		Message: "内部エラーが発生しました。",
	})
}

// WriteUnauthorized は認証失敗の統一レスポンスを書き込む。
// 失敗の原因（ヘッダー欠落、署名不正、期限切れ）は区別しない。
func WriteUnauthorized(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
}
