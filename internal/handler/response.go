// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hitoshi/kakeibo/internal/middleware"
	"github.com/hitoshi/kakeibo/internal/model"
)

// RequestValidator はリクエスト構造体の検証を行うインターフェース。
type RequestValidator interface {
	Struct(s any) error
}

// successResponse は成功レスポンスの共通フォーマット。
type successResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// pagedResponse はページングされた一覧のレスポンス。
type pagedResponse struct {
	Message    string `json:"message"`
	Data       any    `json:"data"`
	Total      int    `json:"total"`
	TotalPages int    `json:"totalPages"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func writeSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	writeJSON(w, statusCode, successResponse{Message: message, Data: data})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidationFailed,
		model.ErrCodeInvalidRequest,
		model.ErrCodePasswordMismatch,
		model.ErrCodeEmailTaken,
		model.ErrCodeInvalidMonth,
		model.ErrCodeInvalidDateRange:
		return http.StatusBadRequest
	case model.ErrCodeInvalidCredentials, model.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeAccountNotFound,
		model.ErrCodeTransactionNotFound,
		model.ErrCodeCategoryNotFound,
		model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON はリクエストボディをdstにデコードする。
// 解析に失敗した場合はINVALID_REQUESTのAPIErrorを返す。
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return model.NewInvalidRequestError()
	}
	return nil
}

// currentUserID は認証ゲートが格納したユーザーIDを返す。
// 取得できない場合は401を書き込み、okにfalseを返す。
func currentUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorized(w)
		return "", false
	}
	return userID, true
}

// pathID はURLパスのidを取り出す。
// UUIDとして解釈できないidは存在しないリソースと同じくnotFoundのエラーを返す。
func pathID(r *http.Request, notFound func(id string) *model.APIError) (string, error) {
	raw := chi.URLParam(r, "id")
	if _, err := uuid.Parse(raw); err != nil {
		return "", notFound(raw)
	}
	return raw, nil
}

// accountIDFromQuery はクエリパラメータaccountIdを取り出す。
// 未指定は検証エラー、UUIDでない値はACCOUNT_NOT_FOUNDとする。
func accountIDFromQuery(r *http.Request) (string, error) {
	raw := r.URL.Query().Get("accountId")
	if raw == "" {
		return "", model.NewValidationError(model.FieldError{
			Field:   "accountId",
			Message: "accountId は必須です。",
		})
	}
	if _, err := uuid.Parse(raw); err != nil {
		return "", model.NewAccountNotFoundError(raw)
	}
	return raw, nil
}

// pageFromQuery はクエリパラメータpage、limitからページ指定を組み立てる。
// 未指定の場合はデフォルト値を使い、数値でない場合は検証エラーを返す。
func pageFromQuery(r *http.Request) (model.Page, error) {
	number, err := optionalInt(r, "page")
	if err != nil {
		return model.Page{}, err
	}
	limit, err := optionalInt(r, "limit")
	if err != nil {
		return model.Page{}, err
	}
	return model.NewPage(number, limit), nil
}

func optionalInt(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.NewValidationError(model.FieldError{
			Field:   key,
			Message: key + " は整数で指定してください。",
		})
	}
	return v, nil
}
