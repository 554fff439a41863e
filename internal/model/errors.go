// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// サービス層はこの型でドメインエラーを返し、ハンドラーがHTTPステータスに変換する。
type APIError struct {
	Code    string       // エラーコード
	Message string       // ユーザー向けメッセージ
	Fields  []FieldError // 入力検証エラーの場合のみ設定される
}

// FieldError は入力項目ごとの検証エラーを表す。
type FieldError struct {
	Field   string
	Message string
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodePasswordMismatch    = "PASSWORD_MISMATCH"
	ErrCodeEmailTaken          = "EMAIL_TAKEN"
	ErrCodeInvalidCredentials  = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeAccountNotFound     = "ACCOUNT_NOT_FOUND"
	ErrCodeTransactionNotFound = "TRANSACTION_NOT_FOUND"
	ErrCodeCategoryNotFound    = "CATEGORY_NOT_FOUND"
	ErrCodeInvalidMonth        = "INVALID_MONTH"
	ErrCodeInvalidDateRange    = "INVALID_DATE_RANGE"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(fields ...FieldError) *APIError {
	return &APIError{
		Code:    ErrCodeValidationFailed,
		Message: "入力内容に誤りがあります。",
		Fields:  fields,
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidRequest,
		Message: "リクエストボディの解析に失敗しました。",
	}
}

// NewPasswordMismatchError はパスワードと確認用パスワードの不一致エラーを生成する。
func NewPasswordMismatchError() *APIError {
	return &APIError{
		Code:    ErrCodePasswordMismatch,
		Message: "パスワードが一致しません。",
	}
}

// NewEmailTakenError はメールアドレス重複エラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:    ErrCodeEmailTaken,
		Message: "このメールアドレスは既に登録されています。",
	}
}

// NewInvalidCredentialsError はログイン失敗エラーを生成する。
// メールアドレスの存在有無を区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidCredentials,
		Message: "メールアドレスまたはパスワードが正しくありません。",
	}
}

// NewUnauthorizedError は認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: "認証が必要です。",
	}
}

// NewForbiddenError は他ユーザーのリソースへのアクセスエラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:    ErrCodeForbidden,
		Message: "このリソースへのアクセス権がありません。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:    ErrCodeUserNotFound,
		Message: "ユーザーが見つかりません。",
	}
}

// NewAccountNotFoundError は口座未検出エラーを生成する。
func NewAccountNotFoundError(accountID string) *APIError {
	return &APIError{
		Code:    ErrCodeAccountNotFound,
		Message: fmt.Sprintf("指定された口座が見つかりません: %s", accountID),
	}
}

// NewTransactionNotFoundError は取引未検出エラーを生成する。
func NewTransactionNotFoundError(transactionID string) *APIError {
	return &APIError{
		Code:    ErrCodeTransactionNotFound,
		Message: fmt.Sprintf("指定された取引が見つかりません: %s", transactionID),
	}
}

// NewCategoryNotFoundError は取引カテゴリ未検出エラーを生成する。
func NewCategoryNotFoundError(name string) *APIError {
	return &APIError{
		Code:    ErrCodeCategoryNotFound,
		Message: fmt.Sprintf("取引カテゴリが見つかりません: %s", name),
	}
}

// NewInvalidMonthError は無効な月指定エラーを生成する。
func NewInvalidMonthError(month int) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidMonth,
		Message: fmt.Sprintf("無効な月です: %d（1から12の範囲で指定してください）", month),
	}
}

// NewInvalidDateRangeError は無効な期間指定エラーを生成する。
func NewInvalidDateRangeError(reason string) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidDateRange,
		Message: fmt.Sprintf("無効な期間です: %s", reason),
	}
}
