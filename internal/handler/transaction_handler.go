package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/kakeibo/internal/model"
	"github.com/hitoshi/kakeibo/internal/transaction"
)

// TransactionServiceInterface は取引ハンドラーが必要とするサービスインターフェース。
type TransactionServiceInterface interface {
	Create(ctx context.Context, userID string, in transaction.CreateInput) (*model.Transaction, error)
	List(ctx context.Context, userID, accountID string, page model.Page) (*transaction.PagedResult, error)
	Get(ctx context.Context, userID, id string) (*model.Transaction, error)
	Update(ctx context.Context, userID, id string, in transaction.Input) (*model.Transaction, error)
	Delete(ctx context.Context, userID, id string) (*model.Transaction, error)
	StatementByMonth(ctx context.Context, userID, accountID string, year, month int, page model.Page) (*transaction.PagedResult, error)
	StatementByDateRange(ctx context.Context, userID, accountID string, period model.DateRange, page model.Page) (*transaction.PagedResult, error)
}

// TransactionHandler は取引と明細照会のHTTPハンドラー。
type TransactionHandler struct {
	service   TransactionServiceInterface
	validator RequestValidator
}

// NewTransactionHandler はTransactionHandlerを生成する。
func NewTransactionHandler(service TransactionServiceInterface, validator RequestValidator) *TransactionHandler {
	return &TransactionHandler{
		service:   service,
		validator: validator,
	}
}

// createTransactionRequest は取引作成リクエストのボディ。
// amountはJSONの数値で受け取り、decimalで保持する。
type createTransactionRequest struct {
	AccountID   string           `json:"accountId" validate:"required,uuid"`
	Description string           `json:"description" validate:"max=255"`
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Date        string           `json:"date" validate:"required"`
	Type        string           `json:"type" validate:"required"`
}

// updateTransactionRequest は取引更新リクエストのボディ。口座は変更できない。
type updateTransactionRequest struct {
	Description string           `json:"description" validate:"max=255"`
	Amount      *decimal.Decimal `json:"amount" validate:"required"`
	Date        string           `json:"date" validate:"required"`
	Type        string           `json:"type" validate:"required"`
}

// transactionResponse は取引のAPIレスポンス。
type transactionResponse struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"accountId"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	Date        time.Time `json:"date"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toTransactionResponse(t *model.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Description: t.Description,
		Amount:      t.Amount.StringFixed(2),
		Date:        t.Date,
		Type:        string(t.CategoryName),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func writePaged(w http.ResponseWriter, message string, result *transaction.PagedResult) {
	data := make([]transactionResponse, 0, len(result.Items))
	for _, t := range result.Items {
		data = append(data, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, pagedResponse{
		Message:    message,
		Data:       data,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

// toInput はリクエストの共通項目をサービス層の入力に変換する。
func toInput(description string, amount *decimal.Decimal, date, kind string) (transaction.Input, error) {
	parsed, _, err := transaction.ParseDate(date)
	if err != nil {
		return transaction.Input{}, model.NewValidationError(model.FieldError{
			Field:   "date",
			Message: "date は RFC 3339 または YYYY-MM-DD 形式で指定してください。",
		})
	}
	in := transaction.Input{
		Description: description,
		Amount:      *amount,
		Date:        parsed,
		Type:        model.CategoryName(kind),
	}
	if err := in.Validate(); err != nil {
		return transaction.Input{}, err
	}
	return in, nil
}

// Create は取引を作成する。
// POST /transactions
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req createTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	in, err := toInput(req.Description, req.Amount, req.Date, req.Type)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	tx, err := h.service.Create(r.Context(), userID, transaction.CreateInput{AccountID: req.AccountID, Input: in})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "取引を作成しました。", toTransactionResponse(tx))
}

// List は口座の取引一覧を新しい順に返す。
// GET /transactions?accountId=&page=&limit=
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	accountID, err := accountIDFromQuery(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	page, err := pageFromQuery(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	result, err := h.service.List(r.Context(), userID, accountID, page)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writePaged(w, "取引一覧を取得しました。", result)
}

// Get は取引を1件返す。
// GET /transactions/{id}
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, model.NewTransactionNotFoundError)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	tx, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "取引を取得しました。", toTransactionResponse(tx))
}

// Update は取引の内容を置き換える。
// PUT /transactions/{id}
func (h *TransactionHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, model.NewTransactionNotFoundError)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	var req updateTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	in, err := toInput(req.Description, req.Amount, req.Date, req.Type)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	tx, err := h.service.Update(r.Context(), userID, id, in)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "取引を更新しました。", toTransactionResponse(tx))
}

// Delete は取引を削除し、削除した取引を返す。
// DELETE /transactions/{id}
func (h *TransactionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, model.NewTransactionNotFoundError)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	tx, err := h.service.Delete(r.Context(), userID, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "取引を削除しました。", toTransactionResponse(tx))
}

// StatementByMonth は指定月の明細を返す。yearを省略した場合は今年。
// GET /transactions/bankStatementByMonth?accountId=&month=&year=&page=&limit=
func (h *TransactionHandler) StatementByMonth(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	accountID, err := accountIDFromQuery(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		handleServiceError(w, r, model.NewInvalidMonthError(0))
		return
	}
	year, err := optionalInt(r, "year")
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	page, err := pageFromQuery(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	result, err := h.service.StatementByMonth(r.Context(), userID, accountID, year, month, page)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writePaged(w, "明細を取得しました。", result)
}

// StatementByDateRange は指定期間の明細を返す。
// 終了日を日付のみで指定した場合はその日の終わりまでを含む。
// GET /transactions/bankStatementByDateRange?accountId=&start=&end=&page=&limit=
func (h *TransactionHandler) StatementByDateRange(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	accountID, err := accountIDFromQuery(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	q := r.URL.Query()
	period, err := transaction.ParseDateRange(q.Get("start"), q.Get("end"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	page, err := pageFromQuery(r)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	result, err := h.service.StatementByDateRange(r.Context(), userID, accountID, period, page)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writePaged(w, "明細を取得しました。", result)
}
