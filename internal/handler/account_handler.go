package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/kakeibo/internal/account"
	"github.com/hitoshi/kakeibo/internal/model"
)

// AccountServiceInterface は口座ハンドラーが必要とするサービスインターフェース。
type AccountServiceInterface interface {
	Create(ctx context.Context, userID, name string, accountType model.AccountType) (*model.Account, error)
	List(ctx context.Context, userID string) ([]*model.Account, error)
	Get(ctx context.Context, userID, accountID string) (*account.Detail, error)
}

// AccountHandler は口座管理のHTTPハンドラー。
type AccountHandler struct {
	service   AccountServiceInterface
	validator RequestValidator
}

// NewAccountHandler はAccountHandlerを生成する。
func NewAccountHandler(service AccountServiceInterface, validator RequestValidator) *AccountHandler {
	return &AccountHandler{
		service:   service,
		validator: validator,
	}
}

type createAccountRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Type string `json:"type" validate:"required,oneof=savings checking payroll"`
}

// accountResponse は口座情報のAPIレスポンス。
type accountResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// accountDetailResponse は残高の集計結果を含む口座詳細。
// 金額は丸め誤差を避けるため小数点以下2桁の文字列で返す。
type accountDetailResponse struct {
	accountResponse
	Incomes  string `json:"incomes"`
	Expenses string `json:"expenses"`
	Balance  string `json:"balance"`
}

func toAccountResponse(a *model.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Name:      a.Name,
		Type:      string(a.Type),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// Create は口座を作成する。
// POST /accounts
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	acc, err := h.service.Create(r.Context(), userID, req.Name, model.AccountType(req.Type))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "口座を作成しました。", toAccountResponse(acc))
}

// List はユーザーの口座一覧を返す。
// GET /accounts
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	accounts, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	data := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		data = append(data, toAccountResponse(a))
	}
	writeSuccess(w, http.StatusOK, "口座一覧を取得しました。", data)
}

// Get は口座の詳細と残高を返す。
// GET /accounts/{id}
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, model.NewAccountNotFoundError)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	detail, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "口座を取得しました。", accountDetailResponse{
		accountResponse: toAccountResponse(detail.Account),
		Incomes:         detail.Summary.Income.StringFixed(2),
		Expenses:        detail.Summary.Expense.StringFixed(2),
		Balance:         detail.Summary.Balance.StringFixed(2),
	})
}
