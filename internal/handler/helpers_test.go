package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/kakeibo/internal/account"
	"github.com/hitoshi/kakeibo/internal/auth"
	"github.com/hitoshi/kakeibo/internal/middleware"
	"github.com/hitoshi/kakeibo/internal/model"
	"github.com/hitoshi/kakeibo/internal/transaction"
	"github.com/hitoshi/kakeibo/internal/validation"
)

// --- モック定義 ---

type mockAuthService struct {
	signUpFn      func(ctx context.Context, in auth.SignUpInput) (*auth.Result, error)
	signInFn      func(ctx context.Context, email, password string) (*auth.Result, error)
	currentUserFn func(ctx context.Context, userID string) (*model.User, error)
}

func (m *mockAuthService) SignUp(ctx context.Context, in auth.SignUpInput) (*auth.Result, error) {
	if m.signUpFn != nil {
		return m.signUpFn(ctx, in)
	}
	return &auth.Result{Token: "token"}, nil
}

func (m *mockAuthService) SignIn(ctx context.Context, email, password string) (*auth.Result, error) {
	if m.signInFn != nil {
		return m.signInFn(ctx, email, password)
	}
	return &auth.Result{Token: "token"}, nil
}

func (m *mockAuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	if m.currentUserFn != nil {
		return m.currentUserFn(ctx, userID)
	}
	return nil, model.NewUserNotFoundError()
}

type mockAccountService struct {
	createFn func(ctx context.Context, userID, name string, accountType model.AccountType) (*model.Account, error)
	listFn   func(ctx context.Context, userID string) ([]*model.Account, error)
	getFn    func(ctx context.Context, userID, accountID string) (*account.Detail, error)
}

func (m *mockAccountService) Create(ctx context.Context, userID, name string, accountType model.AccountType) (*model.Account, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, name, accountType)
	}
	return nil, nil
}

func (m *mockAccountService) List(ctx context.Context, userID string) ([]*model.Account, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockAccountService) Get(ctx context.Context, userID, accountID string) (*account.Detail, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, accountID)
	}
	return nil, model.NewAccountNotFoundError(accountID)
}

type mockTransactionService struct {
	createFn      func(ctx context.Context, userID string, in transaction.CreateInput) (*model.Transaction, error)
	listFn        func(ctx context.Context, userID, accountID string, page model.Page) (*transaction.PagedResult, error)
	getFn         func(ctx context.Context, userID, id string) (*model.Transaction, error)
	updateFn      func(ctx context.Context, userID, id string, in transaction.Input) (*model.Transaction, error)
	deleteFn      func(ctx context.Context, userID, id string) (*model.Transaction, error)
	byMonthFn     func(ctx context.Context, userID, accountID string, year, month int, page model.Page) (*transaction.PagedResult, error)
	byDateRangeFn func(ctx context.Context, userID, accountID string, period model.DateRange, page model.Page) (*transaction.PagedResult, error)
}

func (m *mockTransactionService) Create(ctx context.Context, userID string, in transaction.CreateInput) (*model.Transaction, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, in)
	}
	return nil, nil
}

func (m *mockTransactionService) List(ctx context.Context, userID, accountID string, page model.Page) (*transaction.PagedResult, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, accountID, page)
	}
	return &transaction.PagedResult{Page: page}, nil
}

func (m *mockTransactionService) Get(ctx context.Context, userID, id string) (*model.Transaction, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, id)
	}
	return nil, model.NewTransactionNotFoundError(id)
}

func (m *mockTransactionService) Update(ctx context.Context, userID, id string, in transaction.Input) (*model.Transaction, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, id, in)
	}
	return nil, nil
}

func (m *mockTransactionService) Delete(ctx context.Context, userID, id string) (*model.Transaction, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return nil, nil
}

func (m *mockTransactionService) StatementByMonth(ctx context.Context, userID, accountID string, year, month int, page model.Page) (*transaction.PagedResult, error) {
	if m.byMonthFn != nil {
		return m.byMonthFn(ctx, userID, accountID, year, month, page)
	}
	return &transaction.PagedResult{Page: page}, nil
}

func (m *mockTransactionService) StatementByDateRange(ctx context.Context, userID, accountID string, period model.DateRange, page model.Page) (*transaction.PagedResult, error) {
	if m.byDateRangeFn != nil {
		return m.byDateRangeFn(ctx, userID, accountID, period, page)
	}
	return &transaction.PagedResult{Page: page}, nil
}

// --- ヘルパー ---

func newValidator() RequestValidator {
	return validation.New()
}

// withUserID はテスト用に認証済みユーザーをコンテキストに注入するヘルパー。
func withUserID(r *http.Request, userID string) *http.Request {
	ctx := middleware.ContextWithIdentity(r.Context(), middleware.Identity{UserID: userID, Email: userID + "@example.com"})
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
		t.Fatalf("failed to encode body: %v", err)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// parseErrorResponse はレスポンスボディからエラーレスポンスをパースするヘルパー。
func parseErrorResponse(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return body
}

// parseSuccessResponse は成功レスポンスのdataをdstにデコードし、messageを返す。
func parseSuccessResponse(t *testing.T, w *httptest.ResponseRecorder, dst any) string {
	t.Helper()
	var body struct {
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if dst != nil {
		if err := json.Unmarshal(body.Data, dst); err != nil {
			t.Fatalf("failed to decode data: %v\nraw: %s", err, body.Data)
		}
	}
	return body.Message
}

func hasField(errs []middleware.FieldErrorEntity, field string) bool {
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}
