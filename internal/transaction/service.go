// Package transaction は取引の記録と明細照会のドメインロジックを提供する。
package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hitoshi/kakeibo/internal/metrics"
	"github.com/hitoshi/kakeibo/internal/model"
	"github.com/hitoshi/kakeibo/internal/repository"
)

// Sanitizer は自由記述テキストのサニタイズを行うインターフェース。
type Sanitizer interface {
	Sanitize(raw string) string
}

// MetricsRecorder は取引の書き込みを記録するインターフェース。
type MetricsRecorder interface {
	RecordTransactionWrite(op string)
}

// maxAmount は金額の上限（この値を含まない）。列はNUMERIC(14,2)で整数部は12桁まで。
var maxAmount = decimal.New(1, 12)

// Input は取引の作成・更新に共通する入力。
type Input struct {
	Description string
	Amount      decimal.Decimal
	Date        time.Time
	Type        model.CategoryName
}

// CreateInput は取引作成の入力。
type CreateInput struct {
	AccountID string
	Input
}

// PagedResult はページ単位の取引一覧。
type PagedResult struct {
	Items      []*model.Transaction
	Total      int
	TotalPages int
	Page       model.Page
}

// Service は取引管理のサービス層。
type Service struct {
	transactions repository.TransactionRepository
	accounts     repository.AccountRepository
	categories   repository.CategoryRepository
	sanitizer    Sanitizer
	metrics      MetricsRecorder
	now          func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。metricsはnilでもよい。
func NewService(
	transactions repository.TransactionRepository,
	accounts repository.AccountRepository,
	categories repository.CategoryRepository,
	sanitizer Sanitizer,
	metrics MetricsRecorder,
) *Service {
	return &Service{
		transactions: transactions,
		accounts:     accounts,
		categories:   categories,
		sanitizer:    sanitizer,
		metrics:      metrics,
		now:          time.Now,
	}
}

// Create はユーザーが所有する口座に取引を記録する。
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*model.Transaction, error) {
	if err := in.Input.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.ownedAccount(ctx, userID, in.AccountID); err != nil {
		return nil, err
	}
	category, err := s.category(ctx, in.Type)
	if err != nil {
		return nil, err
	}

	now := s.now()
	tx := &model.Transaction{
		ID:           uuid.New().String(),
		AccountID:    in.AccountID,
		Description:  s.sanitizer.Sanitize(in.Description),
		Amount:       in.Amount,
		Date:         in.Date.UTC(),
		CategoryID:   category.ID,
		CategoryName: category.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("取引の作成に失敗しました: %w", err)
	}

	s.record(metrics.OpCreate)
	slog.Info("transaction created",
		slog.String("user_id", userID),
		slog.String("account_id", tx.AccountID),
		slog.String("transaction_id", tx.ID),
	)
	return tx, nil
}

// List は口座の取引一覧を新しい順にページ単位で返す。
func (s *Service) List(ctx context.Context, userID, accountID string, page model.Page) (*PagedResult, error) {
	if _, err := s.ownedAccount(ctx, userID, accountID); err != nil {
		return nil, err
	}
	return s.page(ctx, repository.TransactionFilter{AccountID: accountID}, page)
}

// Get は取引を取得する。
// 存在しない場合はTRANSACTION_NOT_FOUND、他ユーザーの口座の取引はFORBIDDENを返す。
func (s *Service) Get(ctx context.Context, userID, id string) (*model.Transaction, error) {
	found, err := s.ownedTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return &found.Transaction, nil
}

// Update は取引の説明、金額、日付、種別を置き換える。口座は変更できない。
func (s *Service) Update(ctx context.Context, userID, id string, in Input) (*model.Transaction, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	found, err := s.ownedTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	category, err := s.category(ctx, in.Type)
	if err != nil {
		return nil, err
	}

	tx := found.Transaction
	tx.Description = s.sanitizer.Sanitize(in.Description)
	tx.Amount = in.Amount
	tx.Date = in.Date.UTC()
	tx.CategoryID = category.ID
	tx.CategoryName = category.Name
	tx.UpdatedAt = s.now()

	if err := s.transactions.Update(ctx, &tx); err != nil {
		return nil, fmt.Errorf("取引の更新に失敗しました: %w", err)
	}

	s.record(metrics.OpUpdate)
	return &tx, nil
}

// Delete は取引を削除し、削除前の内容を返す。
func (s *Service) Delete(ctx context.Context, userID, id string) (*model.Transaction, error) {
	found, err := s.ownedTransaction(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.transactions.Delete(ctx, id); err != nil {
		return nil, fmt.Errorf("取引の削除に失敗しました: %w", err)
	}

	s.record(metrics.OpDelete)
	slog.Info("transaction deleted",
		slog.String("user_id", userID),
		slog.String("transaction_id", id),
	)
	return &found.Transaction, nil
}

// StatementByMonth は指定年月の取引明細を返す。
// monthは1〜12、yearが0の場合は現在の年を使う。期間はUTCの暦月。
func (s *Service) StatementByMonth(ctx context.Context, userID, accountID string, year, month int, page model.Page) (*PagedResult, error) {
	if month < 1 || month > 12 {
		return nil, model.NewInvalidMonthError(month)
	}
	if year == 0 {
		year = s.now().UTC().Year()
	}
	if _, err := s.ownedAccount(ctx, userID, accountID); err != nil {
		return nil, err
	}

	period := model.MonthRange(year, time.Month(month), time.UTC)
	return s.page(ctx, repository.TransactionFilter{AccountID: accountID, Period: &period}, page)
}

// StatementByDateRange は期間内の取引明細を返す。periodは ParseDateRange で組み立てた半開区間。
func (s *Service) StatementByDateRange(ctx context.Context, userID, accountID string, period model.DateRange, page model.Page) (*PagedResult, error) {
	if !period.Start.Before(period.End) {
		return nil, model.NewInvalidDateRangeError("start は end 以前の日時を指定してください")
	}
	if _, err := s.ownedAccount(ctx, userID, accountID); err != nil {
		return nil, err
	}
	return s.page(ctx, repository.TransactionFilter{AccountID: accountID, Period: &period}, page)
}

func (s *Service) page(ctx context.Context, filter repository.TransactionFilter, page model.Page) (*PagedResult, error) {
	items, err := s.transactions.ListByAccount(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("取引一覧の取得に失敗しました: %w", err)
	}
	total, err := s.transactions.CountByAccount(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("取引件数の取得に失敗しました: %w", err)
	}
	return &PagedResult{
		Items:      items,
		Total:      total,
		TotalPages: page.TotalPages(total),
		Page:       page,
	}, nil
}

// Validate は金額と日付を検証する。金額は0以上かつ保存できる桁数に収まること。
func (in Input) Validate() error {
	var fields []model.FieldError
	if in.Amount.IsNegative() {
		fields = append(fields, model.FieldError{Field: "amount", Message: "金額は0以上で指定してください。"})
	} else if in.Amount.Round(2).GreaterThanOrEqual(maxAmount) {
		// 小数第3位以下は保存時に丸められるため、丸めた後の値で判定する
		fields = append(fields, model.FieldError{Field: "amount", Message: "金額は整数部12桁以内で指定してください。"})
	}
	if in.Date.IsZero() {
		fields = append(fields, model.FieldError{Field: "date", Message: "日付を指定してください。"})
	}
	if len(fields) > 0 {
		return model.NewValidationError(fields...)
	}
	return nil
}

func (s *Service) ownedAccount(ctx context.Context, userID, accountID string) (*model.Account, error) {
	account, err := s.accounts.FindByIDAndUserID(ctx, accountID, userID)
	if err != nil {
		return nil, fmt.Errorf("口座の取得に失敗しました: %w", err)
	}
	if account == nil {
		return nil, model.NewAccountNotFoundError(accountID)
	}
	return account, nil
}

func (s *Service) ownedTransaction(ctx context.Context, userID, id string) (*repository.TransactionWithOwner, error) {
	found, err := s.transactions.FindByIDWithOwner(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("取引の取得に失敗しました: %w", err)
	}
	if found == nil {
		return nil, model.NewTransactionNotFoundError(id)
	}
	if found.OwnerID != userID {
		return nil, model.NewForbiddenError()
	}
	return found, nil
}

func (s *Service) category(ctx context.Context, name model.CategoryName) (*model.Category, error) {
	if !name.Valid() {
		return nil, model.NewCategoryNotFoundError(string(name))
	}
	category, err := s.categories.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("カテゴリの取得に失敗しました: %w", err)
	}
	if category == nil {
		return nil, model.NewCategoryNotFoundError(string(name))
	}
	return category, nil
}

func (s *Service) record(op string) {
	if s.metrics != nil {
		s.metrics.RecordTransactionWrite(op)
	}
}
