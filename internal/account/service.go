// Package account は口座管理のドメインロジックを提供する。
package account

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/kakeibo/internal/balance"
	"github.com/hitoshi/kakeibo/internal/model"
	"github.com/hitoshi/kakeibo/internal/repository"
)

// Sanitizer は自由記述テキストのサニタイズを行うインターフェース。
type Sanitizer interface {
	Sanitize(raw string) string
}

// BalanceComputer は口座残高を集計するインターフェース。
type BalanceComputer interface {
	Compute(ctx context.Context, accountID string) (balance.Summary, error)
}

// Detail は口座と残高の集計結果。
type Detail struct {
	Account *model.Account
	Summary balance.Summary
}

// Service は口座管理のサービス層。
// すべての操作は所有者のユーザーIDで絞り込む。
type Service struct {
	accounts  repository.AccountRepository
	balances  BalanceComputer
	sanitizer Sanitizer
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	accounts repository.AccountRepository,
	balances BalanceComputer,
	sanitizer Sanitizer,
) *Service {
	return &Service{
		accounts:  accounts,
		balances:  balances,
		sanitizer: sanitizer,
		now:       time.Now,
	}
}

// Create はユーザーの口座を作成する。
// 口座名はマークアップを除去した上で空でないこと、種別は定義済みであることを検証する。
func (s *Service) Create(ctx context.Context, userID, name string, accountType model.AccountType) (*model.Account, error) {
	name = s.sanitizer.Sanitize(name)

	var fields []model.FieldError
	if name == "" {
		fields = append(fields, model.FieldError{Field: "name", Message: "口座名を入力してください。"})
	}
	if !accountType.Valid() {
		fields = append(fields, model.FieldError{Field: "type", Message: "口座種別は savings, checking, payroll のいずれかを指定してください。"})
	}
	if len(fields) > 0 {
		return nil, model.NewValidationError(fields...)
	}

	now := s.now()
	account := &model.Account{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      name,
		Type:      accountType,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("口座の作成に失敗しました: %w", err)
	}

	slog.Info("account created",
		slog.String("user_id", userID),
		slog.String("account_id", account.ID),
	)
	return account, nil
}

// List はユーザーの口座一覧を新しい順に返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Account, error) {
	accounts, err := s.accounts.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("口座一覧の取得に失敗しました: %w", err)
	}
	return accounts, nil
}

// Get は口座と入出金合計・残高を返す。
// 口座が存在しない場合も他ユーザーの口座の場合もACCOUNT_NOT_FOUNDを返す。
func (s *Service) Get(ctx context.Context, userID, accountID string) (*Detail, error) {
	account, err := s.accounts.FindByIDAndUserID(ctx, accountID, userID)
	if err != nil {
		return nil, fmt.Errorf("口座の取得に失敗しました: %w", err)
	}
	if account == nil {
		return nil, model.NewAccountNotFoundError(accountID)
	}

	summary, err := s.balances.Compute(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("残高の集計に失敗しました: %w", err)
	}

	return &Detail{Account: account, Summary: summary}, nil
}
