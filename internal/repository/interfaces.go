// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/kakeibo/internal/model"
)

// ErrDuplicate は一意制約違反で作成できなかったことを示す。
var ErrDuplicate = errors.New("repository: duplicate key")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は正規化済みのメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。メールアドレスが重複する場合はErrDuplicateを返す。
	Create(ctx context.Context, user *model.User) error
}

// AccountRepository は口座データの永続化インターフェース。
// 参照系はすべて所有者IDで絞り込む。
type AccountRepository interface {
	// Create は口座を作成する。
	Create(ctx context.Context, account *model.Account) error

	// ListByUserID はユーザーの口座一覧を作成日時の降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Account, error)

	// FindByIDAndUserID は所有者が一致する口座を取得する。
	// 存在しない場合も他人の口座の場合もnilを返す。
	FindByIDAndUserID(ctx context.Context, id, userID string) (*model.Account, error)
}

// CategoryRepository は取引カテゴリの参照インターフェース。
type CategoryRepository interface {
	// FindByName はカテゴリ名で検索する。見つからない場合はnilを返す。
	FindByName(ctx context.Context, name model.CategoryName) (*model.Category, error)
}

// TransactionFilter は取引一覧の絞り込み条件。
// Periodがnilの場合は期間で絞り込まない。
type TransactionFilter struct {
	AccountID string
	Period    *model.DateRange
}

// TransactionWithOwner は取引と親口座の所有者IDを結合した構造体。
type TransactionWithOwner struct {
	model.Transaction
	OwnerID string
}

// TransactionTotals は口座ごとのカテゴリ別合計額。
type TransactionTotals struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// TransactionRepository は取引データの永続化インターフェース。
type TransactionRepository interface {
	// Create は取引を作成する。
	Create(ctx context.Context, tx *model.Transaction) error

	// FindByIDWithOwner は取引を親口座の所有者IDとともに取得する。見つからない場合はnilを返す。
	FindByIDWithOwner(ctx context.Context, id string) (*TransactionWithOwner, error)

	// Update は説明、金額、日付、カテゴリを更新する。口座は変更しない。
	Update(ctx context.Context, tx *model.Transaction) error

	// Delete は指定IDの取引を削除する。
	Delete(ctx context.Context, id string) error

	// ListByAccount は条件に一致する取引を作成日時の降順でページ単位に返す。
	ListByAccount(ctx context.Context, filter TransactionFilter, page model.Page) ([]*model.Transaction, error)

	// CountByAccount は条件に一致する取引の総件数を返す。
	CountByAccount(ctx context.Context, filter TransactionFilter) (int, error)

	// SumByCategory は口座の入金合計と出金合計を1回のクエリで返す。
	SumByCategory(ctx context.Context, accountID string) (TransactionTotals, error)
}
