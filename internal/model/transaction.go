// Package model はドメインモデルを定義する。
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryName は取引カテゴリ名を表す。
type CategoryName string

const (
	// CategoryIncome は入金カテゴリ。
	CategoryIncome CategoryName = "Income"
	// CategoryExpense は出金カテゴリ。
	CategoryExpense CategoryName = "Expense"
)

// Valid は定義済みのカテゴリ名かどうかを返す。
func (c CategoryName) Valid() bool {
	return c == CategoryIncome || c == CategoryExpense
}

// Category は取引カテゴリを表す。マイグレーションで初期投入される。
type Category struct {
	ID   string
	Name CategoryName
}

// Transaction は口座に記録された入出金取引を表す。
// Amountは常に0以上で、入出金の向きはCategoryNameで表す。
type Transaction struct {
	ID           string
	AccountID    string
	Description  string
	Amount       decimal.Decimal
	Date         time.Time
	CategoryID   string
	CategoryName CategoryName
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
