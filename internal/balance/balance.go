// Package balance は口座残高の集計を提供する。
package balance

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/kakeibo/internal/model"
	"github.com/hitoshi/kakeibo/internal/repository"
)

// Summary は口座の入金合計、出金合計、残高。
// 残高は負になり得る。
type Summary struct {
	Income  decimal.Decimal
	Expense decimal.Decimal
	Balance decimal.Decimal
}

// NewSummary は入出金の合計から残高を計算したSummaryを返す。
func NewSummary(income, expense decimal.Decimal) Summary {
	return Summary{
		Income:  income,
		Expense: expense,
		Balance: income.Sub(expense),
	}
}

// Summarize は取引一覧をカテゴリごとに合計する。
// Income/Expense以外のカテゴリは無視する。
func Summarize(txs []model.Transaction) Summary {
	income, expense := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		switch tx.CategoryName {
		case model.CategoryIncome:
			income = income.Add(tx.Amount)
		case model.CategoryExpense:
			expense = expense.Add(tx.Amount)
		}
	}
	return NewSummary(income, expense)
}

// TotalsReader は口座のカテゴリ別合計を読み出すインターフェース。
type TotalsReader interface {
	SumByCategory(ctx context.Context, accountID string) (repository.TransactionTotals, error)
}

// Aggregator は永続化された取引から残高を集計する。
type Aggregator struct {
	totals TotalsReader
}

// NewAggregator はAggregatorを生成する。
func NewAggregator(totals TotalsReader) *Aggregator {
	return &Aggregator{totals: totals}
}

// Compute は口座の入出金合計と残高を返す。
// 入金と出金は同じクエリで読み出すため、同一時点の値になる。
func (a *Aggregator) Compute(ctx context.Context, accountID string) (Summary, error) {
	t, err := a.totals.SumByCategory(ctx, accountID)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to sum transactions: %w", err)
	}
	return NewSummary(t.Income, t.Expense), nil
}
