package transaction

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/kakeibo/internal/model"
	"github.com/hitoshi/kakeibo/internal/repository"
)

// memoryStore はテスト用のインメモリ実装。
// 口座・カテゴリ・取引の3リポジトリを兼ねる。
type memoryStore struct {
	accounts     map[string]*model.Account
	categories   map[model.CategoryName]*model.Category
	transactions map[string]*model.Transaction

	findErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		accounts: map[string]*model.Account{},
		categories: map[model.CategoryName]*model.Category{
			model.CategoryIncome:  {ID: "cat-income", Name: model.CategoryIncome},
			model.CategoryExpense: {ID: "cat-expense", Name: model.CategoryExpense},
		},
		transactions: map[string]*model.Transaction{},
	}
}

func (m *memoryStore) addAccount(id, userID string) {
	m.accounts[id] = &model.Account{ID: id, UserID: userID, Name: id, Type: model.AccountTypeChecking}
}

func (m *memoryStore) Create(_ context.Context, tx *model.Transaction) error {
	cp := *tx
	m.transactions[tx.ID] = &cp
	return nil
}

// --- AccountRepository ---

type accountRepo struct{ *memoryStore }

func (a accountRepo) Create(_ context.Context, acc *model.Account) error {
	a.accounts[acc.ID] = acc
	return nil
}

func (a accountRepo) ListByUserID(_ context.Context, userID string) ([]*model.Account, error) {
	var out []*model.Account
	for _, acc := range a.accounts {
		if acc.UserID == userID {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (a accountRepo) FindByIDAndUserID(_ context.Context, id, userID string) (*model.Account, error) {
	acc, ok := a.accounts[id]
	if !ok || acc.UserID != userID {
		return nil, nil
	}
	return acc, nil
}

// --- CategoryRepository ---

func (m *memoryStore) FindByName(_ context.Context, name model.CategoryName) (*model.Category, error) {
	return m.categories[name], nil
}

// --- TransactionRepository ---

func (m *memoryStore) FindByIDWithOwner(_ context.Context, id string) (*repository.TransactionWithOwner, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	tx, ok := m.transactions[id]
	if !ok {
		return nil, nil
	}
	return &repository.TransactionWithOwner{Transaction: *tx, OwnerID: m.accounts[tx.AccountID].UserID}, nil
}

func (m *memoryStore) Update(_ context.Context, tx *model.Transaction) error {
	if _, ok := m.transactions[tx.ID]; !ok {
		return fmt.Errorf("transaction not found: %s", tx.ID)
	}
	cp := *tx
	m.transactions[tx.ID] = &cp
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id string) error {
	if _, ok := m.transactions[id]; !ok {
		return fmt.Errorf("transaction not found: %s", id)
	}
	delete(m.transactions, id)
	return nil
}

func (m *memoryStore) filtered(filter repository.TransactionFilter) []*model.Transaction {
	var out []*model.Transaction
	for _, tx := range m.transactions {
		if tx.AccountID != filter.AccountID {
			continue
		}
		if filter.Period != nil && !filter.Period.Contains(tx.Date) {
			continue
		}
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m *memoryStore) ListByAccount(_ context.Context, filter repository.TransactionFilter, page model.Page) ([]*model.Transaction, error) {
	all := m.filtered(filter)
	start := page.Offset()
	if start >= len(all) {
		return []*model.Transaction{}, nil
	}
	end := start + page.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

func (m *memoryStore) CountByAccount(_ context.Context, filter repository.TransactionFilter) (int, error) {
	return len(m.filtered(filter)), nil
}

func (m *memoryStore) SumByCategory(_ context.Context, accountID string) (repository.TransactionTotals, error) {
	totals := repository.TransactionTotals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, tx := range m.filtered(repository.TransactionFilter{AccountID: accountID}) {
		if tx.CategoryName == model.CategoryIncome {
			totals.Income = totals.Income.Add(tx.Amount)
		} else {
			totals.Expense = totals.Expense.Add(tx.Amount)
		}
	}
	return totals, nil
}

type countingMetrics struct {
	ops []string
}

func (c *countingMetrics) RecordTransactionWrite(op string) {
	c.ops = append(c.ops, op)
}

var (
	_ repository.TransactionRepository = (*memoryStore)(nil)
	_ repository.CategoryRepository    = (*memoryStore)(nil)
	_ repository.AccountRepository     = accountRepo{}
)
