package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hitoshi/kakeibo/internal/model"
)

// PostgresTransactionRepo はPostgreSQLを使用した取引リポジトリ。
type PostgresTransactionRepo struct {
	db *sql.DB
}

// NewPostgresTransactionRepo はPostgresTransactionRepoを生成する。
func NewPostgresTransactionRepo(db *sql.DB) *PostgresTransactionRepo {
	return &PostgresTransactionRepo{db: db}
}

// transactionSelect はカテゴリ名をJOINした取引のSELECT句。
const transactionSelect = `
	SELECT t.id, t.account_id, t.description, t.amount, t.date,
	       t.category_id, c.name, t.created_at, t.updated_at
	FROM transactions t
	JOIN transaction_categories c ON c.id = t.category_id`

// Create は取引を作成する。
func (r *PostgresTransactionRepo) Create(ctx context.Context, tx *model.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, account_id, category_id, description, amount, date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		tx.ID, tx.AccountID, tx.CategoryID, nullString(tx.Description), tx.Amount,
		tx.Date, tx.CreatedAt, tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("取引の作成に失敗しました: %w", err)
	}
	return nil
}

// FindByIDWithOwner は取引を親口座の所有者IDとともに取得する。見つからない場合はnilを返す。
func (r *PostgresTransactionRepo) FindByIDWithOwner(ctx context.Context, id string) (*TransactionWithOwner, error) {
	var (
		two         TransactionWithOwner
		description sql.NullString
		category    string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT t.id, t.account_id, t.description, t.amount, t.date,
		        t.category_id, c.name, t.created_at, t.updated_at, a.user_id
		 FROM transactions t
		 JOIN transaction_categories c ON c.id = t.category_id
		 JOIN accounts a ON a.id = t.account_id
		 WHERE t.id = $1`,
		id,
	).Scan(
		&two.ID, &two.AccountID, &description, &two.Amount, &two.Date,
		&two.CategoryID, &category, &two.CreatedAt, &two.UpdatedAt, &two.OwnerID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("取引の取得に失敗しました: %w", err)
	}
	two.Description = nullStringValue(description)
	two.CategoryName = model.CategoryName(category)
	return &two, nil
}

// Update は説明、金額、日付、カテゴリを更新する。
func (r *PostgresTransactionRepo) Update(ctx context.Context, tx *model.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET
		    description = $2, amount = $3, date = $4, category_id = $5, updated_at = $6
		 WHERE id = $1`,
		tx.ID, nullString(tx.Description), tx.Amount, tx.Date, tx.CategoryID, tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("取引の更新に失敗しました: %w", err)
	}
	return nil
}

// Delete は指定IDの取引を削除する。
func (r *PostgresTransactionRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("取引の削除に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("transaction not found: %s", id)
	}
	return nil
}

// ListByAccount は条件に一致する取引を作成日時の降順でページ単位に返す。
func (r *PostgresTransactionRepo) ListByAccount(ctx context.Context, filter TransactionFilter, page model.Page) ([]*model.Transaction, error) {
	where, args := filter.whereClause()
	argIndex := len(args) + 1

	query := transactionSelect + where +
		fmt.Sprintf(" ORDER BY t.created_at DESC, t.id LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, page.Limit, page.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("取引一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	txs := []*model.Transaction{}
	for rows.Next() {
		t := &model.Transaction{}
		var description sql.NullString
		var category string
		if err := rows.Scan(
			&t.ID, &t.AccountID, &description, &t.Amount, &t.Date,
			&t.CategoryID, &category, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("取引行の読み取りに失敗しました: %w", err)
		}
		t.Description = nullStringValue(description)
		t.CategoryName = model.CategoryName(category)
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("取引一覧の走査に失敗しました: %w", err)
	}
	return txs, nil
}

// CountByAccount は条件に一致する取引の総件数を返す。
func (r *PostgresTransactionRepo) CountByAccount(ctx context.Context, filter TransactionFilter) (int, error) {
	where, args := filter.whereClause()

	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM transactions t`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("取引件数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// SumByCategory は口座の入金合計と出金合計を1回のクエリで返す。
// 取引のないカテゴリは0として扱う。
func (r *PostgresTransactionRepo) SumByCategory(ctx context.Context, accountID string) (TransactionTotals, error) {
	totals := TransactionTotals{Income: decimal.Zero, Expense: decimal.Zero}

	rows, err := r.db.QueryContext(ctx,
		`SELECT c.name, COALESCE(SUM(t.amount), 0)
		 FROM transactions t
		 JOIN transaction_categories c ON c.id = t.category_id
		 WHERE t.account_id = $1
		 GROUP BY c.name`,
		accountID,
	)
	if err != nil {
		return totals, fmt.Errorf("カテゴリ別合計の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var sum decimal.Decimal
		if err := rows.Scan(&name, &sum); err != nil {
			return totals, fmt.Errorf("合計行の読み取りに失敗しました: %w", err)
		}
		switch model.CategoryName(name) {
		case model.CategoryIncome:
			totals.Income = sum
		case model.CategoryExpense:
			totals.Expense = sum
		}
	}
	if err := rows.Err(); err != nil {
		return totals, fmt.Errorf("合計行の走査に失敗しました: %w", err)
	}
	return totals, nil
}

// whereClause は絞り込み条件のWHERE句とプレースホルダ引数を返す。
// 期間は半開区間 [Start, End) として取引日で比較する。
func (f TransactionFilter) whereClause() (string, []interface{}) {
	where := " WHERE t.account_id = $1"
	args := []interface{}{f.AccountID}
	if f.Period != nil {
		where += " AND t.date >= $2 AND t.date < $3"
		args = append(args, f.Period.Start, f.Period.End)
	}
	return where, args
}

var _ TransactionRepository = (*PostgresTransactionRepo)(nil)
