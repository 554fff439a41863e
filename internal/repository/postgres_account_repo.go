package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/kakeibo/internal/model"
)

// PostgresAccountRepo はPostgreSQLを使用した口座リポジトリ。
type PostgresAccountRepo struct {
	db *sql.DB
}

// NewPostgresAccountRepo はPostgresAccountRepoを生成する。
func NewPostgresAccountRepo(db *sql.DB) *PostgresAccountRepo {
	return &PostgresAccountRepo{db: db}
}

// Create は口座を作成する。
func (r *PostgresAccountRepo) Create(ctx context.Context, account *model.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, user_id, name, type, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		account.ID, account.UserID, account.Name, string(account.Type), account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("口座の作成に失敗しました: %w", err)
	}
	return nil
}

// ListByUserID はユーザーの口座一覧を作成日時の降順で返す。
func (r *PostgresAccountRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, type, created_at, updated_at
		 FROM accounts
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("口座一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	accounts := []*model.Account{}
	for rows.Next() {
		a := &model.Account{}
		var accountType string
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &accountType, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("口座行の読み取りに失敗しました: %w", err)
		}
		a.Type = model.AccountType(accountType)
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("口座一覧の走査に失敗しました: %w", err)
	}
	return accounts, nil
}

// FindByIDAndUserID は所有者が一致する口座を取得する。見つからない場合はnilを返す。
func (r *PostgresAccountRepo) FindByIDAndUserID(ctx context.Context, id, userID string) (*model.Account, error) {
	a := &model.Account{}
	var accountType string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, type, created_at, updated_at
		 FROM accounts
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&a.ID, &a.UserID, &a.Name, &accountType, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("口座の取得に失敗しました: %w", err)
	}
	a.Type = model.AccountType(accountType)
	return a, nil
}

var _ AccountRepository = (*PostgresAccountRepo)(nil)
