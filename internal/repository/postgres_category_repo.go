package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/kakeibo/internal/model"
)

// PostgresCategoryRepo はPostgreSQLを使用した取引カテゴリリポジトリ。
type PostgresCategoryRepo struct {
	db *sql.DB
}

// NewPostgresCategoryRepo はPostgresCategoryRepoを生成する。
func NewPostgresCategoryRepo(db *sql.DB) *PostgresCategoryRepo {
	return &PostgresCategoryRepo{db: db}
}

// FindByName はカテゴリ名で検索する。見つからない場合はnilを返す。
func (r *PostgresCategoryRepo) FindByName(ctx context.Context, name model.CategoryName) (*model.Category, error) {
	c := &model.Category{}
	var n string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM transaction_categories WHERE name = $1`,
		string(name),
	).Scan(&c.ID, &n)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("カテゴリの取得に失敗しました: %w", err)
	}
	c.Name = model.CategoryName(n)
	return c, nil
}

var _ CategoryRepository = (*PostgresCategoryRepo)(nil)
