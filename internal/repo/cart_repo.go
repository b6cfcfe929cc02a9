package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/bijouxelegance/boutique/internal/model"
	"github.com/bijouxelegance/boutique/internal/pkg/dbutil"
	"github.com/bijouxelegance/boutique/internal/pkg/errs"
)

type CartRepo struct {
	db *sql.DB
}

func NewCartRepo(db *sql.DB) *CartRepo {
	return &CartRepo{db: db}
}

func (r *CartRepo) Upsert(ctx context.Context, item *model.CartItem) error {
	const query = `
		INSERT INTO cart_items (session_id, product_id, quantity, mtime)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, product_id) DO UPDATE SET
			quantity = EXCLUDED.quantity,
			mtime = EXCLUDED.mtime
	`
	_, err := r.db.ExecContext(ctx, query, item.SessionID, item.ProductID, item.Quantity, item.Mtime)
	return err
}

func (r *CartRepo) ListBySession(ctx context.Context, sessionID string) ([]model.CartItem, error) {
	where := map[string]interface{}{
		"session_id": sessionID,
		"_orderby":   "mtime desc",
	}
	sqlStr, args, err := builder.BuildSelect("cart_items", where, []string{"session_id", "product_id", "quantity", "mtime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.SessionID, &item.ProductID, &item.Quantity, &item.Mtime); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *CartRepo) Delete(ctx context.Context, sessionID string, productID int64) error {
	where := map[string]interface{}{
		"session_id": sessionID,
		"product_id": productID,
	}
	sqlStr, args, err := builder.BuildDelete("cart_items", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	res, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (r *CartRepo) Count(ctx context.Context, sessionID string) (int, error) {
	const query = `SELECT COALESCE(SUM(quantity), 0) FROM cart_items WHERE session_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, sessionID).Scan(&count); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}
