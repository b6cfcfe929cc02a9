package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/didi/gendry/builder"

	"github.com/bijouxelegance/boutique/internal/model"
	"github.com/bijouxelegance/boutique/internal/pkg/dbutil"
	"github.com/bijouxelegance/boutique/internal/pkg/errs"
)

type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

var categoryFields = []string{"id", "name", "description", "icon_class"}

func (r *CategoryRepo) Create(ctx context.Context, cat *model.Category) (int64, error) {
	const query = `
		INSERT INTO categories (name, description, icon_class)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	var id int64
	if err := r.db.QueryRowContext(ctx, query, cat.Name, cat.Description, cat.IconClass).Scan(&id); err != nil {
		if dbutil.IsConflict(err) {
			return 0, fmt.Errorf("category %q: %w", cat.Name, errs.ErrConflict)
		}
		return 0, err
	}
	return id, nil
}

func (r *CategoryRepo) Update(ctx context.Context, cat *model.Category) error {
	where := map[string]interface{}{
		"id": cat.ID,
	}
	update := map[string]interface{}{
		"name":        cat.Name,
		"description": cat.Description,
		"icon_class":  cat.IconClass,
	}
	sqlStr, args, err := builder.BuildUpdate("categories", where, update)
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

func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	where := map[string]interface{}{
		"id": id,
	}
	sqlStr, args, err := builder.BuildDelete("categories", where)
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

func (r *CategoryRepo) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	where := map[string]interface{}{
		"id": id,
	}
	sqlStr, args, err := builder.BuildSelect("categories", where, categoryFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	var cat model.Category
	if err := row.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.IconClass); err != nil {
		if err == sql.ErrNoRows {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &cat, nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	where := map[string]interface{}{
		"_orderby": "name asc",
	}
	sqlStr, args, err := builder.BuildSelect("categories", where, categoryFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description, &cat.IconClass); err != nil {
			return nil, err
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}
