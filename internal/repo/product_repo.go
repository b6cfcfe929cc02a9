package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"
	"github.com/lib/pq"

	"github.com/bijouxelegance/boutique/internal/model"
	"github.com/bijouxelegance/boutique/internal/pkg/dbutil"
	"github.com/bijouxelegance/boutique/internal/pkg/errs"
)

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

var productFields = []string{"id", "name", "description", "price", "old_price", "category_id", "image_key", "stock", "is_featured", "ctime", "mtime"}

func (r *ProductRepo) Create(ctx context.Context, p *model.Product) (int64, error) {
	const query = `
		INSERT INTO products (name, description, price, old_price, category_id, image_key, stock, is_featured, ctime, mtime)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Price, p.OldPrice, p.CategoryID, p.ImageKey, p.Stock, p.IsFeatured, p.Ctime, p.Mtime,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *ProductRepo) Update(ctx context.Context, p *model.Product) error {
	where := map[string]interface{}{
		"id": p.ID,
	}
	update := map[string]interface{}{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"old_price":   p.OldPrice,
		"category_id": p.CategoryID,
		"image_key":   p.ImageKey,
		"stock":       p.Stock,
		"is_featured": p.IsFeatured,
		"mtime":       p.Mtime,
	}
	sqlStr, args, err := builder.BuildUpdate("products", where, update)
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

func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	where := map[string]interface{}{
		"id": id,
	}
	sqlStr, args, err := builder.BuildDelete("products", where)
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

func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	where := map[string]interface{}{
		"id": id,
	}
	sqlStr, args, err := builder.BuildSelect("products", where, productFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	row := r.db.QueryRowContext(ctx, sqlStr, args...)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProductRepo) List(ctx context.Context, categoryID int64) ([]model.Product, error) {
	where := map[string]interface{}{
		"_orderby": "id desc",
	}
	if categoryID > 0 {
		where["category_id"] = categoryID
	}
	sqlStr, args, err := builder.BuildSelect("products", where, productFields)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.OldPrice, &p.CategoryID, &p.ImageKey, &p.Stock, &p.IsFeatured, &p.Ctime, &p.Mtime); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

const factQuery = `
	SELECT p.id, p.name, p.description, p.price, COALESCE(c.name, ''), p.stock, p.is_featured
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id
`

// FindFactsByIDs resolves catalog rows for the given ids. Missing ids are
// simply absent from the result; callers tolerate partial resolution.
func (r *ProductRepo) FindFactsByIDs(ctx context.Context, ids []int64) ([]model.ProductFact, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.db.QueryContext(ctx, factQuery+` WHERE p.id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFacts(rows)
}

func (r *ProductRepo) FindFeaturedFacts(ctx context.Context, limit int) ([]model.ProductFact, error) {
	rows, err := r.db.QueryContext(ctx, factQuery+` WHERE p.is_featured ORDER BY p.id LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFacts(rows)
}

func (r *ProductRepo) FindAllFacts(ctx context.Context) ([]model.ProductFact, error) {
	rows, err := r.db.QueryContext(ctx, factQuery+` ORDER BY p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFacts(rows)
}

func scanFacts(rows *sql.Rows) ([]model.ProductFact, error) {
	var facts []model.ProductFact
	for rows.Next() {
		var f model.ProductFact
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.Price, &f.Category, &f.Stock, &f.IsFeatured); err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var p model.Product
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.OldPrice, &p.CategoryID, &p.ImageKey, &p.Stock, &p.IsFeatured, &p.Ctime, &p.Mtime); err != nil {
		return nil, err
	}
	return &p, nil
}
