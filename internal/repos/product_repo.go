package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"nyumba/internal/domain"
	"nyumba/internal/query"
)

const productCols = `p.id, p.name, p.description, p.price, p.original_price, p.on_sale, p.category_id,
  p.material, p.color, p.dimensions, p.images, p.in_stock, p.featured, p.stock_quantity,
  p.created_at, p.updated_at`

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

// List returns one page of products matching f plus the total match count.
func (r *ProductRepo) List(ctx context.Context, f query.Filter, pg query.Page) ([]domain.Product, int, error) {
	out := []domain.Product{}
	total, err := query.Aggregate("products p", productCols).
		Match(f).
		Paginate(pg, "id ASC").
		Fetch(ctx, r.db, &out)
	return out, total, err
}

// All returns every product matching f, newest first.
func (r *ProductRepo) All(ctx context.Context, f query.Filter) ([]domain.Product, error) {
	out := []domain.Product{}
	err := query.Aggregate("products p", productCols).
		Match(f).
		Sort("created_at DESC", "id ASC").
		All(ctx, r.db, &out)
	return out, err
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `SELECT `+productCols+` FROM products p WHERE p.id = ?`, id)
	return p, err
}

// ByIDs loads the given products keyed by id; unknown ids are simply absent.
func (r *ProductRepo) ByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	out := map[string]domain.Product{}
	if len(ids) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(`SELECT `+productCols+` FROM products p WHERE p.id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []domain.Product
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

func (r *ProductRepo) Create(ctx context.Context, p domain.Product) error {
	_, err := r.db.NamedExecContext(ctx, `
	  INSERT INTO products
	    (id, name, description, price, original_price, on_sale, category_id, material, color,
	     dimensions, images, in_stock, featured, stock_quantity, created_at, updated_at)
	  VALUES
	    (:id, :name, :description, :price, :original_price, :on_sale, :category_id, :material, :color,
	     :dimensions, :images, :in_stock, :featured, :stock_quantity, :created_at, :updated_at)
	`, p)
	return err
}

// Update overwrites every mutable column; it reports false when no row has p.ID.
func (r *ProductRepo) Update(ctx context.Context, p domain.Product) (bool, error) {
	res, err := r.db.NamedExecContext(ctx, `
	  UPDATE products SET
	    name=:name, description=:description, price=:price, original_price=:original_price,
	    on_sale=:on_sale, category_id=:category_id, material=:material, color=:color,
	    dimensions=:dimensions, images=:images, in_stock=:in_stock, featured=:featured,
	    stock_quantity=:stock_quantity, updated_at=:updated_at
	  WHERE id=:id
	`, p)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *ProductRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *ProductRepo) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products WHERE category_id = ?`, categoryID)
	return n, err
}

type rankedProduct struct {
	domain.Product
	Rank int `db:"rn"`
}

// TopByCategory returns up to limit products per category, featured first and
// then newest, keyed by category id.
func (r *ProductRepo) TopByCategory(ctx context.Context, categoryIDs []string, limit int) (map[string][]domain.Product, error) {
	out := map[string][]domain.Product{}
	if len(categoryIDs) == 0 || limit <= 0 {
		return out, nil
	}
	q, args, err := sqlx.In(`
	  SELECT * FROM (
	    SELECT `+productCols+`,
	      ROW_NUMBER() OVER (PARTITION BY p.category_id ORDER BY p.featured DESC, p.created_at DESC, p.id ASC) AS rn
	    FROM products p
	    WHERE p.category_id IN (?)
	  ) AS ranked
	  WHERE rn <= ?
	  ORDER BY category_id, rn
	`, categoryIDs, limit)
	if err != nil {
		return nil, err
	}
	var rows []rankedProduct
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(q), args...); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.CategoryID] = append(out[row.CategoryID], row.Product)
	}
	return out, nil
}

// restock adds qty back to a product's stock inside tx and flips it back in
// stock.
func restock(ctx context.Context, tx *sqlx.Tx, productID string, qty int, now string) error {
	_, err := tx.ExecContext(ctx, `
	  UPDATE products
	  SET stock_quantity = stock_quantity + ?, in_stock = 1, updated_at = ?
	  WHERE id = ?
	`, qty, now, productID)
	return err
}
