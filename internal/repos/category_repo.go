package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"nyumba/internal/domain"
	"nyumba/internal/query"
)

const categoryCols = `c.id, c.name, c.slug, c.description, c.image, c.parent_id, c.sort_order, c.is_active,
  c.meta_title, c.meta_description, c.created_at, c.updated_at`

var categoryOutCols = []string{
	"id", "name", "slug", "description", "image", "parent_id", "sort_order", "is_active",
	"meta_title", "meta_description", "created_at", "updated_at",
}

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// List pages categories matching f. With withCount, each row carries the
// number of products referencing it.
func (r *CategoryRepo) List(ctx context.Context, f query.Filter, pg query.Page, withCount bool) ([]domain.CategoryWithCount, int, error) {
	pl := query.Aggregate("categories c", categoryCols).
		Match(f).
		Lookup("LEFT JOIN products p ON p.category_id = c.id").
		AddFields("COUNT(p.id) AS product_count").
		Group("c.id").
		Paginate(pg, "name ASC", "id ASC")
	if !withCount {
		pl.Project(categoryOutCols...)
	}
	out := []domain.CategoryWithCount{}
	total, err := pl.Fetch(ctx, r.db, &out)
	return out, total, err
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, `SELECT `+categoryCols+` FROM categories c WHERE c.id = ?`, id)
	return c, err
}

func (r *CategoryRepo) BySlug(ctx context.Context, slug string) (domain.Category, error) {
	var c domain.Category
	err := r.db.GetContext(ctx, &c, `SELECT `+categoryCols+` FROM categories c WHERE c.slug = ?`, slug)
	return c, err
}

// SlugTaken reports whether another category (not exceptID) already uses slug.
func (r *CategoryRepo) SlugTaken(ctx context.Context, slug, exceptID string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM categories WHERE slug = ? AND id <> ?`, slug, exceptID)
	return n > 0, err
}

func (r *CategoryRepo) Create(ctx context.Context, c domain.Category) error {
	_, err := r.db.NamedExecContext(ctx, `
	  INSERT INTO categories
	    (id, name, slug, description, image, parent_id, sort_order, is_active, meta_title, meta_description, created_at, updated_at)
	  VALUES
	    (:id, :name, :slug, :description, :image, :parent_id, :sort_order, :is_active, :meta_title, :meta_description, :created_at, :updated_at)
	`, c)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *CategoryRepo) Update(ctx context.Context, c domain.Category) (bool, error) {
	res, err := r.db.NamedExecContext(ctx, `
	  UPDATE categories SET
	    name=:name, slug=:slug, description=:description, image=:image, parent_id=:parent_id,
	    sort_order=:sort_order, is_active=:is_active, meta_title=:meta_title,
	    meta_description=:meta_description, updated_at=:updated_at
	  WHERE id=:id
	`, c)
	if isUniqueViolation(err) {
		return false, ErrDuplicate
	}
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *CategoryRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *CategoryRepo) CountChildren(ctx context.Context, id string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM categories WHERE parent_id = ?`, id)
	return n, err
}
