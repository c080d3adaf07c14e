package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"nyumba/internal/domain"
	"nyumba/internal/query"
)

const tipCols = `t.id, t.slug, t.title, t.content, t.excerpt, t.author, t.category, t.tags, t.featured,
  t.published, t.published_at, t.views, t.read_time, t.image, t.created_at, t.updated_at`

type TipRepo struct{ db *sqlx.DB }

func NewTipRepo(db *sqlx.DB) *TipRepo { return &TipRepo{db: db} }

func (r *TipRepo) List(ctx context.Context, f query.Filter, pg query.Page) ([]domain.Tip, int, error) {
	out := []domain.Tip{}
	total, err := query.Aggregate("tips t", tipCols).
		Match(f).
		Paginate(pg, "id ASC").
		Fetch(ctx, r.db, &out)
	return out, total, err
}

// Categories lists the distinct non-empty categories of tips matching f.
func (r *TipRepo) Categories(ctx context.Context, f query.Filter) ([]string, error) {
	var named query.Filter
	named.Where("t.category <> ''")
	out := []string{}
	err := query.Aggregate("tips t", "t.category AS category").
		Match(f).
		Match(named).
		Group("t.category").
		Sort("category ASC").
		All(ctx, r.db, &out)
	return out, err
}

func (r *TipRepo) Get(ctx context.Context, id string) (domain.Tip, error) {
	var t domain.Tip
	err := r.db.GetContext(ctx, &t, `SELECT `+tipCols+` FROM tips t WHERE t.id = ?`, id)
	return t, err
}

// ViewPublished loads a published tip by slug and counts the read.
func (r *TipRepo) ViewPublished(ctx context.Context, slug string) (domain.Tip, error) {
	var t domain.Tip
	err := r.db.GetContext(ctx, &t, `
	  UPDATE tips SET views = views + 1
	  WHERE slug = ? AND published = 1
	  RETURNING id, slug, title, content, excerpt, author, category, tags, featured,
	    published, published_at, views, read_time, image, created_at, updated_at
	`, slug)
	return t, err
}

func (r *TipRepo) SlugTaken(ctx context.Context, slug, exceptID string) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM tips WHERE slug = ? AND id <> ?`, slug, exceptID)
	return n > 0, err
}

func (r *TipRepo) Create(ctx context.Context, t domain.Tip) error {
	_, err := r.db.NamedExecContext(ctx, `
	  INSERT INTO tips
	    (id, slug, title, content, excerpt, author, category, tags, featured, published, published_at,
	     views, read_time, image, created_at, updated_at)
	  VALUES
	    (:id, :slug, :title, :content, :excerpt, :author, :category, :tags, :featured, :published, :published_at,
	     :views, :read_time, :image, :created_at, :updated_at)
	`, t)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *TipRepo) Update(ctx context.Context, t domain.Tip) (bool, error) {
	res, err := r.db.NamedExecContext(ctx, `
	  UPDATE tips SET
	    slug=:slug, title=:title, content=:content, excerpt=:excerpt, author=:author, category=:category,
	    tags=:tags, featured=:featured, published=:published, published_at=:published_at,
	    read_time=:read_time, image=:image, updated_at=:updated_at
	  WHERE id=:id
	`, t)
	if isUniqueViolation(err) {
		return false, ErrDuplicate
	}
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *TipRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tips WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
