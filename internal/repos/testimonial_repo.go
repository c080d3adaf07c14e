package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"nyumba/internal/domain"
	"nyumba/internal/query"
)

const testimonialCols = `ts.id, ts.name, ts.location, ts.rating, ts.text, ts.product_id, ts.image,
  ts.verified, ts.featured, ts.status, ts.created_at, ts.updated_at`

type TestimonialRepo struct{ db *sqlx.DB }

func NewTestimonialRepo(db *sqlx.DB) *TestimonialRepo { return &TestimonialRepo{db: db} }

func (r *TestimonialRepo) List(ctx context.Context, f query.Filter, pg query.Page) ([]domain.Testimonial, int, error) {
	out := []domain.Testimonial{}
	total, err := query.Aggregate("testimonials ts", testimonialCols).
		Match(f).
		Paginate(pg, "id ASC").
		Fetch(ctx, r.db, &out)
	return out, total, err
}

func (r *TestimonialRepo) Get(ctx context.Context, id string) (domain.Testimonial, error) {
	var t domain.Testimonial
	err := r.db.GetContext(ctx, &t, `SELECT `+testimonialCols+` FROM testimonials ts WHERE ts.id = ?`, id)
	return t, err
}

func (r *TestimonialRepo) Create(ctx context.Context, t domain.Testimonial) error {
	_, err := r.db.NamedExecContext(ctx, `
	  INSERT INTO testimonials
	    (id, name, location, rating, text, product_id, image, verified, featured, status, created_at, updated_at)
	  VALUES
	    (:id, :name, :location, :rating, :text, :product_id, :image, :verified, :featured, :status, :created_at, :updated_at)
	`, t)
	return err
}

func (r *TestimonialRepo) Update(ctx context.Context, t domain.Testimonial) (bool, error) {
	res, err := r.db.NamedExecContext(ctx, `
	  UPDATE testimonials SET
	    name=:name, location=:location, rating=:rating, text=:text, product_id=:product_id, image=:image,
	    verified=:verified, featured=:featured, status=:status, updated_at=:updated_at
	  WHERE id=:id
	`, t)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *TestimonialRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM testimonials WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
