package services

import (
	"context"
	"strings"

	"nyumba/internal/apperr"
	"nyumba/internal/domain"
	"nyumba/internal/query"
	"nyumba/internal/repos"
	"nyumba/internal/validate"
)

type TestimonialInput struct {
	Name      *string `json:"name"`
	Location  *string `json:"location"`
	Rating    *int    `json:"rating"`
	Text      *string `json:"text"`
	ProductID *string `json:"productId"`
	Image     *string `json:"image"`
	Verified  *bool   `json:"verified"`
	Featured  *bool   `json:"featured"`
	Status    *string `json:"status"`
}

type TestimonialService struct {
	Repo *repos.TestimonialRepo
}

func NewTestimonialService(repo *repos.TestimonialRepo) *TestimonialService {
	return &TestimonialService{Repo: repo}
}

func (s *TestimonialService) List(ctx context.Context, p query.Params) ([]domain.Testimonial, query.Meta, error) {
	pg := query.ResolvePage(p, query.TestimonialSort)
	out, total, err := s.Repo.List(ctx, query.TestimonialFilter(p), pg)
	if err != nil {
		return nil, query.Meta{}, apperr.Upstream("Failed to fetch testimonials", err)
	}
	return out, query.NewMeta(pg, total), nil
}

func (s *TestimonialService) Get(ctx context.Context, id string) (domain.Testimonial, error) {
	if err := checkID(id, "Testimonial"); err != nil {
		return domain.Testimonial{}, err
	}
	t, err := s.Repo.Get(ctx, id)
	if err != nil {
		return domain.Testimonial{}, lookupErr(err, "Testimonial")
	}
	return t, nil
}

func (in TestimonialInput) apply(t *domain.Testimonial) {
	setString(&t.Name, in.Name)
	setString(&t.Location, in.Location)
	if in.Rating != nil {
		t.Rating = *in.Rating
	}
	setString(&t.Text, in.Text)
	if in.ProductID != nil {
		if id := strings.TrimSpace(*in.ProductID); id == "" {
			t.ProductID = nil
		} else {
			t.ProductID = &id
		}
	}
	setString(&t.Image, in.Image)
	if in.Verified != nil {
		t.Verified = *in.Verified
	}
	if in.Featured != nil {
		t.Featured = *in.Featured
	}
	if in.Status != nil {
		t.Status = strings.ToLower(strings.TrimSpace(*in.Status))
	}
}

func checkTestimonial(t *domain.Testimonial) error {
	var ok bool
	if t.Name, ok = validate.Name(t.Name, 100); !ok {
		return apperr.Validation("Name is required")
	}
	if t.Text == "" {
		return apperr.Validation("Text is required")
	}
	if t.Rating < 1 || t.Rating > 5 {
		return apperr.Validation("Rating must be between 1 and 5")
	}
	if !validate.OneOf(t.Status, domain.TestimonialStatuses) {
		return apperr.Validation("Invalid status: %s", t.Status)
	}
	if t.ProductID != nil && !domain.IsID(*t.ProductID) {
		return apperr.Validation("Invalid product ID format")
	}
	return nil
}

func (s *TestimonialService) Create(ctx context.Context, in TestimonialInput) (domain.Testimonial, error) {
	now := domain.Now()
	t := domain.Testimonial{ID: domain.NewID(), Status: domain.TestimonialPending, CreatedAt: now, UpdatedAt: now}
	in.apply(&t)
	if err := checkTestimonial(&t); err != nil {
		return domain.Testimonial{}, err
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return domain.Testimonial{}, apperr.Upstream("Failed to create testimonial", err)
	}
	return t, nil
}

func (s *TestimonialService) Update(ctx context.Context, id string, in TestimonialInput) (domain.Testimonial, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return domain.Testimonial{}, err
	}
	in.apply(&t)
	if err := checkTestimonial(&t); err != nil {
		return domain.Testimonial{}, err
	}
	t.UpdatedAt = domain.Now()
	ok, err := s.Repo.Update(ctx, t)
	if err != nil {
		return domain.Testimonial{}, apperr.Upstream("Failed to update testimonial", err)
	}
	if !ok {
		return domain.Testimonial{}, apperr.NotFound("Testimonial not found")
	}
	return t, nil
}

func (s *TestimonialService) Delete(ctx context.Context, id string) error {
	if err := checkID(id, "Testimonial"); err != nil {
		return err
	}
	ok, err := s.Repo.Delete(ctx, id)
	if err != nil {
		return apperr.Upstream("Failed to delete testimonial", err)
	}
	if !ok {
		return apperr.NotFound("Testimonial not found")
	}
	return nil
}
