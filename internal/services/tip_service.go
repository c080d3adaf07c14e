package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"nyumba/internal/apperr"
	"nyumba/internal/domain"
	"nyumba/internal/query"
	"nyumba/internal/repos"
	"nyumba/internal/validate"
)

const (
	minTipContent  = 100
	wordsPerMinute = 200
	excerptLength  = 160
)

type TipInput struct {
	Title     *string  `json:"title"`
	Slug      *string  `json:"slug"`
	Content   *string  `json:"content"`
	Excerpt   *string  `json:"excerpt"`
	Author    *string  `json:"author"`
	Category  *string  `json:"category"`
	Tags      []string `json:"tags"`
	Featured  *bool    `json:"featured"`
	Published *bool    `json:"published"`
	ReadTime  *int     `json:"readTime"`
	Image     *string  `json:"image"`
}

type TipService struct {
	Tips *repos.TipRepo
}

func NewTipService(tips *repos.TipRepo) *TipService { return &TipService{Tips: tips} }

// TipPage is a tips listing with the category facet of the same filter.
type TipPage struct {
	Tips       []domain.Tip
	Categories []string
	Meta       query.Meta
}

func (s *TipService) List(ctx context.Context, p query.Params, public bool) (TipPage, error) {
	pg := query.ResolvePage(p, query.TipSort)
	tips, total, err := s.Tips.List(ctx, query.TipFilter(p, public), pg)
	if err != nil {
		return TipPage{}, apperr.Upstream("Failed to fetch tips", err)
	}
	out := TipPage{Tips: tips, Meta: query.NewMeta(pg, total)}
	if public {
		// the facet spans every published tip
		cats, err := s.Tips.Categories(ctx, query.TipFilter(query.Params{}, true))
		if err != nil {
			return TipPage{}, apperr.Upstream("Failed to fetch tip categories", err)
		}
		out.Categories = cats
	}
	return out, nil
}

func (s *TipService) Get(ctx context.Context, id string) (domain.Tip, error) {
	if err := checkID(id, "Tip"); err != nil {
		return domain.Tip{}, err
	}
	t, err := s.Tips.Get(ctx, id)
	if err != nil {
		return domain.Tip{}, lookupErr(err, "Tip")
	}
	return t, nil
}

// Read is the public detail view: published tips only, and each read counts
// one view.
func (s *TipService) Read(ctx context.Context, slug string) (domain.Tip, error) {
	t, err := s.Tips.ViewPublished(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return domain.Tip{}, lookupErr(err, "Tip")
	}
	return t, nil
}

func (in TipInput) apply(t *domain.Tip) {
	setString(&t.Title, in.Title)
	setString(&t.Slug, in.Slug)
	if in.Content != nil {
		t.Content = strings.TrimSpace(*in.Content)
	}
	setString(&t.Excerpt, in.Excerpt)
	setString(&t.Author, in.Author)
	setString(&t.Category, in.Category)
	if in.Tags != nil {
		tags := make(domain.StringList, 0, len(in.Tags))
		for _, tag := range in.Tags {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
		t.Tags = tags
	}
	if in.Featured != nil {
		t.Featured = *in.Featured
	}
	if in.Published != nil {
		t.Published = *in.Published
	}
	if in.ReadTime != nil {
		t.ReadTime = *in.ReadTime
	}
	setString(&t.Image, in.Image)
}

func (s *TipService) check(ctx context.Context, t *domain.Tip, in TipInput) error {
	var ok bool
	if t.Title, ok = validate.Name(t.Title, 200); !ok {
		return apperr.Validation("Title is required")
	}
	if t.Content == "" {
		return apperr.Validation("Content is required")
	}
	if utf8.RuneCountInString(t.Content) < minTipContent {
		return apperr.Validation("Content must be at least %d characters", minTipContent)
	}
	if t.Slug == "" {
		t.Slug = validate.Slugify(t.Title)
	} else {
		t.Slug = validate.Slugify(t.Slug)
	}
	if !validate.Slug(t.Slug) {
		return apperr.Validation("Slug must contain letters or digits")
	}
	taken, err := s.Tips.SlugTaken(ctx, t.Slug, t.ID)
	if err != nil {
		return apperr.Upstream("Failed to check tip slug", err)
	}
	if taken {
		return apperr.Conflict("Tip with slug %s already exists", t.Slug)
	}
	if t.Excerpt == "" {
		t.Excerpt = Excerpt(t.Content, excerptLength)
	}
	if t.ReadTime < 1 || in.ReadTime == nil && in.Content != nil {
		t.ReadTime = ReadTime(t.Content)
	}
	return nil
}

func (s *TipService) Create(ctx context.Context, in TipInput) (domain.Tip, error) {
	now := domain.Now()
	t := domain.Tip{ID: domain.NewID(), Tags: domain.StringList{}, CreatedAt: now, UpdatedAt: now}
	in.apply(&t)
	if err := s.check(ctx, &t, in); err != nil {
		return domain.Tip{}, err
	}
	if t.Published {
		t.PublishedAt = ptr(now)
	}
	if err := s.Tips.Create(ctx, t); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			return domain.Tip{}, apperr.Conflict("Tip with slug %s already exists", t.Slug)
		}
		return domain.Tip{}, apperr.Upstream("Failed to create tip", err)
	}
	return t, nil
}

// Update stamps publishedAt the first time a tip becomes published and never
// again afterwards.
func (s *TipService) Update(ctx context.Context, id string, in TipInput) (domain.Tip, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return domain.Tip{}, err
	}
	in.apply(&t)
	if err := s.check(ctx, &t, in); err != nil {
		return domain.Tip{}, err
	}
	now := domain.Now()
	if t.Published && t.PublishedAt == nil {
		t.PublishedAt = ptr(now)
	}
	t.UpdatedAt = now
	ok, err := s.Tips.Update(ctx, t)
	if errors.Is(err, repos.ErrDuplicate) {
		return domain.Tip{}, apperr.Conflict("Tip with slug %s already exists", t.Slug)
	}
	if err != nil {
		return domain.Tip{}, apperr.Upstream("Failed to update tip", err)
	}
	if !ok {
		return domain.Tip{}, apperr.NotFound("Tip not found")
	}
	return t, nil
}

func (s *TipService) Delete(ctx context.Context, id string) error {
	if err := checkID(id, "Tip"); err != nil {
		return err
	}
	ok, err := s.Tips.Delete(ctx, id)
	if err != nil {
		return apperr.Upstream("Failed to delete tip", err)
	}
	if !ok {
		return apperr.NotFound("Tip not found")
	}
	return nil
}

// ReadTime estimates minutes to read content, never less than one.
func ReadTime(content string) int {
	words := len(strings.Fields(content))
	return max(1, int(math.Ceil(float64(words)/wordsPerMinute)))
}

// Excerpt cuts content to at most n runes on a word boundary.
func Excerpt(content string, n int) string {
	content = strings.Join(strings.Fields(content), " ")
	if utf8.RuneCountInString(content) <= n {
		return content
	}
	cut := string([]rune(content)[:n])
	if i := strings.LastIndexByte(cut, ' '); i > n/2 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,.;:") + "..."
}
