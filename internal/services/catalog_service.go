package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"nyumba/internal/apperr"
	"nyumba/internal/domain"
	"nyumba/internal/query"
	"nyumba/internal/repos"
	"nyumba/internal/validate"
)

const defaultProductLimit = 6

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods}
}

// ---------- Products ----------

// ProductInput carries a create or partial update; nil fields keep their value.
type ProductInput struct {
	Name          *string            `json:"name"`
	Description   *string            `json:"description"`
	Price         *int64             `json:"price"`
	OriginalPrice *int64             `json:"originalPrice"`
	OnSale        *bool              `json:"onSale"`
	CategoryID    *string            `json:"categoryId"`
	Material      *string            `json:"material"`
	Color         *string            `json:"color"`
	Dimensions    *domain.Dimensions `json:"dimensions"`
	Images        []string           `json:"images"`
	InStock       *bool              `json:"inStock"`
	Featured      *bool              `json:"featured"`
	StockQuantity *int               `json:"stockQuantity"`
}

func (in ProductInput) apply(p *domain.Product) {
	setString(&p.Name, in.Name)
	setString(&p.Description, in.Description)
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.OriginalPrice != nil {
		p.OriginalPrice = in.OriginalPrice
	}
	if in.OnSale != nil {
		p.OnSale = *in.OnSale
	}
	setString(&p.CategoryID, in.CategoryID)
	setString(&p.Material, in.Material)
	setString(&p.Color, in.Color)
	if in.Dimensions != nil {
		p.Dimensions = *in.Dimensions
	}
	if in.Images != nil {
		p.Images = domain.StringList(in.Images)
	}
	if in.StockQuantity != nil {
		p.StockQuantity = *in.StockQuantity
		if in.InStock == nil {
			p.InStock = p.StockQuantity > 0
		}
	}
	if in.InStock != nil {
		p.InStock = *in.InStock
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
}

func (s *CatalogService) checkProduct(ctx context.Context, p *domain.Product) error {
	var ok bool
	if p.Name, ok = validate.Name(p.Name, 200); !ok {
		return apperr.Validation("Product name is required")
	}
	if p.Price < 0 {
		return apperr.Validation("Price cannot be negative")
	}
	if p.OriginalPrice != nil && *p.OriginalPrice < 0 {
		return apperr.Validation("Original price cannot be negative")
	}
	if p.StockQuantity < 0 {
		return apperr.Validation("Stock quantity cannot be negative")
	}
	if p.Material != "" && !validate.OneOf(p.Material, domain.Materials) {
		return apperr.Validation("Invalid material: %s", p.Material)
	}
	if p.Color != "" && !validate.OneOf(p.Color, domain.Colors) {
		return apperr.Validation("Invalid color: %s", p.Color)
	}
	if p.CategoryID == "" {
		return apperr.Validation("Category is required")
	}
	if err := checkID(p.CategoryID, "Category"); err != nil {
		return err
	}
	if _, err := s.Cats.Get(ctx, p.CategoryID); errors.Is(err, sql.ErrNoRows) {
		return apperr.Validation("Category not found")
	} else if err != nil {
		return apperr.Upstream("Failed to fetch category", err)
	}
	return nil
}

func (s *CatalogService) ListProducts(ctx context.Context, p query.Params) ([]domain.Product, query.Meta, error) {
	pg := query.ResolvePage(p, query.ProductSort)
	out, total, err := s.Prods.List(ctx, query.ProductFilter(p), pg)
	if err != nil {
		return nil, query.Meta{}, apperr.Upstream("Failed to fetch products", err)
	}
	return out, query.NewMeta(pg, total), nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if err := checkID(id, "Product"); err != nil {
		return domain.Product{}, err
	}
	p, err := s.Prods.Get(ctx, id)
	if err != nil {
		return domain.Product{}, lookupErr(err, "Product")
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	if in.Price == nil {
		return domain.Product{}, apperr.Validation("Price is required")
	}
	now := domain.Now()
	p := domain.Product{ID: domain.NewID(), InStock: true, Images: domain.StringList{}, CreatedAt: now, UpdatedAt: now}
	in.apply(&p)
	if err := s.checkProduct(ctx, &p); err != nil {
		return domain.Product{}, err
	}
	if err := s.Prods.Create(ctx, p); err != nil {
		return domain.Product{}, apperr.Upstream("Failed to create product", err)
	}
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in ProductInput) (domain.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	in.apply(&p)
	if err := s.checkProduct(ctx, &p); err != nil {
		return domain.Product{}, err
	}
	p.UpdatedAt = domain.Now()
	ok, err := s.Prods.Update(ctx, p)
	if err != nil {
		return domain.Product{}, apperr.Upstream("Failed to update product", err)
	}
	if !ok {
		return domain.Product{}, apperr.NotFound("Product not found")
	}
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := checkID(id, "Product"); err != nil {
		return err
	}
	ok, err := s.Prods.Delete(ctx, id)
	if err != nil {
		return apperr.Upstream("Failed to delete product", err)
	}
	if !ok {
		return apperr.NotFound("Product not found")
	}
	return nil
}

// ---------- Categories ----------

type CategoryInput struct {
	Name            *string `json:"name"`
	Slug            *string `json:"slug"`
	Description     *string `json:"description"`
	Image           *string `json:"image"`
	ParentID        *string `json:"parentId"`
	SortOrder       *int    `json:"sortOrder"`
	IsActive        *bool   `json:"isActive"`
	MetaTitle       *string `json:"metaTitle"`
	MetaDescription *string `json:"metaDescription"`
}

func (in CategoryInput) apply(c *domain.Category) {
	setString(&c.Name, in.Name)
	setString(&c.Slug, in.Slug)
	setString(&c.Description, in.Description)
	setString(&c.Image, in.Image)
	if in.ParentID != nil {
		if parent := strings.TrimSpace(*in.ParentID); parent == "" {
			c.ParentID = nil
		} else {
			c.ParentID = &parent
		}
	}
	if in.SortOrder != nil {
		c.SortOrder = *in.SortOrder
	}
	if in.IsActive != nil {
		c.IsActive = *in.IsActive
	}
	setString(&c.MetaTitle, in.MetaTitle)
	setString(&c.MetaDescription, in.MetaDescription)
}

func (s *CatalogService) checkCategory(ctx context.Context, c *domain.Category) error {
	var ok bool
	if c.Name, ok = validate.Name(c.Name, 100); !ok {
		return apperr.Validation("Category name is required")
	}
	if c.Slug == "" {
		c.Slug = validate.Slugify(c.Name)
	} else {
		c.Slug = validate.Slugify(c.Slug)
	}
	if !validate.Slug(c.Slug) {
		return apperr.Validation("Category slug must contain letters or digits")
	}
	taken, err := s.Cats.SlugTaken(ctx, c.Slug, c.ID)
	if err != nil {
		return apperr.Upstream("Failed to check category slug", err)
	}
	if taken {
		return apperr.Conflict("Category with slug %s already exists", c.Slug)
	}
	if c.ParentID != nil {
		if *c.ParentID == c.ID {
			return apperr.Validation("Category cannot be its own parent")
		}
		if err := checkID(*c.ParentID, "Parent category"); err != nil {
			return err
		}
		if _, err := s.Cats.Get(ctx, *c.ParentID); errors.Is(err, sql.ErrNoRows) {
			return apperr.Validation("Parent category not found")
		} else if err != nil {
			return apperr.Upstream("Failed to fetch parent category", err)
		}
	}
	return nil
}

// ListCategories pages categories. includeCount adds productCount per row;
// includeProducts attaches up to productLimit products per category.
func (s *CatalogService) ListCategories(ctx context.Context, p query.Params, public bool) ([]domain.CategoryWithCount, query.Meta, error) {
	pg := query.ResolvePage(p, query.CategorySort)
	withCount := p.Get("includeCount") == "true" || pg.SortBy == "productCount"
	out, total, err := s.Cats.List(ctx, query.CategoryFilter(p, public), pg, withCount)
	if err != nil {
		return nil, query.Meta{}, apperr.Upstream("Failed to fetch categories", err)
	}
	if p.Get("includeProducts") == "true" {
		limit := defaultProductLimit
		if n, ok := query.Int(p.Get("productLimit")); ok && n > 0 {
			limit = min(n, query.MaxLimit)
		}
		if err := s.attachProducts(ctx, out, limit); err != nil {
			return nil, query.Meta{}, err
		}
	}
	return out, query.NewMeta(pg, total), nil
}

func (s *CatalogService) attachProducts(ctx context.Context, cats []domain.CategoryWithCount, limit int) error {
	ids := make([]string, len(cats))
	for i, c := range cats {
		ids[i] = c.ID
	}
	top, err := s.Prods.TopByCategory(ctx, ids, limit)
	if err != nil {
		return apperr.Upstream("Failed to fetch category products", err)
	}
	for i := range cats {
		cats[i].Products = top[cats[i].ID]
		if cats[i].Products == nil {
			cats[i].Products = []domain.Product{}
		}
	}
	return nil
}

func (s *CatalogService) withCount(ctx context.Context, c domain.Category) (domain.CategoryWithCount, error) {
	n, err := s.Prods.CountByCategory(ctx, c.ID)
	if err != nil {
		return domain.CategoryWithCount{}, apperr.Upstream("Failed to count category products", err)
	}
	return domain.CategoryWithCount{Category: c, ProductCount: &n}, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (domain.CategoryWithCount, error) {
	if err := checkID(id, "Category"); err != nil {
		return domain.CategoryWithCount{}, err
	}
	c, err := s.Cats.Get(ctx, id)
	if err != nil {
		return domain.CategoryWithCount{}, lookupErr(err, "Category")
	}
	return s.withCount(ctx, c)
}

// CategoryBySlug is the public detail: active categories only, with their
// leading products attached.
func (s *CatalogService) CategoryBySlug(ctx context.Context, slug string) (domain.CategoryWithCount, error) {
	c, err := s.Cats.BySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return domain.CategoryWithCount{}, lookupErr(err, "Category")
	}
	if !c.IsActive {
		return domain.CategoryWithCount{}, apperr.NotFound("Category not found")
	}
	out, err := s.withCount(ctx, c)
	if err != nil {
		return domain.CategoryWithCount{}, err
	}
	list := []domain.CategoryWithCount{out}
	if err := s.attachProducts(ctx, list, defaultProductLimit); err != nil {
		return domain.CategoryWithCount{}, err
	}
	return list[0], nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (domain.Category, error) {
	now := domain.Now()
	c := domain.Category{ID: domain.NewID(), IsActive: true, CreatedAt: now, UpdatedAt: now}
	in.apply(&c)
	if err := s.checkCategory(ctx, &c); err != nil {
		return domain.Category{}, err
	}
	if err := s.Cats.Create(ctx, c); err != nil {
		if errors.Is(err, repos.ErrDuplicate) {
			return domain.Category{}, apperr.Conflict("Category with slug %s already exists", c.Slug)
		}
		return domain.Category{}, apperr.Upstream("Failed to create category", err)
	}
	return c, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id string, in CategoryInput) (domain.Category, error) {
	cur, err := s.GetCategory(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	c := cur.Category
	in.apply(&c)
	if err := s.checkCategory(ctx, &c); err != nil {
		return domain.Category{}, err
	}
	c.UpdatedAt = domain.Now()
	ok, err := s.Cats.Update(ctx, c)
	if errors.Is(err, repos.ErrDuplicate) {
		return domain.Category{}, apperr.Conflict("Category with slug %s already exists", c.Slug)
	}
	if err != nil {
		return domain.Category{}, apperr.Upstream("Failed to update category", err)
	}
	if !ok {
		return domain.Category{}, apperr.NotFound("Category not found")
	}
	return c, nil
}

// DeleteCategory refuses while products or subcategories still reference it.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if err := checkID(id, "Category"); err != nil {
		return err
	}
	n, err := s.Prods.CountByCategory(ctx, id)
	if err != nil {
		return apperr.Upstream("Failed to count category products", err)
	}
	if n > 0 {
		return apperr.Conflict("Cannot delete category with %d products", n)
	}
	kids, err := s.Cats.CountChildren(ctx, id)
	if err != nil {
		return apperr.Upstream("Failed to count subcategories", err)
	}
	if kids > 0 {
		return apperr.Conflict("Cannot delete category with %d subcategories", kids)
	}
	ok, err := s.Cats.Delete(ctx, id)
	if err != nil {
		return apperr.Upstream("Failed to delete category", err)
	}
	if !ok {
		return apperr.NotFound("Category not found")
	}
	return nil
}
