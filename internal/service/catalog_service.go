package service

import (
	"errors"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/morphcute/kim-dispo-vape-shop/internal/repositories"
	"github.com/morphcute/kim-dispo-vape-shop/models"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/logger"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// CreateCategoryRequest is the admin payload for a new category.
type CreateCategoryRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CreateBrandRequest is the admin payload for a new brand under a category.
type CreateBrandRequest struct {
	Name   string `json:"name"`
	Poster string `json:"poster"`
}

// FlavorRequest is the admin payload for creating or updating a flavor.
type FlavorRequest struct {
	Name         string          `json:"name"`
	Code         string          `json:"code"`
	Stock        int             `json:"stock"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	IsActive     *bool           `json:"is_active"`
}

// CatalogService interface
type CatalogServiceInterface interface {
	GetCategories() ([]*models.Category, error)
	CreateCategory(req CreateCategoryRequest) (*models.Category, error)
	DeleteCategory(id int64) error

	GetBrands(categoryID int64) ([]*models.Brand, error)
	GetBrand(id int64) (*models.Brand, error)
	CreateBrand(categoryID int64, req CreateBrandRequest) (*models.Brand, error)
	SetBrandPoster(id int64, poster string) error
	DeleteBrand(id int64) error

	GetFlavors(brandID int64, inStockOnly bool) ([]*models.Flavor, error)
	GetFlavor(id int64) (*models.Flavor, error)
	CreateFlavor(brandID int64, req FlavorRequest) (*models.Flavor, error)
	UpdateFlavor(id int64, req FlavorRequest) (*models.Flavor, error)
	DeleteFlavor(id int64) error

	Seed() error
}

// CatalogService is admin CRUD glue over the category, brand and flavor
// repositories. Stock here only changes through explicit admin edits;
// the order pipeline owns customer-facing stock movement.
type CatalogService struct {
	categoryRepo repositories.CategoryRepositoryInterface
	brandRepo    repositories.BrandRepositoryInterface
	flavorRepo   repositories.FlavorRepositoryInterface
	logger       *logger.Logger
}

func NewCatalogService(categoryRepo repositories.CategoryRepositoryInterface, brandRepo repositories.BrandRepositoryInterface, flavorRepo repositories.FlavorRepositoryInterface, logger *logger.Logger) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		brandRepo:    brandRepo,
		flavorRepo:   flavorRepo,
		logger:       logger.WithComponent("catalog_service"),
	}
}

// GetCategories lists all categories
func (s *CatalogService) GetCategories() ([]*models.Category, error) {
	return s.categoryRepo.GetAll()
}

// CreateCategory creates a new category
func (s *CatalogService) CreateCategory(req CreateCategoryRequest) (*models.Category, error) {
	verr := models.NewValidationError()
	if req.Name == "" {
		verr.Add("name", "name is required")
	}
	if req.Slug == "" {
		verr.Add("slug", "slug is required")
	} else if !slugPattern.MatchString(req.Slug) {
		verr.Add("slug", "slug must be lowercase letters, digits and hyphens")
	}
	if verr.HasErrors() {
		s.logger.Warn("Create category failed: invalid data", "error", verr)
		return nil, verr
	}

	category := &models.Category{Name: req.Name, Slug: req.Slug}
	if err := s.categoryRepo.Add(category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory deletes a category; brands and flavors cascade away
func (s *CatalogService) DeleteCategory(id int64) error {
	s.logger.Info("Deleting category", "category_id", id)
	return s.categoryRepo.Delete(id)
}

// GetBrands lists the brands of one category
func (s *CatalogService) GetBrands(categoryID int64) ([]*models.Brand, error) {
	if _, err := s.categoryRepo.GetByID(categoryID); err != nil {
		return nil, err
	}
	return s.brandRepo.GetByCategoryID(categoryID)
}

// GetBrand retrieves one brand with its category resolved
func (s *CatalogService) GetBrand(id int64) (*models.Brand, error) {
	return s.brandRepo.GetByID(id)
}

// CreateBrand creates a new brand under a category
func (s *CatalogService) CreateBrand(categoryID int64, req CreateBrandRequest) (*models.Brand, error) {
	verr := models.NewValidationError()
	if req.Name == "" {
		verr.Add("name", "name is required")
	}
	if verr.HasErrors() {
		s.logger.Warn("Create brand failed: invalid data", "error", verr)
		return nil, verr
	}

	if _, err := s.categoryRepo.GetByID(categoryID); err != nil {
		return nil, err
	}

	brand := &models.Brand{Name: req.Name, Poster: req.Poster, CategoryID: categoryID}
	if err := s.brandRepo.Add(brand); err != nil {
		return nil, err
	}
	return brand, nil
}

// SetBrandPoster stores the public poster URL of a brand
func (s *CatalogService) SetBrandPoster(id int64, poster string) error {
	return s.brandRepo.UpdatePoster(id, poster)
}

// DeleteBrand deletes a brand; its flavors cascade away
func (s *CatalogService) DeleteBrand(id int64) error {
	s.logger.Info("Deleting brand", "brand_id", id)
	return s.brandRepo.Delete(id)
}

// GetFlavors lists the flavors of one brand. The storefront passes
// inStockOnly=true so sold-out flavors are hidden from customers.
func (s *CatalogService) GetFlavors(brandID int64, inStockOnly bool) ([]*models.Flavor, error) {
	if _, err := s.brandRepo.GetByID(brandID); err != nil {
		return nil, err
	}
	return s.flavorRepo.GetByBrandID(brandID, inStockOnly)
}

// GetFlavor retrieves one flavor
func (s *CatalogService) GetFlavor(id int64) (*models.Flavor, error) {
	return s.flavorRepo.GetByID(id)
}

// CreateFlavor creates a new flavor under a brand
func (s *CatalogService) CreateFlavor(brandID int64, req FlavorRequest) (*models.Flavor, error) {
	if err := validateFlavor(req); err != nil {
		s.logger.Warn("Create flavor failed: invalid data", "error", err)
		return nil, err
	}

	if _, err := s.brandRepo.GetByID(brandID); err != nil {
		return nil, err
	}

	flavor := &models.Flavor{
		Name:         req.Name,
		Code:         req.Code,
		Stock:        req.Stock,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		IsActive:     true,
		BrandID:      brandID,
	}
	if req.IsActive != nil {
		flavor.IsActive = *req.IsActive
	}

	if err := s.flavorRepo.Add(flavor); err != nil {
		return nil, err
	}
	return flavor, nil
}

// UpdateFlavor replaces the mutable fields of a flavor
func (s *CatalogService) UpdateFlavor(id int64, req FlavorRequest) (*models.Flavor, error) {
	if err := validateFlavor(req); err != nil {
		s.logger.Warn("Update flavor failed: invalid data", "flavor_id", id, "error", err)
		return nil, err
	}

	existing, err := s.flavorRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	flavor := &models.Flavor{
		Name:         req.Name,
		Code:         req.Code,
		Stock:        req.Stock,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		IsActive:     existing.IsActive,
		BrandID:      existing.BrandID,
	}
	if req.IsActive != nil {
		flavor.IsActive = *req.IsActive
	}

	if err := s.flavorRepo.Update(id, flavor); err != nil {
		return nil, err
	}
	return flavor, nil
}

// DeleteFlavor deletes a flavor
func (s *CatalogService) DeleteFlavor(id int64) error {
	s.logger.Info("Deleting flavor", "flavor_id", id)
	return s.flavorRepo.Delete(id)
}

func validateFlavor(req FlavorRequest) error {
	verr := models.NewValidationError()
	if req.Name == "" {
		verr.Add("name", "name is required")
	}
	if req.Code == "" {
		verr.Add("code", "code is required")
	}
	if req.Stock < 0 {
		verr.Add("stock", "stock cannot be negative")
	}
	if req.CostPrice.IsNegative() {
		verr.Add("cost_price", "cost price cannot be negative")
	}
	if req.SellingPrice.IsNegative() {
		verr.Add("selling_price", "selling price cannot be negative")
	}
	if verr.HasErrors() {
		return verr
	}
	return nil
}

// Seed inserts the base catalog. It only creates what is missing (keyed
// by category slug) so running it twice does not clone rows.
func (s *CatalogService) Seed() error {
	s.logger.Info("Seeding base catalog")

	type seedFlavor struct {
		name, code string
		stock      int
	}
	type seedBrand struct {
		name    string
		flavors []seedFlavor
	}
	type seedCategory struct {
		slug, name string
		brands     []seedBrand
	}

	seed := []seedCategory{
		{slug: "version-1", name: "VERSION 1"},
		{slug: "version-2", name: "VERSION 2", brands: []seedBrand{
			{name: "XBLACK ELITE 12000", flavors: []seedFlavor{
				{name: "BLACK CURRANT", code: "BLACK WAVE", stock: 2},
				{name: "MIXED BERRIES", code: "VERY MORE", stock: 4},
				{name: "STRAWBERRY", code: "VERY BAGUIO", stock: 9},
			}},
			{name: "FROST ELITE 20000"},
		}},
		{slug: "disposable-vape", name: "DISPOSABLE VAPE"},
	}

	for _, sc := range seed {
		if _, err := s.categoryRepo.GetBySlug(sc.slug); err == nil {
			continue
		} else if !errors.Is(err, models.ErrNotFound) {
			return err
		}

		category := &models.Category{Name: sc.name, Slug: sc.slug}
		if err := s.categoryRepo.Add(category); err != nil {
			return err
		}

		for _, sb := range sc.brands {
			brand := &models.Brand{Name: sb.name, CategoryID: category.ID}
			if err := s.brandRepo.Add(brand); err != nil {
				return err
			}

			for _, sf := range sb.flavors {
				flavor := &models.Flavor{
					Name:     sf.name,
					Code:     sf.code,
					Stock:    sf.stock,
					IsActive: true,
					BrandID:  brand.ID,
				}
				if err := s.flavorRepo.Add(flavor); err != nil {
					return err
				}
			}
		}
	}

	s.logger.Info("Seed complete")
	return nil
}
