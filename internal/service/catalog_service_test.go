package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morphcute/kim-dispo-vape-shop/models"
)

func newCatalogServiceForTest() (*CatalogService, *fakeCatalog) {
	catalog := newFakeCatalog()
	svc := NewCatalogService(
		&fakeCategoryRepo{catalog: catalog},
		&fakeBrandRepo{catalog: catalog},
		&fakeFlavorRepo{catalog: catalog},
		testLogger(),
	)
	return svc, catalog
}

func TestCreateCategory_SlugRules(t *testing.T) {
	svc, _ := newCatalogServiceForTest()

	category, err := svc.CreateCategory(CreateCategoryRequest{Name: "VERSION 2", Slug: "version-2"})
	require.NoError(t, err)
	assert.NotZero(t, category.ID)

	for _, slug := range []string{"", "Version-2", "version_2", "-version", "version-", "ver sion"} {
		_, err := svc.CreateCategory(CreateCategoryRequest{Name: "X", Slug: slug})
		var validationErr *models.ValidationError
		require.ErrorAs(t, err, &validationErr, "slug %q should be rejected", slug)
		assert.Contains(t, validationErr.Fields, "slug")
	}
}

func TestCreateCategory_DuplicateSlug(t *testing.T) {
	svc, _ := newCatalogServiceForTest()

	_, err := svc.CreateCategory(CreateCategoryRequest{Name: "VERSION 1", Slug: "version-1"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(CreateCategoryRequest{Name: "Another", Slug: "version-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCreateBrand_RequiresExistingCategory(t *testing.T) {
	svc, _ := newCatalogServiceForTest()

	_, err := svc.CreateBrand(404, CreateBrandRequest{Name: "XBLACK ELITE"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	category, err := svc.CreateCategory(CreateCategoryRequest{Name: "VERSION 2", Slug: "version-2"})
	require.NoError(t, err)

	brand, err := svc.CreateBrand(category.ID, CreateBrandRequest{Name: "XBLACK ELITE"})
	require.NoError(t, err)
	assert.Equal(t, category.ID, brand.CategoryID)
}

func TestCreateFlavor_Validation(t *testing.T) {
	svc, catalog := newCatalogServiceForTest()
	category, err := svc.CreateCategory(CreateCategoryRequest{Name: "VERSION 2", Slug: "version-2"})
	require.NoError(t, err)
	brand, err := svc.CreateBrand(category.ID, CreateBrandRequest{Name: "XBLACK ELITE"})
	require.NoError(t, err)

	_, err = svc.CreateFlavor(brand.ID, FlavorRequest{
		Stock:        -1,
		CostPrice:    decimal.RequireFromString("-5"),
		SellingPrice: decimal.RequireFromString("-1"),
	})
	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "name")
	assert.Contains(t, validationErr.Fields, "code")
	assert.Contains(t, validationErr.Fields, "stock")
	assert.Contains(t, validationErr.Fields, "cost_price")
	assert.Contains(t, validationErr.Fields, "selling_price")
	assert.Empty(t, catalog.flavors)

	flavor, err := svc.CreateFlavor(brand.ID, FlavorRequest{
		Name:         "BLACK CURRANT",
		Code:         "BLACK WAVE",
		Stock:        2,
		CostPrice:    decimal.RequireFromString("250"),
		SellingPrice: decimal.RequireFromString("399"),
	})
	require.NoError(t, err)
	assert.True(t, flavor.IsActive, "flavors default to active")
}

func TestUpdateFlavor_KeepsBrandAndActiveUnlessSet(t *testing.T) {
	svc, _ := newCatalogServiceForTest()
	category, err := svc.CreateCategory(CreateCategoryRequest{Name: "VERSION 2", Slug: "version-2"})
	require.NoError(t, err)
	brand, err := svc.CreateBrand(category.ID, CreateBrandRequest{Name: "XBLACK ELITE"})
	require.NoError(t, err)
	flavor, err := svc.CreateFlavor(brand.ID, FlavorRequest{
		Name: "MIXED BERRIES", Code: "VERY MORE", Stock: 4,
		SellingPrice: decimal.RequireFromString("399"),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateFlavor(flavor.ID, FlavorRequest{
		Name: "MIXED BERRIES", Code: "VERY MORE", Stock: 10,
		SellingPrice: decimal.RequireFromString("449"),
	})
	require.NoError(t, err)
	assert.Equal(t, 10, updated.Stock)
	assert.Equal(t, brand.ID, updated.BrandID)
	assert.True(t, updated.IsActive, "active flag survives an update that omits it")

	inactive := false
	updated, err = svc.UpdateFlavor(flavor.ID, FlavorRequest{
		Name: "MIXED BERRIES", Code: "VERY MORE", Stock: 10,
		SellingPrice: decimal.RequireFromString("449"),
		IsActive:     &inactive,
	})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}

func TestGetFlavors_InStockOnlyHidesSoldOutAndInactive(t *testing.T) {
	svc, catalog := newCatalogServiceForTest()
	category, err := svc.CreateCategory(CreateCategoryRequest{Name: "VERSION 2", Slug: "version-2"})
	require.NoError(t, err)
	brand, err := svc.CreateBrand(category.ID, CreateBrandRequest{Name: "XBLACK ELITE"})
	require.NoError(t, err)

	catalog.addFlavor(models.Flavor{Name: "IN STOCK", Stock: 3, IsActive: true, BrandID: brand.ID})
	catalog.addFlavor(models.Flavor{Name: "SOLD OUT", Stock: 0, IsActive: true, BrandID: brand.ID})
	catalog.addFlavor(models.Flavor{Name: "RETIRED", Stock: 5, IsActive: false, BrandID: brand.ID})

	all, err := svc.GetFlavors(brand.ID, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	visible, err := svc.GetFlavors(brand.ID, true)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "IN STOCK", visible[0].Name)
}

func TestSeed_IsIdempotent(t *testing.T) {
	svc, catalog := newCatalogServiceForTest()

	require.NoError(t, svc.Seed())
	categories := len(catalog.categories)
	brands := len(catalog.brands)
	flavors := len(catalog.flavors)
	assert.Equal(t, 3, categories)
	assert.Equal(t, 2, brands)
	assert.Equal(t, 3, flavors)

	require.NoError(t, svc.Seed())
	assert.Equal(t, categories, len(catalog.categories))
	assert.Equal(t, brands, len(catalog.brands))
	assert.Equal(t, flavors, len(catalog.flavors))
}
