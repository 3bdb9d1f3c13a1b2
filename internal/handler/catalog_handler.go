package handler

import (
	"net/http"

	"github.com/morphcute/kim-dispo-vape-shop/internal/service"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/logger"
)

// CatalogHandler serves category, brand and flavor endpoints.
type CatalogHandler struct {
	catalogService service.CatalogServiceInterface
	logger         *logger.Logger
}

func NewCatalogHandler(catalogService service.CatalogServiceInterface, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         log.WithComponent("catalog_handler"),
	}
}

// GetCategories handles GET /api/categories
func (h *CatalogHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.GetCategories()
	if err != nil {
		h.logger.Error("Failed to get categories", "error", err)
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	writeJSONResponse(h.logger, w, http.StatusOK, categories)
}

// CreateCategory handles POST /api/categories
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCategoryRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	category, err := h.catalogService.CreateCategory(req)
	if err != nil {
		h.logger.Warn("Failed to create category", "error", err)
		writeDomainError(h.logger, w, err)
		return
	}

	h.logger.Info("Category created", "id", category.ID, "slug", category.Slug)
	writeJSONResponse(h.logger, w, http.StatusCreated, category)
}

// DeleteCategory handles DELETE /api/categories/{id}
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	if err := h.catalogService.DeleteCategory(id); err != nil {
		h.logger.Warn("Failed to delete category", "id", id, "error", err)
		writeDomainError(h.logger, w, err)
		return
	}

	h.logger.Info("Category deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// GetBrands handles GET /api/categories/{id}/brands
func (h *CatalogHandler) GetBrands(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseIDParam(r, "id")
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	brands, err := h.catalogService.GetBrands(categoryID)
	if err != nil {
		h.logger.Warn("Failed to get brands", "category_id", categoryID, "error", err)
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSONResponse(h.logger, w, http.StatusOK, brands)
}

// CreateBrand handles POST /api/categories/{id}/brands
func (h *CatalogHandler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseIDParam(r, "id")
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid category ID")
		return
	}

	var req service.CreateBrandRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	brand, err := h.catalogService.CreateBrand(categoryID, req)
	if err != nil {
		h.logger.Warn("Failed to create brand", "category_id", categoryID, "error", err)
		writeDomainError(h.logger, w, err)
		return
	}

	h.logger.Info("Brand created", "id", brand.ID, "name", brand.Name)
	writeJSONResponse(h.logger, w, http.StatusCreated, brand)
}

// GetBrand handles GET /api/brands/{id}
func (h *CatalogHandler) GetBrand(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid brand ID")
		return
	}

	brand, err := h.catalogService.GetBrand(id)
	if err != nil {
		h.logger.Warn("Failed to get brand", "id", id, "error", err)
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSONResponse(h.logger, w, http.StatusOK, brand)
}

// DeleteBrand handles DELETE /api/brands/{id}
func (h *CatalogHandler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid brand ID")
		return
	}

	if err := h.catalogService.DeleteBrand(id); err != nil {
		h.logger.Warn("Failed to delete brand", "id", id, "error", err)
		writeDomainError(h.logger, w, err)
		return
	}

	h.logger.Info("Brand deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// GetFlavors handles GET /api/brands/{id}/flavors. The storefront passes
// in_stock=true to hide sold-out and inactive flavors; admin omits it.
func (h *CatalogHandler) GetFlavors(w http.ResponseWriter, r *http.Request) {
	brandID, err := parseIDParam(r, "id")
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid brand ID")
		return
	}

	inStockOnly := r.URL.Query().Get("in_stock") == "true"

	flavors, err := h.catalogService.GetFlavors(brandID, inStockOnly)
	if err != nil {
		h.logger.Warn("Failed to get flavors", "brand_id", brandID, "error", err)
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSONResponse(h.logger, w, http.StatusOK, flavors)
}

// CreateFlavor handles POST /api/brands/{id}/flavors
func (h *CatalogHandler) CreateFlavor(w http.ResponseWriter, r *http.Request) {
	brandID, err := parseIDParam(r, "id")
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid brand ID")
		return
	}

	var req service.FlavorRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	flavor, err := h.catalogService.CreateFlavor(brandID, req)
	if err != nil {
		h.logger.Warn("Failed to create flavor", "brand_id", brandID, "error", err)
		writeDomainError(h.logger, w, err)
		return
	}

	h.logger.Info("Flavor created", "id", flavor.ID, "code", flavor.Code)
	writeJSONResponse(h.logger, w, http.StatusCreated, flavor)
}

// GetFlavor handles GET /api/flavors/{id}
func (h *CatalogHandler) GetFlavor(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid flavor ID")
		return
	}

	flavor, err := h.catalogService.GetFlavor(id)
	if err != nil {
		h.logger.Warn("Failed to get flavor", "id", id, "error", err)
		writeDomainError(h.logger, w, err)
		return
	}
	writeJSONResponse(h.logger, w, http.StatusOK, flavor)
}

// UpdateFlavor handles PUT /api/flavors/{id}
func (h *CatalogHandler) UpdateFlavor(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid flavor ID")
		return
	}

	var req service.FlavorRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	flavor, err := h.catalogService.UpdateFlavor(id, req)
	if err != nil {
		h.logger.Warn("Failed to update flavor", "id", id, "error", err)
		writeDomainError(h.logger, w, err)
		return
	}

	h.logger.Info("Flavor updated", "id", id)
	writeJSONResponse(h.logger, w, http.StatusOK, flavor)
}

// DeleteFlavor handles DELETE /api/flavors/{id}
func (h *CatalogHandler) DeleteFlavor(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid flavor ID")
		return
	}

	if err := h.catalogService.DeleteFlavor(id); err != nil {
		h.logger.Warn("Failed to delete flavor", "id", id, "error", err)
		writeDomainError(h.logger, w, err)
		return
	}

	h.logger.Info("Flavor deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// Seed handles POST /api/admin/seed
func (h *CatalogHandler) Seed(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogService.Seed(); err != nil {
		h.logger.Error("Seeding failed", "error", err)
		writeErrorResponse(h.logger, w, http.StatusInternalServerError, "Seeding failed")
		return
	}

	h.logger.Info("Catalog seeded")
	writeJSONResponse(h.logger, w, http.StatusOK, map[string]string{"message": "Catalog seeded"})
}
