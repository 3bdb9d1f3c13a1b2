package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/morphcute/kim-dispo-vape-shop/models"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/database"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/logger"
)

type FlavorRepositoryInterface interface {
	GetByBrandID(brandID int64, inStockOnly bool) ([]*models.Flavor, error)
	GetByID(id int64) (*models.Flavor, error)
	GetLowStock(threshold int) ([]*models.Flavor, error)
	Add(flavor *models.Flavor) error
	Update(id int64, flavor *models.Flavor) error
	Delete(id int64) error
}

type FlavorRepository struct {
	logger *logger.Logger
	db     *database.DB
}

func NewFlavorRepository(logger *logger.Logger, db *database.DB) *FlavorRepository {
	return &FlavorRepository{
		logger: logger.WithComponent("flavor_repository"),
		db:     db,
	}
}

// GetByBrandID retrieves the flavors of one brand. The storefront passes
// inStockOnly so sold-out flavors disappear from the shop without the
// admin losing sight of them.
func (r *FlavorRepository) GetByBrandID(brandID int64, inStockOnly bool) ([]*models.Flavor, error) {
	r.logger.Debug("Retrieving flavors for brand", "brand_id", brandID, "in_stock_only", inStockOnly)

	query := `
		SELECT id, name, code, stock, cost_price, selling_price, is_active, brand_id
		FROM flavors
		WHERE brand_id = $1
	`
	if inStockOnly {
		query += ` AND stock > 0 AND is_active`
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(query, brandID)
	if err != nil {
		r.logger.Error("Failed to query flavors", "error", err, "brand_id", brandID)
		return nil, fmt.Errorf("failed to query flavors: %v", err)
	}
	defer rows.Close()

	flavors, err := r.scanFlavors(rows)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Retrieved flavors", "brand_id", brandID, "count", len(flavors))
	return flavors, nil
}

// GetByID retrieves a single flavor by ID
func (r *FlavorRepository) GetByID(id int64) (*models.Flavor, error) {
	query := `
		SELECT id, name, code, stock, cost_price, selling_price, is_active, brand_id
		FROM flavors
		WHERE id = $1
	`

	flavor := &models.Flavor{}
	err := r.db.QueryRow(query, id).Scan(
		&flavor.ID,
		&flavor.Name,
		&flavor.Code,
		&flavor.Stock,
		&flavor.CostPrice,
		&flavor.SellingPrice,
		&flavor.IsActive,
		&flavor.BrandID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("Flavor not found", "flavor_id", id)
			return nil, fmt.Errorf("flavor %d: %w", id, models.ErrNotFound)
		}
		r.logger.Error("Failed to retrieve flavor", "error", err, "flavor_id", id)
		return nil, fmt.Errorf("failed to retrieve flavor: %v", err)
	}

	return flavor, nil
}

// GetLowStock retrieves active flavors at or below the given stock level
func (r *FlavorRepository) GetLowStock(threshold int) ([]*models.Flavor, error) {
	r.logger.Debug("Retrieving low-stock flavors", "threshold", threshold)

	query := `
		SELECT id, name, code, stock, cost_price, selling_price, is_active, brand_id
		FROM flavors
		WHERE stock <= $1 AND is_active
		ORDER BY stock, id
	`

	rows, err := r.db.Query(query, threshold)
	if err != nil {
		r.logger.Error("Failed to query low-stock flavors", "error", err)
		return nil, fmt.Errorf("failed to query low-stock flavors: %v", err)
	}
	defer rows.Close()

	return r.scanFlavors(rows)
}

// Add inserts a new flavor and fills in the generated ID
func (r *FlavorRepository) Add(flavor *models.Flavor) error {
	r.logger.Debug("Adding new flavor to database", "name", flavor.Name, "brand_id", flavor.BrandID)

	query := `
		INSERT INTO flavors (name, code, stock, cost_price, selling_price, is_active, brand_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.db.QueryRow(query,
		flavor.Name,
		flavor.Code,
		flavor.Stock,
		flavor.CostPrice,
		flavor.SellingPrice,
		flavor.IsActive,
		flavor.BrandID,
	).Scan(&flavor.ID)
	if err != nil {
		r.logger.Error("Failed to add flavor", "error", err, "name", flavor.Name)
		return fmt.Errorf("failed to add flavor: %v", err)
	}

	r.logger.Info("Added new flavor", "flavor_id", flavor.ID, "name", flavor.Name)
	return nil
}

// Update replaces the mutable fields of a flavor. Stock set here is the
// admin correcting the count; customer-facing stock changes only go
// through the order transaction.
func (r *FlavorRepository) Update(id int64, flavor *models.Flavor) error {
	r.logger.Debug("Updating flavor in database", "flavor_id", id)

	flavor.ID = id

	query := `
		UPDATE flavors
		SET name = $1, code = $2, stock = $3, cost_price = $4, selling_price = $5, is_active = $6
		WHERE id = $7
	`

	result, err := r.db.Exec(query,
		flavor.Name,
		flavor.Code,
		flavor.Stock,
		flavor.CostPrice,
		flavor.SellingPrice,
		flavor.IsActive,
		id,
	)
	if err != nil {
		r.logger.Error("Failed to update flavor", "error", err, "flavor_id", id)
		return fmt.Errorf("failed to update flavor: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}

	if rowsAffected == 0 {
		r.logger.Warn("Attempted to update non-existent flavor", "flavor_id", id)
		return fmt.Errorf("flavor %d: %w", id, models.ErrNotFound)
	}

	r.logger.Info("Updated flavor", "flavor_id", id, "name", flavor.Name)
	return nil
}

// Delete removes a flavor by ID
func (r *FlavorRepository) Delete(id int64) error {
	r.logger.Debug("Deleting flavor from database", "flavor_id", id)

	query := `DELETE FROM flavors WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		r.logger.Error("Failed to delete flavor", "error", err, "flavor_id", id)
		return fmt.Errorf("failed to delete flavor: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}

	if rowsAffected == 0 {
		r.logger.Warn("Attempted to delete non-existent flavor", "flavor_id", id)
		return fmt.Errorf("flavor %d: %w", id, models.ErrNotFound)
	}

	r.logger.Info("Deleted flavor", "flavor_id", id)
	return nil
}

func (r *FlavorRepository) scanFlavors(rows *sql.Rows) ([]*models.Flavor, error) {
	var flavors []*models.Flavor
	for rows.Next() {
		flavor := &models.Flavor{}
		err := rows.Scan(
			&flavor.ID,
			&flavor.Name,
			&flavor.Code,
			&flavor.Stock,
			&flavor.CostPrice,
			&flavor.SellingPrice,
			&flavor.IsActive,
			&flavor.BrandID,
		)
		if err != nil {
			r.logger.Error("Failed to scan flavor", "error", err)
			return nil, fmt.Errorf("failed to scan flavor: %v", err)
		}
		flavors = append(flavors, flavor)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating flavor rows", "error", err)
		return nil, fmt.Errorf("error iterating flavor rows: %v", err)
	}

	return flavors, nil
}
