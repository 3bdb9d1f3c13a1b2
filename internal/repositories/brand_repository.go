package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/morphcute/kim-dispo-vape-shop/models"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/database"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/logger"
)

type BrandRepositoryInterface interface {
	GetByCategoryID(categoryID int64) ([]*models.Brand, error)
	GetByID(id int64) (*models.Brand, error)
	Add(brand *models.Brand) error
	UpdatePoster(id int64, poster string) error
	Delete(id int64) error
}

type BrandRepository struct {
	logger *logger.Logger
	db     *database.DB
}

func NewBrandRepository(logger *logger.Logger, db *database.DB) *BrandRepository {
	return &BrandRepository{
		logger: logger.WithComponent("brand_repository"),
		db:     db,
	}
}

// GetByCategoryID retrieves all brands of one category ordered by id
func (r *BrandRepository) GetByCategoryID(categoryID int64) ([]*models.Brand, error) {
	r.logger.Debug("Retrieving brands for category", "category_id", categoryID)

	query := `
		SELECT id, name, COALESCE(poster, ''), category_id
		FROM brands
		WHERE category_id = $1
		ORDER BY id
	`

	rows, err := r.db.Query(query, categoryID)
	if err != nil {
		r.logger.Error("Failed to query brands", "error", err, "category_id", categoryID)
		return nil, fmt.Errorf("failed to query brands: %v", err)
	}
	defer rows.Close()

	var brands []*models.Brand
	for rows.Next() {
		brand := &models.Brand{}
		if err := rows.Scan(&brand.ID, &brand.Name, &brand.Poster, &brand.CategoryID); err != nil {
			r.logger.Error("Failed to scan brand", "error", err)
			return nil, fmt.Errorf("failed to scan brand: %v", err)
		}
		brands = append(brands, brand)
	}

	if err = rows.Err(); err != nil {
		r.logger.Error("Error iterating brand rows", "error", err)
		return nil, fmt.Errorf("error iterating brand rows: %v", err)
	}

	r.logger.Debug("Retrieved brands", "category_id", categoryID, "count", len(brands))
	return brands, nil
}

// GetByID retrieves a single brand with its category resolved
func (r *BrandRepository) GetByID(id int64) (*models.Brand, error) {
	query := `
		SELECT b.id, b.name, COALESCE(b.poster, ''), b.category_id,
		       c.id, c.name, c.slug
		FROM brands b
		JOIN categories c ON c.id = b.category_id
		WHERE b.id = $1
	`

	brand := &models.Brand{Category: &models.Category{}}
	err := r.db.QueryRow(query, id).Scan(
		&brand.ID,
		&brand.Name,
		&brand.Poster,
		&brand.CategoryID,
		&brand.Category.ID,
		&brand.Category.Name,
		&brand.Category.Slug,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("Brand not found", "brand_id", id)
			return nil, fmt.Errorf("brand %d: %w", id, models.ErrNotFound)
		}
		r.logger.Error("Failed to retrieve brand", "error", err, "brand_id", id)
		return nil, fmt.Errorf("failed to retrieve brand: %v", err)
	}

	return brand, nil
}

// Add inserts a new brand and fills in the generated ID
func (r *BrandRepository) Add(brand *models.Brand) error {
	r.logger.Debug("Adding new brand to database", "name", brand.Name, "category_id", brand.CategoryID)

	query := `
		INSERT INTO brands (name, poster, category_id)
		VALUES ($1, NULLIF($2, ''), $3)
		RETURNING id
	`

	err := r.db.QueryRow(query, brand.Name, brand.Poster, brand.CategoryID).Scan(&brand.ID)
	if err != nil {
		r.logger.Error("Failed to add brand", "error", err, "name", brand.Name)
		return fmt.Errorf("failed to add brand: %v", err)
	}

	r.logger.Info("Added new brand", "brand_id", brand.ID, "name", brand.Name)
	return nil
}

// UpdatePoster sets the poster URL of a brand
func (r *BrandRepository) UpdatePoster(id int64, poster string) error {
	r.logger.Debug("Updating brand poster", "brand_id", id)

	query := `UPDATE brands SET poster = NULLIF($1, '') WHERE id = $2`

	result, err := r.db.Exec(query, poster, id)
	if err != nil {
		r.logger.Error("Failed to update brand poster", "error", err, "brand_id", id)
		return fmt.Errorf("failed to update brand poster: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}

	if rowsAffected == 0 {
		r.logger.Warn("Attempted to update poster of non-existent brand", "brand_id", id)
		return fmt.Errorf("brand %d: %w", id, models.ErrNotFound)
	}

	r.logger.Info("Updated brand poster", "brand_id", id)
	return nil
}

// Delete removes a brand; its flavors cascade away
func (r *BrandRepository) Delete(id int64) error {
	r.logger.Debug("Deleting brand from database", "brand_id", id)

	query := `DELETE FROM brands WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		r.logger.Error("Failed to delete brand", "error", err, "brand_id", id)
		return fmt.Errorf("failed to delete brand: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}

	if rowsAffected == 0 {
		r.logger.Warn("Attempted to delete non-existent brand", "brand_id", id)
		return fmt.Errorf("brand %d: %w", id, models.ErrNotFound)
	}

	r.logger.Info("Deleted brand", "brand_id", id)
	return nil
}
