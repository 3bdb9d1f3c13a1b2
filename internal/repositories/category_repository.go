package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/morphcute/kim-dispo-vape-shop/models"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/database"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/logger"
)

type CategoryRepositoryInterface interface {
	GetAll() ([]*models.Category, error)
	GetByID(id int64) (*models.Category, error)
	GetBySlug(slug string) (*models.Category, error)
	Add(category *models.Category) error
	Delete(id int64) error
}

type CategoryRepository struct {
	logger *logger.Logger
	db     *database.DB
}

func NewCategoryRepository(logger *logger.Logger, db *database.DB) *CategoryRepository {
	return &CategoryRepository{
		logger: logger.WithComponent("category_repository"),
		db:     db,
	}
}

// GetAll retrieves all categories ordered by id
func (r *CategoryRepository) GetAll() ([]*models.Category, error) {
	r.logger.Debug("Retrieving all categories from database")

	query := `
		SELECT id, name, slug
		FROM categories
		ORDER BY id
	`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to query categories", "error", err)
		return nil, fmt.Errorf("failed to query categories: %v", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug); err != nil {
			r.logger.Error("Failed to scan category", "error", err)
			return nil, fmt.Errorf("failed to scan category: %v", err)
		}
		categories = append(categories, category)
	}

	if err = rows.Err(); err != nil {
		r.logger.Error("Error iterating category rows", "error", err)
		return nil, fmt.Errorf("error iterating category rows: %v", err)
	}

	r.logger.Debug("Retrieved all categories", "count", len(categories))
	return categories, nil
}

// GetByID retrieves a single category by ID
func (r *CategoryRepository) GetByID(id int64) (*models.Category, error) {
	query := `
		SELECT id, name, slug
		FROM categories
		WHERE id = $1
	`

	category := &models.Category{}
	err := r.db.QueryRow(query, id).Scan(&category.ID, &category.Name, &category.Slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("Category not found", "category_id", id)
			return nil, fmt.Errorf("category %d: %w", id, models.ErrNotFound)
		}
		r.logger.Error("Failed to retrieve category", "error", err, "category_id", id)
		return nil, fmt.Errorf("failed to retrieve category: %v", err)
	}

	return category, nil
}

// GetBySlug retrieves a single category by its unique slug
func (r *CategoryRepository) GetBySlug(slug string) (*models.Category, error) {
	query := `
		SELECT id, name, slug
		FROM categories
		WHERE slug = $1
	`

	category := &models.Category{}
	err := r.db.QueryRow(query, slug).Scan(&category.ID, &category.Name, &category.Slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("category %q: %w", slug, models.ErrNotFound)
		}
		r.logger.Error("Failed to retrieve category by slug", "error", err, "slug", slug)
		return nil, fmt.Errorf("failed to retrieve category: %v", err)
	}

	return category, nil
}

// Add inserts a new category and fills in the generated ID
func (r *CategoryRepository) Add(category *models.Category) error {
	r.logger.Debug("Adding new category to database", "name", category.Name, "slug", category.Slug)

	query := `
		INSERT INTO categories (name, slug)
		VALUES ($1, $2)
		RETURNING id
	`

	err := r.db.QueryRow(query, category.Name, category.Slug).Scan(&category.ID)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value") || strings.Contains(err.Error(), "violates unique constraint") {
			r.logger.Warn("Attempted to add duplicate category slug", "slug", category.Slug, "error", err)
			return fmt.Errorf("category with slug %s already exists", category.Slug)
		}
		r.logger.Error("Failed to add category", "error", err, "name", category.Name)
		return fmt.Errorf("failed to add category: %v", err)
	}

	r.logger.Info("Added new category", "category_id", category.ID, "name", category.Name)
	return nil
}

// Delete removes a category; brands and flavors underneath cascade away
func (r *CategoryRepository) Delete(id int64) error {
	r.logger.Debug("Deleting category from database", "category_id", id)

	query := `DELETE FROM categories WHERE id = $1`

	result, err := r.db.Exec(query, id)
	if err != nil {
		r.logger.Error("Failed to delete category", "error", err, "category_id", id)
		return fmt.Errorf("failed to delete category: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Failed to get rows affected", "error", err, "category_id", id)
		return fmt.Errorf("failed to get rows affected: %v", err)
	}

	if rowsAffected == 0 {
		r.logger.Warn("Attempted to delete non-existent category", "category_id", id)
		return fmt.Errorf("category %d: %w", id, models.ErrNotFound)
	}

	r.logger.Info("Deleted category", "category_id", id)
	return nil
}
