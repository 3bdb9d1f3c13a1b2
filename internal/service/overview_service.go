package service

import (
	"github.com/shopspring/decimal"

	"github.com/morphcute/kim-dispo-vape-shop/internal/repositories"
	"github.com/morphcute/kim-dispo-vape-shop/models"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/logger"
)

// Flavors at or below this stock count show up on the admin dashboard
// as needing a restock.
const lowStockThreshold = 5

type OverviewServiceInterface interface {
	GetOverview() (*Overview, error)
}

// Overview is the admin dashboard payload: the full category list, all
// orders newest first, and aggregate stats.
type Overview struct {
	Categories []*models.Category `json:"categories"`
	Orders     []*models.Order    `json:"orders"`
	Stats      OverviewStats      `json:"stats"`
}

type OverviewStats struct {
	TotalRevenue    decimal.Decimal            `json:"total_revenue"`
	OrdersByStatus  map[models.OrderStatus]int `json:"orders_by_status"`
	LowStockFlavors []*models.Flavor           `json:"low_stock_flavors"`
}

// OverviewService aggregates catalog and order data for the admin
// dashboard. Revenue is summed from stored order totals, never from
// live catalog prices.
type OverviewService struct {
	categoryRepo repositories.CategoryRepositoryInterface
	flavorRepo   repositories.FlavorRepositoryInterface
	orderRepo    repositories.OrderRepositoryInterface
	logger       *logger.Logger
}

func NewOverviewService(categoryRepo repositories.CategoryRepositoryInterface, flavorRepo repositories.FlavorRepositoryInterface, orderRepo repositories.OrderRepositoryInterface, log *logger.Logger) *OverviewService {
	return &OverviewService{
		categoryRepo: categoryRepo,
		flavorRepo:   flavorRepo,
		orderRepo:    orderRepo,
		logger:       log.WithComponent("overview_service"),
	}
}

// GetOverview builds the admin dashboard payload
func (s *OverviewService) GetOverview() (*Overview, error) {
	s.logger.Debug("Building admin overview")

	categories, err := s.categoryRepo.GetAll()
	if err != nil {
		s.logger.Error("Failed to get categories for overview", "error", err)
		return nil, err
	}

	orders, err := s.orderRepo.GetAll()
	if err != nil {
		s.logger.Error("Failed to get orders for overview", "error", err)
		return nil, err
	}

	lowStock, err := s.flavorRepo.GetLowStock(lowStockThreshold)
	if err != nil {
		s.logger.Error("Failed to get low-stock flavors for overview", "error", err)
		return nil, err
	}

	stats := OverviewStats{
		TotalRevenue: decimal.Zero,
		OrdersByStatus: map[models.OrderStatus]int{
			models.StatusPreparing: 0,
			models.StatusShipped:   0,
			models.StatusDelivered: 0,
		},
		LowStockFlavors: lowStock,
	}

	for _, order := range orders {
		stats.TotalRevenue = stats.TotalRevenue.Add(order.Total)
		stats.OrdersByStatus[order.Status]++
	}

	s.logger.Debug("Built admin overview",
		"categories", len(categories),
		"orders", len(orders),
		"low_stock_flavors", len(lowStock))

	return &Overview{
		Categories: categories,
		Orders:     orders,
		Stats:      stats,
	}, nil
}
