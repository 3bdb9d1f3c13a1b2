package service

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/morphcute/kim-dispo-vape-shop/internal/repositories"
	"github.com/morphcute/kim-dispo-vape-shop/models"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/logger"
)

const (
	minCustomerLen = 3
	minAddressLen  = 10
)

// CheckoutItemRequest is one cart line as sent by the storefront. The
// json names match what the storefront cart actually posts.
type CheckoutItemRequest struct {
	FlavorID int64 `json:"flavorId"`
	Quantity int   `json:"quantity"`
}

// CheckoutRequest is the checkout payload.
type CheckoutRequest struct {
	Customer      string                `json:"customer"`
	Address       string                `json:"address"`
	PaymentMethod string                `json:"paymentMethod"`
	Items         []CheckoutItemRequest `json:"items"`
}

// OrderService interface
type OrderServiceInterface interface {
	Checkout(req CheckoutRequest) (*models.Order, error)
	GetAllOrders() ([]*models.Order, error)
	GetOrderByID(id int64) (*models.Order, error)
	UpdateStatus(id int64, status models.OrderStatus) error
	DeleteOrder(id int64) error
}

// OrderService runs the order placement pipeline: validate the request,
// check stock, price the cart, then hand the whole thing to the
// repository as one transaction.
type OrderService struct {
	orderRepo  repositories.OrderRepositoryInterface
	flavorRepo repositories.FlavorRepositoryInterface
	logger     *logger.Logger
}

// NewOrderService creates a new OrderService with the given repositories and logger
func NewOrderService(orderRepo repositories.OrderRepositoryInterface, flavorRepo repositories.FlavorRepositoryInterface, logger *logger.Logger) *OrderService {
	return &OrderService{
		orderRepo:  orderRepo,
		flavorRepo: flavorRepo,
		logger:     logger.WithComponent("order_service"),
	}
}

// Checkout places a new order. All validation happens before any
// database mutation, so a bad request never touches inventory. The final
// stock guard lives in the repository's conditional decrement; the
// preflight here exists to reject obviously oversized carts with a
// precise message before opening a transaction.
func (s *OrderService) Checkout(req CheckoutRequest) (*models.Order, error) {
	s.logger.Info("Processing checkout", "customer", req.Customer, "items", len(req.Items))

	if err := s.validateCheckout(req); err != nil {
		s.logger.Warn("Checkout failed: invalid request", "error", err)
		return nil, err
	}

	lines := mergeLines(req.Items)

	priced, err := s.priceLines(lines)
	if err != nil {
		s.logger.Warn("Checkout failed: stock check", "error", err)
		return nil, err
	}

	total := orderTotal(priced)

	order := &models.Order{
		Customer:      req.Customer,
		Address:       req.Address,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		Status:        models.StatusPreparing,
		Total:         total,
		Items:         make([]models.OrderItem, len(priced)),
	}
	for i, line := range priced {
		order.Items[i] = models.OrderItem{
			FlavorID:  line.flavorID,
			Quantity:  line.quantity,
			UnitPrice: line.unitPrice,
		}
	}

	if err := s.orderRepo.Create(order); err != nil {
		s.logger.Warn("Checkout failed: persistence", "error", err)
		return nil, err
	}

	s.logger.Info("Order created", "order_id", order.ID, "total", order.Total, "payment_method", order.PaymentMethod)

	// Re-read so the response carries resolved flavor and brand names.
	created, err := s.orderRepo.GetByID(order.ID)
	if err != nil {
		s.logger.Warn("Created order but failed to re-read it", "order_id", order.ID, "error", err)
		return order, nil
	}
	return created, nil
}

// GetAllOrders retrieves all orders, newest first
func (s *OrderService) GetAllOrders() ([]*models.Order, error) {
	orders, err := s.orderRepo.GetAll()
	if err != nil {
		s.logger.Error("Failed to fetch orders", "error", err)
		return nil, err
	}

	s.logger.Debug("Fetched orders", "count", len(orders))
	return orders, nil
}

// GetOrderByID retrieves a specific order by ID
func (s *OrderService) GetOrderByID(id int64) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		s.logger.Warn("Order not found", "order_id", id, "error", err)
		return nil, err
	}
	return order, nil
}

// UpdateStatus moves an order through the fulfillment lifecycle.
// Adjacent moves in either direction are allowed; setting the current
// status again is accepted as a no-op.
func (s *OrderService) UpdateStatus(id int64, status models.OrderStatus) error {
	s.logger.Info("Updating order status", "order_id", id, "status", status)

	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return err
	}

	if order.Status == status {
		s.logger.Debug("Order already in requested status", "order_id", id, "status", status)
		return nil
	}

	if !order.Status.CanTransitionTo(status) {
		s.logger.Warn("Rejected status transition", "order_id", id, "from", order.Status, "to", status)
		return &models.InvalidTransitionError{From: order.Status, To: status}
	}

	return s.orderRepo.UpdateStatus(id, status)
}

// DeleteOrder removes an order and restores the stock of every flavor it
// referenced.
func (s *OrderService) DeleteOrder(id int64) error {
	s.logger.Info("Deleting order", "order_id", id)
	return s.orderRepo.Delete(id)
}

// pricedLine is one merged cart line with the unit price observed at
// validation time.
type pricedLine struct {
	flavorID  int64
	quantity  int
	unitPrice decimal.Decimal
}

// validateCheckout checks the request fields before any stock reads.
func (s *OrderService) validateCheckout(req CheckoutRequest) error {
	verr := models.NewValidationError()

	if utf8.RuneCountInString(req.Customer) < minCustomerLen {
		verr.Add("customer", fmt.Sprintf("customer name must be at least %d characters", minCustomerLen))
	}
	if utf8.RuneCountInString(req.Address) < minAddressLen {
		verr.Add("address", fmt.Sprintf("delivery address must be at least %d characters", minAddressLen))
	}
	if _, err := models.ParsePaymentMethod(req.PaymentMethod); err != nil {
		verr.Add("payment_method", err.Error())
	}
	if len(req.Items) == 0 {
		verr.Add("items", "order must have at least one item")
	}
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			verr.Add(fmt.Sprintf("items[%d].quantity", i), "quantity must be positive")
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// mergeLines sums quantities of duplicate flavor ids so a split cart
// cannot sneak past the stock check. The result is sorted by flavor id:
// the decrements later run line by line inside one transaction, and a
// global lock order keeps two multi-line checkouts touching the same
// flavors from deadlocking on each other's row locks.
func mergeLines(items []CheckoutItemRequest) []CheckoutItemRequest {
	merged := make([]CheckoutItemRequest, 0, len(items))
	index := make(map[int64]int)

	for _, item := range items {
		if i, seen := index[item.FlavorID]; seen {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.FlavorID] = len(merged)
		merged = append(merged, item)
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].FlavorID < merged[j].FlavorID
	})

	return merged
}

// priceLines resolves each line against the live catalog: unknown flavors
// and oversized quantities reject the whole batch, and the selling price
// is captured here so the total cannot drift if an admin edits a price
// mid-checkout.
func (s *OrderService) priceLines(lines []CheckoutItemRequest) ([]pricedLine, error) {
	priced := make([]pricedLine, 0, len(lines))

	for _, line := range lines {
		flavor, err := s.flavorRepo.GetByID(line.FlavorID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return nil, &models.UnknownSKUError{FlavorID: line.FlavorID}
			}
			return nil, err
		}

		// Inactive flavors are hidden from the storefront; a cart that
		// still references one is treated as referencing a missing SKU.
		if !flavor.IsActive {
			return nil, &models.UnknownSKUError{FlavorID: line.FlavorID}
		}

		if flavor.Stock < line.Quantity {
			return nil, &models.InsufficientStockError{
				FlavorID:  flavor.ID,
				Name:      flavor.Name,
				Requested: line.Quantity,
				Available: flavor.Stock,
			}
		}

		priced = append(priced, pricedLine{
			flavorID:  flavor.ID,
			quantity:  line.Quantity,
			unitPrice: flavor.SellingPrice,
		})
	}

	return priced, nil
}

// orderTotal sums unit price times quantity across the priced lines,
// rounded half-up to centavos.
func orderTotal(lines []pricedLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.unitPrice.Mul(decimal.NewFromInt(int64(line.quantity))))
	}
	return total.Round(2)
}
