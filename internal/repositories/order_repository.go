package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/morphcute/kim-dispo-vape-shop/models"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/database"
	"github.com/morphcute/kim-dispo-vape-shop/pkg/logger"
)

type OrderRepositoryInterface interface {
	Create(order *models.Order) error
	GetAll() ([]*models.Order, error)
	GetByID(id int64) (*models.Order, error)
	UpdateStatus(id int64, status models.OrderStatus) error
	Delete(id int64) error
}

type OrderRepository struct {
	logger *logger.Logger
	db     *database.DB
}

func NewOrderRepository(logger *logger.Logger, db *database.DB) *OrderRepository {
	return &OrderRepository{
		logger: logger.WithComponent("order_repository"),
		db:     db,
	}
}

// Create persists the order, its items and the stock decrements as one
// transaction. Each decrement is conditional on stock actually covering
// the quantity, so two concurrent checkouts can never drive stock below
// zero: the loser's UPDATE matches no row, the whole transaction rolls
// back and nothing is applied.
func (r *OrderRepository) Create(order *models.Order) error {
	r.logger.Debug("Creating order in database", "customer", order.Customer, "items", len(order.Items))

	err := r.db.ExecuteInTransaction(func(tx *sql.Tx) error {
		for _, item := range order.Items {
			result, err := tx.Exec(
				`UPDATE flavors SET stock = stock - $1 WHERE id = $2 AND stock >= $1`,
				item.Quantity, item.FlavorID,
			)
			if err != nil {
				return fmt.Errorf("failed to decrement stock for flavor %d: %v", item.FlavorID, err)
			}

			rowsAffected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to get rows affected: %v", err)
			}

			if rowsAffected == 0 {
				// Either the flavor is gone or it cannot cover the
				// quantity. Look it up inside the same transaction to
				// report which.
				var name string
				var stock int
				err := tx.QueryRow(`SELECT name, stock FROM flavors WHERE id = $1`, item.FlavorID).
					Scan(&name, &stock)
				if errors.Is(err, sql.ErrNoRows) {
					return &models.UnknownSKUError{FlavorID: item.FlavorID}
				}
				if err != nil {
					return fmt.Errorf("failed to inspect flavor %d: %v", item.FlavorID, err)
				}
				return &models.InsufficientStockError{
					FlavorID:  item.FlavorID,
					Name:      name,
					Requested: item.Quantity,
					Available: stock,
				}
			}
		}

		err := tx.QueryRow(
			`INSERT INTO orders (customer, address, payment_method, status, total)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, created_at`,
			order.Customer, order.Address, order.PaymentMethod, order.Status, order.Total,
		).Scan(&order.ID, &order.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order: %v", err)
		}

		for i := range order.Items {
			item := &order.Items[i]
			item.OrderID = order.ID
			err := tx.QueryRow(
				`INSERT INTO order_items (order_id, flavor_id, quantity, unit_price)
				 VALUES ($1, $2, $3, $4)
				 RETURNING id`,
				item.OrderID, item.FlavorID, item.Quantity, item.UnitPrice,
			).Scan(&item.ID)
			if err != nil {
				return fmt.Errorf("failed to insert order item: %v", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	r.logger.Info("Created order", "order_id", order.ID, "customer", order.Customer, "total", order.Total)
	return nil
}

// GetAll retrieves all orders, newest first, with their items and the
// flavor, brand and category names resolved for display.
func (r *OrderRepository) GetAll() ([]*models.Order, error) {
	r.logger.Debug("Retrieving all orders from database")

	rows, err := r.db.Query(`
		SELECT id, customer, address, payment_method, status, total, created_at
		FROM orders
		ORDER BY id DESC
	`)
	if err != nil {
		r.logger.Error("Failed to query orders", "error", err)
		return nil, fmt.Errorf("failed to query orders: %v", err)
	}
	defer rows.Close()

	var orders []*models.Order
	byID := make(map[int64]*models.Order)
	for rows.Next() {
		order := &models.Order{Items: []models.OrderItem{}}
		err := rows.Scan(
			&order.ID,
			&order.Customer,
			&order.Address,
			&order.PaymentMethod,
			&order.Status,
			&order.Total,
			&order.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan order", "error", err)
			return nil, fmt.Errorf("failed to scan order: %v", err)
		}
		orders = append(orders, order)
		byID[order.ID] = order
	}
	if err = rows.Err(); err != nil {
		r.logger.Error("Error iterating order rows", "error", err)
		return nil, fmt.Errorf("error iterating order rows: %v", err)
	}

	if len(orders) == 0 {
		return orders, nil
	}

	itemRows, err := r.db.Query(itemsQuery + ` ORDER BY oi.order_id DESC, oi.id`)
	if err != nil {
		r.logger.Error("Failed to query order items", "error", err)
		return nil, fmt.Errorf("failed to query order items: %v", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		item, err := scanOrderItem(itemRows)
		if err != nil {
			r.logger.Error("Failed to scan order item", "error", err)
			return nil, err
		}
		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}
	if err = itemRows.Err(); err != nil {
		r.logger.Error("Error iterating order item rows", "error", err)
		return nil, fmt.Errorf("error iterating order item rows: %v", err)
	}

	r.logger.Debug("Retrieved all orders", "count", len(orders))
	return orders, nil
}

// GetByID retrieves a single order with its items
func (r *OrderRepository) GetByID(id int64) (*models.Order, error) {
	order := &models.Order{Items: []models.OrderItem{}}
	err := r.db.QueryRow(`
		SELECT id, customer, address, payment_method, status, total, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(
		&order.ID,
		&order.Customer,
		&order.Address,
		&order.PaymentMethod,
		&order.Status,
		&order.Total,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("Order not found", "order_id", id)
			return nil, fmt.Errorf("order %d: %w", id, models.ErrNotFound)
		}
		r.logger.Error("Failed to retrieve order", "error", err, "order_id", id)
		return nil, fmt.Errorf("failed to retrieve order: %v", err)
	}

	itemRows, err := r.db.Query(itemsQuery+` WHERE oi.order_id = $1 ORDER BY oi.id`, id)
	if err != nil {
		r.logger.Error("Failed to query order items", "error", err, "order_id", id)
		return nil, fmt.Errorf("failed to query order items: %v", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		item, err := scanOrderItem(itemRows)
		if err != nil {
			r.logger.Error("Failed to scan order item", "error", err)
			return nil, err
		}
		order.Items = append(order.Items, item)
	}
	if err = itemRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order item rows: %v", err)
	}

	return order, nil
}

// UpdateStatus sets the fulfillment status of an order. Lifecycle rules
// are enforced in the service before this is called.
func (r *OrderRepository) UpdateStatus(id int64, status models.OrderStatus) error {
	r.logger.Debug("Updating order status", "order_id", id, "status", status)

	result, err := r.db.Exec(`UPDATE orders SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		r.logger.Error("Failed to update order status", "error", err, "order_id", id)
		return fmt.Errorf("failed to update order status: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}

	if rowsAffected == 0 {
		r.logger.Warn("Attempted to update status of non-existent order", "order_id", id)
		return fmt.Errorf("order %d: %w", id, models.ErrNotFound)
	}

	r.logger.Info("Updated order status", "order_id", id, "status", status)
	return nil
}

// Delete restores stock for every item of the order and removes the
// order, all in one transaction. The restore is an unconditional
// increment: stock may end up above any earlier ceiling if the catalog
// changed in the meantime, and that is accepted.
func (r *OrderRepository) Delete(id int64) error {
	r.logger.Debug("Deleting order from database", "order_id", id)

	err := r.db.ExecuteInTransaction(func(tx *sql.Tx) error {
		rows, err := tx.Query(`SELECT flavor_id, quantity FROM order_items WHERE order_id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to query order items: %v", err)
		}

		type line struct {
			flavorID int64
			quantity int
		}
		var lines []line
		for rows.Next() {
			var l line
			if err := rows.Scan(&l.flavorID, &l.quantity); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan order item: %v", err)
			}
			lines = append(lines, l)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("error iterating order item rows: %v", err)
		}
		rows.Close()

		for _, l := range lines {
			if _, err := tx.Exec(
				`UPDATE flavors SET stock = stock + $1 WHERE id = $2`,
				l.quantity, l.flavorID,
			); err != nil {
				return fmt.Errorf("failed to restore stock for flavor %d: %v", l.flavorID, err)
			}
		}

		result, err := tx.Exec(`DELETE FROM orders WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete order: %v", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %v", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("order %d: %w", id, models.ErrNotFound)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			r.logger.Warn("Attempted to delete non-existent order", "order_id", id)
		} else {
			r.logger.Error("Failed to delete order", "error", err, "order_id", id)
		}
		return err
	}

	r.logger.Info("Deleted order and restored stock", "order_id", id)
	return nil
}

// itemsQuery resolves display names through the flavor relation. Flavors
// referenced by order items cannot be deleted (no cascade on that FK),
// but the joins stay LEFT so a read never breaks on catalog drift.
const itemsQuery = `
	SELECT oi.id, oi.order_id, oi.flavor_id, oi.quantity, oi.unit_price,
	       COALESCE(f.name, ''), COALESCE(f.code, ''),
	       COALESCE(b.name, ''), COALESCE(c.name, '')
	FROM order_items oi
	LEFT JOIN flavors f ON f.id = oi.flavor_id
	LEFT JOIN brands b ON b.id = f.brand_id
	LEFT JOIN categories c ON c.id = b.category_id`

func scanOrderItem(rows *sql.Rows) (models.OrderItem, error) {
	var item models.OrderItem
	err := rows.Scan(
		&item.ID,
		&item.OrderID,
		&item.FlavorID,
		&item.Quantity,
		&item.UnitPrice,
		&item.FlavorName,
		&item.FlavorCode,
		&item.BrandName,
		&item.CategoryName,
	)
	if err != nil {
		return item, fmt.Errorf("failed to scan order item: %v", err)
	}
	return item, nil
}
