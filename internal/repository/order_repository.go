package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/voice-support-agent/internal/domain"
)

// OrderRepository encapsulates order persistence. Orders are created by the
// ordering system; this service only reads them.
type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	ListRecentByCustomer(ctx context.Context, customerID int64, limit int) ([]domain.Order, error)
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository instantiates the repository.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	const query = `
        SELECT id, customer_id, restaurant_name, status, order_total, payment_method,
               delivery_address, ordered_at, delivered_at, details
        FROM orders WHERE id=$1`

	var order domain.Order
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.CustomerID,
		&order.RestaurantName,
		&order.Status,
		&order.OrderTotal,
		&order.PaymentMethod,
		&order.DeliveryAddress,
		&order.OrderedAt,
		&order.DeliveredAt,
		&order.Details,
	); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListRecentByCustomer(ctx context.Context, customerID int64, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 5
	}
	const query = `
        SELECT id, customer_id, restaurant_name, status, order_total, payment_method,
               delivery_address, ordered_at, delivered_at, details
        FROM orders
        WHERE customer_id=$1
        ORDER BY ordered_at DESC
        LIMIT $2`

	rows, err := r.pool.Query(ctx, query, customerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOrders(rows)
}

func scanOrders(rows pgx.Rows) ([]domain.Order, error) {
	var result []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.CustomerID,
			&order.RestaurantName,
			&order.Status,
			&order.OrderTotal,
			&order.PaymentMethod,
			&order.DeliveryAddress,
			&order.OrderedAt,
			&order.DeliveredAt,
			&order.Details,
		); err != nil {
			return nil, err
		}
		result = append(result, order)
	}
	return result, rows.Err()
}
