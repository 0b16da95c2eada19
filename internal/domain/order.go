package domain

import "time"

// OrderStatus enumerates delivery lifecycle states.
//
// Transitions move forward through the list; the store records the current
// status only and does not enforce ordering.
type OrderStatus string

const (
	OrderStatusPlaced         OrderStatus = "PLACED"
	OrderStatusConfirmed      OrderStatus = "CONFIRMED"
	OrderStatusPreparing      OrderStatus = "PREPARING"
	OrderStatusOutForDelivery OrderStatus = "OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "DELIVERED"
	OrderStatusCancelled      OrderStatus = "CANCELLED"
)

// Order is a food order placed by a customer.
type Order struct {
	ID              int64
	CustomerID      int64
	RestaurantName  string
	Status          OrderStatus
	OrderTotal      float64
	PaymentMethod   *string
	DeliveryAddress *string
	OrderedAt       time.Time
	DeliveredAt     *time.Time
	Details         []byte
}
