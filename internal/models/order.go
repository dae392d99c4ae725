package models

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusFailed    OrderStatus = "FAILED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled, OrderStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no transition may leave this status.
func (s OrderStatus) Terminal() bool {
	return s != OrderStatusPending
}

// Order is the immutable checkout aggregate. Totals are fixed at creation and
// never recomputed; only Status moves, per the PENDING-rooted state machine.
type Order struct {
	ID          string          `json:"id"`
	UserEmail   string          `json:"userEmail"`
	Items       []OrderLineItem `json:"items"`
	TotalAmount float64         `json:"totalAmount"`
	TotalTax    float64         `json:"totalTax"`
	Status      OrderStatus     `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// OrderLineItem is created once, atomically with its parent order. Exactly one
// of ProductID/ServiceID is set, keyed by ItemType.
type OrderLineItem struct {
	ID                    string             `json:"id"`
	ItemType              ItemType           `json:"itemType"`
	ProductID             *string            `json:"productId,omitempty"`
	ServiceID             *string            `json:"serviceId,omitempty"`
	Quantity              int                `json:"quantity"`
	Tax                   float64            `json:"tax"`
	TotalAmount           float64            `json:"totalAmount"`
	TotalAmountWithoutTax float64            `json:"totalAmountWithoutTax"`
	TaxCategories         []string           `json:"taxCategories"`
	TaxBreakdown          map[string]float64 `json:"taxBreakdown"`
	CreatedAt             time.Time          `json:"createdAt"`
}

// ItemID returns whichever catalog reference is set.
func (i OrderLineItem) ItemID() string {
	if i.ProductID != nil {
		return *i.ProductID
	}
	if i.ServiceID != nil {
		return *i.ServiceID
	}
	return ""
}

// ProcessOrderRequest drives the admin transition out of PENDING.
type ProcessOrderRequest struct {
	OrderID string      `json:"orderId"`
	Status  OrderStatus `json:"status"`
}

// CreateOrderResult is returned by checkout: the persisted order id, the
// invoice it was built from, and the initial status.
type CreateOrderResult struct {
	OrderID string      `json:"orderId"`
	Invoice *Invoice    `json:"invoice"`
	Status  OrderStatus `json:"status"`
}
