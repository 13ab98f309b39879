package domain

import (
	"time"
)

// Order statuses mirrored from WooCommerce. Only completed orders count
// toward entitlements; the mirror keeps the rest for reporting.
const (
	OrderStatusCompleted  = "completed"
	OrderStatusProcessing = "processing"
	OrderStatusPending    = "pending"
	OrderStatusRefunded   = "refunded"
	OrderStatusCancelled  = "cancelled"
)

// Order is a WooCommerce order mirrored into the local store.
type Order struct {
	ID             int64      `json:"id"`
	WCOrderID      int64      `json:"wc_order_id"`
	IdentityKey    string     `json:"identity_key"`
	WCCustomerID   *int64     `json:"wc_customer_id,omitempty"`
	Status         string     `json:"status"`
	Total          float64    `json:"total"`
	Subtotal       float64    `json:"subtotal"`
	TaxTotal       float64    `json:"tax_total"`
	Currency       string     `json:"currency"`
	DateCreated    time.Time  `json:"date_created"`
	DateCompleted  *time.Time `json:"date_completed,omitempty"`
	ProductCount   int        `json:"product_count"`
	ProductNames   []string   `json:"product_names,omitempty"`
	BillingEmail   string     `json:"billing_email,omitempty"`
	BillingPhone   string     `json:"billing_phone,omitempty"`
	ShippingMethod string     `json:"shipping_method,omitempty"`
	PaymentMethod  string     `json:"payment_method,omitempty"`
	SyncedAt       time.Time  `json:"synced_at"`
}

// OrderSummary aggregates an identity's mirrored orders for the dashboard.
type OrderSummary struct {
	TotalOrders   int            `json:"total_orders"`
	TotalSpent    float64        `json:"total_spent"`
	Currency      string         `json:"currency,omitempty"`
	StatusCounts  map[string]int `json:"status_counts"`
	FirstOrderAt  *time.Time     `json:"first_order_at,omitempty"`
	LatestOrderAt *time.Time     `json:"latest_order_at,omitempty"`
}

// SyncReport describes the outcome of a batch mirror run. A partial failure
// never aborts the batch; failing external IDs are reported instead.
type SyncReport struct {
	Succeeded int     `json:"succeeded"`
	Failed    int     `json:"failed"`
	FailedIDs []int64 `json:"failed_ids,omitempty"`
}
