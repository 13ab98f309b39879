package domain

import (
	"time"
)

// Product is a WooCommerce catalog product mirrored into the local store.
type Product struct {
	ID               int64      `json:"id"`
	WCProductID      int64      `json:"wc_product_id"`
	Name             string     `json:"name"`
	Slug             string     `json:"slug"`
	Status           string     `json:"status"`
	Type             string     `json:"type"`
	Description      string     `json:"description,omitempty"`
	ShortDescription string     `json:"short_description,omitempty"`
	SKU              string     `json:"sku,omitempty"`
	Price            float64    `json:"price"`
	RegularPrice     float64    `json:"regular_price"`
	SalePrice        float64    `json:"sale_price"`
	StockStatus      string     `json:"stock_status,omitempty"`
	StockQuantity    *int       `json:"stock_quantity,omitempty"`
	Categories       []string   `json:"categories,omitempty"`
	Tags             []string   `json:"tags,omitempty"`
	Images           []string   `json:"images,omitempty"`
	DateCreated      *time.Time `json:"date_created,omitempty"`
	DateModified     *time.Time `json:"date_modified,omitempty"`
	SyncedAt         time.Time  `json:"synced_at"`
}

// OnSale reports whether the product currently has an active sale price.
func (p *Product) OnSale() bool {
	return p.SalePrice > 0 && p.SalePrice < p.RegularPrice
}
