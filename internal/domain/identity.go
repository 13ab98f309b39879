package domain

import (
	"time"
)

// Identity represents a storefront user mirrored into the local store. The
// WordPress user ID and WooCommerce customer ID are both optional: a
// customer-only login has no WordPress account, and a subscriber may have no
// customer record.
type Identity struct {
	ID                int64           `json:"id"`
	WPUserID          *int64          `json:"wp_user_id,omitempty"`
	WCCustomerID      *int64          `json:"wc_customer_id,omitempty"`
	Email             string          `json:"email"`
	Username          string          `json:"username,omitempty"`
	DisplayName       string          `json:"display_name,omitempty"`
	Roles             []string        `json:"roles,omitempty"`
	Capabilities      map[string]bool `json:"capabilities,omitempty"`
	PurchasedProducts []int64         `json:"purchased_products,omitempty"`
	ProductAccess     bool            `json:"product_access"`
	LastLogin         *time.Time      `json:"last_login,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Key returns the stable identity key used by the usage ledger and order
// mirror. Email is the one identifier present on every login path.
func (i *Identity) Key() string {
	return i.Email
}

// HasRole reports whether the identity carries the given WordPress role.
func (i *Identity) HasRole(role string) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
	}
	return false
}
