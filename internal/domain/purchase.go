package domain

import (
	"time"
)

// Purchase is a single purchased product extracted from a completed order's
// line items.
type Purchase struct {
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	Quantity    int       `json:"quantity"`
	Total       float64   `json:"total"`
	OrderID     int64     `json:"order_id"`
	DateCreated time.Time `json:"date_created"`
}

// Tier is the membership tier derived from purchase count.
type Tier string

const (
	TierNone       Tier = "none"
	TierBasic      Tier = "basic"
	TierPremium    Tier = "premium"
	TierEnterprise Tier = "enterprise"
)

// Tier thresholds on distinct purchased products.
const (
	premiumThreshold    = 3
	enterpriseThreshold = 5
)

// TierForCount maps a distinct purchase count to a membership tier.
func TierForCount(count int) Tier {
	switch {
	case count >= enterpriseThreshold:
		return TierEnterprise
	case count >= premiumThreshold:
		return TierPremium
	case count >= 1:
		return TierBasic
	default:
		return TierNone
	}
}

// PermissionsForTier returns the fixed permission set for a tier. Higher
// tiers are strict supersets of lower ones.
func PermissionsForTier(tier Tier) []string {
	switch tier {
	case TierBasic:
		return []string{"search"}
	case TierPremium:
		return []string{"search", "analytics", "export"}
	case TierEnterprise:
		return []string{"search", "analytics", "export", "api_access"}
	default:
		return []string{}
	}
}

// Entitlement is the access decision derived from an identity's purchases.
type Entitlement struct {
	Tier          Tier     `json:"tier"`
	Permissions   []string `json:"permissions"`
	ProductIDs    []int64  `json:"product_ids"`
	PurchaseCount int      `json:"purchase_count"`
	TotalSpent    float64  `json:"total_spent"`
}

// HasPermission reports whether the entitlement grants the named permission.
func (e *Entitlement) HasPermission(perm string) bool {
	for _, p := range e.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// DedupPurchases collapses repeat purchases of the same product, keeping the
// first occurrence. Order of first occurrences is preserved.
func DedupPurchases(purchases []Purchase) []Purchase {
	seen := make(map[int64]struct{}, len(purchases))
	out := make([]Purchase, 0, len(purchases))
	for _, p := range purchases {
		if _, ok := seen[p.ProductID]; ok {
			continue
		}
		seen[p.ProductID] = struct{}{}
		out = append(out, p)
	}
	return out
}

// EntitlementFromPurchases derives the entitlement for an already-deduplicated
// purchase list.
func EntitlementFromPurchases(purchases []Purchase) Entitlement {
	productIDs := make([]int64, 0, len(purchases))
	var total float64
	for _, p := range purchases {
		productIDs = append(productIDs, p.ProductID)
		total += p.Total
	}

	tier := TierForCount(len(purchases))
	return Entitlement{
		Tier:          tier,
		Permissions:   PermissionsForTier(tier),
		ProductIDs:    productIDs,
		PurchaseCount: len(purchases),
		TotalSpent:    total,
	}
}
