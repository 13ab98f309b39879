package gateway

import (
	"strconv"
	"strings"
	"time"

	"github.com/entremotivator/Syncup/internal/domain"
	"github.com/entremotivator/Syncup/pkg/slug"
)

// wcTime handles the timestamp format WooCommerce emits, which omits the
// timezone offset RFC 3339 requires.
type wcTime struct {
	time.Time
}

func (t *wcTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	if parsed, err := time.Parse(time.RFC3339, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// parseAmount converts a WooCommerce money string ("20.00") to a float.
// Malformed or empty values count as zero.
func parseAmount(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// TokenResponse is the reply from the WordPress JWT token endpoint.
type TokenResponse struct {
	Token           string `json:"token"`
	UserEmail       string `json:"user_email"`
	UserNicename    string `json:"user_nicename"`
	UserDisplayName string `json:"user_display_name"`
}

// WPUser is the WordPress profile returned by /wp/v2/users/me.
type WPUser struct {
	ID           int64           `json:"id"`
	Email        string          `json:"email"`
	Username     string          `json:"username"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Roles        []string        `json:"roles"`
	Capabilities map[string]bool `json:"capabilities"`
}

// WCCustomer is a WooCommerce customer record.
type WCCustomer struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DisplayName builds a human-readable name, falling back to the email.
func (c *WCCustomer) DisplayName() string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name == "" {
		return c.Email
	}
	return name
}

// WCLineItem is one line of a WooCommerce order.
type WCLineItem struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Total     string `json:"total"`
}

// WCShippingLine carries the shipping method of an order.
type WCShippingLine struct {
	MethodTitle string `json:"method_title"`
}

// WCBilling is the billing block of an order.
type WCBilling struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// WCOrder is a WooCommerce order as returned by the REST API.
type WCOrder struct {
	ID                 int64            `json:"id"`
	CustomerID         int64            `json:"customer_id"`
	Status             string           `json:"status"`
	Currency           string           `json:"currency"`
	Total              string           `json:"total"`
	TotalTax           string           `json:"total_tax"`
	DateCreated        wcTime           `json:"date_created"`
	DateCompleted      *wcTime          `json:"date_completed,omitempty"`
	LineItems          []WCLineItem     `json:"line_items"`
	Billing            WCBilling        `json:"billing"`
	ShippingLines      []WCShippingLine `json:"shipping_lines"`
	PaymentMethodTitle string           `json:"payment_method_title"`
}

// Purchases extracts one Purchase per line item, in order. Lines without a
// product ID are skipped. Deduplication is the resolver's job.
func (o *WCOrder) Purchases() []domain.Purchase {
	out := make([]domain.Purchase, 0, len(o.LineItems))
	for _, item := range o.LineItems {
		if item.ProductID == 0 {
			continue
		}
		out = append(out, domain.Purchase{
			ProductID:   item.ProductID,
			ProductName: item.Name,
			Quantity:    item.Quantity,
			Total:       parseAmount(item.Total),
			OrderID:     o.ID,
			DateCreated: o.DateCreated.Time,
		})
	}
	return out
}

// ToDomain converts the wire order into the mirror representation for the
// given identity.
func (o *WCOrder) ToDomain(identityKey string) domain.Order {
	var subtotal float64
	names := make([]string, 0, len(o.LineItems))
	for _, item := range o.LineItems {
		subtotal += parseAmount(item.Total)
		names = append(names, item.Name)
	}

	order := domain.Order{
		WCOrderID:     o.ID,
		IdentityKey:   identityKey,
		Status:        o.Status,
		Total:         parseAmount(o.Total),
		Subtotal:      subtotal,
		TaxTotal:      parseAmount(o.TotalTax),
		Currency:      o.Currency,
		DateCreated:   o.DateCreated.Time,
		ProductCount:  len(o.LineItems),
		ProductNames:  names,
		BillingEmail:  o.Billing.Email,
		BillingPhone:  o.Billing.Phone,
		PaymentMethod: o.PaymentMethodTitle,
	}
	if o.CustomerID != 0 {
		id := o.CustomerID
		order.WCCustomerID = &id
	}
	if o.DateCompleted != nil && !o.DateCompleted.IsZero() {
		completed := o.DateCompleted.Time
		order.DateCompleted = &completed
	}
	if len(o.ShippingLines) > 0 {
		order.ShippingMethod = o.ShippingLines[0].MethodTitle
	}
	return order
}

// WCTerm is a category or tag reference on a product.
type WCTerm struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// WCImage is a product image reference.
type WCImage struct {
	Src string `json:"src"`
}

// WCProduct is a WooCommerce catalog product as returned by the REST API.
type WCProduct struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Slug             string    `json:"slug"`
	Status           string    `json:"status"`
	Type             string    `json:"type"`
	Description      string    `json:"description"`
	ShortDescription string    `json:"short_description"`
	SKU              string    `json:"sku"`
	Price            string    `json:"price"`
	RegularPrice     string    `json:"regular_price"`
	SalePrice        string    `json:"sale_price"`
	StockStatus      string    `json:"stock_status"`
	StockQuantity    *int      `json:"stock_quantity"`
	Categories       []WCTerm  `json:"categories"`
	Tags             []WCTerm  `json:"tags"`
	Images           []WCImage `json:"images"`
	DateCreated      *wcTime   `json:"date_created,omitempty"`
	DateModified     *wcTime   `json:"date_modified,omitempty"`
}

// ToDomain converts the wire product into the mirror representation. A
// missing slug is generated from the name.
func (p *WCProduct) ToDomain() domain.Product {
	categories := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		categories = append(categories, c.Name)
	}
	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		tags = append(tags, t.Name)
	}
	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, img.Src)
	}

	productSlug := p.Slug
	if productSlug == "" {
		productSlug = slug.Generate(p.Name)
	}

	product := domain.Product{
		WCProductID:      p.ID,
		Name:             p.Name,
		Slug:             productSlug,
		Status:           p.Status,
		Type:             p.Type,
		Description:      p.Description,
		ShortDescription: p.ShortDescription,
		SKU:              p.SKU,
		Price:            parseAmount(p.Price),
		RegularPrice:     parseAmount(p.RegularPrice),
		SalePrice:        parseAmount(p.SalePrice),
		StockStatus:      p.StockStatus,
		StockQuantity:    p.StockQuantity,
		Categories:       categories,
		Tags:             tags,
		Images:           images,
	}
	if p.DateCreated != nil && !p.DateCreated.IsZero() {
		created := p.DateCreated.Time
		product.DateCreated = &created
	}
	if p.DateModified != nil && !p.DateModified.IsZero() {
		modified := p.DateModified.Time
		product.DateModified = &modified
	}
	return product
}
