package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/entremotivator/Syncup/pkg/errors"
	"github.com/entremotivator/Syncup/pkg/httpclient"
)

// Config holds gateway connection settings.
type Config struct {
	// BaseURL is the WordPress site root, e.g. https://shop.example.com.
	// Empty means the gateway is not configured; all calls degrade.
	BaseURL string

	// ConsumerKey and ConsumerSecret are WooCommerce REST credentials sent
	// as basic auth on /wc/v3 calls.
	ConsumerKey    string
	ConsumerSecret string

	// Per-call timeouts. Token issuance and profile reads use TokenTimeout,
	// order and product listings use OrdersTimeout, token validation uses
	// ValidateTimeout.
	TokenTimeout    time.Duration
	OrdersTimeout   time.Duration
	ValidateTimeout time.Duration
}

// Client talks to the WordPress/WooCommerce REST API. It is stateless; every
// call carries its own credentials and context.
type Client struct {
	cfg    Config
	http   *httpclient.CircuitBreakerClient
	logger *slog.Logger
}

// New creates a gateway client. All outbound calls go through the given
// circuit breaker client.
func New(cfg Config, cb *httpclient.CircuitBreakerClient, logger *slog.Logger) *Client {
	if cfg.TokenTimeout == 0 {
		cfg.TokenTimeout = 10 * time.Second
	}
	if cfg.OrdersTimeout == 0 {
		cfg.OrdersTimeout = 15 * time.Second
	}
	if cfg.ValidateTimeout == 0 {
		cfg.ValidateTimeout = 5 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   cb,
		logger: logger,
	}
}

// Configured reports whether the gateway has a base URL.
func (c *Client) Configured() bool {
	return c.cfg.BaseURL != ""
}

// Ping checks that the WordPress REST root answers. Used as a non-critical
// health check.
func (c *Client) Ping(ctx context.Context) error {
	if !c.Configured() {
		return errors.ConfigUnavailable("gateway")
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ValidateTimeout)
	defer cancel()

	resp, err := c.http.Get(ctx, c.cfg.BaseURL+"/wp-json/")
	if err != nil {
		return errors.GatewayUnavailable(err)
	}
	defer resp.Body.Close()
	return nil
}

// IssueToken exchanges WordPress credentials for a JWT via the jwt-auth
// plugin endpoint. A 4xx reply means the credentials were rejected, which is
// a definitive denial; transport failures and 5xx map to gateway
// unavailability so callers can tell the two apart.
func (c *Client) IssueToken(ctx context.Context, username, password string) (*TokenResponse, error) {
	if !c.Configured() {
		return nil, errors.ConfigUnavailable("gateway")
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.TokenTimeout)
	defer cancel()

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	resp, err := c.http.Post(ctx, c.cfg.BaseURL+"/wp-json/jwt-auth/v1/token",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.GatewayUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, httpclient.ParseResponseError(resp)
		}
		return nil, errors.GatewayUnavailable(fmt.Errorf("token endpoint returned %d", resp.StatusCode))
	}

	var token TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, errors.GatewayUnavailable(fmt.Errorf("decode token response: %w", err))
	}
	if token.Token == "" {
		return nil, errors.Unauthorized("token endpoint returned no token")
	}
	return &token, nil
}

// ValidateToken checks a WordPress JWT against the jwt-auth validate
// endpoint. Returns nil when the token is still good.
func (c *Client) ValidateToken(ctx context.Context, token string) error {
	if !c.Configured() {
		return errors.ConfigUnavailable("gateway")
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ValidateTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/wp-json/jwt-auth/v1/token/validate", http.NoBody)
	if err != nil {
		return fmt.Errorf("create validate request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return errors.GatewayUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Unauthorized("wordpress token is no longer valid")
	}
	return nil
}

// Me fetches the authenticated WordPress profile for the given token.
func (c *Client) Me(ctx context.Context, token string) (*WPUser, error) {
	if !c.Configured() {
		return nil, errors.ConfigUnavailable("gateway")
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.TokenTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+"/wp-json/wp/v2/users/me?context=edit", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, errors.GatewayUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp)
	}

	var user WPUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, errors.GatewayUnavailable(fmt.Errorf("decode profile: %w", err))
	}
	return &user, nil
}

// FindCustomer looks up the WooCommerce customer for an email address.
// Returns nil with no error when the email has no customer record.
func (c *Client) FindCustomer(ctx context.Context, email string) (*WCCustomer, error) {
	if !c.Configured() {
		return nil, errors.ConfigUnavailable("gateway")
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.TokenTimeout)
	defer cancel()

	query := url.Values{}
	query.Set("email", email)
	query.Set("per_page", "1")

	var customers []WCCustomer
	if err := c.getWC(ctx, "/wp-json/wc/v3/customers", query, &customers); err != nil {
		return nil, err
	}
	if len(customers) == 0 {
		return nil, nil
	}
	return &customers[0], nil
}

// ListCompletedOrders returns the completed orders for a WooCommerce
// customer, up to 100.
func (c *Client) ListCompletedOrders(ctx context.Context, customerID int64) ([]WCOrder, error) {
	return c.ListOrders(ctx, customerID, "completed")
}

// ListOrders returns a customer's orders filtered by status. An empty status
// returns every order WooCommerce will list.
func (c *Client) ListOrders(ctx context.Context, customerID int64, status string) ([]WCOrder, error) {
	if !c.Configured() {
		return nil, errors.ConfigUnavailable("gateway")
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.OrdersTimeout)
	defer cancel()

	query := url.Values{}
	query.Set("customer", strconv.FormatInt(customerID, 10))
	query.Set("per_page", "100")
	if status != "" {
		query.Set("status", status)
	}

	var orders []WCOrder
	if err := c.getWC(ctx, "/wp-json/wc/v3/orders", query, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListProducts returns one page of the product catalog.
func (c *Client) ListProducts(ctx context.Context, page, perPage int) ([]WCProduct, error) {
	if !c.Configured() {
		return nil, errors.ConfigUnavailable("gateway")
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.OrdersTimeout)
	defer cancel()

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 100
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(perPage))

	var products []WCProduct
	if err := c.getWC(ctx, "/wp-json/wc/v3/products", query, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches a single product by its WooCommerce ID.
func (c *Client) GetProduct(ctx context.Context, productID int64) (*WCProduct, error) {
	if !c.Configured() {
		return nil, errors.ConfigUnavailable("gateway")
	}
	ctx, cancel := context.WithTimeout(ctx, c.cfg.TokenTimeout)
	defer cancel()

	var product WCProduct
	path := "/wp-json/wc/v3/products/" + strconv.FormatInt(productID, 10)
	if err := c.getWC(ctx, path, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// getWC performs an authenticated WooCommerce REST GET and decodes the JSON
// body into out.
func (c *Client) getWC(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		c.logger.WarnContext(ctx, "gateway request failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return errors.GatewayUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return httpclient.ParseResponseError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.GatewayUnavailable(fmt.Errorf("read %s: %w", path, err))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.GatewayUnavailable(fmt.Errorf("decode %s: %w", path, err))
	}
	return nil
}
