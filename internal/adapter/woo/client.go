package woo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ordersPerPage is the REST page size; 100 is the storefront maximum.
const ordersPerPage = 100

// ErrNotConfigured is returned when the store URL or API keys are missing.
var ErrNotConfigured = errors.New("woocommerce client not configured")

// ClientConfig configures the storefront REST client.
type ClientConfig struct {
	// URL is the storefront root, e.g. https://shop.example.com.
	URL string

	ConsumerKey string
	// ConsumerSecret is SENSITIVE: never log it.
	ConsumerSecret string

	// HTTPClient is an optional custom HTTP client (for testing).
	HTTPClient *http.Client

	// Timeout is the request timeout.
	Timeout time.Duration
}

// Client reads orders from the WooCommerce REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	key        string
	secret     string
}

// NewClient creates a storefront client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.URL == "" || config.ConsumerKey == "" || config.ConsumerSecret == "" {
		return nil, ErrNotConfigured
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(config.URL, "/"),
		key:        config.ConsumerKey,
		secret:     config.ConsumerSecret,
	}, nil
}

// ListOrders fetches every order, following pagination until a short page.
// Orders are decoded but not validated.
func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var all []Order
	for page := 1; ; page++ {
		orders, err := c.listPage(ctx, page)
		if err != nil {
			return nil, err
		}
		all = append(all, orders...)
		if len(orders) < ordersPerPage {
			return all, nil
		}
	}
}

func (c *Client) listPage(ctx context.Context, page int) ([]Order, error) {
	params := url.Values{
		"per_page": {strconv.Itoa(ordersPerPage)},
		"page":     {strconv.Itoa(page)},
	}
	endpoint := c.baseURL + "/wp-json/wc/v3/orders?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.key, c.secret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("list orders: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var orders []Order
	if err := json.NewDecoder(resp.Body).Decode(&orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}
