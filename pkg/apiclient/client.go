// Package apiclient is the storefront's gateway to the marketplace HTTP API.
// Protected routes carry the bearer credential supplied by the token source;
// failures come back as *Error with the taxonomy the UI expects.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource yields the current bearer credential, or "" when anonymous.
type TokenSource func() string

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
}

func New(baseURL string, token TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != nil {
		if t := c.token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return connectivityError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return classify(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Credentials, error) {
	body := map[string]string{"email": email, "password": password}
	var creds Credentials
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*Credentials, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var creds Credentials
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &creds); err != nil {
		return nil, err
	}
	return &creds, nil
}

// GetCart returns the server's current cart snapshot for the session.
func (c *Client) GetCart(ctx context.Context) (*Cart, error) {
	var cart Cart
	if err := c.do(ctx, http.MethodGet, "/api/cart", nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddToCart adds or increments a line and returns the resulting snapshot.
func (c *Client) AddToCart(ctx context.Context, artworkID string, quantity int) (*Cart, error) {
	body := map[string]any{"artwork_id": artworkID, "quantity": quantity}
	var cart Cart
	if err := c.do(ctx, http.MethodPost, "/api/cart", body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// UpdateCartItem sets the absolute quantity of one line.
func (c *Client) UpdateCartItem(ctx context.Context, artworkID string, quantity int) (*Cart, error) {
	body := map[string]any{"quantity": quantity}
	var cart Cart
	if err := c.do(ctx, http.MethodPut, "/api/cart/"+url.PathEscape(artworkID), body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) RemoveFromCart(ctx context.Context, artworkID string) (*Cart, error) {
	var cart Cart
	if err := c.do(ctx, http.MethodDelete, "/api/cart/"+url.PathEscape(artworkID), nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/cart", nil, nil)
}

// Checkout creates an order from the current cart contents.
func (c *Client) Checkout(ctx context.Context) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// SearchArtworks lists artworks, filtered by the query when non-empty.
func (c *Client) SearchArtworks(ctx context.Context, query string) ([]Artwork, error) {
	path := "/api/artworks"
	if query != "" {
		path += "?search=" + url.QueryEscape(query)
	}
	var artworks []Artwork
	if err := c.do(ctx, http.MethodGet, path, nil, &artworks); err != nil {
		return nil, err
	}
	return artworks, nil
}
