// Package api implements the HTTP client for the storefront backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// TokenSource supplies the bearer token attached to authorized requests.
type TokenSource interface {
	Token() string
}

// Client is the storefront API client. All methods issue exactly one HTTP
// request and return either a decoded payload or a typed error:
// ErrUnauthorized for a 401 on an authorized endpoint, *ServerError for any
// other non-2xx response, or a wrapped transport error when the backend
// could not be reached.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
}

// NewClient creates a new API client for the given base URL.
func NewClient(baseURL string, httpClient *http.Client, tokens TokenSource, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
		logger:     logger.With("component", "api"),
	}
}

// Product is a catalog entry as served by the backend.
type Product struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// TokenResponse is the success body of the token endpoint.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterInput is the payload of the registration endpoint.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// RegisteredUser is the account record returned on successful registration.
type RegisteredUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// CreateProductInput is the payload of the create-product endpoint.
type CreateProductInput struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// Token exchanges credentials for an access token. The endpoint expects
// form-encoded fields, matching OAuth2 password flow conventions.
func (c *Client) Token(ctx context.Context, username, password string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var result TokenResponse
	if err := c.do(req, false, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates a new account. No session is derived from the response.
func (c *Client) Register(ctx context.Context, in RegisterInput) (*RegisteredUser, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/register", in)
	if err != nil {
		return nil, err
	}
	var result RegisteredUser
	if err := c.do(req, false, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Products fetches the catalog, filtered by the search term when one is
// given. An empty term requests the unfiltered catalog.
func (c *Client) Products(ctx context.Context, search string) ([]Product, error) {
	path := "/products"
	if search != "" {
		path += "?search=" + url.QueryEscape(search)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	var result []Product
	if err := c.do(req, true, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Purchase buys one unit of the given product and returns its updated record.
func (c *Client) Purchase(ctx context.Context, id int64) (*Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/purchase/%d", c.baseURL, id), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	var result Product
	if err := c.do(req, true, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Restock increases the stock of the given product and returns its updated record.
func (c *Client) Restock(ctx context.Context, id int64, quantity int) (*Product, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, fmt.Sprintf("/restock/%d", id), map[string]int{"quantity": quantity})
	if err != nil {
		return nil, err
	}
	var result Product
	if err := c.do(req, true, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateProduct adds a new product to the catalog and returns the created record.
func (c *Client) CreateProduct(ctx context.Context, in CreateProductInput) (*Product, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/products", in)
	if err != nil {
		return nil, err
	}
	var result Product
	if err := c.do(req, true, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// newJSONRequest builds a request with a JSON-encoded body.
func (c *Client) newJSONRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// do executes the request and decodes a 2xx response into out. Authorized
// requests carry the bearer token; a 401 on them maps to ErrUnauthorized.
func (c *Client) do(req *http.Request, authorized bool, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if authorized {
		req.Header.Set("Authorization", "Bearer "+c.tokens.Token())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized && authorized {
		c.logger.Warn("Authorized request rejected", "method", req.Method, "path", req.URL.Path)
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError extracts the server-provided detail message from an error
// response, falling back to a generic message derived from the status code.
func (c *Client) decodeError(resp *http.Response) error {
	serverErr := &ServerError{
		Status: resp.StatusCode,
		Detail: fmt.Sprintf("request failed with status %d", resp.StatusCode),
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return serverErr
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		serverErr.Detail = payload.Detail
	}
	return serverErr
}
