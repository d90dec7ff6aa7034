package client

// http_client.go talks to the cookbook HTTP API on behalf of the CLI.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cookbook/internal/microservices/http-api/dto"
)

// APIError is a non-2xx reply from the server.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server replied %d: %s", e.Status, e.Body)
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// ListResponse is the envelope of every list endpoint.
type ListResponse[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

func NewHTTPClient(apiURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimSuffix(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HTTPClient) SetToken(token string) {
	c.token = token
}

// do sends body as JSON and decodes a 2xx reply into out when out is set.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *HTTPClient) Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	var out dto.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &out); err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	return &out, nil
}

func (c *HTTPClient) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	var out dto.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &out); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return &out, nil
}

func (c *HTTPClient) RefreshToken(ctx context.Context, refreshToken string) (*dto.RefreshResponse, error) {
	var out dto.RefreshResponse
	err := c.do(ctx, http.MethodPost, "/auth/refresh", dto.RefreshTokenRequest{RefreshToken: refreshToken}, &out)
	if err != nil {
		return nil, fmt.Errorf("refresh failed: %w", err)
	}
	return &out, nil
}

func (c *HTTPClient) RevokeToken(ctx context.Context, refreshToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/revoke", dto.RefreshTokenRequest{RefreshToken: refreshToken}, nil)
}

// ListDishes filters by name substring and, when maxCookTime > 0, by cook time.
func (c *HTTPClient) ListDishes(ctx context.Context, search string, maxCookTime int) ([]dto.DishSummary, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	if maxCookTime > 0 {
		q.Set("cook_time", strconv.Itoa(maxCookTime))
	}
	var out ListResponse[dto.DishSummary]
	if err := c.do(ctx, http.MethodGet, withQuery("/dishes", q), nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *HTTPClient) GetDish(ctx context.Context, id int64) (*dto.DishResponse, error) {
	var out dto.DishResponse
	if err := c.do(ctx, http.MethodGet, "/dishes/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteDish(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/dishes/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *HTTPClient) ListUnits(ctx context.Context) ([]dto.UnitResponse, error) {
	var out ListResponse[dto.UnitResponse]
	if err := c.do(ctx, http.MethodGet, "/units", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *HTTPClient) CreateUnit(ctx context.Context, in dto.UnitInput) (*dto.UnitResponse, error) {
	var out dto.UnitResponse
	if err := c.do(ctx, http.MethodPost, "/units", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) ListIngredients(ctx context.Context, search string) ([]dto.IngredientResponse, error) {
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	var out ListResponse[dto.IngredientResponse]
	if err := c.do(ctx, http.MethodGet, withQuery("/ingredients", q), nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListGroceries filters on cart state when inCart is set.
func (c *HTTPClient) ListGroceries(ctx context.Context, inCart *bool) ([]dto.GroceryItemResponse, error) {
	q := url.Values{}
	if inCart != nil {
		q.Set("in_cart", strconv.FormatBool(*inCart))
	}
	var out ListResponse[dto.GroceryItemResponse]
	if err := c.do(ctx, http.MethodGet, withQuery("/grocery-items", q), nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *HTTPClient) AddGrocery(ctx context.Context, in dto.GroceryItemInput) (*dto.GroceryItemResponse, error) {
	var out dto.GroceryItemResponse
	if err := c.do(ctx, http.MethodPost, "/grocery-items", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) AddDishToGroceries(ctx context.Context, dishID int64) ([]dto.GroceryItemResponse, error) {
	var out ListResponse[dto.GroceryItemResponse]
	if err := c.do(ctx, http.MethodPost, "/grocery-items/from-dish/"+strconv.FormatInt(dishID, 10), nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *HTTPClient) MarkAllInCart(ctx context.Context) (int64, error) {
	var out struct {
		Updated int64 `json:"updated"`
	}
	err := c.do(ctx, http.MethodPost, "/grocery-items/mark-all-in-cart", nil, &out)
	return out.Updated, err
}

func (c *HTTPClient) ClearCart(ctx context.Context) (int64, error) {
	var out struct {
		Deleted int64 `json:"deleted"`
	}
	err := c.do(ctx, http.MethodPost, "/grocery-items/clear-cart", nil, &out)
	return out.Deleted, err
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
