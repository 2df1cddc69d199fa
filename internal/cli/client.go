package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx answer from the server. Anything else returned by the
// client is a transport failure.
type APIError struct {
	Status  int
	Message string
	Body    map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

// IsAPIError reports whether err came back from the server rather than from
// the network.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsRejection reports whether the server refused the request outright, so
// sending it again cannot succeed. Timeouts and rate limits are not
// rejections.
func IsRejection(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return apiErr.Status >= 400 && apiErr.Status < 500
}

// BusinessPath builds an escaped route under /v1/businesses/{id}.
func BusinessPath(id string, parts ...string) string {
	p := "/v1/businesses/" + url.PathEscape(id)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

func (c *Client) Dashboard(ctx context.Context) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, "/v1/dashboard", nil, "")
}

func (c *Client) Catalog(ctx context.Context) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, "/v1/catalog", nil, "")
}

func (c *Client) Click(ctx context.Context, idem string) (map[string]any, error) {
	return c.Do(ctx, http.MethodPost, "/v1/click", nil, idem)
}

func (c *Client) Income(ctx context.Context) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, "/v1/income", nil, "")
}

func (c *Client) Tick(ctx context.Context) (map[string]any, error) {
	return c.Do(ctx, http.MethodPost, "/v1/tick", nil, "")
}

func (c *Client) ListBusinesses(ctx context.Context) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, "/v1/businesses", nil, "")
}

func (c *Client) BestBusiness(ctx context.Context) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, "/v1/businesses/best", nil, "")
}

func (c *Client) CreateBusiness(ctx context.Context, name string, businessType, subtype int, idem string) (map[string]any, error) {
	return c.Do(ctx, http.MethodPost, "/v1/businesses", map[string]any{
		"name":    name,
		"type":    businessType,
		"subtype": subtype,
	}, idem)
}

func (c *Client) Business(ctx context.Context, id string) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, BusinessPath(id), nil, "")
}

func (c *Client) DeleteBusiness(ctx context.Context, id, idem string) (map[string]any, error) {
	return c.Do(ctx, http.MethodDelete, BusinessPath(id), nil, idem)
}

func (c *Client) RenameBusiness(ctx context.Context, id, name, idem string) (map[string]any, error) {
	return c.Do(ctx, http.MethodPost, BusinessPath(id, "name"), map[string]any{"name": name}, idem)
}

func (c *Client) LevelUp(ctx context.Context, id, idem string) (map[string]any, error) {
	return c.Do(ctx, http.MethodPost, BusinessPath(id, "level-up"), nil, idem)
}

func (c *Client) BuyCar(ctx context.Context, id string, car int, idem string) (map[string]any, error) {
	return c.Do(ctx, http.MethodPost, BusinessPath(id, "cars"), map[string]any{"car": car}, idem)
}

func (c *Client) BuySpace(ctx context.Context, id string, tier int, idem string) (map[string]any, error) {
	return c.Do(ctx, http.MethodPost, BusinessPath(id, "space"), map[string]any{"tier": tier}, idem)
}

func (c *Client) Materials(ctx context.Context, id string) (map[string]any, error) {
	return c.Do(ctx, http.MethodGet, BusinessPath(id, "materials"), nil, "")
}

func (c *Client) BuyMaterial(ctx context.Context, id, material string, quantity int, idem string) (map[string]any, error) {
	return c.Do(ctx, http.MethodPost, BusinessPath(id, "materials"), map[string]any{
		"material": material,
		"quantity": quantity,
	}, idem)
}

func (c *Client) StartConstruction(ctx context.Context, id string, plan int, buyMissing bool, idem string) (map[string]any, error) {
	return c.Do(ctx, http.MethodPost, BusinessPath(id, "constructions"), map[string]any{
		"plan":        plan,
		"buy_missing": buyMissing,
	}, idem)
}

func (c *Client) SellConstruction(ctx context.Context, id, constructionID, idem string) (map[string]any, error) {
	return c.Do(ctx, http.MethodPost, BusinessPath(id, "constructions", url.PathEscape(constructionID), "sell"), nil, idem)
}

func (c *Client) Do(ctx context.Context, method, path string, body map[string]any, idem string) (map[string]any, error) {
	var out map[string]any
	var in any
	if body != nil {
		in = body
	}
	err := c.jsonRequest(ctx, method, path, in, &out, idem)
	return out, err
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any, idem string) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idem != "" {
		req.Header.Set("Idempotency-Key", idem)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		var payload map[string]any
		if json.Unmarshal(raw, &payload) == nil {
			apiErr.Body = payload
			if msg, ok := payload["error"].(string); ok {
				apiErr.Message = msg
			}
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
