// internal/adapters/out/httpapi/cart_api_client.go
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	cartdom "aromelle/internal/domain/cart"
)

// TokenStore is the client-held bearer credential.
// Token reports (token, true) only when a usable credential is present;
// Evict discards it (called after a 401).
type TokenStore interface {
	Token(ctx context.Context) (string, bool)
	Evict()
}

// Navigator points the buyer at the login surface after a 401.
// In the web build this is a location change; here it is injected (the CLI
// logs an instruction, a kiosk shows its sign-in screen).
type Navigator interface {
	ToLogin()
}

// Client implements cart.Store against the shop's REST cart resource.
//
// Endpoint layout:
// - GET    /api/cart
// - POST   /api/cart/add
// - PUT    /api/cart/update
// - DELETE /api/cart/remove/:id  (?size=&scent= disambiguate the line)
// - DELETE /api/cart/clear
//
// Each call is a single exchange: no retries, no timeout override beyond the
// client default. Failure policy per the cart.Store taxonomy:
// - transport failure        → cart.ErrNetwork (state untouched)
// - 401                      → credential evicted, Navigator.ToLogin(), cart.ErrUnauthorized
// - other non-2xx            → cart.RemoteError with the server's message verbatim
type Client struct {
	baseURL string
	client  *http.Client
	tokens  TokenStore
	nav     Navigator
}

// baseURL example:
// - Cloud Run: https://aromelle-api-xxxxx.asia-northeast1.run.app
// - local: http://localhost:8080
func NewClient(baseURL string, tokens TokenStore, nav Navigator) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		tokens:  tokens,
		nav:     nav,
	}
}

// apiEnvelope is the service's uniform response body:
// 2xx carries items (and sometimes a message), non-2xx carries a message.
type apiEnvelope struct {
	Items   []cartdom.Item `json:"items"`
	Message string         `json:"message"`
}

// Load fetches the server-held cart.
// On 401 the credential is evicted and the buyer redirected; the caller gets
// ErrUnauthorized and should render an empty cart without touching prior UI state.
func (c *Client) Load(ctx context.Context) ([]cartdom.Item, error) {
	env, err := c.exchange(ctx, http.MethodGet, "/api/cart", nil)
	if err != nil {
		return []cartdom.Item{}, err
	}
	return itemsOrEmpty(env), nil
}

// Upsert POSTs the add-or-increment payload. The merge itself happens server
// side. A quantity <= 0 never goes out as an upsert — it is redirected to the
// removal operation instead.
func (c *Client) Upsert(ctx context.Context, in cartdom.ItemInput) ([]cartdom.Item, error) {
	if in.Quantity <= 0 {
		return c.Remove(ctx, in.Key())
	}

	env, err := c.exchange(ctx, http.MethodPost, "/api/cart/add", in)
	if err != nil {
		return []cartdom.Item{}, err
	}
	return c.itemsOrReload(ctx, env)
}

// SetQty PUTs the new quantity for an identity key; qty <= 0 becomes a removal.
func (c *Client) SetQty(ctx context.Context, key string, qty int) ([]cartdom.Item, error) {
	if qty <= 0 {
		return c.Remove(ctx, key)
	}

	productID, size, scent := splitKey(key)
	payload := map[string]any{
		"productId": productID,
		"size":      size,
		"scent":     scent,
		"quantity":  qty,
	}

	env, err := c.exchange(ctx, http.MethodPut, "/api/cart/update", payload)
	if err != nil {
		return []cartdom.Item{}, err
	}
	return c.itemsOrReload(ctx, env)
}

// Remove DELETEs one line. size/scent ride in the query string to disambiguate
// which physical line when the product id alone is ambiguous.
func (c *Client) Remove(ctx context.Context, key string) ([]cartdom.Item, error) {
	productID, size, scent := splitKey(key)
	if strings.TrimSpace(productID) == "" {
		return []cartdom.Item{}, cartdom.ErrInvalidItem
	}

	p := "/api/cart/remove/" + url.PathEscape(productID)
	q := url.Values{}
	if size != "" {
		q.Set("size", size)
	}
	if scent != "" {
		q.Set("scent", scent)
	}
	if len(q) > 0 {
		p += "?" + q.Encode()
	}

	env, err := c.exchange(ctx, http.MethodDelete, p, nil)
	if err != nil {
		return []cartdom.Item{}, err
	}
	return c.itemsOrReload(ctx, env)
}

// Clear DELETEs the clear sub-resource, emptying the cart for the current owner.
func (c *Client) Clear(ctx context.Context) error {
	_, err := c.exchange(ctx, http.MethodDelete, "/api/cart/clear", nil)
	return err
}

// ----------------------------
// exchange
// ----------------------------

func (c *Client) exchange(ctx context.Context, method, path string, payload any) (*apiEnvelope, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("httpapi: client is not configured")
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("httpapi: encode payload: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if tok, ok := c.tokens.Token(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cartdom.ErrNetwork, err)
	}
	defer res.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))

	if res.StatusCode == http.StatusUnauthorized {
		log.Printf("[httpapi] 401 on %s %s: evicting credential", method, path)
		if c.tokens != nil {
			c.tokens.Evict()
		}
		if c.nav != nil {
			c.nav.ToLogin()
		}
		return nil, cartdom.ErrUnauthorized
	}

	env := &apiEnvelope{}
	if len(raw) > 0 {
		// tolerate non-JSON bodies; message falls back to the raw text below
		_ = json.Unmarshal(raw, env)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg := strings.TrimSpace(env.Message)
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return nil, &cartdom.RemoteError{Status: res.StatusCode, Message: msg}
	}

	return env, nil
}

// itemsOrReload returns the items from a mutation response; services that
// answer mutations with only a message get a follow-up GET.
func (c *Client) itemsOrReload(ctx context.Context, env *apiEnvelope) ([]cartdom.Item, error) {
	if env != nil && env.Items != nil {
		return env.Items, nil
	}
	return c.Load(ctx)
}

func itemsOrEmpty(env *apiEnvelope) []cartdom.Item {
	if env == nil || env.Items == nil {
		return []cartdom.Item{}
	}
	return env.Items
}

// splitKey unpacks productId__size__scent. Keys built by cart.MakeKey always
// carry both separators; tolerate shorter forms from older callers.
func splitKey(key string) (productID, size, scent string) {
	parts := strings.SplitN(key, "__", 3)
	productID = parts[0]
	if len(parts) > 1 {
		size = parts[1]
	}
	if len(parts) > 2 {
		scent = parts[2]
	}
	return productID, size, scent
}
