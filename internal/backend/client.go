package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"shopfront/internal/domain"
)

var ErrNotFound = errors.New("not found")

// Error is a non-2xx answer from the backend. Message is the backend's own
// human-readable text and may be empty.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: status %d", e.Status)
	}
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
}

func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Status == fiber.StatusNotFound
}

// MessageOf returns the backend's message carried by err, or fallback when
// err carries none (transport failures included).
func MessageOf(err error, fallback string) string {
	var be *Error
	if errors.As(err, &be) && strings.TrimSpace(be.Message) != "" {
		return be.Message
	}
	return fallback
}

type Client struct {
	BaseURL string
	Timeout time.Duration
	hc      *fiber.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Timeout: timeout,
		hc:      &fiber.Client{UserAgent: "shopfront"},
	}
}

type call struct {
	method  string
	path    string
	token   string
	idemKey string
	body    any
}

func (c *Client) agent(method, url string) *fiber.Agent {
	switch method {
	case fiber.MethodPost:
		return c.hc.Post(url)
	case fiber.MethodPut:
		return c.hc.Put(url)
	case fiber.MethodDelete:
		return c.hc.Delete(url)
	default:
		return c.hc.Get(url)
	}
}

func (c *Client) do(r call, out any) error {
	a := c.agent(r.method, c.BaseURL+r.path)
	if c.Timeout > 0 {
		a.Timeout(c.Timeout)
	}
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if r.token != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+r.token)
	}
	if r.idemKey != "" {
		a.Set("Idempotency-Key", r.idemKey)
	}
	if r.body != nil {
		a.JSON(r.body)
	}

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("backend %s %s: %w", r.method, r.path, errors.Join(errs...))
	}
	if code < 200 || code > 299 {
		return &Error{Status: code, Message: messageFrom(body)}
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("backend %s %s: decode: %w", r.method, r.path, err)
	}
	return nil
}

func messageFrom(body []byte) string {
	var m struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &m); err != nil {
		return ""
	}
	if m.Message != "" {
		return m.Message
	}
	return m.Error
}

// Product fetches one record. Both a bare record and {"product": record} are accepted.
func (c *Client) Product(token, id string) (domain.ProductRecord, error) {
	var raw map[string]json.RawMessage
	if err := c.do(call{method: fiber.MethodGet, path: "/products/" + id, token: token}, &raw); err != nil {
		return domain.ProductRecord{}, err
	}
	payload, err := json.Marshal(raw)
	if inner, ok := raw["product"]; ok {
		payload, err = inner, nil
	}
	if err != nil {
		return domain.ProductRecord{}, err
	}
	var p domain.ProductRecord
	if err := json.Unmarshal(payload, &p); err != nil {
		return domain.ProductRecord{}, fmt.Errorf("backend product %s: %w", id, err)
	}
	if p.ID == "" {
		p.ID = domain.ID(id)
	}
	return p, nil
}

// Wishlist returns the product ids in the caller's wishlist. Entries may be
// plain ids or product objects.
func (c *Client) Wishlist(token string) ([]string, error) {
	var entries []json.RawMessage
	if err := c.do(call{method: fiber.MethodGet, path: "/users/wishlist", token: token}, &entries); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		var id domain.ID
		if err := json.Unmarshal(e, &id); err == nil && id != "" {
			ids = append(ids, id.String())
			continue
		}
		var obj struct {
			ID domain.ID `json:"id"`
		}
		if err := json.Unmarshal(e, &obj); err == nil && obj.ID != "" {
			ids = append(ids, obj.ID.String())
		}
	}
	return ids, nil
}

func (c *Client) ToggleWishlist(token, productID string) error {
	return c.do(call{
		method: fiber.MethodPut,
		path:   "/users/wishlist",
		token:  token,
		body:   map[string]string{"productId": productID},
	}, nil)
}

func (c *Client) CreateOrder(token, idemKey string, req domain.OrderRequest) error {
	return c.do(call{method: fiber.MethodPost, path: "/orders", token: token, idemKey: idemKey, body: req}, nil)
}

func (c *Client) SubmitOffer(token, idemKey string, req domain.OfferRequest) error {
	return c.do(call{method: fiber.MethodPost, path: "/offers", token: token, idemKey: idemKey, body: req}, nil)
}
