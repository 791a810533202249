package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/require"

	"shopfront/internal/backend"
	"shopfront/internal/config"
	"shopfront/internal/http/handlers"
	"shopfront/internal/repos"
)

const (
	sellingLamp = `{"id":"p1","name":"Lamp <b>","price":19.5,"stock":3,` +
		`"images":"[\"https://img.test/a.jpg\",\"https://img.test/b.jpg\"]",` +
		`"shop":{"id":"s1","name":"Lights Co"},"category":"Home","type":"Selling"}`
	buyingRequest = `{"id":"p2","type":"Buying","price":4,"stock":10}`
	soldOutVase   = `{"id":"p3","name":"Vase","price":12,"stock":0,"images":["https://img.test/v.jpg"]}`
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// fakeShop is the backend API the storefront talks to.
type fakeShop struct {
	mu       sync.Mutex
	products map[string]string
	orders   []map[string]any
	offers   []map[string]any
	auth     []string
	wishlist []string
	toggles  int
	fetches  int

	orderStatus  int // non-zero fails POST /orders with this status
	orderMessage string
	toggleFails  bool

	srv *httptest.Server
}

func newFakeShop(t *testing.T) *fakeShop {
	t.Helper()
	f := &fakeShop{products: map[string]string{
		"p1": sellingLamp,
		"p2": buyingRequest,
		"p3": soldOutVase,
	}}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /products/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		raw, ok := f.products[r.PathValue("id")]
		f.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, `{"message":"Product not found"}`)
			return
		}
		writeJSON(w, http.StatusOK, raw)
	})
	mux.HandleFunc("POST /orders", func(w http.ResponseWriter, r *http.Request) {
		f.record(r, &f.orders)
		f.mu.Lock()
		status, msg := f.orderStatus, f.orderMessage
		f.mu.Unlock()
		if status != 0 {
			writeJSON(w, status, fmt.Sprintf(`{"message":%q}`, msg))
			return
		}
		writeJSON(w, http.StatusCreated, `{"id":"o1"}`)
	})
	mux.HandleFunc("POST /offers", func(w http.ResponseWriter, r *http.Request) {
		f.record(r, &f.offers)
		writeJSON(w, http.StatusCreated, `{"id":"f1"}`)
	})
	mux.HandleFunc("GET /users/wishlist", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.fetches++
		b, _ := json.Marshal(f.wishlist)
		writeJSON(w, http.StatusOK, string(b))
	})
	mux.HandleFunc("PUT /users/wishlist", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.toggles++
		if f.toggleFails {
			writeJSON(w, http.StatusInternalServerError, `{"message":"wishlist unavailable"}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeShop) record(r *http.Request, into *[]map[string]any) {
	var body map[string]any
	b, _ := io.ReadAll(r.Body)
	_ = json.Unmarshal(b, &body)
	f.mu.Lock()
	defer f.mu.Unlock()
	*into = append(*into, body)
	f.auth = append(f.auth, r.Header.Get("Authorization"))
}

func (f *fakeShop) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

func (f *fakeShop) offerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.offers)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func testConfig() config.Config {
	return config.Config{
		DBDSN:            ":memory:",
		PlaceholderImage: config.DefaultPlaceholderImage,
		ProfilePath:      "/profile",
		NavDelay:         2000 * time.Millisecond,
		InFlightTTL:      time.Minute,
		MaxUploadBytes:   1 << 20,
		ShippingAddress:  "Default Address",
		ShippingCity:     "Default City",
		ShippingZip:      "00000",
	}
}

// newTestApp builds the storefront against shop. setup runs after the
// request-id middleware and before the routes are mounted.
func newTestApp(t *testing.T, shop *fakeShop, setup ...func(*fiber.App)) *fiber.App {
	t.Helper()
	cfg := testConfig()
	db, err := repos.OpenDB(cfg.DBDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	app := fiber.New(fiber.Config{
		Views:        handlers.NewViews("../../web/templates"),
		BodyLimit:    cfg.MaxUploadBytes,
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(requestid.New())
	for _, fn := range setup {
		fn(app)
	}
	api := backend.NewClient(shop.srv.URL, 2*time.Second)
	handlers.NewDeps(db, cfg, api, nil).Register(app)
	return app
}

var sidCookie = &http.Cookie{Name: "sid", Value: "sid-test"}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func get(target string, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func postForm(target string, vals url.Values, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func postImages(t *testing.T, target string, files [][]byte, cookies ...*http.Cookie) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for i, b := range files {
		part, err := w.CreateFormFile("images", fmt.Sprintf("photo%d.png", i))
		require.NoError(t, err)
		_, err = part.Write(b)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func images(n int) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = append(append([]byte{}, pngBytes...), byte('a'+i))
	}
	return out
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
