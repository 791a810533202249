package services_test

import (
	"bytes"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"shopfront/internal/domain"
	"shopfront/internal/repos"
	"shopfront/internal/services"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func opener(b []byte) services.Opener {
	return func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(b)), nil }
}

// pngWith returns a distinct PNG-looking payload per tag.
func pngWith(tag string) []byte {
	return append(append([]byte{}, pngHeader...), tag...)
}

type navCall struct {
	Delay time.Duration
	Path  string
}

type fakeNav struct {
	mu    sync.Mutex
	calls []navCall
}

func (n *fakeNav) NavigateAfter(d time.Duration, path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, navCall{d, path})
}

type fakeBackend struct {
	mu       sync.Mutex
	product  domain.ProductRecord
	orders   []domain.OrderRequest
	offers   []domain.OfferRequest
	idemKeys []string
	toggles  []string
	wishlist []string

	err         error
	wishlistErr error
	during      func() // runs inside CreateOrder/SubmitOffer
}

func (b *fakeBackend) Product(token, id string) (domain.ProductRecord, error) {
	if b.err != nil {
		return domain.ProductRecord{}, b.err
	}
	return b.product, nil
}

func (b *fakeBackend) CreateOrder(token, idemKey string, req domain.OrderRequest) error {
	if b.during != nil {
		b.during()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders = append(b.orders, req)
	b.idemKeys = append(b.idemKeys, idemKey)
	return b.err
}

func (b *fakeBackend) SubmitOffer(token, idemKey string, req domain.OfferRequest) error {
	if b.during != nil {
		b.during()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.offers = append(b.offers, req)
	b.idemKeys = append(b.idemKeys, idemKey)
	return b.err
}

func (b *fakeBackend) ToggleWishlist(token, productID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.toggles = append(b.toggles, productID)
	return b.err
}

func (b *fakeBackend) Wishlist(token string) ([]string, error) {
	if b.wishlistErr != nil {
		return nil, b.wishlistErr
	}
	return b.wishlist, nil
}

var testOpts = services.FlowOptions{
	NavDelay:    2000 * time.Millisecond,
	ProfilePath: "/profile",
	InFlightTTL: time.Minute,
}
