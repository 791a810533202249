package services_test

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/backend"
	"shopfront/internal/repos"
	"shopfront/internal/services"
)

func newOfferSvc(t *testing.T, api *fakeBackend) *services.OfferService {
	db := memdb(t)
	return services.NewOfferService(api, repos.NewOfferDraftRepo(db), repos.NewFlowRepo(db), testOpts)
}

func dataURI(b []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(b)
}

func TestAddImagesKeepsSelectionOrder(t *testing.T) {
	svc := newOfferSvc(t, &fakeBackend{})
	imgs, err := svc.AddImages("sid", "p1", []services.Opener{opener(pngWith("a")), opener(pngWith("b"))})
	require.NoError(t, err)
	require.Equal(t, []string{dataURI(pngWith("a")), dataURI(pngWith("b"))}, imgs)

	imgs, err = svc.AddImages("sid", "p1", []services.Opener{opener(pngWith("c"))})
	require.NoError(t, err)
	assert.Len(t, imgs, 3)
	assert.Equal(t, dataURI(pngWith("c")), imgs[2])
}

func TestAddImagesOverCapRejectsWholeBatch(t *testing.T) {
	svc := newOfferSvc(t, &fakeBackend{})
	_, err := svc.AddImages("sid", "p1", []services.Opener{opener(pngWith("a")), opener(pngWith("b"))})
	require.NoError(t, err)

	imgs, err := svc.AddImages("sid", "p1", []services.Opener{opener(pngWith("c")), opener(pngWith("d"))})
	assert.ErrorIs(t, err, services.ErrTooManyImages)
	assert.Len(t, imgs, 2)

	stored, err := svc.Images("sid", "p1")
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	_, err = svc.AddImages("sid", "p2", []services.Opener{
		opener(pngWith("1")), opener(pngWith("2")), opener(pngWith("3")), opener(pngWith("4")),
	})
	assert.ErrorIs(t, err, services.ErrTooManyImages)
}

func TestAddImagesRejectsNonImages(t *testing.T) {
	svc := newOfferSvc(t, &fakeBackend{})
	_, err := svc.AddImages("sid", "p1", []services.Opener{
		opener(pngWith("a")),
		opener([]byte("just some text")),
	})
	assert.ErrorIs(t, err, services.ErrNotAnImage)

	stored, err := svc.Images("sid", "p1")
	require.NoError(t, err)
	assert.Empty(t, stored)

	failing := func() (io.ReadCloser, error) { return nil, errors.New("gone") }
	_, err = svc.AddImages("sid", "p1", []services.Opener{failing})
	assert.Error(t, err)
}

func TestAddImagesRejectsOversized(t *testing.T) {
	svc := newOfferSvc(t, &fakeBackend{})
	big := append(pngWith(""), make([]byte, services.MaxImageBytes)...)
	_, err := svc.AddImages("sid", "p1", []services.Opener{opener(big)})
	assert.ErrorIs(t, err, services.ErrImageTooLarge)
}

func TestRemoveImageByPosition(t *testing.T) {
	svc := newOfferSvc(t, &fakeBackend{})
	_, err := svc.AddImages("sid", "p1", []services.Opener{
		opener(pngWith("a")), opener(pngWith("b")), opener(pngWith("c")),
	})
	require.NoError(t, err)

	imgs, err := svc.RemoveImage("sid", "p1", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{dataURI(pngWith("a")), dataURI(pngWith("c"))}, imgs)

	_, err = svc.RemoveImage("sid", "p1", 2)
	assert.ErrorIs(t, err, services.ErrNoSuchImage)
	_, err = svc.RemoveImage("sid", "p1", -1)
	assert.ErrorIs(t, err, services.ErrNoSuchImage)
}

func TestSubmitEmptyContactMakesNoCall(t *testing.T) {
	api := &fakeBackend{}
	svc := newOfferSvc(t, api)
	nav := &fakeNav{}

	res := svc.Submit(context.Background(), nav, "tok", "sid", "p1", services.OfferFields{ContactNumber: "   "})
	assert.Equal(t, services.OfferResult{Error: "Contact number is required"}, res)
	assert.Empty(t, api.offers)
	assert.Empty(t, nav.calls)
}

func TestSubmitSuccessClearsDraftAndNavigates(t *testing.T) {
	ctx := context.Background()
	api := &fakeBackend{}
	svc := newOfferSvc(t, api)
	_, err := svc.AddImages("sid", "p1", []services.Opener{opener(pngWith("a"))})
	require.NoError(t, err)

	nav := &fakeNav{}
	res := svc.Submit(ctx, nav, "tok", "sid", "p1", services.OfferFields{
		Quantity: 0, ContactNumber: " 555-0100 ", Description: "barely used",
	})
	assert.Equal(t, services.OfferResult{Success: true}, res)

	require.Len(t, api.offers, 1)
	got := api.offers[0]
	assert.Equal(t, "p1", got.ProductID)
	assert.Equal(t, 1, got.Quantity)
	assert.Equal(t, "555-0100", got.ContactNumber)
	assert.Equal(t, "barely used", got.Description)
	assert.Equal(t, []string{dataURI(pngWith("a"))}, got.Images)

	require.Len(t, nav.calls, 1)
	assert.Equal(t, "/profile", nav.calls[0].Path)

	left, err := svc.Images("sid", "p1")
	require.NoError(t, err)
	assert.Empty(t, left)

	st, err := svc.State(ctx, "sid", "p1")
	require.NoError(t, err)
	assert.True(t, st.Succeeded())
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	ctx := context.Background()
	api := &fakeBackend{err: &backend.Error{Status: 400, Message: "Product is not accepting offers"}}
	svc := newOfferSvc(t, api)
	_, err := svc.AddImages("sid", "p1", []services.Opener{opener(pngWith("a"))})
	require.NoError(t, err)

	nav := &fakeNav{}
	res := svc.Submit(ctx, nav, "tok", "sid", "p1", services.OfferFields{Quantity: 2, ContactNumber: "555"})
	assert.Equal(t, services.OfferResult{Error: "Product is not accepting offers"}, res)
	assert.Empty(t, nav.calls)

	left, err := svc.Images("sid", "p1")
	require.NoError(t, err)
	assert.Len(t, left, 1)

	api.err = errors.New("timeout")
	res = svc.Submit(ctx, nav, "tok", "sid", "p1", services.OfferFields{Quantity: 2, ContactNumber: "555"})
	assert.Equal(t, services.OfferFailedMessage, res.Error)
	assert.Len(t, api.offers, 2)
}

func TestSubmitValidatesFields(t *testing.T) {
	api := &fakeBackend{}
	svc := newOfferSvc(t, api)
	res := svc.Submit(context.Background(), &fakeNav{}, "", "sid", "p1", services.OfferFields{
		Quantity: 1, ContactNumber: strings.Repeat("5", 40),
	})
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "ContactNumber must be at most 32")
	assert.Empty(t, api.offers)
}

func TestSubmitWhileInFlight(t *testing.T) {
	ctx := context.Background()
	api := &fakeBackend{}
	svc := newOfferSvc(t, api)

	var inner services.OfferResult
	api.during = func() {
		api.during = nil
		inner = svc.Submit(ctx, &fakeNav{}, "", "sid", "p1", services.OfferFields{Quantity: 1, ContactNumber: "555"})
	}
	res := svc.Submit(ctx, &fakeNav{}, "", "sid", "p1", services.OfferFields{Quantity: 1, ContactNumber: "555"})
	assert.True(t, res.Success)
	assert.Equal(t, services.ErrInFlight.Error(), inner.Error)
	assert.Len(t, api.offers, 1)
}
