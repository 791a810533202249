package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"shopfront/internal/backend"
	"shopfront/internal/config"
	"shopfront/internal/repos"
	"shopfront/internal/services"
)

type Deps struct {
	ProductHandler  *ProductHandler
	CartHandler     *CartHandler
	OrderHandler    *OrderHandler
	OfferHandler    *OfferHandler
	WishlistHandler *WishlistHandler
}

// NewDeps wires services and handlers. flows is the lifecycle store; nil
// means the sqlite one on db.
func NewDeps(db *sqlx.DB, cfg config.Config, api *backend.Client, flows services.FlowStore) *Deps {
	if flows == nil {
		flows = repos.NewFlowRepo(db)
	}
	cartRepo := repos.NewCartRepo(db)
	draftRepo := repos.NewOfferDraftRepo(db)

	opts := services.FlowOptions{
		NavDelay:    cfg.NavDelay,
		ProfilePath: cfg.ProfilePath,
		InFlightTTL: cfg.InFlightTTL,
	}
	ship := services.Shipping{
		Address: cfg.ShippingAddress,
		City:    cfg.ShippingCity,
		Zip:     cfg.ShippingZip,
	}

	catalogSvc := services.NewCatalogService(api, cfg.PlaceholderImage)
	cartSvc := services.NewCartService(cartRepo)
	orderSvc := services.NewOrderService(api, flows, ship, opts)
	offerSvc := services.NewOfferService(api, draftRepo, flows, opts)
	wishSvc := services.NewWishlistService(api)

	pages := &productPages{Catalog: catalogSvc, Wish: wishSvc, Orders: orderSvc, Offers: offerSvc}

	return &Deps{
		ProductHandler:  &ProductHandler{Pages: pages},
		CartHandler:     &CartHandler{Cart: cartSvc, Pages: pages},
		OrderHandler:    &OrderHandler{Orders: orderSvc, Pages: pages},
		OfferHandler:    &OfferHandler{Offers: offerSvc, Pages: pages},
		WishlistHandler: &WishlistHandler{Wish: wishSvc},
	}
}

// Register mounts the product-page routes. Callers add their own limiters
// through the optional per-action handlers in mw.
func (d *Deps) Register(r fiber.Router, mw ...fiber.Handler) {
	chain := func(h fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, mw...), h)
	}
	r.Get("/product/:id", d.ProductHandler.Detail)
	r.Post("/product/:id/buy", chain(d.OrderHandler.Buy)...)
	r.Post("/product/:id/offer/images", d.OfferHandler.AddImages)
	r.Post("/product/:id/offer/images/:index/delete", d.OfferHandler.RemoveImage)
	r.Post("/product/:id/offer", chain(d.OfferHandler.Submit)...)

	r.Get("/cart", d.CartHandler.View)
	r.Post("/cart", d.CartHandler.Add)
	r.Post("/wishlist/toggle", d.WishlistHandler.Toggle)
}
