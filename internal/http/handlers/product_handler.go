package handlers

import (
	"errors"
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v2"

	"shopfront/internal/backend"
	"shopfront/internal/domain"
	applog "shopfront/internal/log"
	"shopfront/internal/services"
	"shopfront/internal/validate"
)

var errBadProductID = errors.New("invalid product id")

// warnings shown on the product page, keyed by the ?warn query value.
var warnings = map[string]string{
	"too_many":  "You can upload at most 3 images.",
	"not_image": "Only image files can be attached.",
	"too_large": "That image is too large.",
	"no_image":  "That image was already removed.",
	"no_files":  "Choose at least one image to upload.",
}

// productPages loads products and renders the product page for every
// handler that ends on it.
type productPages struct {
	Catalog *services.CatalogService
	Wish    *services.WishlistService
	Orders  *services.OrderService
	Offers  *services.OfferService
}

// productView is the per-request state layered on top of the product.
type productView struct {
	Qty      int
	Dialog   string
	Added    bool
	Warning  string
	Purchase domain.Lifecycle
	Offer    services.OfferResult
	Form     services.OfferFields
}

func (pp *productPages) product(c *fiber.Ctx, rawID string) (domain.DisplayProduct, error) {
	id, ok := validate.ID(rawID)
	if !ok {
		return domain.DisplayProduct{}, errBadProductID
	}
	p, err := pp.Catalog.Display(requestToken(c), id)
	if err != nil {
		return p, err
	}
	p.ID = id
	return p, nil
}

func (pp *productPages) productError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, errBadProductID):
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return notFound(c, "This item is no longer available")
	case errors.Is(err, backend.ErrNotFound):
		return notFound(c, "This item is no longer available")
	default:
		applog.Error(c, "product.load.fail", err, nil)
		return c.Status(fiber.StatusBadGateway).Render("notfound", fiber.Map{
			"Message": "Could not load this product. Please try again.",
		})
	}
}

func (pp *productPages) show(c *fiber.Ctx, status int, p domain.DisplayProduct, v productView) error {
	sid := ensureSID(c)
	limit := services.QuantityLimit(p)
	qty := services.ClampQuantity(v.Qty, limit)
	gallery := domain.NewGallery(p.Images, c.QueryInt("img", 0))

	wished := false
	if tok := requestToken(c); tok != "" {
		in, err := pp.Wish.Contains(tok, p.ID)
		if err != nil {
			applog.Error(c, "wishlist.fetch.fail", err, map[string]any{"product": p.ID})
		}
		wished = in
	}

	data := fiber.Map{
		"P":        p,
		"Gallery":  gallery,
		"Qty":      qty,
		"QtyDec":   services.ChangeQuantity(qty, services.Decrease, limit),
		"QtyInc":   services.ChangeQuantity(qty, services.Increase, limit),
		"CanDec":   qty > 1,
		"CanInc":   qty < limit,
		"InStock":  p.Buying || p.Stock > 0,
		"Wished":   wished,
		"Added":    v.Added,
		"Dialog":   v.Dialog,
		"Warning":  v.Warning,
		"Purchase": v.Purchase,
		"Offer":    v.Offer,
		"Form":     v.Form,

		"OfferImages": []template.URL(nil),
	}

	if p.Buying {
		imgs, err := pp.Offers.Images(sid, p.ID)
		if err != nil {
			applog.Error(c, "offer.draft.load.fail", err, nil)
		}
		data["OfferImages"] = previewURLs(imgs)
		data["CanAddImages"] = len(imgs) < services.MaxOfferImages
		data["MaxImages"] = services.MaxOfferImages
		if v.Form.Quantity < 1 {
			data["Form"] = services.OfferFields{Quantity: qty}
		}
		c.Status(status)
		return render(c, "product", data)
	}

	if v.Purchase.State == "" {
		st, err := pp.Orders.State(c.UserContext(), sid, p.ID)
		if err != nil {
			applog.Error(c, "order.state.fail", err, nil)
		}
		if st.Processing() {
			data["Purchase"] = st
		}
	}
	c.Status(status)
	return render(c, "product", data)
}

type ProductHandler struct {
	Pages *productPages
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	p, err := h.Pages.product(c, c.Params("id"))
	if err != nil {
		return h.Pages.productError(c, err)
	}
	dialog := c.Query("dialog")
	if dialog != "buy" && dialog != "offer" {
		dialog = ""
	}
	return h.Pages.show(c, fiber.StatusOK, p, productView{
		Qty:     validate.Qty(c.Query("qty")),
		Dialog:  dialog,
		Added:   c.Query("added") == "1",
		Warning: warnings[strings.TrimSpace(c.Query("warn"))],
	})
}

// previewURLs marks the drafted data:image URLs safe for img src; the
// template escaper rejects data URLs otherwise. Anything else is dropped.
func previewURLs(imgs []string) []template.URL {
	out := make([]template.URL, 0, len(imgs))
	for _, s := range imgs {
		if strings.HasPrefix(s, "data:image/") {
			out = append(out, template.URL(s))
		}
	}
	return out
}
