package handlers

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"

	applog "shopfront/internal/log"
	"shopfront/internal/services"
	"shopfront/internal/validate"
)

type OfferHandler struct {
	Offers *services.OfferService
	Pages  *productPages
}

func offerPage(id, warn string) string {
	u := "/product/" + id + "?dialog=offer"
	if warn != "" {
		u += "&warn=" + warn
	}
	return u
}

func (h *OfferHandler) AddImages(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return notFound(c, "This item is no longer available")
	}
	form, err := c.MultipartForm()
	if err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "images"})
		return c.Redirect(offerPage(id, "no_files"), fiber.StatusSeeOther)
	}
	files := form.File["images"]
	if len(files) == 0 {
		return c.Redirect(offerPage(id, "no_files"), fiber.StatusSeeOther)
	}
	openers := make([]services.Opener, 0, len(files))
	for _, fh := range files {
		openers = append(openers, func() (io.ReadCloser, error) { return fh.Open() })
	}

	imgs, err := h.Offers.AddImages(sid, id, openers)
	warn := ""
	switch {
	case errors.Is(err, services.ErrTooManyImages):
		warn = "too_many"
	case errors.Is(err, services.ErrNotAnImage):
		warn = "not_image"
	case errors.Is(err, services.ErrImageTooLarge):
		warn = "too_large"
	case err != nil:
		applog.Error(c, "offer.images.fail", err, map[string]any{"product": id})
		return err
	}
	if warn != "" {
		applog.Info(c, "offer.images.reject", map[string]any{"product": id, "reason": warn, "files": len(files)})
	} else {
		applog.Info(c, "offer.images.add", map[string]any{"product": id, "count": len(imgs)})
	}
	return c.Redirect(offerPage(id, warn), fiber.StatusSeeOther)
}

func (h *OfferHandler) RemoveImage(c *fiber.Ctx) error {
	sid := ensureSID(c)
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "product"})
		return notFound(c, "This item is no longer available")
	}
	idx, ok := validate.Index(c.Params("index"))
	if !ok {
		return c.Redirect(offerPage(id, "no_image"), fiber.StatusSeeOther)
	}
	_, err := h.Offers.RemoveImage(sid, id, idx)
	switch {
	case errors.Is(err, services.ErrNoSuchImage):
		return c.Redirect(offerPage(id, "no_image"), fiber.StatusSeeOther)
	case err != nil:
		applog.Error(c, "offer.images.remove.fail", err, map[string]any{"product": id})
		return err
	}
	return c.Redirect(offerPage(id, ""), fiber.StatusSeeOther)
}

func (h *OfferHandler) Submit(c *fiber.Ctx) error {
	sid := ensureSID(c)
	p, err := h.Pages.product(c, c.Params("id"))
	if err != nil {
		return h.Pages.productError(c, err)
	}
	if !p.Buying {
		applog.Security(c, "offer.submit.reject", map[string]any{"product": p.ID})
		return h.Pages.show(c, fiber.StatusConflict, p, productView{Warning: "This listing does not take offers."})
	}
	f := services.OfferFields{
		Quantity:      validate.Qty(c.FormValue("qty")),
		ContactNumber: c.FormValue("contactNumber"),
		Description:   c.FormValue("description"),
	}

	nav := refreshNavigator{c}
	res := h.Offers.Submit(c.UserContext(), nav, requestToken(c), sid, p.ID, f)
	if res.Success {
		applog.Audit(c, "offer.submit", map[string]any{"product": p.ID, "qty": f.Quantity})
	} else {
		applog.Info(c, "offer.submit.fail", map[string]any{"product": p.ID, "reason": res.Error})
	}
	return showOrCancel(nav, func() error {
		return h.Pages.show(c, fiber.StatusOK, p, productView{Qty: f.Quantity, Dialog: "offer", Offer: res, Form: f})
	})
}
