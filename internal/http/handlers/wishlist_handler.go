package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "shopfront/internal/log"
	"shopfront/internal/services"
	"shopfront/internal/validate"
)

type WishlistHandler struct {
	Wish *services.WishlistService
}

// Toggle flips the product in the caller's wishlist and returns to the
// product page. Failures are logged only; the page shows the unchanged state.
func (h *WishlistHandler) Toggle(c *fiber.Ctx) error {
	pid, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	ids, err := h.Wish.Toggle(requestToken(c), pid)
	if err != nil {
		applog.Error(c, "wishlist.toggle.fail", err, map[string]any{"product": pid})
	} else {
		applog.Audit(c, "wishlist.toggle", map[string]any{"product": pid, "size": len(ids)})
	}
	return c.Redirect("/product/"+pid, fiber.StatusSeeOther)
}
