package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	applog "shopfront/internal/log"
	"shopfront/internal/services"
	"shopfront/internal/validate"
)

type CartHandler struct {
	Cart  *services.CartService
	Pages *productPages
}

func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	p, err := h.Pages.product(c, c.FormValue("productId"))
	if err != nil {
		return h.Pages.productError(c, err)
	}
	if p.Buying || p.Stock <= 0 {
		applog.Security(c, "cart.add.reject", map[string]any{"product": p.ID})
		return h.Pages.show(c, fiber.StatusConflict, p, productView{Warning: "This item cannot be added to the cart."})
	}
	qty := services.ClampQuantity(validate.Qty(c.FormValue("qty")), services.QuantityLimit(p))
	if err := h.Cart.Add(sid, p, qty); err != nil {
		applog.Error(c, "cart.add.fail", err, map[string]any{"product": p.ID})
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not update your cart"})
	}
	applog.Audit(c, "cart.add", map[string]any{"product": p.ID, "qty": qty})
	return c.Redirect(fmt.Sprintf("/product/%s?added=1&qty=%d", p.ID, qty), fiber.StatusSeeOther)
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	cv, err := h.Cart.View(ensureSID(c))
	if err != nil {
		applog.Error(c, "cart.load.fail", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load your cart"})
	}
	return render(c, "cart", fiber.Map{"Cart": cv})
}
