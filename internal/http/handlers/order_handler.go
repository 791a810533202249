package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "shopfront/internal/log"
	"shopfront/internal/services"
	"shopfront/internal/validate"
)

type OrderHandler struct {
	Orders *services.OrderService
	Pages  *productPages
}

// Buy confirms a buy-now order for the product in the path.
func (h *OrderHandler) Buy(c *fiber.Ctx) error {
	sid := ensureSID(c)
	p, err := h.Pages.product(c, c.Params("id"))
	if err != nil {
		return h.Pages.productError(c, err)
	}
	if p.Buying || p.Stock <= 0 {
		applog.Security(c, "order.place.reject", map[string]any{"product": p.ID})
		return h.Pages.show(c, fiber.StatusConflict, p, productView{Warning: "This item cannot be ordered."})
	}
	qty := services.ClampQuantity(validate.Qty(c.FormValue("qty")), services.QuantityLimit(p))

	nav := refreshNavigator{c}
	l, err := h.Orders.Confirm(c.UserContext(), nav, requestToken(c), sid, p.ID, qty)
	switch {
	case errors.Is(err, services.ErrInFlight):
		applog.Info(c, "order.place.inflight", map[string]any{"product": p.ID})
		return h.Pages.show(c, fiber.StatusConflict, p, productView{Qty: qty, Dialog: "buy", Purchase: l})
	case err != nil:
		return err
	}

	if l.Failed() {
		applog.Error(c, "order.place.fail", errors.New(l.Message), map[string]any{"product": p.ID, "qty": qty})
		return h.Pages.show(c, fiber.StatusOK, p, productView{Qty: qty, Dialog: "buy", Purchase: l})
	}
	applog.Audit(c, "order.place", map[string]any{"product": p.ID, "qty": qty})
	return showOrCancel(nav, func() error {
		return h.Pages.show(c, fiber.StatusOK, p, productView{Qty: qty, Dialog: "buy", Purchase: l})
	})
}
