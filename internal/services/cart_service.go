package services

import (
	"github.com/shopspring/decimal"

	"shopfront/internal/domain"
	"shopfront/internal/repos"
	"shopfront/internal/validate"
)

type CartService struct {
	Carts *repos.CartRepo
}

func NewCartService(carts *repos.CartRepo) *CartService {
	return &CartService{Carts: carts}
}

// Add appends p to the session's cart. Merging with an existing line for the
// same product is the store's concern.
func (s *CartService) Add(sessionID string, p domain.DisplayProduct, qty int) error {
	if qty < 1 {
		qty = 1
	}
	line := domain.CartLineItem{
		ProductID: p.ID,
		Name:      p.Title,
		UnitPrice: p.Price,
		Images:    p.Images,
		Shop:      p.Shop,
		Quantity:  qty,
	}
	if err := validate.Struct(line); err != nil {
		return err
	}
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return err
	}
	return s.Carts.UpsertItem(cartID, line)
}

type CartLine struct {
	repos.CartItemRow
	Subtotal decimal.Decimal
}

type CartView struct {
	Items []CartLine
	Count int
	Total decimal.Decimal
}

func (s *CartService) View(sessionID string) (CartView, error) {
	cartID, err := s.Carts.EnsureCart(sessionID)
	if err != nil {
		return CartView{}, err
	}
	rows, err := s.Carts.Items(cartID)
	if err != nil {
		return CartView{}, err
	}
	v := CartView{Items: make([]CartLine, 0, len(rows)), Total: decimal.Zero}
	for _, r := range rows {
		sub := decimal.NewFromFloat(r.UnitPrice).Mul(decimal.NewFromInt(int64(r.Qty)))
		v.Items = append(v.Items, CartLine{CartItemRow: r, Subtotal: sub})
		v.Total = v.Total.Add(sub)
		v.Count += r.Qty
	}
	return v, nil
}
