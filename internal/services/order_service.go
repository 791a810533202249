package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shopfront/internal/backend"
	"shopfront/internal/domain"
	applog "shopfront/internal/log"
)

const PurchaseFailedMessage = "Failed to place order. Please try again."

type OrderCreator interface {
	CreateOrder(token, idemKey string, req domain.OrderRequest) error
}

// Shipping is sent with every order. The product page has no address form.
type Shipping struct {
	Address string
	City    string
	Zip     string
}

type OrderService struct {
	API      OrderCreator
	Flows    FlowStore
	Shipping Shipping
	Opts     FlowOptions
}

func NewOrderService(api OrderCreator, flows FlowStore, ship Shipping, opts FlowOptions) *OrderService {
	return &OrderService{API: api, Flows: flows, Shipping: ship, Opts: opts}
}

// Confirm places a single-item order. Backend failures come back as a Failed
// lifecycle, not as an error; the error is reserved for ErrInFlight and for
// the guard itself failing to start.
func (s *OrderService) Confirm(ctx context.Context, nav Navigator, token, sessionID, productID string, qty int) (domain.Lifecycle, error) {
	if qty < 1 {
		qty = 1
	}
	key := flowKey("purchase", sessionID, productID)
	ok, err := s.Flows.Begin(ctx, key, s.Opts.InFlightTTL)
	if err != nil {
		return domain.Lifecycle{}, err
	}
	if !ok {
		return domain.Lifecycle{State: domain.FlowProcessing}, ErrInFlight
	}

	req := domain.OrderRequest{
		Items:           []domain.OrderItem{{ProductID: productID, Quantity: qty}},
		ShippingAddress: s.Shipping.Address,
		ShippingCity:    s.Shipping.City,
		ShippingZip:     s.Shipping.Zip,
	}
	if err := s.API.CreateOrder(token, uuid.NewString(), req); err != nil {
		applog.L().Warn("order.create.fail", zap.String("product_id", productID), zap.Error(err))
		l := domain.Lifecycle{State: domain.FlowFailed, Message: backend.MessageOf(err, PurchaseFailedMessage)}
		if ferr := s.Flows.Finish(ctx, key, l); ferr != nil {
			applog.L().Error("flow.finish.fail", zap.String("key", key), zap.Error(ferr))
		}
		return l, nil
	}

	// The order exists at this point; a store failure must not hide that.
	l := domain.Lifecycle{State: domain.FlowSucceeded}
	if err := s.Flows.Finish(ctx, key, l); err != nil {
		applog.L().Error("flow.finish.fail", zap.String("key", key), zap.Error(err))
	}
	nav.NavigateAfter(s.Opts.NavDelay, s.Opts.ProfilePath)
	return l, nil
}

// State is the last recorded purchase lifecycle for this session and product.
func (s *OrderService) State(ctx context.Context, sessionID, productID string) (domain.Lifecycle, error) {
	return s.Flows.Get(ctx, flowKey("purchase", sessionID, productID))
}
