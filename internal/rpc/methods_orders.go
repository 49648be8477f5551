package rpc

import (
	"context"
	"encoding/json"

	"github.com/iliyamo/food-ordering/internal/apperr"
	"github.com/iliyamo/food-ordering/internal/model"
	"github.com/iliyamo/food-ordering/internal/workflow"
)

type placeOrderParams struct {
	Items        []workflow.OrderLine `json:"items"`
	CustomerInfo model.CustomerInfo   `json:"customerInfo"`
}

type getOrderParams struct {
	OrderID uint64 `json:"orderId"`
}

type updateStatusParams struct {
	OrderID uint64            `json:"orderId"`
	Status  model.OrderStatus `json:"status"`
}

func (g *Gateway) placeOrder(ctx context.Context, caller *model.User, params json.RawMessage) (any, error) {
	var p placeOrderParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	return g.orders.PlaceOrder(ctx, actorFor(caller), p.Items, p.CustomerInfo)
}

func (g *Gateway) getOrder(ctx context.Context, caller *model.User, params json.RawMessage) (any, error) {
	var p getOrderParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.OrderID == 0 {
		return nil, apperr.Validation("orderId is required")
	}
	return g.orders.GetOrder(ctx, actorFor(caller), p.OrderID)
}

func (g *Gateway) customerOrders(ctx context.Context, caller *model.User, _ json.RawMessage) (any, error) {
	return g.orders.CustomerOrders(ctx, actorFor(caller))
}

func (g *Gateway) updateStatus(ctx context.Context, caller *model.User, params json.RawMessage) (any, error) {
	var p updateStatusParams
	if err := decode(params, &p); err != nil {
		return nil, err
	}
	if p.OrderID == 0 {
		return nil, apperr.Validation("orderId is required")
	}
	return g.orders.UpdateStatus(ctx, actorFor(caller), p.OrderID, p.Status)
}

// kitchenOrders backs the kitchen board: every order, newest first.
func (g *Gateway) kitchenOrders(ctx context.Context, caller *model.User, _ json.RawMessage) (any, error) {
	return g.orders.KitchenOrders(ctx, actorFor(caller))
}

// dashboardStats aggregates the admin dashboard. Kitchen staff see
// their kitchen's slice; an empty affiliation (admins) aggregates over
// everything.
func (g *Gateway) dashboardStats(ctx context.Context, caller *model.User, _ json.RawMessage) (any, error) {
	stats, err := g.analytics.DashboardStats(ctx, caller.KitchenCode)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return stats, nil
}
