// Package workflow implements the order lifecycle: placement with
// total computation, the status-transition state machine, and
// ownership checks. It owns no transport or storage detail; those are
// injected, which keeps the state machine testable without a database
// or a live hub.
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/food-ordering/internal/apperr"
	"github.com/iliyamo/food-ordering/internal/model"
	"github.com/iliyamo/food-ordering/internal/repository"
)

// OrderStore is the persistence surface the workflow needs. It is
// satisfied by *repository.OrderRepo.
type OrderStore interface {
	Create(ctx context.Context, o *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id uint64) (*model.Order, error)
	ListByCustomer(ctx context.Context, customerID uint64) ([]*model.Order, error)
	ListAll(ctx context.Context) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, id uint64, status model.OrderStatus) (*model.Order, error)
}

// MenuStore resolves menu item references at placement time.
// Satisfied by *repository.MenuRepo.
type MenuStore interface {
	GetByID(ctx context.Context, id uint64) (*model.MenuItem, error)
}

// Notifier receives lifecycle events after they are committed.
// Delivery is best-effort; implementations must never fail the
// calling request.
type Notifier interface {
	OrderCreated(ctx context.Context, o *model.Order)
	OrderUpdated(ctx context.Context, o *model.Order)
}

// MultiNotifier fans a lifecycle event out to several notifiers (live
// hub, audit queue, ...).
type MultiNotifier []Notifier

func (m MultiNotifier) OrderCreated(ctx context.Context, o *model.Order) {
	for _, n := range m {
		n.OrderCreated(ctx, o)
	}
}

func (m MultiNotifier) OrderUpdated(ctx context.Context, o *model.Order) {
	for _, n := range m {
		n.OrderUpdated(ctx, o)
	}
}

// Actor identifies the authenticated caller of a workflow operation.
type Actor struct {
	ID          uint64
	Role        string
	KitchenCode string
}

// OrderLine is one requested line of a new order. Price is the unit
// price the client saw; it becomes the immutable snapshot on the
// stored line.
type OrderLine struct {
	MenuItemID uint64  `json:"menuItemId"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

// Workflow validates and executes order operations.
type Workflow struct {
	orders OrderStore
	menu   MenuStore
	notify Notifier

	// lenient switches off the strict forward-only chain and lets
	// staff move an order between any two non-terminal states
	// (manual correction mode). Terminal states stay final either
	// way.
	lenient bool
}

func New(orders OrderStore, menu MenuStore, notify Notifier, lenient bool) *Workflow {
	return &Workflow{orders: orders, menu: menu, notify: notify, lenient: lenient}
}

// PlaceOrder validates the requested lines, computes the total,
// persists the order in pending status and announces it. The contact
// info is captured as a snapshot on the order.
func (w *Workflow) PlaceOrder(ctx context.Context, actor Actor, lines []OrderLine, info model.CustomerInfo) (*model.Order, error) {
	if len(lines) == 0 {
		return nil, apperr.Validation("order must contain at least one item")
	}
	if info.Name == "" || info.Phone == "" {
		return nil, apperr.Validation("customer name and phone are required")
	}

	total := 0.0
	items := make([]*model.OrderItem, 0, len(lines))
	for _, l := range lines {
		if l.MenuItemID == 0 {
			return nil, apperr.Validation("menu item id is required")
		}
		if l.Quantity <= 0 {
			return nil, apperr.Validation("item quantity must be positive")
		}
		if l.Price < 0 {
			return nil, apperr.Validation("item price must not be negative")
		}
		if _, err := w.menu.GetByID(ctx, l.MenuItemID); err != nil {
			if errors.Is(err, repository.ErrMenuItemNotFound) {
				return nil, apperr.NotFound(fmt.Sprintf("menu item %d not found", l.MenuItemID))
			}
			return nil, apperr.Internal(err)
		}
		total += float64(l.Quantity) * l.Price
		items = append(items, &model.OrderItem{
			MenuItemID: l.MenuItemID,
			Quantity:   l.Quantity,
			Price:      l.Price,
		})
	}

	order := &model.Order{
		CustomerID:   actor.ID,
		Items:        items,
		Status:       model.StatusPending,
		Total:        model.Round2(total),
		CustomerInfo: info,
	}
	created, err := w.orders.Create(ctx, order)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	w.notify.OrderCreated(ctx, created)
	return created, nil
}

// UpdateStatus moves an order along the status chain. Only kitchen and
// admin actors may call it. Under the default strict policy the order
// may advance exactly one step, or jump to cancelled from any
// non-terminal state.
func (w *Workflow) UpdateStatus(ctx context.Context, actor Actor, orderID uint64, requested model.OrderStatus) (*model.Order, error) {
	if !model.StaffRole(actor.Role) {
		return nil, apperr.Forbidden("only kitchen or admin may update order status")
	}
	if !model.ValidStatus(requested) {
		return nil, apperr.Validation(fmt.Sprintf("unknown status %q", requested))
	}

	current, err := w.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, apperr.Internal(err)
	}

	if err := w.checkTransition(current.Status, requested); err != nil {
		return nil, err
	}

	updated, err := w.orders.UpdateStatus(ctx, orderID, requested)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	w.notify.OrderUpdated(ctx, updated)
	return updated, nil
}

func (w *Workflow) checkTransition(from, to model.OrderStatus) error {
	if from.Terminal() {
		return apperr.InvalidTransition(fmt.Sprintf("order is already %s", from))
	}
	if from == to {
		return apperr.InvalidTransition(fmt.Sprintf("order is already %s", from))
	}
	if w.lenient {
		return nil
	}
	if !from.CanTransition(to) {
		return apperr.InvalidTransition(fmt.Sprintf("cannot move order from %s to %s", from, to))
	}
	return nil
}

// GetOrder fetches one order. Customers may only fetch their own;
// kitchen and admin may fetch any.
func (w *Workflow) GetOrder(ctx context.Context, actor Actor, orderID uint64) (*model.Order, error) {
	o, err := w.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperr.NotFound("order not found")
		}
		return nil, apperr.Internal(err)
	}
	if actor.Role == model.RoleCustomer && o.CustomerID != actor.ID {
		return nil, apperr.Forbidden("access denied")
	}
	return o, nil
}

// CustomerOrders lists the calling customer's orders, newest first.
func (w *Workflow) CustomerOrders(ctx context.Context, actor Actor) ([]*model.Order, error) {
	orders, err := w.orders.ListByCustomer(ctx, actor.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return orders, nil
}

// KitchenOrders lists every order for the kitchen board.
func (w *Workflow) KitchenOrders(ctx context.Context, actor Actor) ([]*model.Order, error) {
	if !model.StaffRole(actor.Role) {
		return nil, apperr.Forbidden("access denied")
	}
	orders, err := w.orders.ListAll(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return orders, nil
}
