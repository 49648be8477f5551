package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/food-ordering/internal/apperr"
	"github.com/iliyamo/food-ordering/internal/model"
	"github.com/iliyamo/food-ordering/internal/repository"
)

// fakeOrderStore keeps orders in memory and mimics the repository's
// behavior closely enough for workflow tests.
type fakeOrderStore struct {
	nextID uint64
	orders map[uint64]*model.Order
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{nextID: 1, orders: make(map[uint64]*model.Order)}
}

func (s *fakeOrderStore) Create(_ context.Context, o *model.Order) (*model.Order, error) {
	cp := *o
	cp.ID = s.nextID
	s.nextID++
	s.orders[cp.ID] = &cp
	return &cp, nil
}

func (s *fakeOrderStore) GetByID(_ context.Context, id uint64) (*model.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *fakeOrderStore) ListByCustomer(_ context.Context, customerID uint64) ([]*model.Order, error) {
	out := make([]*model.Order, 0)
	for _, o := range s.orders {
		if o.CustomerID == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) ListAll(_ context.Context) ([]*model.Order, error) {
	out := make([]*model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	return out, nil
}

func (s *fakeOrderStore) UpdateStatus(_ context.Context, id uint64, status model.OrderStatus) (*model.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	o.Status = status
	cp := *o
	return &cp, nil
}

type fakeMenuStore struct {
	items map[uint64]*model.MenuItem
}

func (s *fakeMenuStore) GetByID(_ context.Context, id uint64) (*model.MenuItem, error) {
	it, ok := s.items[id]
	if !ok {
		return nil, repository.ErrMenuItemNotFound
	}
	return it, nil
}

type recordingNotifier struct {
	created []uint64
	updated []uint64
}

func (n *recordingNotifier) OrderCreated(_ context.Context, o *model.Order) {
	n.created = append(n.created, o.ID)
}

func (n *recordingNotifier) OrderUpdated(_ context.Context, o *model.Order) {
	n.updated = append(n.updated, o.ID)
}

func newTestWorkflow(lenient bool) (*Workflow, *fakeOrderStore, *recordingNotifier) {
	orders := newFakeOrderStore()
	menu := &fakeMenuStore{items: map[uint64]*model.MenuItem{
		1: {ID: 1, Name: "Margherita Pizza", Price: 10.00, Available: true},
		2: {ID: 2, Name: "Tiramisu", Price: 5.00, Available: true},
	}}
	notifier := &recordingNotifier{}
	return New(orders, menu, notifier, lenient), orders, notifier
}

var (
	customer = Actor{ID: 7, Role: model.RoleCustomer}
	kitchen  = Actor{ID: 3, Role: model.RoleKitchen, KitchenCode: "MAIN_KITCHEN"}
	admin    = Actor{ID: 1, Role: model.RoleAdmin}
)

func wantCode(t *testing.T, err error, code int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", code)
	}
	var e *apperr.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *apperr.Error, got %T: %v", err, err)
	}
	if e.Code != code {
		t.Fatalf("expected code %d, got %d (%s)", code, e.Code, e.Message)
	}
}

func TestPlaceOrderComputesTotal(t *testing.T) {
	wf, _, notifier := newTestWorkflow(false)

	order, err := wf.PlaceOrder(context.Background(), customer,
		[]OrderLine{
			{MenuItemID: 1, Quantity: 2, Price: 10.00},
			{MenuItemID: 2, Quantity: 1, Price: 5.00},
		},
		model.CustomerInfo{Name: "John Customer", Phone: "555-0101"})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	if order.Total != 25.00 {
		t.Errorf("expected total 25.00, got %v", order.Total)
	}
	if order.Status != model.StatusPending {
		t.Errorf("expected status pending, got %s", order.Status)
	}
	if order.CustomerID != customer.ID {
		t.Errorf("expected customer id %d, got %d", customer.ID, order.CustomerID)
	}
	if len(notifier.created) != 1 || notifier.created[0] != order.ID {
		t.Errorf("expected one order-created event for order %d, got %v", order.ID, notifier.created)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	wf, _, notifier := newTestWorkflow(false)
	ctx := context.Background()
	info := model.CustomerInfo{Name: "John", Phone: "555-0101"}

	t.Run("EmptyItems", func(t *testing.T) {
		_, err := wf.PlaceOrder(ctx, customer, nil, info)
		wantCode(t, err, apperr.CodeValidation)
	})

	t.Run("ZeroQuantity", func(t *testing.T) {
		_, err := wf.PlaceOrder(ctx, customer, []OrderLine{{MenuItemID: 1, Quantity: 0, Price: 10}}, info)
		wantCode(t, err, apperr.CodeValidation)
	})

	t.Run("NegativePrice", func(t *testing.T) {
		_, err := wf.PlaceOrder(ctx, customer, []OrderLine{{MenuItemID: 1, Quantity: 1, Price: -1}}, info)
		wantCode(t, err, apperr.CodeValidation)
	})

	t.Run("MissingContact", func(t *testing.T) {
		_, err := wf.PlaceOrder(ctx, customer, []OrderLine{{MenuItemID: 1, Quantity: 1, Price: 10}}, model.CustomerInfo{})
		wantCode(t, err, apperr.CodeValidation)
	})

	t.Run("UnknownMenuItem", func(t *testing.T) {
		_, err := wf.PlaceOrder(ctx, customer, []OrderLine{{MenuItemID: 99, Quantity: 1, Price: 10}}, info)
		wantCode(t, err, apperr.CodeNotFound)
	})

	if len(notifier.created) != 0 {
		t.Errorf("no events should be emitted for rejected orders, got %v", notifier.created)
	}
}

func placeTestOrder(t *testing.T, wf *Workflow) *model.Order {
	t.Helper()
	order, err := wf.PlaceOrder(context.Background(), customer,
		[]OrderLine{{MenuItemID: 1, Quantity: 1, Price: 10.00}},
		model.CustomerInfo{Name: "John", Phone: "555-0101"})
	if err != nil {
		t.Fatalf("PlaceOrder failed: %v", err)
	}
	return order
}

func TestUpdateStatusForwardChain(t *testing.T) {
	wf, _, notifier := newTestWorkflow(false)
	order := placeTestOrder(t, wf)
	ctx := context.Background()

	for _, next := range []model.OrderStatus{
		model.StatusConfirmed, model.StatusPreparing, model.StatusReady, model.StatusDelivered,
	} {
		updated, err := wf.UpdateStatus(ctx, kitchen, order.ID, next)
		if err != nil {
			t.Fatalf("UpdateStatus to %s failed: %v", next, err)
		}
		if updated.Status != next {
			t.Fatalf("expected status %s, got %s", next, updated.Status)
		}
	}
	if len(notifier.updated) != 4 {
		t.Errorf("expected 4 order-updated events, got %d", len(notifier.updated))
	}
}

func TestUpdateStatusRejectsSkipsAndBackwardMoves(t *testing.T) {
	wf, _, _ := newTestWorkflow(false)
	order := placeTestOrder(t, wf)
	ctx := context.Background()

	_, err := wf.UpdateStatus(ctx, kitchen, order.ID, model.StatusReady)
	wantCode(t, err, apperr.CodeInvalidTransition)

	if _, err := wf.UpdateStatus(ctx, kitchen, order.ID, model.StatusConfirmed); err != nil {
		t.Fatalf("pending -> confirmed failed: %v", err)
	}
	_, err = wf.UpdateStatus(ctx, kitchen, order.ID, model.StatusPending)
	wantCode(t, err, apperr.CodeInvalidTransition)
}

func TestUpdateStatusCancellation(t *testing.T) {
	ctx := context.Background()

	// Cancellable from every non-terminal state.
	for _, from := range []model.OrderStatus{
		model.StatusPending, model.StatusConfirmed, model.StatusPreparing, model.StatusReady,
	} {
		wf, store, _ := newTestWorkflow(false)
		order := placeTestOrder(t, wf)
		store.orders[order.ID].Status = from

		updated, err := wf.UpdateStatus(ctx, admin, order.ID, model.StatusCancelled)
		if err != nil {
			t.Fatalf("cancel from %s failed: %v", from, err)
		}
		if updated.Status != model.StatusCancelled {
			t.Fatalf("expected cancelled, got %s", updated.Status)
		}
	}

	// Not cancellable once terminal.
	for _, from := range []model.OrderStatus{model.StatusDelivered, model.StatusCancelled} {
		wf, store, _ := newTestWorkflow(false)
		order := placeTestOrder(t, wf)
		store.orders[order.ID].Status = from

		_, err := wf.UpdateStatus(ctx, admin, order.ID, model.StatusCancelled)
		wantCode(t, err, apperr.CodeInvalidTransition)
	}
}

func TestUpdateStatusPermissions(t *testing.T) {
	wf, _, _ := newTestWorkflow(false)
	order := placeTestOrder(t, wf)

	_, err := wf.UpdateStatus(context.Background(), customer, order.ID, model.StatusConfirmed)
	wantCode(t, err, apperr.CodeForbidden)
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	wf, _, _ := newTestWorkflow(false)
	_, err := wf.UpdateStatus(context.Background(), kitchen, 42, model.StatusConfirmed)
	wantCode(t, err, apperr.CodeNotFound)
}

func TestUpdateStatusLenientPolicy(t *testing.T) {
	wf, _, _ := newTestWorkflow(true)
	order := placeTestOrder(t, wf)
	ctx := context.Background()

	// Lenient mode allows skipping ahead and moving back...
	if _, err := wf.UpdateStatus(ctx, kitchen, order.ID, model.StatusReady); err != nil {
		t.Fatalf("lenient skip failed: %v", err)
	}
	if _, err := wf.UpdateStatus(ctx, kitchen, order.ID, model.StatusConfirmed); err != nil {
		t.Fatalf("lenient backward move failed: %v", err)
	}

	// ...but terminal states stay final.
	if _, err := wf.UpdateStatus(ctx, kitchen, order.ID, model.StatusDelivered); err != nil {
		t.Fatalf("lenient delivery failed: %v", err)
	}
	_, err := wf.UpdateStatus(ctx, kitchen, order.ID, model.StatusPreparing)
	wantCode(t, err, apperr.CodeInvalidTransition)
}

func TestConcurrentStatusUpdatesEmitOneEventEach(t *testing.T) {
	wf, store, notifier := newTestWorkflow(true)
	order := placeTestOrder(t, wf)
	ctx := context.Background()

	// Two staff sessions race the same move; the store serializes
	// them and the last write wins. Both pass the transition check
	// against pending before either write lands, mirroring the
	// unsynchronized read-check-write of the real repository.
	if _, err := wf.UpdateStatus(ctx, kitchen, order.ID, model.StatusPreparing); err != nil {
		t.Fatalf("first update failed: %v", err)
	}
	store.orders[order.ID].Status = model.StatusPending // second session saw the old state
	if _, err := wf.UpdateStatus(ctx, kitchen, order.ID, model.StatusPreparing); err != nil {
		t.Fatalf("second update failed: %v", err)
	}

	if got := store.orders[order.ID].Status; got != model.StatusPreparing {
		t.Errorf("final status should be preparing, got %s", got)
	}
	if len(notifier.updated) != 2 {
		t.Errorf("expected exactly one event per update call, got %d", len(notifier.updated))
	}
}

func TestGetOrderOwnership(t *testing.T) {
	wf, _, _ := newTestWorkflow(false)
	order := placeTestOrder(t, wf)
	ctx := context.Background()

	if _, err := wf.GetOrder(ctx, customer, order.ID); err != nil {
		t.Fatalf("owner fetch failed: %v", err)
	}

	other := Actor{ID: 99, Role: model.RoleCustomer}
	_, err := wf.GetOrder(ctx, other, order.ID)
	wantCode(t, err, apperr.CodeForbidden)

	if _, err := wf.GetOrder(ctx, kitchen, order.ID); err != nil {
		t.Fatalf("kitchen fetch failed: %v", err)
	}
	if _, err := wf.GetOrder(ctx, admin, order.ID); err != nil {
		t.Fatalf("admin fetch failed: %v", err)
	}
}

func TestKitchenOrdersPermissions(t *testing.T) {
	wf, _, _ := newTestWorkflow(false)
	placeTestOrder(t, wf)

	_, err := wf.KitchenOrders(context.Background(), customer)
	wantCode(t, err, apperr.CodeForbidden)

	orders, err := wf.KitchenOrders(context.Background(), kitchen)
	if err != nil {
		t.Fatalf("KitchenOrders failed: %v", err)
	}
	if len(orders) != 1 {
		t.Errorf("expected 1 order, got %d", len(orders))
	}
}
