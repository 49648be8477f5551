package queue_publisher

import (
	"context"
	"time"

	"github.com/iliyamo/food-ordering/internal/model"
	q "github.com/iliyamo/food-ordering/internal/queue"
)

// AuditNotifier implements workflow.Notifier by publishing order
// events to the broker. Publishing happens in the background with its
// own timeout so a slow or absent broker never delays the request;
// failures are logged by the publisher and otherwise dropped.
type AuditNotifier struct{}

func (AuditNotifier) OrderCreated(_ context.Context, o *model.Order) {
	go publishAsync(eventFor(q.TypeOrderPlaced, o))
}

func (AuditNotifier) OrderUpdated(_ context.Context, o *model.Order) {
	go publishAsync(eventFor(q.TypeOrderStatusChanged, o))
}

func publishAsync(ev q.OrderEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = PublishOrderEvent(ctx, ev)
}

func eventFor(typ string, o *model.Order) q.OrderEvent {
	return q.OrderEvent{
		Type:         typ,
		OrderID:      o.ID,
		CustomerID:   o.CustomerID,
		Status:       string(o.Status),
		Total:        o.Total,
		ItemCount:    len(o.Items),
		CustomerName: o.CustomerInfo.Name,
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
	}
}
