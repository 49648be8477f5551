// Package hub delivers order lifecycle events to live WebSocket
// connections. Delivery is best-effort and at-most-once: there is no
// replay for clients that were offline, and a slow client is dropped
// rather than allowed to block the rest.
package hub

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"sync"

	"github.com/iliyamo/food-ordering/internal/model"
)

// Event types pushed over the wire.
const (
	EventOrderCreated = "order:created"
	EventOrderUpdated = "order:updated"
)

// Event is the envelope written to subscribers. Payload carries the
// full order.
type Event struct {
	Type    string       `json:"type"`
	Payload *model.Order `json:"payload"`
}

// Scope names partition delivery. A connection subscribes to its
// role scope, plus its own customer scope or kitchen affiliation.
func RoleScope(role string) string    { return "role:" + role }
func CustomerScope(id uint64) string  { return "customer:" + strconv.FormatUint(id, 10) }
func KitchenScope(code string) string { return "kitchen:" + code }

// Hub is the process-wide connection registry. It is created at
// startup and injected wherever events are published; nothing reaches
// it as an ambient global.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	byScope map[string]map[*Client]struct{}
}

func New() *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		byScope: make(map[string]map[*Client]struct{}),
	}
}

// register adds a client under all of its scopes.
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	for _, s := range c.scopes {
		set, ok := h.byScope[s]
		if !ok {
			set = make(map[*Client]struct{})
			h.byScope[s] = set
		}
		set[c] = struct{}{}
	}
}

// unregister removes a client and closes its send channel. Safe to
// call more than once.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// removeLocked drops a client from all indexes and closes its send
// channel. Callers must hold mu; closing under the same lock as every
// send keeps a disconnect from racing an in-flight broadcast.
func (h *Hub) removeLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	for _, s := range c.scopes {
		if set, ok := h.byScope[s]; ok {
			delete(set, c)
			if len(set) == 0 {
				delete(h.byScope, s)
			}
		}
	}
	close(c.send)
}

// Publish fans an event out to every client subscribed to at least
// one of the scopes. Each connected client receives the event at most
// once. Clients whose send buffer is full are dropped. The sends are
// non-blocking and happen under the registry lock, so a concurrent
// disconnect can never close a channel mid-broadcast.
func (h *Hub) Publish(scopes []string, ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("hub: marshal event failed: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	targets := make(map[*Client]struct{})
	for _, s := range scopes {
		for c := range h.byScope[s] {
			targets[c] = struct{}{}
		}
	}
	for c := range targets {
		select {
		case c.send <- body:
		default:
			// Slow subscriber; drop it so others are not held up.
			log.Printf("hub: dropping slow client user=%d", c.userID)
			h.removeLocked(c)
		}
	}
}

// ClientCount reports the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close drops every connection. Called on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()
	for _, c := range clients {
		h.unregister(c)
	}
}

// OrderCreated implements workflow.Notifier: the event goes to the
// owning customer and to the kitchen/admin audience.
func (h *Hub) OrderCreated(_ context.Context, o *model.Order) {
	h.Publish(orderScopes(o), Event{Type: EventOrderCreated, Payload: o})
}

// OrderUpdated implements workflow.Notifier with the same scoping as
// OrderCreated.
func (h *Hub) OrderUpdated(_ context.Context, o *model.Order) {
	h.Publish(orderScopes(o), Event{Type: EventOrderUpdated, Payload: o})
}

// orderScopes targets the owning customer, the kitchen/admin
// audience, and the affiliation feed of every kitchen whose items the
// order contains.
func orderScopes(o *model.Order) []string {
	scopes := []string{
		CustomerScope(o.CustomerID),
		RoleScope(model.RoleKitchen),
		RoleScope(model.RoleAdmin),
	}
	seen := make(map[string]struct{})
	for _, it := range o.Items {
		if it.MenuItem == nil || it.MenuItem.KitchenCode == "" {
			continue
		}
		if _, ok := seen[it.MenuItem.KitchenCode]; ok {
			continue
		}
		seen[it.MenuItem.KitchenCode] = struct{}{}
		scopes = append(scopes, KitchenScope(it.MenuItem.KitchenCode))
	}
	return scopes
}
