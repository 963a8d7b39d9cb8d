package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/BookCnk/sit-football-club/internal/models"
)

// Routing keys of order events.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderDeleted       = "order.deleted"
)

// OrderEventsExchange is the exchange order events are published to.
const OrderEventsExchange = "shop"

// EventPublisher publishes a message body under a routing key.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// OrderEvent is the JSON body of an order event.
type OrderEvent struct {
	Type         string             `json:"type"`
	OrderID      uint               `json:"orderId"`
	ShopItemID   uint               `json:"shopItemId,omitempty"`
	Status       models.OrderStatus `json:"status,omitempty"`
	ContactEmail string             `json:"contactEmail,omitempty"`
	At           time.Time          `json:"at"`
}

func newOrderEvent(eventType string, order *models.ShopOrder) OrderEvent {
	return OrderEvent{
		Type:         eventType,
		OrderID:      order.ID,
		ShopItemID:   order.ShopItemID,
		Status:       order.Status,
		ContactEmail: order.ContactEmail,
		At:           order.UpdatedAt,
	}
}

// publish emits event best-effort. Failures are logged and never reach the
// caller.
func (s *OrderService) publish(ctx context.Context, event OrderEvent) {
	if s.publisher == nil {
		return
	}
	if ctx.Err() != nil {
		log.Printf("Skipping %s event for order %d: %v", event.Type, event.OrderID, ctx.Err())
		return
	}
	if event.At.IsZero() {
		event.At = s.now()
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event for order %d: %v", event.Type, event.OrderID, err)
		return
	}
	if err := s.publisher.Publish(OrderEventsExchange, event.Type, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for order %d: %v", event.Type, event.OrderID, err)
	}
}

// DecodeOrderEvent parses a consumed event body.
func DecodeOrderEvent(body []byte) (OrderEvent, error) {
	var event OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return OrderEvent{}, fmt.Errorf("failed to decode order event: %w", err)
	}
	if event.Type == "" || event.OrderID == 0 {
		return OrderEvent{}, fmt.Errorf("order event is missing type or orderId: %s", body)
	}
	return event, nil
}

// Describe renders the event as a notification line for club admins.
func (e OrderEvent) Describe() string {
	switch e.Type {
	case EventOrderCreated:
		return fmt.Sprintf("New order #%d for item %d from %s awaits slip verification", e.OrderID, e.ShopItemID, e.ContactEmail)
	case EventOrderStatusChanged:
		return fmt.Sprintf("Order #%d is now %s", e.OrderID, e.Status)
	case EventOrderDeleted:
		return fmt.Sprintf("Order #%d was deleted", e.OrderID)
	default:
		return fmt.Sprintf("Order #%d: %s", e.OrderID, e.Type)
	}
}
