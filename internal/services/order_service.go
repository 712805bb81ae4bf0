package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"

	"lemari/internal/models"
	"lemari/internal/policy"
	"lemari/internal/repositories"
)

const (
	msgQuantityRequired = "Quantity is required"
	msgQuantityInvalid  = "Invalid quantity value"
)

// OrderInput is the body of an order edit. Only the quantity can change.
type OrderInput struct {
	Quantity *int `json:"quantity" validate:"required,gt=0"`
}

// OrderOptions tunes the order workflow.
type OrderOptions struct {
	// LegacyRepeatDecrement keeps charging stock when a user repeats an
	// order for a product they already ordered.
	LegacyRepeatDecrement bool
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo repositories.OrderRepository
	events    EventPublisher
	opts      OrderOptions
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, events EventPublisher, opts OrderOptions) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		events:    events,
		opts:      opts,
	}
}

// ParseQuantity turns a raw request value into a positive quantity.
func ParseQuantity(raw interface{}) (int, error) {
	var (
		n   int
		err error
	)
	switch v := raw.(type) {
	case nil:
		return 0, newValidationError("quantity", msgQuantityRequired)
	case int:
		n = v
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32 {
			return 0, newValidationError("quantity", msgQuantityInvalid)
		}
		n = int(v)
	case json.Number:
		n, err = strconv.Atoi(v.String())
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, newValidationError("quantity", msgQuantityRequired)
		}
		n, err = strconv.Atoi(s)
	default:
		return 0, newValidationError("quantity", msgQuantityInvalid)
	}
	if err != nil || n <= 0 {
		return 0, newValidationError("quantity", msgQuantityInvalid)
	}
	return n, nil
}

// PlaceOrder buys quantity units of a product for actor. The stock check,
// the decrement and the order row are committed together.
func (s *OrderService) PlaceOrder(actor *models.User, productID string, rawQuantity interface{}) (*models.Order, error) {
	if err := policy.Authorize(actor, policy.ActionCreate, nil); err != nil {
		return nil, err
	}
	quantity, err := ParseQuantity(rawQuantity)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.Place(repositories.PlaceOrderParams{
		UserID:            actor.ID,
		ProductID:         productID,
		Quantity:          quantity,
		DecrementOnRepeat: s.opts.LegacyRepeatDecrement,
	})
	if err != nil {
		if errors.Is(err, ErrOrderExists) && s.opts.LegacyRepeatDecrement {
			log.Printf("Repeat order by user %s on product %s consumed %d units", actor.ID, productID, quantity)
		}
		return nil, err
	}

	log.Printf("Order %s placed by user %s: %d x %s", order.ID, actor.ID, quantity, productID)
	publish(s.events, EventOrderCreated, orderPayload(order))
	return order, nil
}

// ListOrders returns the actor's own orders.
func (s *OrderService) ListOrders(actor *models.User) ([]models.Order, error) {
	if err := policy.Authenticated(actor); err != nil {
		return nil, err
	}
	return s.orderRepo.ListByUser(actor.ID)
}

// GetOrder returns one of the actor's orders. Orders of other users are
// reported as not found.
func (s *OrderService) GetOrder(actor *models.User, id string) (*models.Order, error) {
	if err := policy.Authenticated(actor); err != nil {
		return nil, err
	}
	return s.orderRepo.GetForUser(id, actor.ID)
}

// UpdateOrder changes the quantity of one of the actor's orders. The
// product's stock absorbs the difference.
func (s *OrderService) UpdateOrder(actor *models.User, id string, in OrderInput, partial bool) (*models.Order, error) {
	action := policy.ActionUpdate
	if partial {
		action = policy.ActionPartialUpdate
	}
	if err := policy.Authorize(actor, action, nil); err != nil {
		return nil, err
	}

	if partial && in.Quantity == nil {
		return s.orderRepo.GetForUser(id, actor.ID)
	}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.UpdateQuantity(id, actor.ID, *in.Quantity)
	if err != nil {
		return nil, err
	}
	publish(s.events, EventOrderUpdated, orderPayload(order))
	return order, nil
}

// DeleteOrder cancels one of the actor's orders and restocks the product.
func (s *OrderService) DeleteOrder(actor *models.User, id string) error {
	if err := policy.Authorize(actor, policy.ActionDelete, nil); err != nil {
		return err
	}
	order, err := s.orderRepo.GetForUser(id, actor.ID)
	if err != nil {
		return err
	}
	if err := s.orderRepo.DeleteForUser(id, actor.ID); err != nil {
		return fmt.Errorf("failed to delete order %s: %w", id, err)
	}
	publish(s.events, EventOrderDeleted, orderPayload(order))
	return nil
}

func orderPayload(o *models.Order) map[string]interface{} {
	return map[string]interface{}{
		"order_id":   o.ID,
		"user_id":    o.UserID,
		"product_id": o.ProductID,
		"quantity":   o.Quantity,
	}
}
