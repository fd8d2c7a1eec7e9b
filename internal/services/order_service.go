package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"storefront/internal/apperr"
	"storefront/internal/identity"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/rabbitmq"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// EventPublisher sends a message to a broker exchange.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// OrderPlacedEvent is the body of a rabbitmq.OrderPlacedKey message.
type OrderPlacedEvent struct {
	OrderID    uint     `json:"orderId"`
	UserID     string   `json:"userId"`
	Username   string   `json:"username"`
	TotalPrice int      `json:"totalPrice"`
	ProductIDs []string `json:"productIds"`
}

// OrderService handles checkout and order retrieval.
type OrderService struct {
	orderRepo repositories.OrderRepository
	tx        repositories.Transactor
	publisher EventPublisher
	validate  *validator.Validate

	recomputeTotal bool
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(orderRepo repositories.OrderRepository, tx repositories.Transactor, publisher EventPublisher) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		tx:        tx,
		publisher: publisher,
		validate:  apperr.NewValidator(),
	}
}

// RecomputeTotals makes checkout price orders from the catalog instead of the
// submitted total.
func (s *OrderService) RecomputeTotals(enabled bool) *OrderService {
	s.recomputeTotal = enabled
	return s
}

// PlaceOrder turns the caller's cart into an order and empties the cart.
//
// The user is reloaded by ID inside the transaction; cart data carried by the
// caller's token is never used. An empty cart yields apperr.ErrEmptyCart and
// a concurrent checkout by the same user yields apperr.ErrConflict. Either the
// order is created and the cart cleared, or neither happens.
func (s *OrderService) PlaceOrder(who identity.Identity, details models.ShippingDetails) (*models.Order, error) {
	if err := apperr.FromValidator(s.validate.Struct(details)); err != nil {
		return nil, err
	}

	var (
		placed *models.Order
		buyer  *models.User
	)
	err := s.tx.WithinTransaction(func(users repositories.UserRepository, orders repositories.OrderRepository) error {
		user, err := users.GetByID(who.UserID)
		if err != nil {
			return err
		}
		if len(user.Cart) == 0 {
			return fmt.Errorf("user %s: %w", user.Username, apperr.ErrEmptyCart)
		}
		if err := users.BumpVersion(user); err != nil {
			return err
		}

		order := &models.Order{
			UserID:      user.ID,
			Items:       make([]models.OrderItem, 0, len(user.Cart)),
			TotalPrice:  s.totalFor(user, details.TotalPrice),
			FirstName:   details.FirstName,
			LastName:    details.LastName,
			City:        details.City,
			Address:     details.Address,
			PostIndex:   details.PostIndex,
			Email:       details.Email,
			PhoneNumber: details.PhoneNumber,
		}
		ordered := make([]uint, 0, len(user.Cart))
		for _, item := range user.Cart {
			order.Items = append(order.Items, models.OrderItem{ProductID: item.ProductID})
			ordered = append(ordered, item.ID)
		}

		if err := orders.Create(order); err != nil {
			return err
		}
		// Only the rows copied into the order leave the cart; items added
		// after the reload stay for the next checkout.
		if err := users.RemoveCartItems(user.ID, ordered); err != nil {
			return err
		}

		placed, err = orders.GetByID(order.ID)
		buyer = user
		return err
	})
	if err != nil {
		if !isClientError(err) {
			logger.L().Error("checkout failed", zap.String("userId", who.UserID), zap.Error(err))
		}
		return nil, err
	}

	logger.L().Info("order placed",
		zap.String("username", buyer.Username),
		zap.String("userId", buyer.ID),
		zap.Uint("orderId", placed.ID),
		zap.String("firstName", placed.FirstName),
		zap.String("lastName", placed.LastName),
		zap.Int("totalPrice", placed.TotalPrice),
		zap.String("city", placed.City),
		zap.String("address", placed.Address),
		zap.String("postIndex", placed.PostIndex),
		zap.String("email", placed.Email),
		zap.String("phoneNumber", placed.PhoneNumber),
	)
	s.publishPlaced(buyer, placed)
	return placed, nil
}

// totalFor returns the order total. Submitted totals are trusted unless
// recomputation is enabled.
func (s *OrderService) totalFor(user *models.User, submitted int) int {
	if !s.recomputeTotal {
		return submitted
	}
	computed := 0
	for _, p := range user.CartProducts() {
		computed += p.Price
	}
	if computed != submitted {
		logger.L().Warn("submitted total differs from catalog prices",
			zap.String("username", user.Username),
			zap.Int("submitted", submitted),
			zap.Int("computed", computed),
		)
	}
	return computed
}

func (s *OrderService) publishPlaced(user *models.User, order *models.Order) {
	if s.publisher == nil {
		logger.L().Debug("no event publisher configured, skipping order event", zap.Uint("orderId", order.ID))
		return
	}

	event := OrderPlacedEvent{
		OrderID:    order.ID,
		UserID:     user.ID,
		Username:   user.Username,
		TotalPrice: order.TotalPrice,
		ProductIDs: make([]string, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		event.ProductIDs = append(event.ProductIDs, item.ProductID)
	}

	body, err := json.Marshal(event)
	if err != nil {
		logger.L().Warn("failed to marshal order event", zap.Uint("orderId", order.ID), zap.Error(err))
		return
	}
	if err := s.publisher.Publish(rabbitmq.OrderExchange, rabbitmq.OrderPlacedKey, body); err != nil {
		logger.L().Warn("failed to publish order event", zap.Uint("orderId", order.ID), zap.Error(err))
	}
}

// LatestOrder returns the most recently placed order of the whole store.
func (s *OrderService) LatestOrder() (*models.Order, error) {
	return s.orderRepo.Latest()
}

// LatestOrderFor returns the most recently placed order of one user.
func (s *OrderService) LatestOrderFor(userID string) (*models.Order, error) {
	orders, err := s.OrdersForUser(userID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("user %s has no orders: %w", userID, apperr.ErrNotFound)
	}
	return &orders[len(orders)-1], nil
}

// OrdersForUser returns the orders placed by a user in insertion order.
func (s *OrderService) OrdersForUser(userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUser(userID)
}

// AllOrders returns every order.
func (s *OrderService) AllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrderByID returns an order the caller owns; staff may read any order.
func (s *OrderService) GetOrderByID(who identity.Identity, id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order.UserID != who.UserID && !IsStaff(who.Role) {
		return nil, fmt.Errorf("order %d belongs to another user: %w", id, apperr.ErrForbidden)
	}
	return order, nil
}

// IsStaff reports whether role may manage the catalog, users and all orders.
func IsStaff(role string) bool {
	return models.Role(role) == models.RoleAdmin || models.Role(role) == models.RoleOwner
}

func isClientError(err error) bool {
	return errors.Is(err, apperr.ErrBadRequest) ||
		errors.Is(err, apperr.ErrNotFound) ||
		errors.Is(err, apperr.ErrConflict) ||
		errors.Is(err, apperr.ErrEmptyCart) ||
		errors.Is(err, apperr.ErrForbidden)
}
