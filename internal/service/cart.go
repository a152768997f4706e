package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/abhikhya/shopcart/internal/logging"
	"github.com/abhikhya/shopcart/internal/models"
	"github.com/abhikhya/shopcart/internal/mykafka"
	"github.com/abhikhya/shopcart/internal/repo"
)

type CartService struct {
	Repo     *repo.GormRepo
	Producer *mykafka.Producer
}

type CartLine struct {
	ID       uint           `json:"id"`
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

type CartSnapshot struct {
	ID     uint       `json:"id"`
	UserID uint       `json:"user"`
	Items  []CartLine `json:"items"`
}

// UpdateResult reports the outcome of a quantity update: either the new
// quantity, or that the item was removed because the quantity hit zero.
type UpdateResult struct {
	Removed  bool
	Quantity int
}

func (s *CartService) publish(ctx context.Context, userID uint, event map[string]interface{}) {
	if s.Producer == nil {
		return
	}
	if err := s.Producer.PublishEvent(ctx, "cart_events", fmt.Sprint(userID), event); err != nil {
		logging.FromContext(ctx).Error("kafka publish error", "topic", "cart_events", "error", err)
	}
}

func (s *CartService) cart(ctx context.Context, userID uint) (*models.Cart, error) {
	cart, err := s.Repo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}
	return cart, nil
}

// Add accumulates quantity onto an existing line or creates a new one.
// The quantity is taken verbatim, defaulting is the caller's concern.
func (s *CartService) Add(ctx context.Context, userID, productID uint, quantity int) (*models.CartItem, error) {
	if _, err := s.Repo.ProductByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("lookup product: %w", err)
	}

	cart, err := s.cart(ctx, userID)
	if err != nil {
		return nil, err
	}

	item := models.CartItem{
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.Repo.AddItem(ctx, &item); err != nil {
		return nil, fmt.Errorf("add item: %w", err)
	}

	s.publish(ctx, userID, map[string]interface{}{
		"type":      "cart_item_added",
		"userID":    userID,
		"productID": productID,
		"quantity":  item.Quantity,
	})
	return &item, nil
}

// Remove deletes the line entirely, it is not a decrement.
func (s *CartService) Remove(ctx context.Context, userID, productID uint) error {
	cart, err := s.cart(ctx, userID)
	if err != nil {
		return err
	}

	deleted, err := s.Repo.DeleteItem(ctx, cart.ID, productID)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if deleted == 0 {
		return ErrItemNotFound
	}

	s.publish(ctx, userID, map[string]interface{}{
		"type":      "cart_item_removed",
		"userID":    userID,
		"productID": productID,
	})
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uint) error {
	cart, err := s.cart(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.Repo.ClearCart(ctx, cart.ID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	s.publish(ctx, userID, map[string]interface{}{
		"type":   "cart_cleared",
		"userID": userID,
	})
	return nil
}

// UpdateQuantity replaces the quantity outright, unlike Add which
// accumulates. A quantity of zero or less deletes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID uint, quantity int) (*UpdateResult, error) {
	cart, err := s.cart(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.Repo.ItemByProduct(ctx, cart.ID, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("lookup item: %w", err)
	}

	if quantity <= 0 {
		if _, err := s.Repo.DeleteItem(ctx, cart.ID, productID); err != nil {
			return nil, fmt.Errorf("delete item: %w", err)
		}
		s.publish(ctx, userID, map[string]interface{}{
			"type":      "cart_item_removed",
			"userID":    userID,
			"productID": productID,
		})
		return &UpdateResult{Removed: true}, nil
	}

	if err := s.Repo.SetItemQuantity(ctx, item.ID, quantity); err != nil {
		return nil, fmt.Errorf("set quantity: %w", err)
	}

	s.publish(ctx, userID, map[string]interface{}{
		"type":      "cart_item_updated",
		"userID":    userID,
		"productID": productID,
		"quantity":  quantity,
	})
	return &UpdateResult{Quantity: quantity}, nil
}

func (s *CartService) Get(ctx context.Context, userID uint) (*CartSnapshot, error) {
	cart, err := s.cart(ctx, userID)
	if err != nil {
		return nil, err
	}

	items, err := s.Repo.CartItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}

	lines := make([]CartLine, len(items))
	for i, it := range items {
		lines[i] = CartLine{
			ID:       it.ID,
			Product:  it.Product,
			Quantity: it.Quantity,
		}
	}
	return &CartSnapshot{
		ID:     cart.ID,
		UserID: cart.UserID,
		Items:  lines,
	}, nil
}
