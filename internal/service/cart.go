package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

// CartLine is a cart item joined with the product it currently points at.
type CartLine struct {
	ItemID  uint
	Product models.Product
}

// AddToCart stores a snapshot of the product's name and description and
// returns the product as it is now.
func (s *CartService) AddToCart(ctx context.Context, userID, productID uint) (*models.Product, error) {
	var (
		prod *models.Product
		item models.CartItem
	)
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		p, err := tx.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		item = models.CartItem{
			UserID:      userID,
			ProductID:   p.ID,
			Name:        p.Name,
			Description: p.Description,
		}
		if err := tx.AddToCart(ctx, &item); err != nil {
			return err
		}
		prod = p
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", productID, ErrNotFound)
		}
		return nil, err
	}

	publish(ctx, s.Events, events.TopicCart, userID, map[string]any{
		"type":       "cart_item_added",
		"userID":     userID,
		"cartItemID": item.ID,
		"productID":  productID,
	})
	return prod, nil
}

// RemoveFromCart deletes one of the user's cart items. Items owned by
// somebody else are reported as not found. The returned product is nil
// when it has been deleted from the catalog since.
func (s *CartService) RemoveFromCart(ctx context.Context, userID, itemID uint) (*models.Product, error) {
	var prod *models.Product
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		item, err := tx.GetCartItem(ctx, itemID)
		if err != nil {
			return err
		}
		if item.UserID != userID {
			return gorm.ErrRecordNotFound
		}
		if err := tx.DeleteCartItem(ctx, item); err != nil {
			return err
		}

		p, err := tx.GetProduct(ctx, item.ProductID)
		switch {
		case err == nil:
			prod = p
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart item %d: %w", itemID, ErrNotFound)
		}
		return nil, err
	}

	publish(ctx, s.Events, events.TopicCart, userID, map[string]any{
		"type":       "cart_item_removed",
		"userID":     userID,
		"cartItemID": itemID,
	})
	return prod, nil
}

// GetCart skips items whose product no longer exists.
func (s *CartService) GetCart(ctx context.Context, userID uint) ([]CartLine, error) {
	items, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.Repo.ProductsByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]CartLine, 0, len(items))
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, CartLine{ItemID: it.ID, Product: p})
	}
	return lines, nil
}

func (s *CartService) Checkout(ctx context.Context, userID uint) (int64, error) {
	var removed int64
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		n, err := tx.DeleteAllFromCart(ctx, userID)
		removed = n
		return err
	})
	if err != nil {
		return 0, err
	}

	publish(ctx, s.Events, events.TopicCart, userID, map[string]any{
		"type":    "cart_checked_out",
		"userID":  userID,
		"removed": removed,
	})
	return removed, nil
}
