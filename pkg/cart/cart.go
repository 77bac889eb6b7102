// Package cart keeps one shopping cart per session.
package cart

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Daviipontes/Dev-Web/pkg/global"
	"github.com/Daviipontes/Dev-Web/pkg/models"
)

// State holds the items of each session's cart.
type State interface {
	Load(ctx context.Context, sessionID string) ([]models.CartItem, error)
	Save(ctx context.Context, sessionID string, items []models.CartItem) error
}

// Catalog resolves product snapshots for new cart lines.
type Catalog interface {
	Get(ctx context.Context, id int) (models.Product, error)
}

type Service struct {
	state   State
	catalog Catalog

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(state State, catalog Catalog) *Service {
	return &Service{state: state, catalog: catalog, locks: make(map[string]*sync.Mutex)}
}

func (s *Service) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[sessionID] = l
	}
	return l
}

// Session is a cart held under its session lock.
type Session struct {
	svc   *Service
	id    string
	Items []models.CartItem
}

// Clear empties the cart and persists it.
func (c *Session) Clear(ctx context.Context) error {
	if err := c.svc.state.Save(ctx, c.id, nil); err != nil {
		return global.Storage("failed to clear cart", err)
	}
	c.Items = []models.CartItem{}
	return nil
}

// WithLock loads the session's cart and runs fn while no other operation
// can touch that cart.
func (s *Service) WithLock(ctx context.Context, sessionID string, fn func(*Session) error) error {
	if sessionID == "" {
		return global.Validation("session", "required", "session id is required")
	}
	l := s.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()

	items, err := s.state.Load(ctx, sessionID)
	if err != nil {
		return global.Storage("failed to read cart", err)
	}
	return fn(&Session{svc: s, id: sessionID, Items: items})
}

func (s *Service) mutate(ctx context.Context, sessionID string, fn func([]models.CartItem) ([]models.CartItem, error)) ([]models.CartItem, error) {
	var result []models.CartItem
	err := s.WithLock(ctx, sessionID, func(c *Session) error {
		items, err := fn(slices.Clone(c.Items))
		if err != nil {
			return err
		}
		if err := s.state.Save(ctx, sessionID, items); err != nil {
			return global.Storage("failed to write cart", err)
		}
		result = items
		return nil
	})
	if result == nil && err == nil {
		result = []models.CartItem{}
	}
	return result, err
}

func (s *Service) Items(ctx context.Context, sessionID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := s.WithLock(ctx, sessionID, func(c *Session) error {
		items = c.Items
		return nil
	})
	if items == nil {
		items = []models.CartItem{}
	}
	return items, err
}

// SetQuantity sets the quantity of a product. Zero removes the line and is
// a no-op for products not in the cart.
func (s *Service) SetQuantity(ctx context.Context, sessionID string, productID, quantity int) ([]models.CartItem, error) {
	if quantity < 0 || quantity > models.MaxCartQuantity {
		return nil, quantityError()
	}
	return s.mutate(ctx, sessionID, func(items []models.CartItem) ([]models.CartItem, error) {
		i := indexOf(items, productID)
		switch {
		case quantity == 0 && i < 0:
			return items, nil
		case quantity == 0:
			return slices.Delete(items, i, i+1), nil
		case i >= 0:
			items[i].Quantity = quantity
			return items, nil
		}
		product, err := s.catalog.Get(ctx, productID)
		if err != nil {
			return nil, err
		}
		return append(items, models.CartItem{Product: product, Quantity: quantity}), nil
	})
}

// Increment adds quantity to a product's line, creating it if needed.
func (s *Service) Increment(ctx context.Context, sessionID string, productID, quantity int) ([]models.CartItem, error) {
	if quantity <= 0 || quantity > models.MaxCartQuantity {
		return nil, quantityError()
	}
	return s.mutate(ctx, sessionID, func(items []models.CartItem) ([]models.CartItem, error) {
		if i := indexOf(items, productID); i >= 0 {
			if items[i].Quantity > models.MaxCartQuantity-quantity {
				return nil, quantityError()
			}
			items[i].Quantity += quantity
			return items, nil
		}
		product, err := s.catalog.Get(ctx, productID)
		if err != nil {
			return nil, err
		}
		return append(items, models.CartItem{Product: product, Quantity: quantity}), nil
	})
}

func (s *Service) Remove(ctx context.Context, sessionID string, productID int) ([]models.CartItem, error) {
	return s.mutate(ctx, sessionID, func(items []models.CartItem) ([]models.CartItem, error) {
		i := indexOf(items, productID)
		if i < 0 {
			return nil, global.NotFound("id", "product %d is not in the cart", productID)
		}
		return slices.Delete(items, i, i+1), nil
	})
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	return s.WithLock(ctx, sessionID, func(c *Session) error {
		return c.Clear(ctx)
	})
}

// Subtotal is the sum of price times quantity over all lines.
func Subtotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Product.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func ItemCount(items []models.CartItem) int {
	var n int
	for _, item := range items {
		n += item.Quantity
	}
	return n
}

// Summary builds the cart view returned to clients.
func Summary(sessionID string, items []models.CartItem) models.Cart {
	subtotal, _ := Subtotal(items).Round(2).Float64()
	return models.Cart{
		SessionID: sessionID,
		Items:     items,
		Subtotal:  subtotal,
		ItemCount: ItemCount(items),
	}
}

func quantityError() *global.Error {
	return global.Validation("quantity", "out_of_range", fmt.Sprintf("quantity must be between 1 and %d", models.MaxCartQuantity))
}

func indexOf(items []models.CartItem, productID int) int {
	return slices.IndexFunc(items, func(item models.CartItem) bool { return item.Product.ID == productID })
}
