// Package checkout turns a session's cart into a persisted order.
package checkout

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Daviipontes/Dev-Web/pkg/cart"
	"github.com/Daviipontes/Dev-Web/pkg/global"
	"github.com/Daviipontes/Dev-Web/pkg/models"
	"github.com/Daviipontes/Dev-Web/pkg/store"
)

type Service struct {
	store *store.Store
	carts *cart.Service
	now   func() time.Time
}

func NewService(s *store.Store, carts *cart.Service) *Service {
	return &Service{store: s, carts: carts, now: time.Now}
}

// Submission is one checkout request.
type Submission struct {
	SessionID string
	// Buyer is the logged-in account. Guest orders leave it empty and are
	// reachable only through the shipping email.
	Buyer      string
	Shipping   models.ShippingFields
	PixReceipt string
}

// Submit writes the order and then clears the cart. The cart stays locked
// for the whole operation, and is left untouched when the order cannot be
// written so the request can be retried.
func (s *Service) Submit(ctx context.Context, sub Submission) (models.Order, error) {
	if problems := validateShipping(sub.Shipping); len(problems) > 0 {
		return models.Order{}, problems
	}

	var order models.Order
	err := s.carts.WithLock(ctx, sub.SessionID, func(c *cart.Session) error {
		if len(c.Items) == 0 {
			return global.Validation("cart", "empty", "cart is empty")
		}

		total, _ := cart.Subtotal(c.Items).Round(2).Float64()

		unlock := s.store.Lock(store.Orders)
		defer unlock()

		orders, err := store.Load[models.Order](ctx, s.store, store.Orders)
		if err != nil {
			return err
		}
		id, err := s.store.NextID(ctx, store.Orders)
		if err != nil {
			return err
		}

		order = models.Order{
			ID:             id,
			UserEmail:      sub.Buyer,
			ShippingFields: sub.Shipping,
			PixReceipt:     sub.PixReceipt,
			Items:          slices.Clone(c.Items),
			Total:          total,
			Date:           s.now().UTC(),
			Status:         models.OrderStatusInProgress,
		}
		order.NumberItems = order.GetItemCount()

		if err := store.Save(ctx, s.store, store.Orders, append(orders, order)); err != nil {
			return err
		}

		if err := c.Clear(ctx); err != nil {
			slog.Error("Order saved but cart not cleared", "order_id", id, "session", sub.SessionID, "error", err)
		}
		return nil
	})
	if err != nil {
		return models.Order{}, err
	}

	s.linkToAccount(ctx, order)
	slog.Info("Order placed", "order_id", order.ID, "buyer", order.UserEmail, "contact", order.Email, "total", order.Total)
	return order, nil
}

// linkToAccount records the order id on the logged-in buyer's account.
// Failure here does not undo the order.
func (s *Service) linkToAccount(ctx context.Context, order models.Order) {
	if order.UserEmail == "" {
		return
	}
	err := store.Update(ctx, s.store, store.Users, func(users []models.User) ([]models.User, error) {
		i := slices.IndexFunc(users, func(u models.User) bool { return u.Email == order.UserEmail })
		if i < 0 {
			return users, nil
		}
		users[i].AddOrder(order.ID)
		users[i].SetTimestamps()
		return users, nil
	})
	if err != nil {
		slog.Warn("Failed to link order to account", "order_id", order.ID, "email", order.UserEmail, "error", err)
	}
}

// History returns the orders placed while logged in as email, newest
// first. Guest orders never appear, whatever shipping email they carry.
func (s *Service) History(ctx context.Context, email string) ([]models.Order, error) {
	if email == "" {
		return nil, global.Unauthorized("login required")
	}
	orders, err := store.Load[models.Order](ctx, s.store, store.Orders)
	if err != nil {
		return nil, err
	}
	mine := []models.Order{}
	for _, o := range orders {
		if o.UserEmail == email {
			mine = append(mine, o)
		}
	}
	slices.SortStableFunc(mine, func(a, b models.Order) int {
		return b.Date.Compare(a.Date)
	})
	return mine, nil
}

func (s *Service) List(ctx context.Context) ([]models.Order, error) {
	return store.Load[models.Order](ctx, s.store, store.Orders)
}

func validateShipping(f models.ShippingFields) global.ValidationErrors {
	required := []struct {
		field string
		value string
	}{
		{"first_name", f.FirstName},
		{"last_name", f.LastName},
		{"address", f.Address},
		{"country", f.Country},
		{"state", f.State},
		{"city", f.City},
		{"zip_code", f.ZipCode},
		{"email", f.Email},
	}
	var problems global.ValidationErrors
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			problems = append(problems, global.ValidationError{Field: r.field, Message: r.field + " is required", Code: "required"})
		}
	}
	return problems
}
