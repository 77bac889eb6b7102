// Package catalog owns the products collection.
package catalog

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/Daviipontes/Dev-Web/pkg/global"
	"github.com/Daviipontes/Dev-Web/pkg/models"
	"github.com/Daviipontes/Dev-Web/pkg/store"
)

// Cache is an optional read-through cache for single products.
type Cache interface {
	Get(ctx context.Context, id int) (models.Product, bool, error)
	Set(ctx context.Context, product models.Product) error
	Invalidate(ctx context.Context, id int) error
}

type Service struct {
	store *store.Store
	cache Cache

	// versions counts writes per product id. Get only fills the cache when
	// no write landed between its read and the fill.
	mu       sync.Mutex
	versions map[int]uint64
}

// NewService builds the catalog. cache may be nil.
func NewService(s *store.Store, cache Cache) *Service {
	return &Service{store: s, cache: cache, versions: make(map[int]uint64)}
}

func (s *Service) List(ctx context.Context) ([]models.Product, error) {
	return store.Load[models.Product](ctx, s.store, store.Products)
}

func (s *Service) Get(ctx context.Context, id int) (models.Product, error) {
	if s.cache != nil {
		product, ok, err := s.cache.Get(ctx, id)
		if err != nil {
			slog.Warn("Product cache read failed", "product_id", id, "error", err)
		} else if ok {
			return product, nil
		}
	}

	version := s.version(id)

	products, err := s.List(ctx)
	if err != nil {
		return models.Product{}, err
	}
	i := indexOf(products, id)
	if i < 0 {
		return models.Product{}, global.NotFound("id", "product %d not found", id)
	}

	s.fill(ctx, products[i], version)
	return products[i], nil
}

// Create validates the form, allocates an id, persists the product and
// records it on the owner's account. If the account write fails the
// product write is undone.
func (s *Service) Create(ctx context.Context, fields models.ProductFields, media models.Media) (models.Product, error) {
	var problems global.ValidationErrors

	email := strings.TrimSpace(fields.UserEmail)
	if email == "" {
		problems = append(problems, global.ValidationError{Field: "userEmail", Message: "userEmail is required", Code: "required"})
	}
	name := strings.TrimSpace(fields.Name)
	if name == "" {
		problems = append(problems, global.ValidationError{Field: "name", Message: "name is required", Code: "required"})
	}
	price, priceErr := parsePrice(fields.Price)
	if fields.Price == "" {
		problems = append(problems, global.ValidationError{Field: "price", Message: "price is required", Code: "required"})
	} else if priceErr != nil {
		problems = append(problems, *priceErr)
	}
	rating, ratingErr := parseRating(fields.Rating)
	if ratingErr != nil {
		problems = append(problems, *ratingErr)
	}
	if len(problems) > 0 {
		return models.Product{}, problems
	}

	unlock := s.store.Lock(store.Products, store.Users)
	defer unlock()

	users, err := store.Load[models.User](ctx, s.store, store.Users)
	if err != nil {
		return models.Product{}, err
	}
	owner := slices.IndexFunc(users, func(u models.User) bool { return u.Email == email })
	if owner < 0 {
		return models.Product{}, global.NotFound("userEmail", "user %s not found", email)
	}

	products, err := store.Load[models.Product](ctx, s.store, store.Products)
	if err != nil {
		return models.Product{}, err
	}

	id, err := s.store.NextID(ctx, store.Products)
	if err != nil {
		return models.Product{}, err
	}

	product := models.Product{
		ID:           id,
		Name:         name,
		Seller:       email,
		Brand:        strings.TrimSpace(fields.Brand),
		Rating:       rating,
		Price:        price,
		Availability: strings.TrimSpace(fields.Availability),
		Categories:   SplitCategories(fields.Categories),
		Images:       media.Images,
		Video:        media.Video,
		Description:  SplitDescription(fields.Description),
	}
	if product.Images == nil {
		product.Images = []string{}
	}

	if err := store.Save(ctx, s.store, store.Products, append(slices.Clip(products), product)); err != nil {
		return models.Product{}, err
	}

	users[owner].AddProduct(id)
	users[owner].SetTimestamps()
	if err := store.Save(ctx, s.store, store.Users, users); err != nil {
		if rbErr := store.Save(ctx, s.store, store.Products, products); rbErr != nil {
			slog.Error("Failed to undo product write", "product_id", id, "error", rbErr)
		}
		return models.Product{}, err
	}

	slog.Info("Product created", "product_id", id, "seller", email)
	return product, nil
}

// Update replaces only the fields that were supplied with a non-empty
// value. Media is replaced only when new files were uploaded.
func (s *Service) Update(ctx context.Context, id int, fields models.ProductFields, media models.Media, requester string) (models.Product, error) {
	var problems global.ValidationErrors
	price, priceErr := parsePrice(fields.Price)
	if fields.Price != "" && priceErr != nil {
		problems = append(problems, *priceErr)
	}
	rating, ratingErr := parseRating(fields.Rating)
	if ratingErr != nil {
		problems = append(problems, *ratingErr)
	}
	if len(problems) > 0 {
		return models.Product{}, problems
	}

	var updated models.Product
	err := s.withProductsAndUsers(ctx, func(products []models.Product, users []models.User) ([]models.Product, error) {
		i := indexOf(products, id)
		if i < 0 {
			return nil, global.NotFound("id", "product %d not found", id)
		}
		if err := authorize(users, requester, products[i]); err != nil {
			return nil, err
		}

		p := products[i]
		if v := strings.TrimSpace(fields.Name); v != "" {
			p.Name = v
		}
		if v := strings.TrimSpace(fields.Brand); v != "" {
			p.Brand = v
		}
		if fields.Price != "" {
			p.Price = price
		}
		if strings.TrimSpace(fields.Rating) != "" {
			p.Rating = rating
		}
		if v := strings.TrimSpace(fields.Availability); v != "" {
			p.Availability = v
		}
		if strings.TrimSpace(fields.Categories) != "" {
			p.Categories = SplitCategories(fields.Categories)
		}
		if strings.TrimSpace(fields.Description) != "" {
			p.Description = SplitDescription(fields.Description)
		}
		if len(media.Images) > 0 {
			p.Images = media.Images
		}
		if media.Video != "" {
			p.Video = media.Video
		}

		products[i] = p
		updated = p
		return products, nil
	})
	if err != nil {
		return models.Product{}, err
	}

	s.invalidate(ctx, id)
	return updated, nil
}

// Delete removes a product. Only an admin or the product's seller may do so.
// If the seller's record cannot be updated the product is put back.
func (s *Service) Delete(ctx context.Context, id int, requester string) error {
	unlock := s.store.Lock(store.Products, store.Users)
	defer unlock()

	products, err := store.Load[models.Product](ctx, s.store, store.Products)
	if err != nil {
		return err
	}
	users, err := store.Load[models.User](ctx, s.store, store.Users)
	if err != nil {
		return err
	}

	i := indexOf(products, id)
	if i < 0 {
		return global.NotFound("id", "product %d not found", id)
	}
	product := products[i]
	if err := authorize(users, requester, product); err != nil {
		return err
	}

	remaining := slices.Delete(slices.Clone(products), i, i+1)
	if err := store.Save(ctx, s.store, store.Products, remaining); err != nil {
		return err
	}

	if owner := slices.IndexFunc(users, func(u models.User) bool { return u.Email == product.Seller }); owner >= 0 {
		users[owner].RemoveProduct(id)
		users[owner].SetTimestamps()
		if err := store.Save(ctx, s.store, store.Users, users); err != nil {
			if rbErr := store.Save(ctx, s.store, store.Products, products); rbErr != nil {
				slog.Error("Failed to undo product delete", "product_id", id, "error", rbErr)
			}
			return err
		}
	}

	s.invalidate(ctx, id)
	slog.Info("Product deleted", "product_id", id, "by", requester)
	return nil
}

func (s *Service) withProductsAndUsers(ctx context.Context, fn func([]models.Product, []models.User) ([]models.Product, error)) error {
	unlock := s.store.Lock(store.Products, store.Users)
	defer unlock()

	products, err := store.Load[models.Product](ctx, s.store, store.Products)
	if err != nil {
		return err
	}
	users, err := store.Load[models.User](ctx, s.store, store.Users)
	if err != nil {
		return err
	}
	products, err = fn(products, users)
	if err != nil {
		return err
	}
	return store.Save(ctx, s.store, store.Products, products)
}

func (s *Service) version(id int) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions[id]
}

// fill caches a product read at version. The check and the write share the
// lock that invalidate bumps under, so a stale read is either skipped here
// or removed by the invalidation that follows the bump.
func (s *Service) fill(ctx context.Context, product models.Product, version uint64) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.versions[product.ID] != version {
		return
	}
	if err := s.cache.Set(ctx, product); err != nil {
		slog.Warn("Product cache write failed", "product_id", product.ID, "error", err)
	}
}

// invalidate must run after the write it follows has been saved.
func (s *Service) invalidate(ctx context.Context, id int) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	s.versions[id]++
	s.mu.Unlock()

	if err := s.cache.Invalidate(ctx, id); err != nil {
		slog.Warn("Product cache invalidation failed", "product_id", id, "error", err)
	}
}

func authorize(users []models.User, requester string, product models.Product) error {
	if requester == "" {
		return global.Unauthorized("login required")
	}
	i := slices.IndexFunc(users, func(u models.User) bool { return u.Email == requester })
	if i < 0 {
		return global.Unauthorized("unknown account")
	}
	if users[i].IsAdmin() || product.OwnedBy(requester) {
		return nil
	}
	return global.Forbidden("only the seller or an admin may change this product")
}

func indexOf(products []models.Product, id int) int {
	return slices.IndexFunc(products, func(p models.Product) bool { return p.ID == id })
}

func parsePrice(raw string) (float64, *global.ValidationError) {
	if raw == "" {
		return 0, nil
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, &global.ValidationError{Field: "price", Message: "price must be a number", Code: "invalid_format"}
	}
	if price < 0 {
		return 0, &global.ValidationError{Field: "price", Message: "price must not be negative", Code: "out_of_range"}
	}
	return price, nil
}

func parseRating(raw string) (int, *global.ValidationError) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	rating, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &global.ValidationError{Field: "rating", Message: "rating must be an integer", Code: "invalid_format"}
	}
	if rating < 0 || rating > 5 {
		return 0, &global.ValidationError{Field: "rating", Message: "rating must be between 0 and 5", Code: "out_of_range"}
	}
	return rating, nil
}

// SplitCategories turns "Guitars, Strings,guitars" into a trimmed,
// de-duplicated list. Duplicates are compared case-insensitively.
func SplitCategories(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if slices.ContainsFunc(out, func(c string) bool { return strings.EqualFold(c, part) }) {
			continue
		}
		out = append(out, part)
	}
	return out
}

// SplitDescription keeps one entry per non-blank line.
func SplitDescription(raw string) []string {
	out := []string{}
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
