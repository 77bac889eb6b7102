package catalog

import (
	"context"
	"slices"
	"strings"

	"github.com/Daviipontes/Dev-Web/pkg/global"
	"github.com/Daviipontes/Dev-Web/pkg/models"
)

type priceRange struct {
	match func(float64) bool
}

// Bounds are inclusive except for the two open-ended buckets.
var priceBuckets = map[string]priceRange{
	"under-200": {func(p float64) bool { return p < 200 }},
	"200-500":   {func(p float64) bool { return p >= 200 && p <= 500 }},
	"500-1000":  {func(p float64) bool { return p >= 500 && p <= 1000 }},
	"1000-5000": {func(p float64) bool { return p >= 1000 && p <= 5000 }},
	"over-5000": {func(p float64) bool { return p > 5000 }},
}

// Search returns the products matching every supplied criterion. Within a
// criterion, categories and brands match if any listed value matches.
func (s *Service) Search(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	var bucket *priceRange
	if filter.Price != "" {
		b, ok := priceBuckets[filter.Price]
		if !ok {
			return nil, global.Validation("price", "invalid_value", "unknown price range "+filter.Price)
		}
		bucket = &b
	}

	products, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	categories := nonEmpty(filter.Categories)
	brands := nonEmpty(filter.Brands)

	out := []models.Product{}
	for _, p := range products {
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		if len(categories) > 0 && !slices.ContainsFunc(categories, func(c string) bool { return p.HasCategory(c) }) {
			continue
		}
		if len(brands) > 0 && !slices.Contains(brands, p.Brand) {
			continue
		}
		if bucket != nil && !bucket.match(p.Price) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
