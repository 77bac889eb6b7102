package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Daviipontes/Dev-Web/pkg/global"
)

type identified struct {
	ID int `json:"id"`
}

// NextID allocates the next id for a collection. Counters only move
// forward, so an id is never handed out twice even after deletions. On
// first use a counter starts from the largest id already stored.
func (s *Store) NextID(ctx context.Context, collection string) (int, error) {
	unlock := s.Lock(Counters)
	defer unlock()

	counters := map[string]int{}
	data, err := s.backend.Load(ctx, Counters)
	switch {
	case errors.Is(err, ErrDocumentMissing):
	case err != nil:
		return 0, global.Storage("failed to read counters", err)
	default:
		if err := json.Unmarshal(data, &counters); err != nil {
			return 0, global.Storage("counters are malformed", err)
		}
	}

	last, ok := counters[collection]
	if !ok {
		existing, err := Load[identified](ctx, s, collection)
		if err != nil {
			return 0, err
		}
		for _, item := range existing {
			last = max(last, item.ID)
		}
	}

	next := last + 1
	counters[collection] = next

	out, err := json.MarshalIndent(counters, "", "  ")
	if err != nil {
		return 0, global.Storage("failed to encode counters", err)
	}
	if err := s.backend.Save(ctx, Counters, out); err != nil {
		return 0, global.Storage(fmt.Sprintf("failed to persist %s counter", collection), err)
	}
	return next, nil
}
