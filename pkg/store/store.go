// Package store persists whole collections as JSON documents.
//
// Every collection is read and written in full. Writers to the same
// collection are serialized by a per-collection mutex; readers see the last
// complete write because every backend replaces a document atomically.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/Daviipontes/Dev-Web/pkg/global"
)

const (
	Products  = "products"
	Users     = "users"
	Orders    = "orders"
	Locations = "locations"
	Counters  = "counters"
)

// ErrDocumentMissing is returned by a Backend when the named document has
// never been written.
var ErrDocumentMissing = errors.New("document missing")

// Backend stores opaque JSON documents by collection name.
type Backend interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
	Ping(ctx context.Context) error
	Close() error
}

type Store struct {
	backend Backend

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(backend Backend) *Store {
	return &Store{backend: backend, locks: make(map[string]*sync.Mutex)}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) collectionLock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	return l
}

// Lock takes the write locks of the named collections in sorted order and
// returns a function releasing them.
func (s *Store) Lock(names ...string) func() {
	sorted := slices.Clone(names)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	held := make([]*sync.Mutex, 0, len(sorted))
	for _, name := range sorted {
		l := s.collectionLock(name)
		l.Lock()
		held = append(held, l)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

// Init creates empty documents for the writable collections that do not
// exist yet. Locations is reference data and is never created.
func (s *Store) Init(ctx context.Context) error {
	for _, name := range []string{Products, Users, Orders} {
		if err := s.ensure(ctx, name, []byte("[]")); err != nil {
			return err
		}
	}
	return s.ensure(ctx, Counters, []byte("{}"))
}

func (s *Store) ensure(ctx context.Context, name string, empty []byte) error {
	unlock := s.Lock(name)
	defer unlock()

	_, err := s.backend.Load(ctx, name)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrDocumentMissing) {
		return global.Storage(fmt.Sprintf("failed to read %s", name), err)
	}
	if err := s.backend.Save(ctx, name, empty); err != nil {
		return global.Storage(fmt.Sprintf("failed to create %s", name), err)
	}
	return nil
}

// Raw returns a document exactly as stored.
func (s *Store) Raw(ctx context.Context, name string) (json.RawMessage, error) {
	data, err := s.backend.Load(ctx, name)
	if err != nil {
		return nil, global.Storage(fmt.Sprintf("failed to read %s", name), err)
	}
	if !json.Valid(data) {
		return nil, global.Storage(fmt.Sprintf("%s is not valid JSON", name), nil)
	}
	return json.RawMessage(data), nil
}

// Load decodes a whole collection.
func Load[T any](ctx context.Context, s *Store, name string) ([]T, error) {
	data, err := s.backend.Load(ctx, name)
	if err != nil {
		return nil, global.Storage(fmt.Sprintf("failed to read %s", name), err)
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, global.Storage(fmt.Sprintf("%s is malformed", name), err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Save encodes and writes a whole collection. The caller must hold the
// collection lock.
func Save[T any](ctx context.Context, s *Store, name string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return global.Storage(fmt.Sprintf("failed to encode %s", name), err)
	}
	if err := s.backend.Save(ctx, name, data); err != nil {
		return global.Storage(fmt.Sprintf("failed to write %s", name), err)
	}
	return nil
}

// Update runs load, fn, save under the collection lock. Nothing is written
// when fn returns an error.
func Update[T any](ctx context.Context, s *Store, name string, fn func([]T) ([]T, error)) error {
	unlock := s.Lock(name)
	defer unlock()

	items, err := Load[T](ctx, s, name)
	if err != nil {
		return err
	}
	items, err = fn(items)
	if err != nil {
		return err
	}
	return Save(ctx, s, name, items)
}
