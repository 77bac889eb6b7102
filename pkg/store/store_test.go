package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Daviipontes/Dev-Web/pkg/global"
)

type item struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Tags  []string `json:"tags"`
}

func newFileStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)
	s := New(backend)
	require.NoError(t, s.Init(context.Background()))
	return s, dir
}

func TestInitCreatesEmptyCollections(t *testing.T) {
	s, dir := newFileStore(t)

	for _, name := range []string{Products, Users, Orders} {
		data, err := os.ReadFile(filepath.Join(dir, name+".json"))
		require.NoError(t, err)
		assert.JSONEq(t, "[]", string(data))
	}
	_, err := os.Stat(filepath.Join(dir, Locations+".json"))
	assert.True(t, os.IsNotExist(err))

	// Idempotent, never truncates.
	require.NoError(t, Save(context.Background(), s, Products, []item{{ID: 1, Name: "Guitar"}}))
	require.NoError(t, s.Init(context.Background()))
	items, err := Load[item](context.Background(), s, Products)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, dir := newFileStore(t)

	original := []item{
		{ID: 1, Name: "Guitar", Price: 1999.9, Tags: []string{"strings", "acoustic"}},
		{ID: 2, Name: "Drum", Price: 0, Tags: []string{}},
	}
	require.NoError(t, Save(ctx, s, Products, original))

	loaded, err := Load[item](ctx, s, Products)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)

	before, err := os.ReadFile(filepath.Join(dir, "products.json"))
	require.NoError(t, err)
	require.NoError(t, Save(ctx, s, Products, loaded))
	after, err := os.ReadFile(filepath.Join(dir, "products.json"))
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
	assert.Contains(t, string(after), "\n  {")
}

func TestLoadMissingDocumentIsStorageError(t *testing.T) {
	s, _ := newFileStore(t)

	_, err := Load[item](context.Background(), s, Locations)
	require.Error(t, err)
	assert.True(t, errors.Is(err, global.ErrStorage))
	assert.True(t, errors.Is(err, ErrDocumentMissing))
}

func TestLoadMalformedDocumentIsStorageError(t *testing.T) {
	s, dir := newFileStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products.json"), []byte("{not json"), 0o644))

	_, err := Load[item](context.Background(), s, Products)
	assert.ErrorIs(t, err, global.ErrStorage)
}

func TestUpdateDoesNotWriteOnError(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)
	require.NoError(t, Save(ctx, s, Products, []item{{ID: 1, Name: "Guitar"}}))

	boom := errors.New("boom")
	err := Update(ctx, s, Products, func(items []item) ([]item, error) {
		return append(items, item{ID: 2}), boom
	})
	assert.ErrorIs(t, err, boom)

	items, err := Load[item](ctx, s, Products)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)

	const writers = 40
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := Update(ctx, s, Products, func(items []item) ([]item, error) {
				return append(items, item{ID: i}), nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	items, err := Load[item](ctx, s, Products)
	require.NoError(t, err)
	assert.Len(t, items, writers)
}

func TestNextIDIsMonotonic(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryBackend())
	require.NoError(t, s.Init(ctx))
	require.NoError(t, Save(ctx, s, Products, []item{{ID: 3}, {ID: 7}}))

	id, err := s.NextID(ctx, Products)
	require.NoError(t, err)
	assert.Equal(t, 8, id)

	// Deleting the highest id must not make it reusable.
	require.NoError(t, Save(ctx, s, Products, []item{{ID: 3}}))
	id, err = s.NextID(ctx, Products)
	require.NoError(t, err)
	assert.Equal(t, 9, id)

	id, err = s.NextID(ctx, Orders)
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestNextIDConcurrentUnique(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryBackend())
	require.NoError(t, s.Init(ctx))

	var (
		mu   sync.Mutex
		seen = map[int]bool{}
		wg   sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.NextID(ctx, Orders)
			assert.NoError(t, err)
			mu.Lock()
			seen[id] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 50)
}

func TestLockOrderAvoidsDeadlock(t *testing.T) {
	s := New(NewMemoryBackend())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unlock := s.Lock(Products, Users)
			unlock()
		}()
		go func() {
			defer wg.Done()
			unlock := s.Lock(Users, Products, Users)
			unlock()
		}()
	}
	wg.Wait()
}

func TestRawLocations(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	s := New(backend)
	doc := `[{"country":"Brasil","states":[{"name":"SP","cities":["Campinas"]}]}]`
	require.NoError(t, backend.Save(ctx, Locations, []byte(doc)))

	raw, err := s.Raw(ctx, Locations)
	require.NoError(t, err)
	assert.JSONEq(t, doc, string(raw))
}

func TestSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	backend, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	_, err = backend.Load(ctx, Products)
	assert.ErrorIs(t, err, ErrDocumentMissing)

	s := New(backend)
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Ping(ctx))

	original := []item{{ID: 1, Name: "Violin", Price: 850.5, Tags: []string{"strings"}}}
	require.NoError(t, Save(ctx, s, Products, original))
	require.NoError(t, Save(ctx, s, Products, original))

	loaded, err := Load[item](ctx, s, Products)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)

	id, err := s.NextID(ctx, Products)
	require.NoError(t, err)
	assert.Equal(t, 2, id)
}
