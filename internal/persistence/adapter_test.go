package persistence

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/hemen47/coolgards-front-sub000/internal/cart"
	"github.com/hemen47/coolgards-front-sub000/internal/domain"
	"github.com/hemen47/coolgards-front-sub000/internal/storage"
)

type failingKV struct {
	err error
}

func (f failingKV) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingKV) Set(context.Context, string, []byte) error   { return f.err }

func newTestAdapter(t *testing.T, kv storage.KV) *Adapter {
	return NewAdapter(kv, Key("session-1"), zaptest.NewLogger(t))
}

func quantities(items []domain.LineItem) map[string]int {
	out := make(map[string]int, len(items))
	for _, item := range items {
		out[item.ID] = item.Quantity
	}
	return out
}

func TestKey(t *testing.T) {
	assert.Equal(t, "cart:abc", Key("abc"))
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()

	store := cart.NewStore()
	store.AddItem(domain.Product{ID: "sku1", Title: "Thermometer", Images: []string{"t.png"}}, 2)
	store.AddItem(domain.Product{ID: "sku2", Title: "Oximeter"}, 1)
	store.AddItem(domain.Product{ID: "sku1"}, 1)

	require.NoError(t, newTestAdapter(t, kv).Save(ctx, store.Items()))

	fresh := cart.NewStore()
	loaded := fresh.SetCart(newTestAdapter(t, kv).Load(ctx))

	assert.Equal(t, map[string]int{"sku1": 3, "sku2": 1}, quantities(loaded))

	ids := []string{loaded[0].ID, loaded[1].ID}
	sort.Strings(ids)
	assert.Equal(t, []string{"sku1", "sku2"}, ids)
	assert.Equal(t, "Thermometer", loaded[0].Title)
}

func TestLoad_NothingStored(t *testing.T) {
	items := newTestAdapter(t, storage.NewMemoryKV()).Load(context.Background())

	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestLoad_MalformedData(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		want   map[string]int
	}{
		{name: "invalid json", stored: `{not json`, want: map[string]int{}},
		{name: "object instead of array", stored: `{"id":"a"}`, want: map[string]int{}},
		{name: "null", stored: `null`, want: map[string]int{}},
		{name: "missing quantity defaults to 1", stored: `[{"id":"a","title":"x"}]`, want: map[string]int{"a": 1}},
		{name: "zero quantity defaults to 1", stored: `[{"id":"a","quantity":0}]`, want: map[string]int{"a": 1}},
		{name: "entry without id skipped", stored: `[{"title":"x"},{"id":"b","quantity":2}]`, want: map[string]int{"b": 2}},
		{name: "entry with wrong types skipped", stored: `[{"id":"a","quantity":"many"},{"id":"b"}]`, want: map[string]int{"b": 1}},
		{name: "non-object entry skipped", stored: `[42,{"id":"c","quantity":3}]`, want: map[string]int{"c": 3}},
		{name: "quoted and numeric prices", stored: `[{"id":"a","price":"10.50"},{"id":"b","price":7}]`, want: map[string]int{"a": 1, "b": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := storage.NewMemoryKV()
			ctx := context.Background()
			require.NoError(t, kv.Set(ctx, Key("session-1"), []byte(tt.stored)))

			var items []domain.LineItem
			require.NotPanics(t, func() {
				items = newTestAdapter(t, kv).Load(ctx)
			})
			assert.Equal(t, tt.want, quantities(items))
		})
	}
}

func TestLoad_DuplicatesCollapsedBySetCart(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, Key("session-1"), []byte(`[{"id":"a","quantity":2},{"id":"a","quantity":3}]`)))

	items := cart.NewStore().SetCart(newTestAdapter(t, kv).Load(ctx))

	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestSave_EmptyCartOverwritesStoredCart(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()
	adapter := newTestAdapter(t, kv)

	require.NoError(t, adapter.Save(ctx, []domain.LineItem{{ID: "a", Quantity: 1}}))
	require.NoError(t, adapter.Save(ctx, nil))

	data, err := kv.Get(ctx, Key("session-1"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
	assert.Empty(t, adapter.Load(ctx))
}

func TestStorageUnavailable_Degrades(t *testing.T) {
	adapter := newTestAdapter(t, failingKV{err: errors.New("disk full")})
	ctx := context.Background()

	var items []domain.LineItem
	require.NotPanics(t, func() {
		items = adapter.Load(ctx)
	})
	assert.Empty(t, items)

	err := adapter.Save(ctx, []domain.LineItem{{ID: "a", Quantity: 1}})
	assert.ErrorContains(t, err, "disk full")
}
