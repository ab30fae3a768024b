package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hemen47/coolgards-front-sub000/internal/domain"
	"github.com/hemen47/coolgards-front-sub000/internal/storage"
)

// CartKey is the storage key prefix for persisted carts.
const CartKey = "cart"

// Key returns the storage key of a session's cart.
func Key(sessionID string) string {
	return fmt.Sprintf("%s:%s", CartKey, sessionID)
}

// Adapter mirrors a cart into durable storage and reads it back once at
// session start. Storage is never a source of truth after that.
type Adapter struct {
	kv     storage.KV
	key    string
	logger *zap.Logger
}

func NewAdapter(kv storage.KV, key string, logger *zap.Logger) *Adapter {
	return &Adapter{
		kv:     kv,
		key:    key,
		logger: logger,
	}
}

// Load returns the stored cart, or an empty cart if nothing usable is stored.
// It never fails: unavailable storage and corrupt data are logged and ignored.
func (a *Adapter) Load(ctx context.Context) []domain.LineItem {
	data, err := a.kv.Get(ctx, a.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			a.logger.Warn("cart storage unavailable, starting with empty cart",
				zap.String("key", a.key), zap.Error(err))
		}
		return []domain.LineItem{}
	}

	items, skipped, err := Decode(data)
	if err != nil {
		a.logger.Warn("stored cart is corrupt, starting with empty cart",
			zap.String("key", a.key), zap.Error(err))
		return []domain.LineItem{}
	}
	if skipped > 0 {
		a.logger.Warn("dropped malformed stored cart entries",
			zap.String("key", a.key), zap.Int("skipped", skipped))
	}
	return items
}

// Save writes the whole cart. Empty carts are written too, so that removing
// the last item cannot resurrect an old cart on the next load.
func (a *Adapter) Save(ctx context.Context, items []domain.LineItem) error {
	data, err := Encode(items)
	if err != nil {
		return err
	}
	if err := a.kv.Set(ctx, a.key, data); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Encode serializes a cart as a JSON array. A nil cart encodes as [].
func Encode(items []domain.LineItem) ([]byte, error) {
	if items == nil {
		items = []domain.LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal cart failed: %w", err)
	}
	return data, nil
}

// Decode parses a stored cart leniently. The top level must be a JSON array;
// entries that fail to parse or lack an id are skipped and counted, and a
// missing quantity defaults to 1.
func Decode(data []byte) ([]domain.LineItem, int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("unmarshal cart failed: %w", err)
	}

	items := make([]domain.LineItem, 0, len(raw))
	skipped := 0
	for _, entry := range raw {
		var item domain.LineItem
		if err := json.Unmarshal(entry, &item); err != nil || item.ID == "" {
			skipped++
			continue
		}
		items = append(items, item.Normalize())
	}
	return items, skipped, nil
}
