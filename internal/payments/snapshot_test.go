package payments

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kapilraj10/pos-storefront/pkg/backend"
	pkgerrors "github.com/kapilraj10/pos-storefront/pkg/errors"
	"github.com/kapilraj10/pos-storefront/pkg/redis"
)

// memoryKV mimics the redis client surface the snapshot store uses.
type memoryKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string]string)}
}

func (m *memoryKV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	return nil
}

func (m *memoryKV) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.data[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (m *memoryKV) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryKV) PendingOrderKey(sessionID string) string {
	return "pos:pending_order:" + sessionID
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	store := NewSnapshotStore(newMemoryKV(), time.Hour)
	ctx := context.Background()

	original := PendingOrder{
		CustomerName:  "Sita",
		Mobile:        "9811111111",
		Lines:         []backend.OrderLine{{ItemID: "2", Name: "Momo", Quantity: 1}},
		Subtotal:      "180",
		Tax:           "23.4",
		GrandTotal:    "203.4",
		PaymentMethod: "wallet",
		Pidx:          "px-9",
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, store.Save(ctx, "s1", original))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, original.CustomerName, loaded.CustomerName)
	require.Equal(t, original.GrandTotal, loaded.GrandTotal)
	require.Equal(t, original.Pidx, loaded.Pidx)
	require.Len(t, loaded.Lines, 1)
}

func TestSnapshotLoadMissingIsNotFound(t *testing.T) {
	t.Parallel()

	store := NewSnapshotStore(newMemoryKV(), time.Hour)

	_, err := store.Load(context.Background(), "nobody")
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestSnapshotSaveReplacesPrevious(t *testing.T) {
	t.Parallel()

	store := NewSnapshotStore(newMemoryKV(), time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", PendingOrder{Pidx: "px-old"}))
	require.NoError(t, store.Save(ctx, "s1", PendingOrder{Pidx: "px-new"}))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "px-new", loaded.Pidx)
}

func TestSnapshotDeleteIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewSnapshotStore(newMemoryKV(), time.Hour)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", PendingOrder{Pidx: "px-1"}))
	require.NoError(t, store.Delete(ctx, "s1"))
	require.NoError(t, store.Delete(ctx, "s1"))
}
