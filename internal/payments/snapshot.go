package payments

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/kapilraj10/pos-storefront/pkg/backend"
	pkgerrors "github.com/kapilraj10/pos-storefront/pkg/errors"
	"github.com/kapilraj10/pos-storefront/pkg/redis"
)

// PendingOrder is the order state captured right before the browser leaves
// for the wallet provider. The redirect round-trip loses everything held in
// memory, so this snapshot is the only record of who ordered what.
type PendingOrder struct {
	CustomerName  string              `json:"customer_name"`
	Mobile        string              `json:"mobile"`
	Lines         []backend.OrderLine `json:"lines"`
	Subtotal      string              `json:"subtotal"`
	Tax           string              `json:"tax"`
	GrandTotal    string              `json:"grand_total"`
	PaymentMethod string              `json:"payment_method"`
	Pidx          string              `json:"pidx"`
	CreatedAt     time.Time           `json:"created_at"`
}

// OrderRequest converts the snapshot back into the submission payload,
// stamped with the provider's transaction id once the payment confirms.
func (p PendingOrder) OrderRequest(transactionID string) backend.OrderRequest {
	return backend.OrderRequest{
		CustomerName:  p.CustomerName,
		Mobile:        p.Mobile,
		Lines:         p.Lines,
		Subtotal:      p.Subtotal,
		Tax:           p.Tax,
		GrandTotal:    p.GrandTotal,
		PaymentMethod: p.PaymentMethod,
		TransactionID: transactionID,
	}
}

// KV is the slice of the redis client the snapshot slot needs.
type KV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	PendingOrderKey(sessionID string) string
}

// SnapshotStore is the short-lived slot holding one PendingOrder per
// session across the redirect round-trip.
type SnapshotStore struct {
	kv  KV
	ttl time.Duration
}

func NewSnapshotStore(kv KV, ttl time.Duration) *SnapshotStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SnapshotStore{kv: kv, ttl: ttl}
}

// Save overwrites the session's snapshot. At most one pending order exists
// per session; a new wallet checkout replaces any stale one.
func (s *SnapshotStore) Save(ctx context.Context, sessionID string, order PendingOrder) error {
	encoded, err := json.Marshal(order)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode pending order")
	}
	if err := s.kv.Set(ctx, s.kv.PendingOrderKey(sessionID), string(encoded), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store pending order")
	}
	return nil
}

// Load returns the session's snapshot, or a NotFound error when the slot is
// empty or expired.
func (s *SnapshotStore) Load(ctx context.Context, sessionID string) (*PendingOrder, error) {
	raw, err := s.kv.Get(ctx, s.kv.PendingOrderKey(sessionID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no pending order for session")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pending order")
	}

	var order PendingOrder
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode pending order")
	}
	return &order, nil
}

// Delete destroys the snapshot once reconciliation reaches a terminal state.
func (s *SnapshotStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.kv.Del(ctx, s.kv.PendingOrderKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete pending order")
	}
	return nil
}
