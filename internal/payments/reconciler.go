package payments

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kapilraj10/pos-storefront/internal/cart"
	"github.com/kapilraj10/pos-storefront/pkg/backend"
	pkgerrors "github.com/kapilraj10/pos-storefront/pkg/errors"
	"github.com/kapilraj10/pos-storefront/pkg/logger"
	"github.com/kapilraj10/pos-storefront/pkg/wallet"
)

// State is the reconciliation outcome for one callback visit. All states
// are terminal for that visit; pending payments only move forward through
// an explicit recheck.
type State string

const (
	StateSuccess State = "success"
	StatePending State = "pending"
	StateFailed  State = "failed"
)

// Receipt combines the provider's terse lookup echo with the pending-order
// snapshot saved before the redirect. The provider does not echo customer
// details back, so the snapshot supplies them.
type Receipt struct {
	Pidx          string              `json:"pidx"`
	TransactionID string              `json:"transaction_id"`
	OrderID       string              `json:"order_id,omitempty"`
	Amount        decimal.Decimal     `json:"amount"`
	CustomerName  string              `json:"customer_name,omitempty"`
	Mobile        string              `json:"mobile,omitempty"`
	Lines         []backend.OrderLine `json:"lines,omitempty"`
	PaymentMethod string              `json:"payment_method"`
}

// Result is what the callback route renders.
type Result struct {
	State   State    `json:"state"`
	Message string   `json:"message,omitempty"`
	Receipt *Receipt `json:"receipt,omitempty"`
}

type lookupClient interface {
	Lookup(ctx context.Context, pidx string) (*wallet.LookupResult, error)
}

type orderCreator interface {
	CreateOrder(ctx context.Context, token string, req backend.OrderRequest) (*backend.OrderRecord, error)
}

// Reconciler resolves wallet payment callbacks against the saved
// pending-order snapshot. A completed payment is also when the order is
// actually recorded: the wallet path defers order creation until the
// provider confirms, so the reconciler owns that submission.
type Reconciler struct {
	wallet    lookupClient
	backend   orderCreator
	snapshots *SnapshotStore
	carts     *cart.Store
	logger    *logger.Logger
}

func NewReconciler(walletClient lookupClient, orderClient orderCreator, snapshots *SnapshotStore, carts *cart.Store, logg *logger.Logger) (*Reconciler, error) {
	if walletClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "wallet client required")
	}
	if orderClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "backend client required")
	}
	if snapshots == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "snapshot store required")
	}
	if carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart store required")
	}
	return &Reconciler{
		wallet:    walletClient,
		backend:   orderClient,
		snapshots: snapshots,
		carts:     carts,
		logger:    logg,
	}, nil
}

// Reconcile runs the callback state machine: extract the reference, look it
// up once, and fold the result together with the snapshot. No retries; a
// pending or failed outcome is resolved only by the user rechecking.
func (r *Reconciler) Reconcile(ctx context.Context, sessionID, token, pidx string) Result {
	pidx = strings.TrimSpace(pidx)
	if pidx == "" {
		return Result{State: StateFailed, Message: "missing payment reference"}
	}

	lookup, err := r.wallet.Lookup(ctx, pidx)
	if err != nil {
		// Transport failure: the snapshot stays so a recheck can still
		// resolve this attempt.
		r.logError(ctx, "payment lookup failed", err)
		return Result{State: StateFailed, Message: "payment verification failed"}
	}

	switch lookup.Status {
	case wallet.StatusCompleted:
		return r.complete(ctx, sessionID, token, lookup)
	case wallet.StatusPending:
		return Result{State: StatePending, Message: "payment is still pending with the provider"}
	default:
		// Definitive terminal status (expired, canceled, refunded...):
		// the attempt is dead, so the snapshot goes too.
		if err := r.snapshots.Delete(ctx, sessionID); err != nil {
			r.logError(ctx, "discard pending order", err)
		}
		return Result{State: StateFailed, Message: "payment " + strings.ToLower(lookup.Status)}
	}
}

func (r *Reconciler) complete(ctx context.Context, sessionID, token string, lookup *wallet.LookupResult) Result {
	receipt := &Receipt{
		Pidx:          lookup.Pidx,
		TransactionID: lookup.TransactionID,
		Amount:        lookup.TotalAmount,
		PaymentMethod: "wallet",
	}

	snapshot, err := r.snapshots.Load(ctx, sessionID)
	switch {
	case err == nil:
		receipt.CustomerName = snapshot.CustomerName
		receipt.Mobile = snapshot.Mobile
		receipt.Lines = snapshot.Lines

		// The money has moved; now the order has to exist in the backend or
		// it never shows up in order listings or revenue. A failure here
		// keeps the snapshot and the cart so a recheck retries the
		// submission against the same confirmed payment.
		record, err := r.backend.CreateOrder(ctx, token, snapshot.OrderRequest(lookup.TransactionID))
		if err != nil {
			r.logError(ctx, "record wallet order", err)
			return Result{State: StateFailed, Message: "payment received but the order could not be recorded, please recheck"}
		}
		receipt.OrderID = record.ID
	case pkgerrors.As(err) != nil && pkgerrors.As(err).Code() == pkgerrors.CodeNotFound:
		// Expired or already consumed: the payment still went through, so
		// render what the provider gave us.
		if r.logger != nil {
			r.logger.Warn(ctx, "pending order snapshot missing at reconciliation")
		}
	default:
		r.logError(ctx, "load pending order", err)
	}

	if err := r.snapshots.Delete(ctx, sessionID); err != nil {
		r.logError(ctx, "discard pending order", err)
	}
	r.carts.Get(sessionID).Clear()

	return Result{State: StateSuccess, Receipt: receipt}
}

func (r *Reconciler) logError(ctx context.Context, msg string, err error) {
	if r.logger != nil {
		r.logger.Error(ctx, msg, err)
	}
}
