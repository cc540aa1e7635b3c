package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kapilraj10/pos-storefront/internal/cart"
	"github.com/kapilraj10/pos-storefront/internal/payments"
	"github.com/kapilraj10/pos-storefront/pkg/backend"
	pkgerrors "github.com/kapilraj10/pos-storefront/pkg/errors"
	"github.com/kapilraj10/pos-storefront/pkg/logger"
	"github.com/kapilraj10/pos-storefront/pkg/wallet"
)

// Payment modes accepted at submission.
const (
	ModeCash   = "cash"
	ModeWallet = "wallet"
)

var hundred = decimal.NewFromInt(100)

// Input is the customer form accompanying a submission.
type Input struct {
	CustomerName  string
	Mobile        string
	PaymentMethod string
}

// WalletHandoff tells the caller where to send the user. Completion is the
// reconciler's job once the provider redirects back.
type WalletHandoff struct {
	Pidx       string `json:"pidx"`
	PaymentURL string `json:"payment_url"`
}

// Outcome is either an immediately confirmed cash order or a wallet handoff.
type Outcome struct {
	Order   *backend.OrderRecord `json:"order,omitempty"`
	Handoff *WalletHandoff       `json:"handoff,omitempty"`
}

type orderCreator interface {
	CreateOrder(ctx context.Context, token string, req backend.OrderRequest) (*backend.OrderRecord, error)
}

type walletInitiator interface {
	Initiate(ctx context.Context, params wallet.InitiateParams) (*wallet.InitiateResult, error)
}

// Service converts cart state plus customer info into an order request and
// dispatches it down the cash or wallet path.
type Service struct {
	carts     *cart.Store
	backend   orderCreator
	wallet    walletInitiator
	snapshots *payments.SnapshotStore
	logger    *logger.Logger
}

func NewService(carts *cart.Store, orderClient orderCreator, walletClient walletInitiator, snapshots *payments.SnapshotStore, logg *logger.Logger) (*Service, error) {
	if carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart store required")
	}
	if orderClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "backend client required")
	}
	if walletClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "wallet client required")
	}
	if snapshots == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "snapshot store required")
	}
	return &Service{
		carts:     carts,
		backend:   orderClient,
		wallet:    walletClient,
		snapshots: snapshots,
		logger:    logg,
	}, nil
}

// Submit validates preconditions locally, then dispatches by payment mode.
// Local validation failures never issue a network call, and any backend
// rejection leaves the cart untouched so the user can retry.
func (s *Service) Submit(ctx context.Context, sessionID, token string, input Input) (*Outcome, error) {
	input.CustomerName = strings.TrimSpace(input.CustomerName)
	input.Mobile = strings.TrimSpace(input.Mobile)
	input.PaymentMethod = strings.ToLower(strings.TrimSpace(input.PaymentMethod))

	if input.CustomerName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if input.Mobile == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mobile number is required")
	}

	currentCart := s.carts.Get(sessionID)
	if currentCart.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	switch input.PaymentMethod {
	case ModeCash:
		return s.submitCash(ctx, token, currentCart, input)
	case ModeWallet:
		return s.submitWallet(ctx, sessionID, currentCart, input)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method").
			WithDetails(map[string]string{"payment_method": input.PaymentMethod})
	}
}

func (s *Service) submitCash(ctx context.Context, token string, currentCart *cart.Cart, input Input) (*Outcome, error) {
	record, err := s.backend.CreateOrder(ctx, token, buildOrderRequest(currentCart, input))
	if err != nil {
		return nil, err
	}

	currentCart.Clear()
	if s.logger != nil {
		s.logger.Info(s.logger.WithField(ctx, "order_id", record.ID), "cash order placed")
	}
	return &Outcome{Order: record}, nil
}

func (s *Service) submitWallet(ctx context.Context, sessionID string, currentCart *cart.Cart, input Input) (*Outcome, error) {
	totals := currentCart.Totals()

	result, err := s.wallet.Initiate(ctx, wallet.InitiateParams{
		AmountMinor:   totals.GrandTotal.Mul(hundred).Round(0).IntPart(),
		PurchaseID:    uuid.NewString(),
		PurchaseName:  "POS order for " + input.CustomerName,
		CustomerName:  input.CustomerName,
		CustomerPhone: input.Mobile,
	})
	if err != nil {
		return nil, err
	}

	snapshot := payments.PendingOrder{
		CustomerName:  input.CustomerName,
		Mobile:        input.Mobile,
		Lines:         orderLines(currentCart),
		Subtotal:      totals.Subtotal.String(),
		Tax:           totals.Tax.String(),
		GrandTotal:    totals.GrandTotal.String(),
		PaymentMethod: ModeWallet,
		Pidx:          result.Pidx,
		CreatedAt:     time.Now().UTC(),
	}
	// The snapshot must exist before the browser leaves; without it the
	// return trip cannot reconstruct the receipt.
	if err := s.snapshots.Save(ctx, sessionID, snapshot); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info(s.logger.WithField(ctx, "pidx", result.Pidx), "wallet checkout initiated")
	}
	return &Outcome{Handoff: &WalletHandoff{Pidx: result.Pidx, PaymentURL: result.PaymentURL}}, nil
}

func buildOrderRequest(currentCart *cart.Cart, input Input) backend.OrderRequest {
	totals := currentCart.Totals()
	return backend.OrderRequest{
		CustomerName:  input.CustomerName,
		Mobile:        input.Mobile,
		Lines:         orderLines(currentCart),
		Subtotal:      totals.Subtotal.String(),
		Tax:           totals.Tax.String(),
		GrandTotal:    totals.GrandTotal.String(),
		PaymentMethod: input.PaymentMethod,
	}
}

func orderLines(currentCart *cart.Cart) []backend.OrderLine {
	lines := currentCart.Lines()
	converted := make([]backend.OrderLine, 0, len(lines))
	for _, line := range lines {
		converted = append(converted, backend.OrderLine{
			ItemID:    line.ItemID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	return converted
}
