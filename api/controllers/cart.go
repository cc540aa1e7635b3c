package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/kapilraj10/pos-storefront/api/middleware"
	"github.com/kapilraj10/pos-storefront/api/responses"
	"github.com/kapilraj10/pos-storefront/api/validators"
	cartsvc "github.com/kapilraj10/pos-storefront/internal/cart"
	"github.com/kapilraj10/pos-storefront/pkg/backend"
	pkgerrors "github.com/kapilraj10/pos-storefront/pkg/errors"
	"github.com/kapilraj10/pos-storefront/pkg/logger"
)

type itemLister interface {
	Items(ctx context.Context) ([]backend.Item, error)
}

type cartLineResponse struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type cartResponse struct {
	Lines      []cartLineResponse `json:"lines"`
	Subtotal   string             `json:"subtotal"`
	Tax        string             `json:"tax"`
	GrandTotal string             `json:"grand_total"`
}

func newCartResponse(c *cartsvc.Cart) cartResponse {
	lines := c.Lines()
	totals := c.Totals()

	out := cartResponse{
		Lines:      make([]cartLineResponse, 0, len(lines)),
		Subtotal:   totals.Subtotal.String(),
		Tax:        totals.Tax.String(),
		GrandTotal: totals.GrandTotal.String(),
	}
	for _, line := range lines {
		out.Lines = append(out.Lines, cartLineResponse{
			ItemID:    line.ItemID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice.String(),
			Quantity:  line.Quantity,
			LineTotal: line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))).String(),
		})
	}
	return out
}

// GetCart renders the session's current cart with derived totals.
func GetCart(carts *cartsvc.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		responses.WriteSuccess(w, newCartResponse(carts.Get(sessionID)))
	}
}

type addCartItemRequest struct {
	ItemID   string `json:"item_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=0"`
}

// AddCartItem merges an item into the cart. Price and name come from the
// live catalog, not the request, so a stale client cannot set its own price.
func AddCartItem(carts *cartsvc.Store, catalog itemLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := catalog.Items(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var found *backend.Item
		for i := range items {
			if items[i].ID == payload.ItemID {
				found = &items[i]
				break
			}
		}
		if found == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "item not found"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		currentCart := carts.Get(sessionID)
		currentCart.AddLine(cartsvc.Line{
			ItemID:    found.ID,
			Name:      found.Name,
			UnitPrice: found.Price,
			Stock:     found.Stock,
		}, payload.Quantity)

		responses.WriteSuccess(w, newCartResponse(currentCart))
	}
}

type replaceCartRequest struct {
	Items []addCartItemRequest `json:"items" validate:"required,dive"`
}

// ReplaceCart swaps the whole cart for the given selection in one call,
// resolving every line against the live catalog.
func ReplaceCart(carts *cartsvc.Store, catalog itemLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload replaceCartRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := catalog.Items(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		byID := make(map[string]backend.Item, len(items))
		for _, item := range items {
			byID[item.ID] = item
		}

		lines := make([]cartsvc.Line, 0, len(payload.Items))
		quantities := make([]int, 0, len(payload.Items))
		for _, entry := range payload.Items {
			item, ok := byID[entry.ItemID]
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "item not found").
					WithDetails(map[string]string{"item_id": entry.ItemID}))
				return
			}
			lines = append(lines, cartsvc.Line{
				ItemID:    item.ID,
				Name:      item.Name,
				UnitPrice: item.Price,
				Stock:     item.Stock,
			})
			quantities = append(quantities, entry.Quantity)
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		currentCart := carts.Get(sessionID)
		currentCart.Clear()
		for i, line := range lines {
			currentCart.AddLine(line, quantities[i])
		}

		responses.WriteSuccess(w, newCartResponse(currentCart))
	}
}

type setQuantityRequest struct {
	Quantity int `json:"quantity" validate:"min=0"`
}

// SetCartItemQuantity replaces a line's quantity. Zero removes the line.
func SetCartItemQuantity(carts *cartsvc.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload setQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		currentCart := carts.Get(sessionID)
		currentCart.SetQuantity(chi.URLParam(r, "itemId"), payload.Quantity)

		responses.WriteSuccess(w, newCartResponse(currentCart))
	}
}

// RemoveCartItem drops one line regardless of quantity.
func RemoveCartItem(carts *cartsvc.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		currentCart := carts.Get(sessionID)
		currentCart.RemoveLine(chi.URLParam(r, "itemId"))

		responses.WriteSuccess(w, newCartResponse(currentCart))
	}
}

// ClearCart empties the session's cart.
func ClearCart(carts *cartsvc.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		currentCart := carts.Get(sessionID)
		currentCart.Clear()

		responses.WriteSuccess(w, newCartResponse(currentCart))
	}
}
