package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kapilraj10/pos-storefront/api/middleware"
	"github.com/kapilraj10/pos-storefront/api/responses"
	"github.com/kapilraj10/pos-storefront/api/validators"
	"github.com/kapilraj10/pos-storefront/pkg/backend"
	pkgerrors "github.com/kapilraj10/pos-storefront/pkg/errors"
	"github.com/kapilraj10/pos-storefront/pkg/logger"
)

const maxUploadBytes = 10 << 20

type catalogClient interface {
	Categories(ctx context.Context) ([]backend.Category, error)
	Items(ctx context.Context) ([]backend.Item, error)
}

type purchaseClient interface {
	PurchaseItem(ctx context.Context, itemID string, quantity int) error
}

type catalogAdminClient interface {
	CreateCategory(ctx context.Context, token string, upload backend.Upload) error
	DeleteCategory(ctx context.Context, token, categoryID string) error
	CreateItem(ctx context.Context, token string, upload backend.Upload) error
	UpdateItem(ctx context.Context, token, itemID string, upload backend.Upload) error
	DeleteItem(ctx context.Context, token, itemID string) error
}

// ListCategories serves the public category strip.
func ListCategories(client catalogClient, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := client.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

// ListItems serves the public catalog grid, normalized.
func ListItems(client catalogClient, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := client.Items(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

type purchaseRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// PurchaseItem forwards a single-item quick buy. Stock enforcement stays
// with the backend; a rejection comes back as-is.
func PurchaseItem(client purchaseClient, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload purchaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := client.PurchaseItem(r.Context(), chi.URLParam(r, "itemId"), payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "purchased"})
	}
}

// AdminCreateCategory forwards the multipart category form to the backend.
func AdminCreateCategory(client catalogAdminClient, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upload, err := parseUpload(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		token := middleware.BackendTokenFromContext(r.Context())
		if err := client.CreateCategory(r.Context(), token, upload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "created"})
	}
}

func AdminDeleteCategory(client catalogAdminClient, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.BackendTokenFromContext(r.Context())
		if err := client.DeleteCategory(r.Context(), token, chi.URLParam(r, "categoryId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func AdminCreateItem(client catalogAdminClient, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upload, err := parseUpload(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		token := middleware.BackendTokenFromContext(r.Context())
		if err := client.CreateItem(r.Context(), token, upload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"status": "created"})
	}
}

func AdminUpdateItem(client catalogAdminClient, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		upload, err := parseUpload(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		token := middleware.BackendTokenFromContext(r.Context())
		if err := client.UpdateItem(r.Context(), token, chi.URLParam(r, "itemId"), upload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

func AdminDeleteItem(client catalogAdminClient, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.BackendTokenFromContext(r.Context())
		if err := client.DeleteItem(r.Context(), token, chi.URLParam(r, "itemId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// parseUpload lifts a multipart form into the backend passthrough shape.
// The optional file part must be named "image".
func parseUpload(r *http.Request) (backend.Upload, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return backend.Upload{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	upload := backend.Upload{Fields: map[string]string{}}
	for key, values := range r.MultipartForm.Value {
		if len(values) > 0 {
			upload.Fields[key] = values[0]
		}
	}

	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return upload, nil
	}
	if err != nil {
		return backend.Upload{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid image upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return backend.Upload{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading image upload")
	}
	upload.FileName = header.Filename
	upload.File = data
	return upload, nil
}
