// Package handler exposes the cart and catalog over HTTP.
package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/cartd/internal/catalog"
	"github.com/xenking/cartd/internal/domain/cart"
	"github.com/xenking/cartd/internal/domain/coupon"
	"github.com/xenking/cartd/internal/domain/product"
)

const maxBodySize = 1 << 20

// Handler serves the cart and catalog API, delegating business logic to the
// cart controller and catalog services.
type Handler struct {
	products *catalog.Products
	coupons  *catalog.Coupons
	cart     *cart.Service
}

// New constructs a Handler with the required dependencies.
func New(products *catalog.Products, coupons *catalog.Coupons, cartSvc *cart.Service) *Handler {
	return &Handler{
		products: products,
		coupons:  coupons,
		cart:     cartSvc,
	}
}

// Routes registers all API routes on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("POST /api/products", h.AddProduct)
	mux.HandleFunc("PATCH /api/products/{id}", h.UpdateProduct)
	mux.HandleFunc("DELETE /api/products/{id}", h.DeleteProduct)
	mux.HandleFunc("PUT /api/products/{id}/stock", h.UpdateStock)
	mux.HandleFunc("POST /api/products/{id}/discounts", h.AddDiscount)
	mux.HandleFunc("DELETE /api/products/{id}/discounts/{quantity}", h.RemoveDiscount)

	mux.HandleFunc("GET /api/coupons", h.ListCoupons)
	mux.HandleFunc("POST /api/coupons", h.AddCoupon)
	mux.HandleFunc("DELETE /api/coupons/{code}", h.DeleteCoupon)

	mux.HandleFunc("GET /api/cart", h.GetCart)
	mux.HandleFunc("POST /api/cart/items", h.AddItem)
	mux.HandleFunc("PUT /api/cart/items/{id}", h.UpdateItem)
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.RemoveItem)
	mux.HandleFunc("DELETE /api/cart", h.ClearCart)
	mux.HandleFunc("POST /api/cart/coupon", h.ApplyCoupon)
	mux.HandleFunc("DELETE /api/cart/coupon", h.ClearCoupon)
}

// writeJSON encodes one value with jx and writes it with the given status.
func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	var e jx.Encoder
	encode(&e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes the {"code":N,"message":...} error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("code", func(e *jx.Encoder) { e.Int(status) })
			e.Field("message", func(e *jx.Encoder) { e.Str(message) })
		})
	})
}

// writeDomainError maps domain errors to HTTP error responses.
func writeDomainError(w http.ResponseWriter, err error) {
	var stockErr *cart.StockExceededError

	switch {
	case errors.Is(err, cart.ErrOutOfStock):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &stockErr):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, coupon.ErrNotEligible):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, product.ErrNotFound), errors.Is(err, coupon.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeObj reads the request body and iterates the top-level object fields.
func decodeObj(r *http.Request, f func(d *jx.Decoder, key string) error) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return errors.Wrap(err, "read body")
	}

	d := jx.DecodeBytes(data)
	return d.Obj(f)
}
