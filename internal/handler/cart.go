package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/cartd/internal/domain/cart"
)

// GetCart returns the priced cart: items with resolved discount rates and
// line totals, the selected coupon, and cart-wide totals.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, http.StatusOK)
}

// AddItem puts one unit of the requested product into the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var productID string
	err := decodeObj(r, func(d *jx.Decoder, key string) error {
		switch key {
		case "productId":
			v, err := d.Str()
			productID = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.products.Get(productID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.cart.Add(r.Context(), p); err != nil {
		writeDomainError(w, err)
		return
	}
	h.writeCart(w, http.StatusOK)
}

// UpdateItem replaces the quantity of a cart line. A quantity of zero or
// less removes the line.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var quantity int
	err := decodeObj(r, func(d *jx.Decoder, key string) error {
		switch key {
		case "quantity":
			v, err := d.Int()
			quantity = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.products.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.cart.UpdateQuantity(r.Context(), p, quantity); err != nil {
		writeDomainError(w, err)
		return
	}
	h.writeCart(w, http.StatusOK)
}

// RemoveItem deletes a cart line. Unknown IDs are a no-op.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.cart.Remove(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// ClearCart empties the cart.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// ApplyCoupon selects a coupon by code after the eligibility check.
func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	var code string
	err := decodeObj(r, func(d *jx.Decoder, key string) error {
		switch key {
		case "code":
			v, err := d.Str()
			code = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cp, err := h.coupons.Find(code)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.cart.ApplyCoupon(r.Context(), cp); err != nil {
		writeDomainError(w, err)
		return
	}
	h.writeCart(w, http.StatusOK)
}

// ClearCoupon drops the selected coupon.
func (h *Handler) ClearCoupon(w http.ResponseWriter, r *http.Request) {
	h.cart.ClearCoupon(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeCart(w http.ResponseWriter, status int) {
	snapshot := h.cart.Snapshot()
	totals := cart.ComputeTotals(snapshot)

	writeJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("items", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, it := range snapshot.Items {
						encodeCartItem(e, it, snapshot)
					}
				})
			})
			e.Field("coupon", func(e *jx.Encoder) {
				if snapshot.SelectedCoupon == nil {
					e.Null()
					return
				}
				encodeCoupon(e, *snapshot.SelectedCoupon)
			})
			e.Field("totalBeforeDiscount", func(e *jx.Encoder) {
				e.Float64(totals.BeforeDiscount.InexactFloat64())
			})
			e.Field("totalAfterDiscount", func(e *jx.Encoder) {
				e.Float64(totals.AfterDiscount.InexactFloat64())
			})
		})
	})
}

func encodeCartItem(e *jx.Encoder, it cart.Item, c cart.Cart) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("product", func(e *jx.Encoder) {
			encodeProduct(e, it.Product)
		})
		e.Field("quantity", func(e *jx.Encoder) { e.Int(it.Quantity) })
		e.Field("discountRate", func(e *jx.Encoder) {
			e.Float64(cart.MaxApplicableDiscount(it, c).InexactFloat64())
		})
		e.Field("total", func(e *jx.Encoder) {
			e.Float64(cart.ItemTotal(it, c).InexactFloat64())
		})
	})
}
