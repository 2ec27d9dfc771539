package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/cartd/internal/domain/coupon"
	"github.com/xenking/cartd/internal/domain/product"
)

// ListProducts returns the catalog. Each product carries the stock still
// available to the cart, so clients can render sold-out states directly.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.products.List()

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, p := range products {
				remaining := h.cart.RemainingStock(p)
				e.Obj(func(e *jx.Encoder) {
					encodeProductFields(e, p)
					e.Field("remainingStock", func(e *jx.Encoder) { e.Int(remaining) })
				})
			}
		})
	})
}

// AddProduct inserts a catalog product, assigning an ID when none is given.
func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	p, err := decodeProduct(r, product.Product{})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	stored := h.products.Add(r.Context(), p)
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeProduct(e, stored)
	})
}

// UpdateProduct applies a partial update over the stored product.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	current, err := h.products.Get(r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	p, err := decodeProduct(r, current)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p.ID = current.ID

	if err := h.products.Update(r.Context(), p); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeProduct(e, p)
	})
}

// DeleteProduct removes a catalog product. Unknown IDs are a no-op.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	h.products.Remove(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// UpdateStock sets the stock count of a product.
func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	var stock int
	err := decodeObj(r, func(d *jx.Decoder, key string) error {
		switch key {
		case "stock":
			v, err := d.Int()
			stock = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil || stock < 0 {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.products.UpdateStock(r.Context(), r.PathValue("id"), stock); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddDiscount appends a discount tier to a product.
func (h *Handler) AddDiscount(w http.ResponseWriter, r *http.Request) {
	var d product.Discount
	err := decodeObj(r, func(dec *jx.Decoder, key string) error {
		switch key {
		case "quantity":
			v, err := dec.Int()
			d.Quantity = v
			return err
		case "rate":
			v, err := dec.Float64()
			d.Rate = decimal.NewFromFloat(v)
			return err
		default:
			return dec.Skip()
		}
	})
	if err != nil || d.Quantity <= 0 || d.Rate.IsNegative() || d.Rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.products.AddDiscount(r.Context(), r.PathValue("id"), d); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveDiscount removes the discount tiers with the given quantity
// threshold from a product.
func (h *Handler) RemoveDiscount(w http.ResponseWriter, r *http.Request) {
	quantity, err := strconv.Atoi(r.PathValue("quantity"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid quantity")
		return
	}

	if err := h.products.RemoveDiscount(r.Context(), r.PathValue("id"), quantity); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListCoupons returns the coupon catalog.
func (h *Handler) ListCoupons(w http.ResponseWriter, r *http.Request) {
	coupons := h.coupons.List()

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, c := range coupons {
				encodeCoupon(e, c)
			}
		})
	})
}

// AddCoupon upserts a coupon by code.
func (h *Handler) AddCoupon(w http.ResponseWriter, r *http.Request) {
	var c coupon.Coupon
	err := decodeObj(r, func(d *jx.Decoder, key string) error {
		switch key {
		case "code":
			v, err := d.Str()
			c.Code = v
			return err
		case "name":
			v, err := d.Str()
			c.Name = v
			return err
		case "discountType":
			v, err := d.Str()
			c.DiscountType = coupon.DiscountType(v)
			return err
		case "discountValue":
			v, err := d.Float64()
			c.DiscountValue = decimal.NewFromFloat(v)
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil || c.Code == "" || !validDiscountValue(c) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.coupons.Add(r.Context(), c)
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		encodeCoupon(e, c)
	})
}

// DeleteCoupon removes a coupon by code. Unknown codes are a no-op.
func (h *Handler) DeleteCoupon(w http.ResponseWriter, r *http.Request) {
	h.coupons.Remove(r.Context(), r.PathValue("code"))
	w.WriteHeader(http.StatusNoContent)
}

// validDiscountValue bounds the discount value per type: amount coupons are
// a non-negative minor-unit amount, percentage coupons stay within 0-100.
func validDiscountValue(c coupon.Coupon) bool {
	switch c.DiscountType {
	case coupon.DiscountAmount:
		return !c.DiscountValue.IsNegative()
	case coupon.DiscountPercentage:
		return !c.DiscountValue.IsNegative() &&
			c.DiscountValue.LessThanOrEqual(decimal.NewFromInt(100))
	default:
		return false
	}
}

// decodeProduct decodes a product body over base, so absent fields keep
// their current values and PATCH-style partial updates fall out naturally.
func decodeProduct(r *http.Request, base product.Product) (product.Product, error) {
	p := base
	err := decodeObj(r, func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			v, err := d.Str()
			p.ID = v
			return err
		case "name":
			v, err := d.Str()
			p.Name = v
			return err
		case "price":
			v, err := d.Float64()
			p.Price = decimal.NewFromFloat(v).Round(0)
			return err
		case "stock":
			v, err := d.Int()
			p.Stock = v
			return err
		case "discounts":
			p.Discounts = nil
			return d.Arr(func(d *jx.Decoder) error {
				var tier product.Discount
				if err := d.Obj(func(d *jx.Decoder, key string) error {
					switch key {
					case "quantity":
						v, err := d.Int()
						tier.Quantity = v
						return err
					case "rate":
						v, err := d.Float64()
						tier.Rate = decimal.NewFromFloat(v)
						return err
					default:
						return d.Skip()
					}
				}); err != nil {
					return err
				}
				p.Discounts = append(p.Discounts, tier)
				return nil
			})
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return product.Product{}, err
	}
	if p.Price.IsNegative() || p.Stock < 0 {
		return product.Product{}, errors.New("negative price or stock")
	}
	return p, nil
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.Obj(func(e *jx.Encoder) {
		encodeProductFields(e, p)
	})
}

func encodeProductFields(e *jx.Encoder, p product.Product) {
	e.Field("id", func(e *jx.Encoder) { e.Str(p.ID) })
	e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
	e.Field("price", func(e *jx.Encoder) { e.Float64(p.Price.InexactFloat64()) })
	e.Field("stock", func(e *jx.Encoder) { e.Int(p.Stock) })
	e.Field("discounts", func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, d := range p.Discounts {
				e.Obj(func(e *jx.Encoder) {
					e.Field("quantity", func(e *jx.Encoder) { e.Int(d.Quantity) })
					e.Field("rate", func(e *jx.Encoder) { e.Float64(d.Rate.InexactFloat64()) })
				})
			}
		})
	})
}

func encodeCoupon(e *jx.Encoder, c coupon.Coupon) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Str(c.Code) })
		e.Field("name", func(e *jx.Encoder) { e.Str(c.Name) })
		e.Field("discountType", func(e *jx.Encoder) { e.Str(string(c.DiscountType)) })
		e.Field("discountValue", func(e *jx.Encoder) { e.Float64(c.DiscountValue.InexactFloat64()) })
	})
}
