// Package pricing computes the final checkout amount for a landing page's
// product configuration. Pure functions over literal inputs.
package pricing

import (
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/noah-isme/landing-api/internal/common"
)

// Money represents a monetary value stored in minor units.
type Money = int64

// Variant is one purchasable option configured on a page.
type Variant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price Money  `json:"price"`
}

// OrderBump is the optional add-on offer presented at checkout.
type OrderBump struct {
	Active bool  `json:"active"`
	Price  Money `json:"price"`
}

// Coupon discounts the order when its code matches, case-insensitively.
// Type is "percent" or "fixed".
type Coupon struct {
	Code  string `json:"code"`
	Type  string `json:"type"`
	Value int64  `json:"value"`
}

// ProductConfig is the product portion of a page's configuration blob.
type ProductConfig struct {
	Variants  []Variant  `json:"variants"`
	OrderBump *OrderBump `json:"order_bump"`
	Coupons   []Coupon   `json:"coupons"`
}

// VariantNotFoundError builds the typed failure for an unknown variant id.
func VariantNotFoundError(variantID string) *common.AppError {
	return common.NewAppError(
		common.CodeVariantNotFound,
		fmt.Sprintf("variant '%s' is not configured on this page", variantID),
		http.StatusUnprocessableEntity,
		nil,
	)
}

// FinalPrice computes the amount to charge: variant price, plus the bump when
// requested and active, minus a matching coupon's discount, floored at zero.
// An unknown coupon code is ignored so checkout proceeds at full price.
func FinalPrice(cfg ProductConfig, variantID string, includeBump bool, couponCode string) (Money, error) {
	variant, ok := findVariant(cfg.Variants, variantID)
	if !ok {
		return 0, VariantNotFoundError(variantID)
	}
	price := variant.Price
	if includeBump && cfg.OrderBump != nil && cfg.OrderBump.Active {
		price += cfg.OrderBump.Price
	}
	if code := strings.ToUpper(strings.TrimSpace(couponCode)); code != "" {
		if coupon, ok := findCoupon(cfg.Coupons, code); ok {
			price -= discount(price, coupon)
		}
	}
	if price < 0 {
		price = 0
	}
	return price, nil
}

func findVariant(variants []Variant, id string) (Variant, bool) {
	for _, v := range variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

func findCoupon(coupons []Coupon, upperCode string) (Coupon, bool) {
	for _, c := range coupons {
		if strings.ToUpper(c.Code) == upperCode {
			return c, true
		}
	}
	return Coupon{}, false
}

func discount(price Money, c Coupon) Money {
	switch c.Type {
	case "percent":
		return Money(math.Round(float64(price) * float64(c.Value) / 100))
	case "fixed":
		return c.Value
	default:
		return 0
	}
}
