// Package checkout turns a page/product selection into a priced, recorded
// payment attempt against the configured provider.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/landing-api/internal/engine"
	"github.com/noah-isme/landing-api/internal/obs"
	"github.com/noah-isme/landing-api/internal/pricing"
	"github.com/noah-isme/landing-api/internal/transaction"
)

// ConfigSource resolves a page id to its product configuration.
type ConfigSource interface {
	GetConfig(ctx context.Context, pageID int64) (pricing.ProductConfig, error)
}

// PaymentExecutor is the engine entry point the checkout flow drives.
type PaymentExecutor interface {
	Execute(ctx context.Context, providerSlug string, amount int64) (engine.Result, error)
}

// Input is one checkout request.
type Input struct {
	PageID     int64          `json:"page_id" validate:"required"`
	Provider   string         `json:"provider" validate:"required"`
	VariantID  string         `json:"variant_id" validate:"required"`
	CouponCode string         `json:"coupon_code"`
	WithBump   bool           `json:"with_bump"`
	Customer   map[string]any `json:"customer"`
}

// Output carries the transaction reference alongside the normalised gateway
// result.
type Output struct {
	OrderID string        `json:"order_id"`
	Amount  int64         `json:"amount"`
	Payment engine.Result `json:"payment"`
}

// Service orchestrates pricing, persistence and payment execution.
type Service struct {
	Pages        ConfigSource
	Transactions transaction.Querier
	Engine       PaymentExecutor
	Validate     *validator.Validate
	Logger       zerolog.Logger
}

// Create runs one checkout attempt. The transaction row is persisted as
// pending before the gateway is called, so an abandoned or failed call still
// leaves an auditable record.
func (s *Service) Create(ctx context.Context, in Input) (Output, error) {
	if s == nil || s.Pages == nil || s.Transactions == nil || s.Engine == nil {
		return Output{}, errors.New("checkout service not configured")
	}
	if s.Validate != nil {
		if err := s.Validate.Struct(in); err != nil {
			return Output{}, err
		}
	}

	result := "error"
	defer func() {
		if obs.CheckoutTotal != nil {
			obs.CheckoutTotal.WithLabelValues(in.Provider, result).Inc()
		}
	}()

	cfg, err := s.Pages.GetConfig(ctx, in.PageID)
	if err != nil {
		return Output{}, err
	}
	amount, err := pricing.FinalPrice(cfg, in.VariantID, in.WithBump, in.CouponCode)
	if err != nil {
		return Output{}, err
	}

	orderID := engine.NewOrderID(time.Now(), randInt)
	info := map[string]any{}
	for k, v := range in.Customer {
		info[k] = v
	}
	if variant, ok := findVariant(cfg.Variants, in.VariantID); ok {
		info["item"] = variant.Name
	}
	if in.CouponCode != "" {
		info["coupon"] = in.CouponCode
	}
	infoRaw, _ := json.Marshal(info)

	if err := s.Transactions.Insert(ctx, transaction.Record{
		PageID:       in.PageID,
		OrderID:      orderID,
		Provider:     in.Provider,
		Amount:       amount,
		Status:       transaction.StatusPending,
		CustomerInfo: infoRaw,
	}); err != nil {
		return Output{}, err
	}

	payment, err := s.Engine.Execute(ctx, in.Provider, amount)
	if err != nil {
		s.Logger.Warn().Err(err).
			Str("provider", in.Provider).
			Str("order_id", orderID).
			Msg("payment execution failed")
		if uerr := s.Transactions.UpdateStatus(ctx, orderID, transaction.StatusFailed); uerr != nil {
			s.Logger.Error().Err(uerr).Str("order_id", orderID).Msg("mark transaction failed")
		}
		return Output{}, err
	}

	result = "ok"
	return Output{OrderID: orderID, Amount: amount, Payment: payment}, nil
}

func randInt(n int) int {
	return rand.IntN(n)
}

func findVariant(variants []pricing.Variant, id string) (pricing.Variant, bool) {
	for _, v := range variants {
		if v.ID == id {
			return v, true
		}
	}
	return pricing.Variant{}, false
}
