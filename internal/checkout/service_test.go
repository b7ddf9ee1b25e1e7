package checkout_test

import (
	"context"
	"encoding/json"
	"testing"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/landing-api/internal/checkout"
	"github.com/noah-isme/landing-api/internal/common"
	"github.com/noah-isme/landing-api/internal/engine"
	"github.com/noah-isme/landing-api/internal/page"
	"github.com/noah-isme/landing-api/internal/pricing"
	"github.com/noah-isme/landing-api/internal/transaction"
)

type fakeConfigs struct {
	configs map[int64]pricing.ProductConfig
}

func (f fakeConfigs) GetConfig(_ context.Context, pageID int64) (pricing.ProductConfig, error) {
	cfg, ok := f.configs[pageID]
	if !ok {
		return pricing.ProductConfig{}, page.NotFoundError("?")
	}
	return cfg, nil
}

type fakeTransactions struct {
	inserted []transaction.Record
	statuses map[string]string
}

func (f *fakeTransactions) Insert(_ context.Context, rec transaction.Record) error {
	f.inserted = append(f.inserted, rec)
	return nil
}

func (f *fakeTransactions) UpdateStatus(_ context.Context, orderID, status string) error {
	if f.statuses == nil {
		f.statuses = map[string]string{}
	}
	f.statuses[orderID] = status
	return nil
}

func (f *fakeTransactions) ListRecent(context.Context, int) ([]transaction.Record, error) {
	return f.inserted, nil
}

type fakeExecutor struct {
	calls   int
	amounts []int64
	result  engine.Result
	err     error
}

func (f *fakeExecutor) Execute(_ context.Context, _ string, amount int64) (engine.Result, error) {
	f.calls++
	f.amounts = append(f.amounts, amount)
	return f.result, f.err
}

func testConfig() pricing.ProductConfig {
	return pricing.ProductConfig{
		Variants:  []pricing.Variant{{ID: "v1", Name: "Paket Basic", Price: 100_000}},
		OrderBump: &pricing.OrderBump{Active: true, Price: 20_000},
		Coupons:   []pricing.Coupon{{Code: "DISC10", Type: "percent", Value: 10}},
	}
}

func newService(exec *fakeExecutor, txs *fakeTransactions) *checkout.Service {
	return &checkout.Service{
		Pages:        fakeConfigs{configs: map[int64]pricing.ProductConfig{7: testConfig()}},
		Transactions: txs,
		Engine:       exec,
		Validate:     validator.New(),
		Logger:       zerolog.Nop(),
	}
}

func TestCreateHappyPath(t *testing.T) {
	exec := &fakeExecutor{result: engine.Result{Success: true, Type: engine.TypePopup, Token: "tok"}}
	txs := &fakeTransactions{}
	svc := newService(exec, txs)

	out, err := svc.Create(context.Background(), checkout.Input{
		PageID:     7,
		Provider:   "midtrans",
		VariantID:  "v1",
		WithBump:   true,
		CouponCode: "disc10",
		Customer:   map[string]any{"name": "Budi"},
	})
	require.NoError(t, err)

	// 100000 + 20000 bump, minus 10% = 108000
	require.Equal(t, int64(108_000), out.Amount)
	require.Equal(t, engine.TypePopup, out.Payment.Type)
	require.NotEmpty(t, out.OrderID)

	require.Len(t, txs.inserted, 1)
	rec := txs.inserted[0]
	require.Equal(t, transaction.StatusPending, rec.Status)
	require.Equal(t, int64(108_000), rec.Amount)
	require.Equal(t, out.OrderID, rec.OrderID)

	var info map[string]any
	require.NoError(t, json.Unmarshal(rec.CustomerInfo, &info))
	require.Equal(t, "Budi", info["name"])
	require.Equal(t, "Paket Basic", info["item"])
	require.Equal(t, "disc10", info["coupon"])

	require.Equal(t, []int64{108_000}, exec.amounts)
}

func TestCreateUnknownVariant(t *testing.T) {
	exec := &fakeExecutor{}
	txs := &fakeTransactions{}
	svc := newService(exec, txs)

	_, err := svc.Create(context.Background(), checkout.Input{
		PageID: 7, Provider: "midtrans", VariantID: "v9",
	})
	app, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeVariantNotFound, app.Code)
	require.Zero(t, exec.calls)
	require.Empty(t, txs.inserted)
}

func TestCreateRecordsTransactionBeforeDispatchFailure(t *testing.T) {
	exec := &fakeExecutor{err: common.NewAppError(common.CodeGatewayCallFailed, "payment gateway call failed", 502, nil)}
	txs := &fakeTransactions{}
	svc := newService(exec, txs)

	_, err := svc.Create(context.Background(), checkout.Input{
		PageID: 7, Provider: "midtrans", VariantID: "v1",
	})
	app, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeGatewayCallFailed, app.Code)

	// The row was inserted pending before the call and flipped to failed after.
	require.Len(t, txs.inserted, 1)
	require.Equal(t, transaction.StatusPending, txs.inserted[0].Status)
	require.Equal(t, transaction.StatusFailed, txs.statuses[txs.inserted[0].OrderID])
}

func TestCreateValidatesInput(t *testing.T) {
	svc := newService(&fakeExecutor{}, &fakeTransactions{})
	_, err := svc.Create(context.Background(), checkout.Input{PageID: 7})
	require.Error(t, err)
	var verr validator.ValidationErrors
	require.ErrorAs(t, err, &verr)
}
