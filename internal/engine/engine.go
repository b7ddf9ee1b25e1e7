// Package engine executes payment-provider API calls from stored request
// templates. It is data-driven: adding a provider means inserting a template
// row and saving credentials, not writing code. The only provider-aware part
// is the response shaping in shape.go.
package engine

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/landing-api/internal/common"
	"github.com/noah-isme/landing-api/internal/hydrate"
	"github.com/noah-isme/landing-api/internal/obs"
)

// Doer abstracts the outbound HTTP client so tests can count and intercept
// dispatches. Exactly one Do call happens per Execute; retry policy, if any,
// belongs to the caller.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// CredentialSource resolves a provider slug to its decrypted credential set.
type CredentialSource interface {
	Get(ctx context.Context, providerSlug string) (map[string]any, error)
}

// Engine is the generic payment execution entry point.
type Engine struct {
	Templates   TemplateSource
	Credentials CredentialSource
	Client      Doer
	Logger      zerolog.Logger

	// now and randInt are seams for deterministic order ids in tests.
	Now     func() time.Time
	RandInt func(n int) int
}

// NewOrderID produces a gateway-visible order identifier. Millisecond clock
// plus a three digit suffix matches the ids already present in merchants'
// gateway dashboards; collisions under burst load are tolerated upstream.
func NewOrderID(now time.Time, randInt func(n int) int) string {
	return fmt.Sprintf("TRX-%d-%03d", now.UnixMilli(), randInt(1000))
}

func gatewayError(err error) *common.AppError {
	return common.NewAppError(
		common.CodeGatewayCallFailed,
		"payment gateway call failed",
		http.StatusBadGateway,
		err,
	)
}

// Execute performs one provider API call for the given amount and returns the
// normalised result. Template and credential failures abort before any
// network I/O; a network or parse failure after dispatch maps to
// GATEWAY_CALL_FAILED. There is no retry.
func (e *Engine) Execute(ctx context.Context, providerSlug string, amount int64) (res Result, retErr error) {
	ctx, span := otel.Tracer("engine.Engine").Start(ctx, "Engine.Execute")
	defer func() {
		if retErr != nil {
			span.RecordError(retErr)
			span.SetStatus(codes.Error, retErr.Error())
		}
		span.End()
	}()
	span.SetAttributes(
		attribute.String("payment.provider", providerSlug),
		attribute.Int64("payment.amount", amount),
	)

	result := "error"
	defer func() {
		if obs.PaymentExecuteTotal != nil {
			obs.PaymentExecuteTotal.WithLabelValues(providerSlug, result).Inc()
		}
	}()

	tpl, err := e.Templates.Get(ctx, providerSlug)
	if err != nil {
		return Result{}, err
	}

	creds, err := e.Credentials.Get(ctx, providerSlug)
	if err != nil {
		return Result{}, err
	}

	vars := e.assembleContext(creds, amount)
	orderID, _ := vars["order_id"].(string)

	headers := hydrate.RenderHeaders(tpl.Headers, vars)
	body := hydrate.Render(tpl.Body, vars)

	req, err := http.NewRequestWithContext(ctx, tpl.Method, tpl.Endpoint, strings.NewReader(body))
	if err != nil {
		return Result{}, gatewayError(fmt.Errorf("build request for %s: %w", providerSlug, err))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	e.Logger.Info().
		Str("provider", providerSlug).
		Str("order_id", orderID).
		Str("endpoint", tpl.Endpoint).
		Int64("amount", amount).
		Msg("dispatching payment request")

	dispatchStart := time.Now()
	resp, err := e.Client.Do(req)
	if obs.PaymentGatewayDuration != nil {
		obs.PaymentGatewayDuration.WithLabelValues(providerSlug).Observe(obs.DurationMillis(time.Since(dispatchStart)))
	}
	if err != nil {
		return Result{}, gatewayError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, gatewayError(fmt.Errorf("read gateway response: %w", err))
	}

	// The gateway's own error payload flows through on non-2xx statuses; only
	// a body that is not JSON at all is treated as a failed call.
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Result{}, gatewayError(fmt.Errorf("gateway returned non-JSON response (status %d)", resp.StatusCode))
	}

	result = "ok"
	span.SetAttributes(attribute.Int("payment.gateway_status", resp.StatusCode))

	return normalize(providerSlug, payload), nil
}

// assembleContext builds the hydration variables for one attempt: a fresh
// order id, the amount, every decrypted credential field by name, and derived
// fields for templates that reference them.
func (e *Engine) assembleContext(creds map[string]any, amount int64) hydrate.Vars {
	vars := hydrate.Vars{}
	for k, v := range creds {
		vars[k] = v
	}
	vars["order_id"] = NewOrderID(e.now(), e.randInt)
	vars["amount"] = amount

	// Basic-auth style token with empty password, for signature-in-header
	// integrations that authenticate with a server key.
	if serverKey, ok := creds["server_key"].(string); ok && serverKey != "" {
		vars["auth_token"] = base64.StdEncoding.EncodeToString([]byte(serverKey + ":"))
	} else {
		vars["auth_token"] = ""
	}
	return vars
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) randInt(n int) int {
	if e.RandInt != nil {
		return e.RandInt(n)
	}
	return rand.IntN(n)
}
