package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/landing-api/internal/common"
)

// Template is the stored recipe for one provider's API call. Headers and body
// may contain {{name}} placeholders resolved at execution time.
type Template struct {
	Slug     string            `json:"slug"`
	Endpoint string            `json:"api_endpoint"`
	Method   string            `json:"method"`
	Headers  map[string]string `json:"headers"`
	Body     string            `json:"body"`
}

// TemplateSource resolves a provider slug to its stored template.
type TemplateSource interface {
	Get(ctx context.Context, slug string) (Template, error)
}

// NotFoundError builds the typed failure for a missing template.
func NotFoundError(slug string) *common.AppError {
	return common.NewAppError(
		common.CodeTemplateNotFound,
		fmt.Sprintf("payment template '%s' not found", slug),
		http.StatusUnprocessableEntity,
		nil,
	)
}

// TemplateStore is the postgres-backed TemplateSource.
type TemplateStore struct {
	Pool *pgxpool.Pool
}

// Get loads a template by provider slug and decodes its header map.
func (s TemplateStore) Get(ctx context.Context, slug string) (Template, error) {
	var (
		tpl        Template
		headersRaw []byte
	)
	err := s.Pool.QueryRow(ctx,
		`SELECT slug, api_endpoint, method, headers_json, body_json FROM payment_templates WHERE slug = $1`,
		slug,
	).Scan(&tpl.Slug, &tpl.Endpoint, &tpl.Method, &headersRaw, &tpl.Body)
	if errors.Is(err, pgx.ErrNoRows) {
		return Template{}, NotFoundError(slug)
	}
	if err != nil {
		return Template{}, fmt.Errorf("load payment template %s: %w", slug, err)
	}
	if len(headersRaw) > 0 {
		if err := json.Unmarshal(headersRaw, &tpl.Headers); err != nil {
			return Template{}, fmt.Errorf("decode headers for template %s: %w", slug, err)
		}
	}
	return tpl, nil
}

// Upsert inserts or replaces the template for a provider slug.
func (s TemplateStore) Upsert(ctx context.Context, tpl Template) error {
	headersRaw, err := json.Marshal(tpl.Headers)
	if err != nil {
		return fmt.Errorf("encode headers for template %s: %w", tpl.Slug, err)
	}
	_, err = s.Pool.Exec(ctx,
		`INSERT INTO payment_templates (slug, api_endpoint, method, headers_json, body_json)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (slug)
		 DO UPDATE SET api_endpoint = EXCLUDED.api_endpoint, method = EXCLUDED.method,
		               headers_json = EXCLUDED.headers_json, body_json = EXCLUDED.body_json,
		               updated_at = now()`,
		tpl.Slug, tpl.Endpoint, tpl.Method, headersRaw, tpl.Body,
	)
	return err
}

// List returns all configured templates ordered by slug.
func (s TemplateStore) List(ctx context.Context) ([]Template, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT slug, api_endpoint, method, headers_json, body_json FROM payment_templates ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Template
	for rows.Next() {
		var (
			tpl        Template
			headersRaw []byte
		)
		if err := rows.Scan(&tpl.Slug, &tpl.Endpoint, &tpl.Method, &headersRaw, &tpl.Body); err != nil {
			return nil, err
		}
		if len(headersRaw) > 0 {
			if err := json.Unmarshal(headersRaw, &tpl.Headers); err != nil {
				return nil, fmt.Errorf("decode headers for template %s: %w", tpl.Slug, err)
			}
		}
		out = append(out, tpl)
	}
	return out, rows.Err()
}
