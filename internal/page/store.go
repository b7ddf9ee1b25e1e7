// Package page stores landing pages and their product configuration blobs.
package page

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/landing-api/internal/common"
	"github.com/noah-isme/landing-api/internal/pricing"
)

// Page is a stored landing page. ProductConfig holds the raw configuration
// blob; use Config to decode the pricing-relevant part.
type Page struct {
	ID            int64           `json:"id"`
	Slug          string          `json:"slug"`
	Title         string          `json:"title"`
	HTML          string          `json:"html"`
	CSS           string          `json:"css"`
	ProductType   string          `json:"product_type"`
	ProductConfig json.RawMessage `json:"product_config"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ListItem carries the light columns shown in the admin page list.
type ListItem struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	ProductType string    `json:"product_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// Config decodes the product configuration of the page.
func (p Page) Config() (pricing.ProductConfig, error) {
	var cfg pricing.ProductConfig
	if len(p.ProductConfig) == 0 {
		return cfg, nil
	}
	if err := json.Unmarshal(p.ProductConfig, &cfg); err != nil {
		return cfg, fmt.Errorf("decode product config for page %d: %w", p.ID, err)
	}
	return cfg, nil
}

// NotFoundError builds the typed failure for a missing page.
func NotFoundError(ref string) *common.AppError {
	return common.NewAppError(
		common.CodePageNotFound,
		fmt.Sprintf("page '%s' not found", ref),
		http.StatusNotFound,
		nil,
	)
}

// Store is the postgres-backed page repository with a read-through config
// cache in front of the checkout-path lookups.
type Store struct {
	Pool  *pgxpool.Pool
	Cache *Cache
}

// Upsert inserts or replaces a page by slug and invalidates its cached config.
func (s Store) Upsert(ctx context.Context, p Page) (int64, error) {
	if p.ProductType == "" {
		p.ProductType = "physical"
	}
	cfg := p.ProductConfig
	if len(cfg) == 0 {
		cfg = json.RawMessage(`{}`)
	}
	var id int64
	err := s.Pool.QueryRow(ctx,
		`INSERT INTO pages (slug, title, html_content, css_content, product_config_json, product_type)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (slug)
		 DO UPDATE SET title = EXCLUDED.title, html_content = EXCLUDED.html_content,
		               css_content = EXCLUDED.css_content, product_config_json = EXCLUDED.product_config_json,
		               product_type = EXCLUDED.product_type, updated_at = now()
		 RETURNING id`,
		p.Slug, p.Title, p.HTML, p.CSS, []byte(cfg), p.ProductType,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert page %s: %w", p.Slug, err)
	}
	s.Cache.InvalidateConfig(ctx, id)
	return id, nil
}

// List returns all pages, newest first, with the light columns only.
func (s Store) List(ctx context.Context) ([]ListItem, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id, slug, title, product_type, created_at FROM pages ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ListItem
	for rows.Next() {
		var item ListItem
		if err := rows.Scan(&item.ID, &item.Slug, &item.Title, &item.ProductType, &item.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// GetBySlug loads the full page row for the admin editor.
func (s Store) GetBySlug(ctx context.Context, slug string) (Page, error) {
	var (
		p   Page
		cfg []byte
	)
	err := s.Pool.QueryRow(ctx,
		`SELECT id, slug, title, html_content, css_content, product_config_json, product_type, created_at
		 FROM pages WHERE slug = $1`,
		slug,
	).Scan(&p.ID, &p.Slug, &p.Title, &p.HTML, &p.CSS, &cfg, &p.ProductType, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Page{}, NotFoundError(slug)
	}
	if err != nil {
		return Page{}, fmt.Errorf("load page %s: %w", slug, err)
	}
	p.ProductConfig = cfg
	return p, nil
}

// GetConfig returns the decoded product configuration for a page id. The
// checkout path calls this on every attempt, so hits are served from redis.
func (s Store) GetConfig(ctx context.Context, pageID int64) (pricing.ProductConfig, error) {
	if cfg, ok := s.Cache.GetConfig(ctx, pageID); ok {
		return cfg, nil
	}
	var raw []byte
	err := s.Pool.QueryRow(ctx,
		`SELECT product_config_json FROM pages WHERE id = $1`, pageID,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return pricing.ProductConfig{}, NotFoundError(fmt.Sprintf("%d", pageID))
	}
	if err != nil {
		return pricing.ProductConfig{}, fmt.Errorf("load config for page %d: %w", pageID, err)
	}
	cfg, err := Page{ID: pageID, ProductConfig: raw}.Config()
	if err != nil {
		return pricing.ProductConfig{}, err
	}
	s.Cache.SetConfig(ctx, pageID, cfg)
	return cfg, nil
}
