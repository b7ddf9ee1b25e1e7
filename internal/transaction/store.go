// Package transaction persists checkout attempts and their gateway outcome.
package transaction

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Statuses follow the gateway vocabulary: a record starts pending and is
// settled or failed by later reconciliation.
const (
	StatusPending    = "pending"
	StatusSettlement = "settlement"
	StatusFailed     = "failed"
)

// Record is one checkout attempt.
type Record struct {
	ID           uuid.UUID       `json:"id"`
	PageID       int64           `json:"page_id"`
	OrderID      string          `json:"order_id"`
	Provider     string          `json:"provider"`
	Amount       int64           `json:"amount"`
	Status       string          `json:"status"`
	CustomerInfo json.RawMessage `json:"customer_info"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Querier defines the transaction queries used by checkout and admin.
type Querier interface {
	Insert(ctx context.Context, rec Record) error
	UpdateStatus(ctx context.Context, orderID, status string) error
	ListRecent(ctx context.Context, limit int) ([]Record, error)
}

// PGStore implements Querier against postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

func (s PGStore) Insert(ctx context.Context, rec Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	info := rec.CustomerInfo
	if len(info) == 0 {
		info = json.RawMessage(`{}`)
	}
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO transactions (id, page_id, order_id, provider, amount, status, customer_info)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.PageID, rec.OrderID, rec.Provider, rec.Amount, rec.Status, []byte(info),
	)
	if err != nil {
		return fmt.Errorf("insert transaction %s: %w", rec.OrderID, err)
	}
	return nil
}

func (s PGStore) UpdateStatus(ctx context.Context, orderID, status string) error {
	_, err := s.Pool.Exec(ctx,
		`UPDATE transactions SET status = $2, updated_at = now() WHERE order_id = $1`,
		orderID, status,
	)
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", orderID, err)
	}
	return nil
}

func (s PGStore) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.Pool.Query(ctx,
		`SELECT id, page_id, order_id, provider, amount, status, customer_info, created_at
		 FROM transactions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Record
	for rows.Next() {
		var (
			rec  Record
			info []byte
		)
		if err := rows.Scan(&rec.ID, &rec.PageID, &rec.OrderID, &rec.Provider, &rec.Amount, &rec.Status, &info, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.CustomerInfo = info
		out = append(out, rec)
	}
	return out, rows.Err()
}
