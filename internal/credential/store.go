// Package credential maps a payment provider slug to its decrypted
// credential object, keeping the ciphertext handling behind one door.
package credential

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/landing-api/internal/common"
	"github.com/noah-isme/landing-api/internal/secret"
)

// Row mirrors one credentials table record. Both payload columns are hex.
type Row struct {
	ProviderSlug  string
	EncryptedData string
	IV            string
}

// Querier defines the queries the store needs. pgx.ErrNoRows signals absence.
type Querier interface {
	GetCredential(ctx context.Context, providerSlug string) (Row, error)
	UpsertCredential(ctx context.Context, row Row) error
}

// PGQuerier implements Querier against postgres.
type PGQuerier struct {
	Pool *pgxpool.Pool
}

func (q PGQuerier) GetCredential(ctx context.Context, providerSlug string) (Row, error) {
	var row Row
	err := q.Pool.QueryRow(ctx,
		`SELECT provider_slug, encrypted_data, iv FROM credentials WHERE provider_slug = $1`,
		providerSlug,
	).Scan(&row.ProviderSlug, &row.EncryptedData, &row.IV)
	return row, err
}

func (q PGQuerier) UpsertCredential(ctx context.Context, row Row) error {
	_, err := q.Pool.Exec(ctx,
		`INSERT INTO credentials (provider_slug, encrypted_data, iv)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (provider_slug)
		 DO UPDATE SET encrypted_data = EXCLUDED.encrypted_data, iv = EXCLUDED.iv, updated_at = now()`,
		row.ProviderSlug, row.EncryptedData, row.IV,
	)
	return err
}

// Store resolves provider credentials, decrypting on demand.
type Store struct {
	Q            Querier
	MasterSecret string
}

// NotConfiguredError builds the typed failure for an absent credential record.
func NotConfiguredError(providerSlug string) *common.AppError {
	return common.NewAppError(
		common.CodeCredentialsNotConfigured,
		fmt.Sprintf("credentials for provider '%s' are not configured", providerSlug),
		http.StatusUnprocessableEntity,
		nil,
	)
}

// CorruptError builds the typed failure for a record that no longer decrypts.
func CorruptError(providerSlug string) *common.AppError {
	return common.NewAppError(
		common.CodeCredentialsCorrupt,
		fmt.Sprintf("credentials for provider '%s' could not be decrypted; re-save them in settings", providerSlug),
		http.StatusUnprocessableEntity,
		nil,
	)
}

// Get returns the decrypted credential object for the provider.
func (s Store) Get(ctx context.Context, providerSlug string) (map[string]any, error) {
	row, err := s.Q.GetCredential(ctx, providerSlug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, NotConfiguredError(providerSlug)
	}
	if err != nil {
		return nil, fmt.Errorf("load credentials for %s: %w", providerSlug, err)
	}
	creds := secret.DecryptJSON(row.EncryptedData, row.IV, s.MasterSecret)
	if creds == nil {
		return nil, CorruptError(providerSlug)
	}
	return creds, nil
}

// Save encrypts the plain credential object and upserts the provider record.
// Repeated saves of identical input store a fresh nonce each time.
func (s Store) Save(ctx context.Context, providerSlug string, data map[string]any) error {
	cipherHex, ivHex, err := secret.EncryptJSON(data, s.MasterSecret)
	if err != nil {
		return fmt.Errorf("encrypt credentials for %s: %w", providerSlug, err)
	}
	if err := s.Q.UpsertCredential(ctx, Row{
		ProviderSlug:  providerSlug,
		EncryptedData: cipherHex,
		IV:            ivHex,
	}); err != nil {
		return fmt.Errorf("store credentials for %s: %w", providerSlug, err)
	}
	return nil
}
