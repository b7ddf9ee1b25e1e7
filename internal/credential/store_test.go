package credential_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/landing-api/internal/common"
	"github.com/noah-isme/landing-api/internal/credential"
	"github.com/noah-isme/landing-api/internal/secret"
)

type fakeQuerier struct {
	rows map[string]credential.Row
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{rows: map[string]credential.Row{}}
}

func (f *fakeQuerier) GetCredential(_ context.Context, slug string) (credential.Row, error) {
	row, ok := f.rows[slug]
	if !ok {
		return credential.Row{}, pgx.ErrNoRows
	}
	return row, nil
}

func (f *fakeQuerier) UpsertCredential(_ context.Context, row credential.Row) error {
	f.rows[row.ProviderSlug] = row
	return nil
}

func TestSaveGetRoundTrip(t *testing.T) {
	store := credential.Store{Q: newFakeQuerier(), MasterSecret: "master"}
	in := map[string]any{"server_key": "abc", "client_key": "xyz"}
	require.NoError(t, store.Save(context.Background(), "midtrans", in))

	out, err := store.Get(context.Background(), "midtrans")
	require.NoError(t, err)
	require.Equal(t, "abc", out["server_key"])
	require.Equal(t, "xyz", out["client_key"])
}

func TestSaveIsIdempotentButRotatesNonce(t *testing.T) {
	q := newFakeQuerier()
	store := credential.Store{Q: q, MasterSecret: "master"}
	in := map[string]any{"api_key": "k"}

	require.NoError(t, store.Save(context.Background(), "p", in))
	first := q.rows["p"]
	require.NoError(t, store.Save(context.Background(), "p", in))
	second := q.rows["p"]

	require.NotEqual(t, first.IV, second.IV)
	out, err := store.Get(context.Background(), "p")
	require.NoError(t, err)
	require.Equal(t, "k", out["api_key"])
}

func TestGetNotConfigured(t *testing.T) {
	store := credential.Store{Q: newFakeQuerier(), MasterSecret: "master"}
	_, err := store.Get(context.Background(), "ghost")
	app, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeCredentialsNotConfigured, app.Code)
	require.Contains(t, app.Message, "ghost")
}

func TestGetCorrupt(t *testing.T) {
	q := newFakeQuerier()
	cipherHex, ivHex, err := secret.EncryptJSON(map[string]any{"k": "v"}, "other-master")
	require.NoError(t, err)
	q.rows["p"] = credential.Row{ProviderSlug: "p", EncryptedData: cipherHex, IV: ivHex}

	store := credential.Store{Q: q, MasterSecret: "master"}
	_, err = store.Get(context.Background(), "p")
	app, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeCredentialsCorrupt, app.Code)
}
