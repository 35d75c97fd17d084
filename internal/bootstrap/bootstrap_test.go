package bootstrap

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/domain"
	"marketplace/internal/infra"
	"marketplace/internal/jobs"
)

func TestNewWithMemoryStore(t *testing.T) {
	cfg := &infra.Config{StoreDriver: infra.StoreDriverMemory, CatalogPath: "../../catalog.yaml"}
	svc, err := New(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer svc.Close()
	assert.Nil(t, svc.Store.Ping)

	ctx := context.Background()
	_, _, err = svc.Accounts.Provision(ctx, "u1", domain.ProvisionHints{})
	require.NoError(t, err)
	_, err = svc.Ledger.Grant(ctx, "u1", 5, "welcome")
	require.NoError(t, err)

	job, err := svc.Jobs.Submit(ctx, jobs.SubmitRequest{AccountID: "u1", AppID: "portrait-studio"})
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusQueued, job.Status)

	balance, err := svc.Ledger.Balance(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestOpenStoreRejectsUnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), &infra.Config{StoreDriver: "mongo"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestNewFailsOnMissingCatalog(t *testing.T) {
	_, err := New(context.Background(), &infra.Config{StoreDriver: infra.StoreDriverMemory, CatalogPath: "missing.yaml"}, zerolog.Nop())
	assert.Error(t, err)
}
