package repository

import (
	"context"
	"testing"
	"time"

	"github.com/gnfinvest/gnf/internal/domain"
	"github.com/gnfinvest/gnf/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialRepo_SaveAndGet(t *testing.T) {
	repo := NewSQLiteCredentialRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	saved := StoredCredential{
		Credential: domain.Credential{Token: "tok-1", Role: domain.RoleInvestor},
		Username:   "alice",
		SavedAt:    testutil.Epoch,
	}
	require.NoError(t, repo.Save(ctx, saved))

	got, err := repo.Get(ctx, domain.RoleInvestor)
	require.NoError(t, err)
	assert.Equal(t, saved.Credential, got.Credential)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, testutil.Epoch.Equal(got.SavedAt))
}

func TestCredentialRepo_RolesAreSeparate(t *testing.T) {
	repo := NewSQLiteCredentialRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, StoredCredential{
		Credential: domain.Credential{Token: "inv", Role: domain.RoleInvestor}, SavedAt: testutil.Epoch,
	}))
	require.NoError(t, repo.Save(ctx, StoredCredential{
		Credential: domain.Credential{Token: "adm", Role: domain.RoleAdmin}, SavedAt: testutil.Epoch,
	}))

	inv, err := repo.Get(ctx, domain.RoleInvestor)
	require.NoError(t, err)
	adm, err := repo.Get(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "inv", inv.Credential.Token)
	assert.Equal(t, "adm", adm.Credential.Token)
}

func TestCredentialRepo_SaveReplaces(t *testing.T) {
	repo := NewSQLiteCredentialRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, StoredCredential{
		Credential: domain.Credential{Token: "old", Role: domain.RoleAdmin}, Username: "root", SavedAt: testutil.Epoch,
	}))
	require.NoError(t, repo.Save(ctx, StoredCredential{
		Credential: domain.Credential{Token: "new", Role: domain.RoleAdmin}, Username: "ops", SavedAt: testutil.Epoch.Add(time.Hour),
	}))

	got, err := repo.Get(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Credential.Token)
	assert.Equal(t, "ops", got.Username)
}

func TestCredentialRepo_SaveEmptyToken(t *testing.T) {
	repo := NewSQLiteCredentialRepo(testutil.NewTestDB(t))

	err := repo.Save(context.Background(), StoredCredential{Credential: domain.Credential{Role: domain.RoleInvestor}})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestCredentialRepo_Delete(t *testing.T) {
	repo := NewSQLiteCredentialRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, StoredCredential{
		Credential: domain.Credential{Token: "inv", Role: domain.RoleInvestor}, SavedAt: testutil.Epoch,
	}))
	require.NoError(t, repo.Delete(ctx, domain.RoleInvestor))
	require.NoError(t, repo.Delete(ctx, domain.RoleInvestor), "deleting twice is fine")

	_, err := repo.Get(ctx, domain.RoleInvestor)
	assert.ErrorIs(t, err, ErrNotFound)
}
