package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gratitude5dee/tendril/pkg/domain"
	"github.com/gratitude5dee/tendril/pkg/ports"
)

// RunCredentialStoreContract runs a suite of tests verifying that a
// CredentialStore implementation adheres to the interface contract. Every
// store adapter runs this against a fresh, empty store.
func RunCredentialStoreContract(t *testing.T, store ports.CredentialStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("Get on empty slot", func(t *testing.T) {
		_, err := store.Get(ctx)
		assert.ErrorIs(t, err, domain.ErrCredentialNotFound)
	})

	t.Run("Set and Get", func(t *testing.T) {
		err := store.Set(ctx, "key-1234")
		require.NoError(t, err, "Set should not return error")

		got, err := store.Get(ctx)
		require.NoError(t, err, "Get after Set should not return error")
		assert.Equal(t, domain.Credential("key-1234"), got)
	})

	t.Run("Set overwrites", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "key-old"))
		require.NoError(t, store.Set(ctx, "key-new"))

		got, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.Credential("key-new"), got)
	})

	t.Run("Clear empties the slot", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "key-to-clear"))
		require.NoError(t, store.Clear(ctx))

		_, err := store.Get(ctx)
		assert.ErrorIs(t, err, domain.ErrCredentialNotFound, "Get after Clear should report an empty slot")
	})

	t.Run("Clear is idempotent", func(t *testing.T) {
		require.NoError(t, store.Clear(ctx))
		require.NoError(t, store.Clear(ctx), "clearing an already empty slot should not fail")
	})
}
