package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r1vault/r1vault/store"
)

func TestOpenInMemoryDB(t *testing.T) {
	database, err := OpenInMemoryDB(true)
	require.NoError(t, err)
	defer database.Close()

	record := store.VaultTransaction{
		TxHash: "5Kd7zCoyH4C4W6cVLEhLZazz2AfDbRgvKqjcxevCGhs1",
		Kind:   store.KindDeposit,
		Vault:  "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
		Payer:  "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T",
		Amount: 250_000,
		Status: store.StatusSubmitted,
	}
	require.NoError(t, database.Client().Create(&record).Error)

	var loaded store.VaultTransaction
	require.NoError(t, database.Client().Where("tx_hash = ?", record.TxHash).First(&loaded).Error)
	assert.Equal(t, record.Kind, loaded.Kind)
	assert.Equal(t, record.Amount, loaded.Amount)

	// The transaction signature is the natural key.
	dup := record
	dup.ID = 0
	require.Error(t, database.Client().Create(&dup).Error)
}

func TestOpenFileDB(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	database, err := OpenFileDB(dir, "vault_data.db", true)
	require.NoError(t, err)

	withdrawal := store.VaultTransaction{
		TxHash: "2x3JcQvKqjcxevCGhs15Kd7zCoyH4C4W6cVLEhLZazz2",
		Kind:   store.KindWithdraw,
		Vault:  "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin",
		Expiry: 1_700_000_120,
		Status: store.StatusSubmitted,
	}
	require.NoError(t, database.Client().Create(&withdrawal).Error)
	require.NoError(t, database.Close())

	// Rows survive a reopen.
	reopened, err := OpenFileDB(dir, "vault_data.db", false)
	require.NoError(t, err)
	defer reopened.Close()

	var count int64
	require.NoError(t, reopened.Client().Model(&store.VaultTransaction{}).
		Where("kind = ?", store.KindWithdraw).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestOpenFileDBRejectsEmptyFilename(t *testing.T) {
	_, err := OpenFileDB(t.TempDir(), "", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database filename is empty")
}
