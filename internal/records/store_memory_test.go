package records

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "amlcase/pkg/domain"
	dErrors "amlcase/pkg/domain-errors"
)

func TestInMemoryStore_LatestTransactionForCustomer(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	customerID := id.NewCustomerID()
	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	older := Transaction{ID: id.NewTransactionID(), CustomerID: customerID, Amount: 100, OccurredAt: base}
	newer := Transaction{ID: id.NewTransactionID(), CustomerID: customerID, Amount: 200, OccurredAt: base.AddDate(0, 1, 0)}
	other := Transaction{ID: id.NewTransactionID(), CustomerID: id.NewCustomerID(), Amount: 999, OccurredAt: base.AddDate(0, 2, 0)}

	require.NoError(t, store.SaveTransaction(ctx, older))
	require.NoError(t, store.SaveTransaction(ctx, newer))
	require.NoError(t, store.SaveTransaction(ctx, other))

	latest, err := store.LatestTransactionForCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)
}

func TestInMemoryStore_LatestTransaction_NoneIsNotFound(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.LatestTransactionForCustomer(context.Background(), id.NewCustomerID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestInMemoryStore_HasTrainingSince(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	cutoff := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	recent, err := store.HasTrainingSince(ctx, cutoff)
	require.NoError(t, err)
	assert.False(t, recent, "empty store has no recent training")

	require.NoError(t, store.SaveTraining(ctx, TrainingRecord{
		StaffName:   "old",
		CompletedAt: cutoff.AddDate(0, 0, -1),
	}))
	recent, err = store.HasTrainingSince(ctx, cutoff)
	require.NoError(t, err)
	assert.False(t, recent)

	// Completion exactly at the cutoff counts.
	require.NoError(t, store.SaveTraining(ctx, TrainingRecord{
		StaffName:   "boundary",
		CompletedAt: cutoff,
	}))
	recent, err = store.HasTrainingSince(ctx, cutoff)
	require.NoError(t, err)
	assert.True(t, recent)
}

func TestInMemoryStore_GetCustomer_NotFound(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.GetCustomer(context.Background(), id.NewCustomerID())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
