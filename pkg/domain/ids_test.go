package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "amlcase/pkg/domain-errors"
)

// TestParseID_Invariants validates the parsing invariant: IDs must be valid,
// non-empty, non-nil UUIDs. These are trust-boundary checks at API entry
// points, so every rejection path is pinned.
func TestParseID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseCustomerID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseCustomerID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseCustomerID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseCustomerID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, CustomerID(valid), id)
	})

	t.Run("entity and transaction parsers share the rules", func(t *testing.T) {
		_, err := ParseEntityID("")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		_, err = ParseTransactionID(uuid.Nil.String())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

// TestTypeDistinction documents that typed IDs prevent cross-type assignment
// at compile time. If these types were aliases the commented lines would
// compile and the invariant would be broken.
func TestTypeDistinction(t *testing.T) {
	customerID := CustomerID(uuid.New())
	entityID := EntityID(uuid.New())

	// var _ CustomerID = entityID // compile error
	// var _ EntityID = customerID // compile error

	assert.NotEqual(t, uuid.UUID(customerID), uuid.UUID(entityID))
}
