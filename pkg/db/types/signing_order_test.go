package types

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigningOrderRoundTrip(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	order := SigningOrder{
		{SignerID: a, Order: 1},
		{SignerID: b, Order: 2},
	}

	value, err := order.Value()
	require.NoError(t, err)

	var decoded SigningOrder
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, order, decoded)
}

func TestSigningOrderValue_NilBecomesEmptyArray(t *testing.T) {
	var order SigningOrder
	value, err := order.Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", value)
}

func TestSigningOrderScan_NilColumn(t *testing.T) {
	var order SigningOrder
	require.NoError(t, order.Scan(nil))
	assert.Empty(t, order)
}

func TestPositionOf(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	order := SigningOrder{
		{SignerID: b, Order: 2},
		{SignerID: a, Order: 1},
	}

	assert.Equal(t, 1, order.PositionOf(a))
	assert.Equal(t, 2, order.PositionOf(b))
	assert.Equal(t, 0, order.PositionOf(uuid.New()))
	assert.True(t, order.Contains(a))
	assert.False(t, order.Contains(uuid.New()))
}
