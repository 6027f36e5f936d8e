package envelopes

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/signflowhq/signflow-backend/pkg/errors"
)

type fakeUserChecker struct {
	existing map[uuid.UUID]struct{}
	err      error
}

func (f *fakeUserChecker) ExistingIDs(_ context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	if f.err != nil {
		return nil, f.err
	}
	var found []uuid.UUID
	for _, id := range ids {
		if _, ok := f.existing[id]; ok {
			found = append(found, id)
		}
	}
	return found, nil
}

func checkerWith(ids ...uuid.UUID) *fakeUserChecker {
	existing := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		existing[id] = struct{}{}
	}
	return &fakeUserChecker{existing: existing}
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func entry(id uuid.UUID, order int) SigningOrderEntryInput {
	return SigningOrderEntryInput{SignerID: strPtr(id.String()), Order: intPtr(order)}
}

func TestValidateSigningOrder_EmptyIsValid(t *testing.T) {
	order, err := ValidateSigningOrder(context.Background(), nil, checkerWith())
	require.NoError(t, err)
	assert.Empty(t, order)
}

func TestValidateSigningOrder_Normalizes(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	order, err := ValidateSigningOrder(context.Background(), []SigningOrderEntryInput{
		entry(b, 2),
		entry(a, 1),
	}, checkerWith(a, b))
	require.NoError(t, err)
	require.Len(t, order, 2)
	assert.Equal(t, 1, order.PositionOf(a))
	assert.Equal(t, 2, order.PositionOf(b))
}

func TestValidateSigningOrder_MissingFields(t *testing.T) {
	a := uuid.New()

	_, err := ValidateSigningOrder(context.Background(), []SigningOrderEntryInput{
		{Order: intPtr(1)},
	}, checkerWith(a))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "signer_id is required")

	_, err = ValidateSigningOrder(context.Background(), []SigningOrderEntryInput{
		{SignerID: strPtr(a.String())},
	}, checkerWith(a))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order is required")
}

func TestValidateSigningOrder_BadSignerID(t *testing.T) {
	_, err := ValidateSigningOrder(context.Background(), []SigningOrderEntryInput{
		{SignerID: strPtr("not-a-uuid"), Order: intPtr(1)},
	}, checkerWith())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid uuid")
}

func TestValidateSigningOrder_NonPositiveOrder(t *testing.T) {
	a := uuid.New()
	_, err := ValidateSigningOrder(context.Background(), []SigningOrderEntryInput{
		entry(a, 0),
	}, checkerWith(a))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "positive integer")
}

func TestValidateSigningOrder_DuplicateSignerReportedFirst(t *testing.T) {
	a := uuid.New()
	// Same signer twice and a gap at the same time: the duplicate-signer cause
	// must win.
	_, err := ValidateSigningOrder(context.Background(), []SigningOrderEntryInput{
		entry(a, 1),
		entry(a, 3),
	}, checkerWith(a))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate signer")
}

func TestValidateSigningOrder_DuplicateOrder(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	_, err := ValidateSigningOrder(context.Background(), []SigningOrderEntryInput{
		entry(a, 1),
		entry(b, 1),
	}, checkerWith(a, b))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate order")
}

func TestValidateSigningOrder_GapRejected(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	_, err := ValidateSigningOrder(context.Background(), []SigningOrderEntryInput{
		entry(a, 1),
		entry(b, 3),
	}, checkerWith(a, b))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must start from 1 and have no gaps")
}

func TestValidateSigningOrder_MustStartAtOne(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	_, err := ValidateSigningOrder(context.Background(), []SigningOrderEntryInput{
		entry(a, 2),
		entry(b, 3),
	}, checkerWith(a, b))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must start from 1 and have no gaps")
}

func TestValidateSigningOrder_UnknownSignersReportedTogether(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	_, err := ValidateSigningOrder(context.Background(), []SigningOrderEntryInput{
		entry(a, 1),
		entry(b, 2),
		entry(c, 3),
	}, checkerWith(a))
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Contains(t, err.Error(), b.String())
	assert.Contains(t, err.Error(), c.String())
}
