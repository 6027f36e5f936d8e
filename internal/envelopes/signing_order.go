package envelopes

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	dbtypes "github.com/signflowhq/signflow-backend/pkg/db/types"
	pkgerrors "github.com/signflowhq/signflow-backend/pkg/errors"
)

// SigningOrderEntryInput is the untyped boundary shape of one signing-order
// entry. Pointer fields distinguish "missing" from zero values.
type SigningOrderEntryInput struct {
	SignerID *string `json:"signer_id"`
	Order    *int    `json:"order"`
}

// UserChecker resolves which of the referenced signer ids exist, in one batch.
type UserChecker interface {
	ExistingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error)
}

// ValidateSigningOrder checks structure, uniqueness, contiguity and referential
// integrity of a signing order and returns the normalized value. Empty input is
// valid and short-circuits all further checks. Pure validation: no side effects.
func ValidateSigningOrder(ctx context.Context, entries []SigningOrderEntryInput, checker UserChecker) (dbtypes.SigningOrder, error) {
	if len(entries) == 0 {
		return dbtypes.SigningOrder{}, nil
	}

	normalized := make(dbtypes.SigningOrder, 0, len(entries))
	for i, entry := range entries {
		if entry.SignerID == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("signing order entry %d: signer_id is required", i))
		}
		if entry.Order == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("signing order entry %d: order is required", i))
		}
		signerID, err := uuid.Parse(strings.TrimSpace(*entry.SignerID))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("signing order entry %d: signer_id is not a valid uuid", i))
		}
		if *entry.Order < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("signing order entry %d: order must be a positive integer", i))
		}
		normalized = append(normalized, dbtypes.SignerEntry{SignerID: signerID, Order: *entry.Order})
	}

	// Duplicate signer is reported before duplicate order, and both before the
	// contiguity check, so callers get the most specific cause.
	seenSigners := make(map[uuid.UUID]struct{}, len(normalized))
	for _, entry := range normalized {
		if _, ok := seenSigners[entry.SignerID]; ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate signer %s in signing order", entry.SignerID))
		}
		seenSigners[entry.SignerID] = struct{}{}
	}

	seenOrders := make(map[int]struct{}, len(normalized))
	for _, entry := range normalized {
		if _, ok := seenOrders[entry.Order]; ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("duplicate order %d in signing order", entry.Order))
		}
		seenOrders[entry.Order] = struct{}{}
	}

	orders := make([]int, 0, len(normalized))
	for _, entry := range normalized {
		orders = append(orders, entry.Order)
	}
	sort.Ints(orders)
	for i, order := range orders {
		if order != i+1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "signing order must start from 1 and have no gaps")
		}
	}

	ids := normalized.SignerIDs()
	existing, err := checker.ExistingIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve signers")
	}
	found := make(map[uuid.UUID]struct{}, len(existing))
	for _, id := range existing {
		found[id] = struct{}{}
	}
	var missing []string
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown signers: %s", strings.Join(missing, ", "))).
			WithDetails(map[string]any{"unknown_signer_ids": missing})
	}

	return normalized, nil
}
