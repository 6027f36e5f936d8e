package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataFor_KnownCodes(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, MetadataFor(CodeValidation).HTTPStatus)
	assert.Equal(t, http.StatusForbidden, MetadataFor(CodeForbidden).HTTPStatus)
	assert.Equal(t, http.StatusNotFound, MetadataFor(CodeNotFound).HTTPStatus)
	assert.Equal(t, http.StatusUnprocessableEntity, MetadataFor(CodeStateConflict).HTTPStatus)
}

func TestMetadataFor_UnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("NO_SUCH_CODE"))
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := fmt.Errorf("low level failure")
	err := Wrap(CodeDependency, cause, "load envelope")

	require.NotNil(t, err)
	assert.Equal(t, CodeDependency, err.Code())
	assert.ErrorIs(t, err, cause)
}

func TestAs_UnwrapsNestedTypedError(t *testing.T) {
	inner := New(CodeStateConflict, "envelope already sent")
	wrapped := fmt.Errorf("handling request: %w", inner)

	typed := As(wrapped)
	require.NotNil(t, typed)
	assert.Equal(t, CodeStateConflict, typed.Code())
	assert.Equal(t, "envelope already sent", typed.Message())
}

func TestAs_ReturnsNilForUntypedError(t *testing.T) {
	assert.Nil(t, As(fmt.Errorf("plain error")))
	assert.Nil(t, As(nil))
}

func TestDump_IncludesChain(t *testing.T) {
	inner := New(CodeNotFound, "envelope not found")
	wrapped := fmt.Errorf("resolving target: %w", inner)

	dump := Dump(wrapped)
	assert.Equal(t, CodeNotFound, dump.Code)
	assert.Len(t, dump.Chain, 2)
}
