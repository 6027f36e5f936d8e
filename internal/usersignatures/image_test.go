package usersignatures

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/signflowhq/signflow-backend/pkg/errors"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func pngPayload() string {
	return base64.StdEncoding.EncodeToString(pngHeader)
}

func TestDecodeImagePayloadAcceptsRawBase64(t *testing.T) {
	raw, contentType, err := DecodeImagePayload(pngPayload())
	require.NoError(t, err)
	assert.Equal(t, pngHeader, raw)
	assert.Equal(t, "image/png", contentType)
}

func TestDecodeImagePayloadAcceptsDataURL(t *testing.T) {
	raw, contentType, err := DecodeImagePayload("data:image/png;base64," + pngPayload())
	require.NoError(t, err)
	assert.Equal(t, pngHeader, raw)
	assert.Equal(t, "image/png", contentType)
}

func TestDecodeImagePayloadRejectsMalformedInput(t *testing.T) {
	cases := map[string]string{
		"empty":            "",
		"whitespace":       "   ",
		"bad data url":     "data:image/png,no-base64-marker",
		"not base64":       "!!not-base64!!",
		"empty after trim": "data:image/png;base64,",
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := DecodeImagePayload(payload)
			require.Error(t, err)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestValidateRasterImageEnforcesSizeCap(t *testing.T) {
	_, _, err := ValidateRasterImage(pngPayload(), 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum allowed size")

	raw, contentType, err := ValidateRasterImage(pngPayload(), len(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, raw)
	assert.Equal(t, "image/png", contentType)
}

func TestValidateRasterImageRejectsNonRasterContent(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("just some text"))
	_, _, err := ValidateRasterImage(payload, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported image format")
}
