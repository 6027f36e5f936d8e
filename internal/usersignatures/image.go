package usersignatures

import (
	"encoding/base64"
	"net/http"
	"strings"

	pkgerrors "github.com/signflowhq/signflow-backend/pkg/errors"
)

var allowedContentTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/gif":  {},
	"image/webp": {},
}

// DecodeImagePayload accepts a raw base64 string or a data URL
// ("data:image/png;base64,....") and returns the decoded bytes plus the
// sniffed content type. The declared data-URL media type is ignored in favor
// of content sniffing.
func DecodeImagePayload(payload string) ([]byte, string, error) {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "image payload required")
	}

	if strings.HasPrefix(trimmed, "data:") {
		comma := strings.Index(trimmed, ",")
		if comma < 0 || !strings.Contains(trimmed[:comma], ";base64") {
			return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "malformed data url")
		}
		trimmed = trimmed[comma+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "image payload is not valid base64")
	}
	if len(raw) == 0 {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "image payload is empty")
	}

	contentType := http.DetectContentType(raw)
	return raw, contentType, nil
}

// ValidateRasterImage decodes the payload and enforces the size cap and the
// allowed raster formats.
func ValidateRasterImage(payload string, maxBytes int) ([]byte, string, error) {
	raw, contentType, err := DecodeImagePayload(payload)
	if err != nil {
		return nil, "", err
	}
	if maxBytes > 0 && len(raw) > maxBytes {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "image exceeds maximum allowed size")
	}
	if _, ok := allowedContentTypes[contentType]; !ok {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "unsupported image format")
	}
	return raw, contentType, nil
}
