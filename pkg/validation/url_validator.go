package validation

import (
	"net/url"
	"path"
	"strings"

	apperrors "go-ecg-digitizer/internal/errors"
)

// URLValidator checks remote ECG image locations before they are fetched
type URLValidator struct {
	allowedSchemes    []string
	allowedHosts      []string
	allowedExtensions []string
}

// DefaultImageExtensions lists the raster formats the decoder accepts
var DefaultImageExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp"}

// NewURLValidator creates a new URL validator with default settings
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes:    []string{"http", "https"},
		allowedHosts:      []string{}, // empty means all hosts allowed
		allowedExtensions: DefaultImageExtensions,
	}
}

// NewURLValidatorWithOptions creates a URL validator with custom options
func NewURLValidatorWithOptions(schemes []string, hosts []string) *URLValidator {
	return &URLValidator{
		allowedSchemes:    schemes,
		allowedHosts:      hosts,
		allowedExtensions: DefaultImageExtensions,
	}
}

// ValidateImageURL validates if the provided URL is acceptable for digitization.
// Paths without an extension are accepted; paths with one must name an image format.
func (v *URLValidator) ValidateImageURL(imageURL string) error {
	if strings.TrimSpace(imageURL) == "" {
		return apperrors.NewValidationError("URL cannot be empty", nil)
	}

	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewValidationError("Invalid URL format", err)
	}

	if !v.isSchemeAllowed(parsedURL.Scheme) {
		return apperrors.NewValidationError("URL scheme not allowed", nil)
	}

	if parsedURL.Hostname() == "" {
		return apperrors.NewValidationError("URL must have a valid host", nil)
	}

	if !v.isHostAllowed(parsedURL.Hostname()) {
		return apperrors.NewValidationError("URL host not allowed", nil)
	}

	if !v.isExtensionAllowed(path.Ext(parsedURL.Path)) {
		return apperrors.NewValidationError("URL does not point to a supported image format", nil).
			WithDetails(path.Base(parsedURL.Path))
	}

	return nil
}

// isSchemeAllowed checks if the URL scheme is in the allowed list
func (v *URLValidator) isSchemeAllowed(scheme string) bool {
	for _, allowed := range v.allowedSchemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}

// isHostAllowed checks if the URL host is in the allowed list
// Returns true if no host restrictions are set (empty allowedHosts)
func (v *URLValidator) isHostAllowed(host string) bool {
	if len(v.allowedHosts) == 0 {
		return true
	}
	for _, allowed := range v.allowedHosts {
		if strings.EqualFold(host, allowed) {
			return true
		}
	}
	return false
}

func (v *URLValidator) isExtensionAllowed(ext string) bool {
	if ext == "" {
		return true
	}
	for _, allowed := range v.allowedExtensions {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}
