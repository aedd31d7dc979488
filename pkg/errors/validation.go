package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// maxCategoryIDLength bounds free-form category ids coming from submissions.
const maxCategoryIDLength = 64

// URL validation messages, shown to users as is.
const (
	MsgURLRequired      = "URL is required"
	MsgInvalidURLFormat = "Invalid URL format"
)

// ValidateCategoryID validates a free-form category id.
//
// Category ids are open-ended: any value that passes this check is accepted and
// becomes an ad hoc category if it is not one of the base categories. The rules
// only reject values that cannot be rendered or round-tripped through a sheet:
//   - No empty ids
//   - No whitespace or control characters
//   - Maximum length of 64 characters
func ValidateCategoryID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidCategory, "category cannot be empty")
	}
	if len(id) > maxCategoryIDLength {
		return New(ErrCodeInvalidCategory, "category too long (max %d characters)", maxCategoryIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidCategory, "category contains invalid characters")
		}
	}
	return nil
}

// ValidateURL checks that raw is an absolute http or https URL with a host.
// It returns the parsed URL on success.
func ValidateURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, New(ErrCodeInvalidURL, MsgURLRequired)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, Wrap(ErrCodeInvalidURL, err, MsgInvalidURLFormat)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, New(ErrCodeInvalidURL, MsgInvalidURLFormat)
	}
	if u.Hostname() == "" {
		return nil, New(ErrCodeInvalidURL, MsgInvalidURLFormat)
	}
	return u, nil
}
