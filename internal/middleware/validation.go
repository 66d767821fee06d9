// Package middleware provides HTTP middleware for the Prepjet API.
package middleware

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

// Validation limits.
const (
	// MaxEmailLength is the maximum length for a customer email.
	MaxEmailLength = 320

	// MaxPriceIDLength is the maximum length for a billing price identifier.
	MaxPriceIDLength = 200

	// MaxAvatarURLLength is the maximum length for an avatar URL.
	MaxAvatarURLLength = 1024

	// MaxNameLength is the maximum length for a first or last name.
	MaxNameLength = 200
)

// Validation errors.
var (
	ErrEmailTooLong     = errors.New("email exceeds maximum length")
	ErrEmailInvalid     = errors.New("email is malformed")
	ErrEmailNonASCII    = errors.New("email contains non-ASCII characters")
	ErrPriceIDTooLong   = errors.New("price id exceeds maximum length")
	ErrPriceIDInvalid   = errors.New("price id contains invalid characters")
	ErrAvatarURLTooLong = errors.New("avatar URL exceeds maximum length")
	ErrAvatarURLUnsafe  = errors.New("avatar URL uses unsafe scheme")
	ErrNameTooLong      = errors.New("name exceeds maximum length")
)

// validPriceIDPattern matches valid billing price identifiers.
// Allowed: a-z, A-Z, 0-9, underscore
var validPriceIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// ValidateCustomerEmail validates an optional customer email for checkout.
// An empty email is valid and means the checkout opens anonymously.
func ValidateCustomerEmail(email string) error {
	if email == "" {
		return nil
	}

	if len(email) > MaxEmailLength {
		return ErrEmailTooLong
	}

	for _, r := range email {
		if r > unicode.MaxASCII {
			return ErrEmailNonASCII
		}
	}

	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 {
		return ErrEmailInvalid
	}
	if strings.ContainsAny(email, " \t\r\n") {
		return ErrEmailInvalid
	}

	return nil
}

// ValidatePriceID validates a billing price identifier.
// Empty is valid here; the checkout flow resolves the configured default.
func ValidatePriceID(priceID string) error {
	if priceID == "" {
		return nil
	}

	if len(priceID) > MaxPriceIDLength {
		return ErrPriceIDTooLong
	}

	if !validPriceIDPattern.MatchString(priceID) {
		return ErrPriceIDInvalid
	}

	return nil
}

// ValidateAvatarURL validates an avatar URL from an identity sync payload.
func ValidateAvatarURL(url string) error {
	if url == "" {
		return nil
	}

	if len(url) > MaxAvatarURLLength {
		return ErrAvatarURLTooLong
	}

	lowerURL := strings.ToLower(url)
	if !strings.HasPrefix(lowerURL, "http://") && !strings.HasPrefix(lowerURL, "https://") {
		return ErrAvatarURLUnsafe
	}

	// Block dangerous schemes (in case of URL encoding tricks)
	forbiddenSchemes := []string{"javascript:", "data:", "vbscript:", "file:"}
	for _, scheme := range forbiddenSchemes {
		if strings.Contains(lowerURL, scheme) {
			return ErrAvatarURLUnsafe
		}
	}

	return nil
}

// ValidateName validates a first or last name from an identity sync payload.
func ValidateName(name string) error {
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}
