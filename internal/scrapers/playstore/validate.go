package playstore

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	appIDRegex  = regexp.MustCompile(`^[a-zA-Z][a-zA-Z_0-9]+(\.[a-zA-Z][a-zA-Z_0-9]+)*$`)
	localeRegex = regexp.MustCompile(`^[a-zA-Z]{2}$`)
)

// ValidationError is returned before any request is made when the
// parameters of an operation are malformed.
type ValidationError struct {
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

func validateAppID(appID string) error {
	if !appIDRegex.MatchString(appID) {
		return &ValidationError{Param: "app id", Reason: fmt.Sprintf("%q is not a package name", appID)}
	}
	return nil
}

func validateLocale(language, country string) error {
	if !localeRegex.MatchString(language) {
		return &ValidationError{Param: "language", Reason: fmt.Sprintf("%q is not a two letter code", language)}
	}
	if !localeRegex.MatchString(country) {
		return &ValidationError{Param: "country", Reason: fmt.Sprintf("%q is not a two letter code", country)}
	}
	return nil
}

func validateLimit(limit int) error {
	if limit <= 0 {
		return &ValidationError{Param: "limit", Reason: fmt.Sprintf("must be positive, got %d", limit)}
	}
	return nil
}

func validateNotBlank(param, value string) error {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Param: param, Reason: "must not be blank"}
	}
	return nil
}

// firstError returns the first non-nil error.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
