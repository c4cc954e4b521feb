package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hareinweed/ipview/internal/filter"
)

// UserFriendlyError provides user-friendly error messages with context and hints
type UserFriendlyError struct {
	Message string
	Reason  string
	Hint    string
	Try     string
	Err     error
}

func (e UserFriendlyError) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Message)
	if e.Reason != "" {
		buf.WriteString("\n  Reason: " + e.Reason)
	}
	if e.Hint != "" {
		buf.WriteString("\n  Hint: " + e.Hint)
	}
	if e.Try != "" {
		buf.WriteString("\n  Try: " + e.Try)
	}
	if e.Err != nil {
		buf.WriteString("\n  Details: " + e.Err.Error())
	}
	return buf.String()
}

func (e UserFriendlyError) Unwrap() error {
	return e.Err
}

// WrapCaptureError wraps capture errors with user-friendly context
func WrapCaptureError(err error, iface string) error {
	if err == nil {
		return nil
	}

	return UserFriendlyError{
		Message: fmt.Sprintf("Failed to capture on interface %s", iface),
		Reason:  extractCaptureReason(err),
		Hint:    "Live capture needs an IPv4-capable interface and permission to open it",
		Try:     "ipview interfaces",
		Err:     err,
	}
}

// WrapFilterError wraps filter compile errors with user-friendly context
func WrapFilterError(err error, expr string) error {
	if err == nil {
		return nil
	}

	return UserFriendlyError{
		Message: fmt.Sprintf("Invalid filter expression %q", expr),
		Reason:  extractFilterReason(err),
		Hint:    "Fields compare against one literal, joined with &&, || and ! (parentheses allowed)",
		Try:     `dest_port == 443 || app_proto == HTTP`,
		Err:     err,
	}
}

// WrapConfigError wraps configuration errors with user-friendly context
func WrapConfigError(err error, configPath string) error {
	if err == nil {
		return nil
	}

	return UserFriendlyError{
		Message: fmt.Sprintf("Configuration error in %s", configPath),
		Reason:  err.Error(),
		Hint:    "See the sample config in the repository for field names and defaults",
		Try:     fmt.Sprintf("ipview live --config %s", configPath),
		Err:     err,
	}
}

func extractCaptureReason(err error) string {
	errStr := err.Error()

	// Common libpcap error patterns
	if strings.Contains(errStr, "permission") || strings.Contains(errStr, "Operation not permitted") {
		return "Insufficient permission - capturing usually needs root or CAP_NET_RAW"
	}
	if strings.Contains(errStr, "No such device") || strings.Contains(errStr, "doesn't exist") {
		return "Interface not found - it may be down or misspelled"
	}
	if strings.Contains(errStr, "not up") {
		return "Interface is not up"
	}

	return "Packet capture failed"
}

func extractFilterReason(err error) string {
	var invField *filter.InvalidFieldError
	if errors.As(err, &invField) {
		return fmt.Sprintf("%q is not a known field name", invField.Name)
	}
	var invOp *filter.InvalidOperatorError
	if errors.As(err, &invOp) {
		return fmt.Sprintf("%q is not a comparison operator", invOp.Op)
	}
	var unsupported *filter.UnsupportedOperatorError
	if errors.As(err, &unsupported) {
		return fmt.Sprintf("field %q only supports == and !=", unsupported.Field)
	}
	var invLit *filter.InvalidLiteralError
	if errors.As(err, &invLit) {
		return fmt.Sprintf("%q is not a valid value for this field", invLit.Text)
	}
	if errors.Is(err, filter.ErrSyntax) {
		return "Expression has a syntax error"
	}

	return "Filter expression could not be compiled"
}
