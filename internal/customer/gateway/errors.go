package gateway

import (
	"errors"
	"fmt"

	dErrors "github.com/pk-mender/desafiojr/pkg/domain-errors"
)

// ErrorCategory is the normalized failure taxonomy for customer API calls.
type ErrorCategory string

const (
	// ErrorTimeout: the API did not answer in time.
	ErrorTimeout ErrorCategory = "timeout"
	// ErrorOutage: connection failure or 5xx.
	ErrorOutage ErrorCategory = "outage"
	// ErrorNotFound: 404 for a single record.
	ErrorNotFound ErrorCategory = "not_found"
	// ErrorBadData: the response body could not be decoded.
	ErrorBadData ErrorCategory = "bad_data"
	// ErrorContractMismatch: a 4xx that means the request shape is wrong.
	ErrorContractMismatch ErrorCategory = "contract_mismatch"
	ErrorRateLimited      ErrorCategory = "rate_limited"
	ErrorInternal         ErrorCategory = "internal"
)

// GatewayError wraps a failed call with its category and operation.
type GatewayError struct {
	Category   ErrorCategory
	Op         string
	Message    string
	Underlying error
}

func (e *GatewayError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("customer api %s [%s]: %s: %v", e.Op, e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("customer api %s [%s]: %s", e.Op, e.Category, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Underlying
}

func newError(category ErrorCategory, op, msg string, underlying error) *GatewayError {
	return &GatewayError{Category: category, Op: op, Message: msg, Underlying: underlying}
}

// CategoryOf extracts the category, ErrorInternal for foreign errors.
func CategoryOf(err error) ErrorCategory {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Category
	}
	return ErrorInternal
}

// IsNotFound reports whether err is a gateway not-found.
func IsNotFound(err error) bool {
	return CategoryOf(err) == ErrorNotFound
}

// ToDomainError translates a gateway failure into the domain taxonomy,
// using msg as the user-facing message.
func ToDomainError(err error, msg string) error {
	if err == nil {
		return nil
	}
	var code dErrors.Code
	switch CategoryOf(err) {
	case ErrorNotFound:
		code = dErrors.CodeNotFound
	case ErrorTimeout:
		code = dErrors.CodeTimeout
	case ErrorOutage, ErrorRateLimited:
		code = dErrors.CodeUnavailable
	default:
		code = dErrors.CodeInternal
	}
	return &dErrors.Error{Code: code, Message: msg, Err: err}
}
