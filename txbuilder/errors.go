package txbuilder

import (
	"fmt"

	"github.com/pkg/errors"
)

// Fatal build errors. These indicate corrupted wallet state or a bug; the builder must be
// discarded and no transaction sent.
var (
	ErrKeyImageGeneration  = errors.New("Generating key image failed")
	ErrKeyImageMismatch    = errors.New("Generated key image does not match input")
	ErrMixAmountMismatch   = errors.New("Mix outputs with different amounts are not allowed")
	ErrOutputKeyDerivation = errors.New("Output keys detected as corrupted during output key derivation")
	ErrRingSignature       = errors.New("Output keys detected as corrupted during ring signing")
	ErrAlreadySigned       = errors.New("Builder already signed")
)

// Validation error codes, reported to the caller with the offending address or amount.
const (
	ErrorCodeInvalidAddress     = 1
	ErrorCodeUnknownSpendKey    = 2
	ErrorCodeNotEnoughAnonymity = 3
)

func IsErrorCode(err error, code int) bool {
	er, ok := errors.Cause(err).(*selectorError)
	if !ok {
		return false
	}
	return er.code == code
}

func ErrorMessage(err error) string {
	er, ok := errors.Cause(err).(*selectorError)
	if !ok {
		return ""
	}
	return er.message
}

type selectorError struct {
	code    int
	message string
}

func (err *selectorError) Error() string {
	if len(err.message) == 0 {
		return errorCodeString(err.code)
	}
	return fmt.Sprintf("%s : %s", errorCodeString(err.code), err.message)
}

func errorCodeString(code int) string {
	switch code {
	case ErrorCodeInvalidAddress:
		return "Invalid Address"
	case ErrorCodeUnknownSpendKey:
		return "Unknown Spend Key"
	case ErrorCodeNotEnoughAnonymity:
		return "Not Enough Anonymity"
	default:
		return "Unknown Error Code"
	}
}

func newError(code int, message string) *selectorError {
	result := selectorError{code: code, message: message}
	return &result
}
