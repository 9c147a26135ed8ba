package apperrors

import (
	"fmt"

	"github.com/go-kratos/kratos/v2/errors"
)

// Error reasons of the subscription service. Every failure the core can
// produce is one of these; all of them are recoverable at the UI boundary.
const (
	// ReasonCouponInvalid - unknown or malformed coupon code
	ReasonCouponInvalid = "COUPON_INVALID"
	// ReasonInvalidPlan - unrecognized plan identifier
	ReasonInvalidPlan = "INVALID_PLAN"
	// ReasonMissingProof - proof submission without an attached reference
	ReasonMissingProof = "MISSING_PROOF"
	// ReasonProofNotExpected - proof submitted from a state that does not accept one
	ReasonProofNotExpected = "PROOF_NOT_EXPECTED"
	// ReasonAlreadyResolved - replay of an already resolved approval token
	ReasonAlreadyResolved = "ALREADY_RESOLVED"
	// ReasonInvalidToken - token does not match any coupon request
	ReasonInvalidToken = "INVALID_TOKEN"
	// ReasonInvalidAction - approval link action is neither approve nor reject
	ReasonInvalidAction = "INVALID_ACTION"
	// ReasonInvalidStatus - unrecognized status filter in a listing
	ReasonInvalidStatus = "INVALID_STATUS"
	// ReasonStorageUnavailable - document store I/O failure
	ReasonStorageUnavailable = "STORAGE_UNAVAILABLE"
)

func ErrorCouponInvalid(format string, args ...interface{}) *errors.Error {
	return errors.New(400, ReasonCouponInvalid, fmt.Sprintf(format, args...))
}

func IsCouponInvalid(err error) bool {
	return errors.Reason(err) == ReasonCouponInvalid
}

func ErrorInvalidPlan(format string, args ...interface{}) *errors.Error {
	return errors.New(400, ReasonInvalidPlan, fmt.Sprintf(format, args...))
}

func IsInvalidPlan(err error) bool {
	return errors.Reason(err) == ReasonInvalidPlan
}

func ErrorMissingProof(format string, args ...interface{}) *errors.Error {
	return errors.New(400, ReasonMissingProof, fmt.Sprintf(format, args...))
}

func IsMissingProof(err error) bool {
	return errors.Reason(err) == ReasonMissingProof
}

func ErrorProofNotExpected(format string, args ...interface{}) *errors.Error {
	return errors.New(409, ReasonProofNotExpected, fmt.Sprintf(format, args...))
}

func IsProofNotExpected(err error) bool {
	return errors.Reason(err) == ReasonProofNotExpected
}

func ErrorAlreadyResolved(format string, args ...interface{}) *errors.Error {
	return errors.New(409, ReasonAlreadyResolved, fmt.Sprintf(format, args...))
}

func IsAlreadyResolved(err error) bool {
	return errors.Reason(err) == ReasonAlreadyResolved
}

func ErrorInvalidToken(format string, args ...interface{}) *errors.Error {
	return errors.New(404, ReasonInvalidToken, fmt.Sprintf(format, args...))
}

func IsInvalidToken(err error) bool {
	return errors.Reason(err) == ReasonInvalidToken
}

func ErrorInvalidAction(format string, args ...interface{}) *errors.Error {
	return errors.New(400, ReasonInvalidAction, fmt.Sprintf(format, args...))
}

func IsInvalidAction(err error) bool {
	return errors.Reason(err) == ReasonInvalidAction
}

func ErrorInvalidStatus(format string, args ...interface{}) *errors.Error {
	return errors.New(400, ReasonInvalidStatus, fmt.Sprintf(format, args...))
}

func IsInvalidStatus(err error) bool {
	return errors.Reason(err) == ReasonInvalidStatus
}

func ErrorStorageUnavailable(format string, args ...interface{}) *errors.Error {
	return errors.New(503, ReasonStorageUnavailable, fmt.Sprintf(format, args...))
}

func IsStorageUnavailable(err error) bool {
	return errors.Reason(err) == ReasonStorageUnavailable
}
