package engine

import (
	"errors"
	"fmt"
)

// Code is the stable numeric error code exposed to external callers.
type Code uint32

// Kind groups error codes by the check that produced them.
type Kind string

const (
	KindAuthorization Kind = "authorization"
	KindInput         Kind = "input"
	KindState         Kind = "state"
	KindEconomic      Kind = "economic"
)

// Error is a rejected operation. Every rejection leaves state untouched.
type Error struct {
	Code Code
	Name string
	kind Kind
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (u%d)", e.Name, e.Code)
}

// Kind reports the error category.
func (e *Error) Kind() Kind { return e.kind }

var byCode = make(map[Code]*Error)

func newError(code Code, name string, kind Kind) *Error {
	e := &Error{Code: code, Name: name, kind: kind}
	byCode[code] = e
	return e
}

var (
	ErrNotAuthorized            = newError(100, "NotAuthorized", KindAuthorization)
	ErrInvalidReportID          = newError(101, "InvalidReportId", KindInput)
	ErrInvalidStakeAmount       = newError(102, "InvalidStakeAmount", KindInput)
	ErrReportNotFound           = newError(103, "ReportNotFound", KindState)
	ErrAlreadyVerified          = newError(104, "AlreadyVerified", KindState)
	ErrConsensusNotReached      = newError(105, "ConsensusNotReached", KindState)
	ErrInvalidThreshold         = newError(106, "InvalidThreshold", KindInput)
	ErrInvalidVerificationType  = newError(107, "InvalidVerificationType", KindInput)
	ErrInsufficientStake        = newError(108, "InsufficientStake", KindEconomic)
	ErrVerificationClosed       = newError(109, "VerificationClosed", KindState)
	ErrInvalidTimestamp         = newError(110, "InvalidTimestamp", KindInput)
	ErrNotRegisteredUser        = newError(111, "NotRegisteredUser", KindEconomic)
	ErrInvalidEvidenceHash      = newError(112, "InvalidEvidenceHash", KindInput)
	ErrMaxVerificationsExceeded = newError(113, "MaxVerificationsExceeded", KindState)
	ErrInvalidPenaltyRate       = newError(114, "InvalidPenaltyRate", KindInput)
	ErrInvalidRewardRate        = newError(115, "InvalidRewardRate", KindInput)
	ErrInvalidDuration          = newError(116, "InvalidDuration", KindInput)
	ErrInvalidStatus            = newError(117, "InvalidStatus", KindState)
	ErrInvalidCategory          = newError(118, "InvalidCategory", KindInput)
	ErrInvalidVote              = newError(119, "InvalidVote", KindInput)
	ErrStakeLocked              = newError(120, "StakeLocked", KindEconomic)
)

// CodeOf extracts the numeric code from err, if it wraps an *Error.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

// ByCode returns the error registered for code.
func ByCode(code Code) (*Error, bool) {
	e, ok := byCode[code]
	return e, ok
}
