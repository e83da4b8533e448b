package entities

import "errors"

// ErrorKind classifies domain failures so callers can react without matching messages
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindPayment       ErrorKind = "payment"
	KindFunds         ErrorKind = "funds"
	KindState         ErrorKind = "state"
	KindAuthorization ErrorKind = "authorization"
	KindNotFound      ErrorKind = "not_found"
)

// Error is a classified domain error. Sentinels below are compared with errors.Is.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Validation errors
var (
	ErrInvalidConfig      = newError(KindValidation, "InvalidConfig", "invalid lottery configuration")
	ErrMissingCommitment  = newError(KindValidation, "MissingCommitment", "commitment is required")
	ErrEntropyUnavailable = newError(KindValidation, "EntropyUnavailable", "block hash entropy is not configured")
	ErrInvalidAmount      = newError(KindValidation, "InvalidAmount", "amount must be positive")
)

// Payment errors
var (
	ErrInsufficientPayment = newError(KindPayment, "InsufficientPayment", "payment is below ticket price")
)

// ErrInsufficientFunds is raised by the escrow ledger when the buyer's account cannot cover the price.
// It is kept out of KindPayment so that kind only ever means payment < ticket price.
var ErrInsufficientFunds = newError(KindFunds, "InsufficientFunds", "insufficient account balance")

// State errors
var (
	ErrNoTicketsAvailable   = newError(KindState, "NoTicketsAvailable", "no tickets available")
	ErrNotSoldOut           = newError(KindState, "NotSoldOut", "lottery is not sold out")
	ErrWinnerNotResolved    = newError(KindState, "WinnerNotResolved", "winner is not resolved yet")
	ErrAlreadyRevealed      = newError(KindState, "AlreadyRevealed", "number already revealed")
	ErrRewardAlreadyClaimed = newError(KindState, "RewardAlreadyClaimed", "reward already claimed")
	ErrRevealNotRequired    = newError(KindState, "RevealNotRequired", "lottery does not use commit-reveal entropy")
)

// Authorization errors
var (
	ErrNotTicketOwner = newError(KindAuthorization, "NotTicketOwner", "caller owns no tickets in this lottery")
	ErrRevealMismatch = newError(KindAuthorization, "RevealMismatch", "revealed number does not match any commitment")
	ErrNotWinner      = newError(KindAuthorization, "NotWinner", "caller is not the winner")
)

var ErrLotteryNotFound = newError(KindNotFound, "LotteryNotFound", "lottery not found")

// KindOf returns the kind of the first domain error in err's chain, or "" if there is none
func KindOf(err error) ErrorKind {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return ""
}

// CodeOf returns the code of the first domain error in err's chain
func CodeOf(err error) string {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}
