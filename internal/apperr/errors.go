// Package apperr holds the error taxonomy shared by every layer of the workflow.
//
// Each kind is a sentinel; concrete failures wrap both the kind and the underlying cause so
// callers can branch with errors.Is while the message keeps the original text.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is a local, pre-network input problem the user can correct.
	ErrValidation = errors.New("validation error")
	// ErrWalletUnavailable means no provider, or the provider/user refused to connect.
	ErrWalletUnavailable = errors.New("wallet unavailable")
	// ErrStorageUnavailable covers network, auth and server errors from the storage network.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrStorageRejected means the storage network refused the payload.
	ErrStorageRejected = errors.New("storage rejected payload")
	// ErrUploadFailed marks an attempt aborted before anything reached the ledger.
	ErrUploadFailed = errors.New("upload failed")
	// ErrLedgerWriteRejected means the user declined to sign.
	ErrLedgerWriteRejected = errors.New("ledger write rejected")
	// ErrLedgerWriteFailed covers estimation, broadcast and on-chain failures.
	ErrLedgerWriteFailed = errors.New("ledger write failed")
	// ErrLedgerReadFailed covers connectivity loss, reverts and unrecognised records.
	ErrLedgerReadFailed = errors.New("ledger read failed")

	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
)

// Wrap returns an error matching both kind and cause.
func Wrap(kind, cause error) error {
	if cause == nil {
		return kind
	}
	if errors.Is(cause, kind) {
		return cause
	}
	return fmt.Errorf("%w: %w", kind, cause)
}

// Wrapf wraps kind with a formatted message.
func Wrapf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Validation builds an ErrValidation with a message.
func Validation(msg string) error {
	return Wrapf(ErrValidation, "%s", msg)
}

// Kind returns the first taxonomy sentinel err matches, or nil.
func Kind(err error) error {
	for _, k := range []error{
		ErrValidation,
		ErrWalletUnavailable,
		ErrStorageRejected,
		ErrStorageUnavailable,
		ErrLedgerWriteRejected,
		ErrLedgerWriteFailed,
		ErrLedgerReadFailed,
		ErrUploadFailed,
		ErrNotFound,
		ErrInvalidState,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
