package service

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"docverify/internal/apperr"
	"docverify/internal/session"
)

var (
	ErrIDRequired = errors.New("id is required")
	// ErrNotYetVisible means the ledger has not caught up with a mined submission.
	ErrNotYetVisible = errors.New("submission not yet visible on the ledger")
	// ErrTerminalStatus means a decision was already recorded for the document.
	ErrTerminalStatus = errors.New("document already has a final status")
	// ErrNotVerifier means the connected account may not record decisions.
	ErrNotVerifier = errors.New("connected account is not a registered verifier")
	// ErrAttemptBusy means another request is already driving the attempt.
	ErrAttemptBusy = errors.New("submission attempt is already in progress")
	// ErrInterrupted marks an attempt found mid-phase with nothing driving it, e.g. after a restart.
	ErrInterrupted = errors.New("submission attempt was interrupted")
)

// Session is the view of the wallet session the services need.
type Session interface {
	Account() (common.Address, bool)
	IsVerifier() bool
	Connect(ctx context.Context) (session.Snapshot, error)
}

// requireAccount returns the connected account, connecting first when there is none.
func requireAccount(ctx context.Context, s Session) (common.Address, error) {
	if acct, ok := s.Account(); ok {
		return acct, nil
	}
	snap, err := s.Connect(ctx)
	if err != nil {
		return common.Address{}, apperr.Wrap(apperr.ErrWalletUnavailable, err)
	}
	if snap.Account == nil {
		return common.Address{}, apperr.Wrapf(apperr.ErrWalletUnavailable, "wallet connected without an account")
	}
	return *snap.Account, nil
}
