package service

import (
	"context"
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"docverify/internal/apperr"
	"docverify/internal/session"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

type fakeSession struct {
	mu         sync.Mutex
	account    *common.Address
	verifier   bool
	connectTo  *common.Address
	connectErr error
	connects   int
}

func connectedAs(a common.Address) *fakeSession {
	return &fakeSession{account: &a}
}

func (f *fakeSession) Account() (common.Address, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.account == nil {
		return common.Address{}, false
	}
	return *f.account, true
}

func (f *fakeSession) IsVerifier() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.account != nil && f.verifier
}

func (f *fakeSession) Connect(ctx context.Context) (session.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	if f.connectErr != nil || f.connectTo == nil {
		err := f.connectErr
		if err == nil {
			err = errors.New("no accounts available")
		}
		return session.Snapshot{State: session.StateDisconnected}, apperr.Wrap(apperr.ErrWalletUnavailable, err)
	}
	a := *f.connectTo
	f.account = &a
	return session.Snapshot{State: session.StateConnected, Account: &a}, nil
}

func (f *fakeSession) setAccount(a *common.Address) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.account = a
}

type recordingRefresher struct {
	mu        sync.Mutex
	calls     []string
	err       error
	onLedger  map[string]bool
	lookupErr error
	lookups   int
}

// markRecorded makes Recorded report contentID as already listed for account.
func (r *recordingRefresher) markRecorded(account common.Address, contentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.onLedger == nil {
		r.onLedger = make(map[string]bool)
	}
	r.onLedger[account.Hex()+"/"+contentID] = true
}

func (r *recordingRefresher) Recorded(ctx context.Context, account common.Address, contentID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	if r.lookupErr != nil {
		return false, r.lookupErr
	}
	return r.onLedger[account.Hex()+"/"+contentID], nil
}

func (r *recordingRefresher) RefreshAfterSubmit(ctx context.Context, account common.Address, contentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, account.Hex()+"/"+contentID)
	return r.err
}

func (r *recordingRefresher) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}
