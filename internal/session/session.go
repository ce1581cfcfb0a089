// Package session holds the connected wallet account and its verifier capability.
//
// A Session is constructed once and passed to every component that needs the account;
// readers take snapshots and never hold on to the session's internals.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/singleflight"

	"docverify/internal/apperr"
	"docverify/internal/wallet"
)

type State string

const (
	StateDisconnected State = "Disconnected"
	StateConnecting   State = "Connecting"
	StateConnected    State = "Connected"
)

// VerifierChecker answers whether an account may record verification decisions.
type VerifierChecker interface {
	CheckIsVerifier(ctx context.Context, account common.Address) (bool, error)
}

// Snapshot is a point-in-time copy of the session.
type Snapshot struct {
	State      State           `json:"state"`
	Account    *common.Address `json:"account,omitempty" swaggertype:"string"`
	IsVerifier bool            `json:"is_verifier"`
}

type Session struct {
	provider wallet.Provider
	checker  VerifierChecker
	log      *slog.Logger
	connect  singleflight.Group

	mu         sync.RWMutex
	state      State
	account    common.Address
	isVerifier bool
	// gen changes whenever the account is replaced or cleared, so a verifier result computed
	// for an older account can be recognised and dropped.
	gen uint64
}

// New returns a disconnected session. provider may be nil when no wallet is available.
func New(provider wallet.Provider, checker VerifierChecker, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		provider: provider,
		checker:  checker,
		log:      log.With("component", "session"),
		state:    StateDisconnected,
	}
}

// Connect requests account access. Concurrent callers share one request.
func (s *Session) Connect(ctx context.Context) (Snapshot, error) {
	_, err, _ := s.connect.Do("connect", func() (any, error) {
		return nil, s.doConnect(ctx)
	})
	return s.Snapshot(), err
}

func (s *Session) doConnect(ctx context.Context) error {
	if s.provider == nil {
		return apperr.Wrapf(apperr.ErrWalletUnavailable, "no wallet provider configured")
	}
	s.mu.Lock()
	s.state = StateConnecting
	s.gen++
	s.mu.Unlock()

	accounts, err := s.provider.RequestAccounts(ctx)
	if err == nil && len(accounts) == 0 {
		err = wallet.ErrNoAccounts
	}
	if err != nil {
		s.clear()
		s.log.WarnContext(ctx, "wallet connect failed", "error", err)
		return apperr.Wrap(apperr.ErrWalletUnavailable, err)
	}
	s.adopt(ctx, accounts[0])
	s.log.InfoContext(ctx, "wallet connected", "account", accounts[0].Hex())
	return nil
}

// AutoConnect adopts an already-exposed account without prompting. Failures leave the
// session disconnected and are only logged.
func (s *Session) AutoConnect(ctx context.Context) {
	if s.provider == nil {
		return
	}
	accounts, err := s.provider.Accounts(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "wallet auto-connect failed", "error", err)
		return
	}
	if len(accounts) == 0 {
		s.log.InfoContext(ctx, "wallet auto-connect skipped, no exposed account")
		return
	}
	s.mu.Lock()
	if s.state != StateDisconnected {
		s.mu.Unlock()
		return
	}
	s.state = StateConnecting
	s.gen++
	s.mu.Unlock()
	s.adopt(ctx, accounts[0])
	s.log.InfoContext(ctx, "wallet auto-connected", "account", accounts[0].Hex())
}

// Watch follows account changes from the provider until ctx ends.
func (s *Session) Watch(ctx context.Context) {
	if s.provider == nil {
		return
	}
	ch := make(chan []common.Address, 8)
	sub := s.provider.SubscribeAccountsChanged(ch)
	defer sub.Unsubscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-sub.Err():
			if err != nil {
				s.log.ErrorContext(ctx, "account subscription ended", "error", err)
			}
			return
		case accounts := <-ch:
			s.accountsChanged(ctx, accounts)
		}
	}
}

func (s *Session) accountsChanged(ctx context.Context, accounts []common.Address) {
	s.mu.Lock()
	if s.state != StateConnected {
		s.mu.Unlock()
		return
	}
	if len(accounts) == 0 {
		s.mu.Unlock()
		s.clear()
		s.log.InfoContext(ctx, "wallet disconnected by provider")
		return
	}
	if accounts[0] == s.account {
		s.mu.Unlock()
		return
	}
	s.gen++
	s.mu.Unlock()
	s.adopt(ctx, accounts[0])
	s.log.InfoContext(ctx, "wallet account changed", "account", accounts[0].Hex())
}

// Select switches the active account on providers that support it.
func (s *Session) Select(ctx context.Context, account common.Address) (Snapshot, error) {
	sel, ok := s.provider.(wallet.Selector)
	if !ok {
		return s.Snapshot(), apperr.Validation("wallet provider cannot switch accounts")
	}
	if err := sel.Select(ctx, account); err != nil {
		return s.Snapshot(), apperr.Wrap(apperr.ErrWalletUnavailable, err)
	}
	accounts, err := s.provider.Accounts(ctx)
	if err != nil {
		return s.Snapshot(), apperr.Wrap(apperr.ErrWalletUnavailable, err)
	}
	s.accountsChanged(ctx, accounts)
	return s.Snapshot(), nil
}

// adopt makes account current and re-derives the verifier flag.
func (s *Session) adopt(ctx context.Context, account common.Address) {
	s.mu.Lock()
	s.state = StateConnected
	s.account = account
	s.isVerifier = false
	gen := s.gen
	s.mu.Unlock()

	ok := s.CheckVerifierCapability(ctx, account)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || s.account != account {
		s.log.DebugContext(ctx, "discarding stale verifier result", "account", account.Hex())
		return
	}
	s.isVerifier = ok
}

// Disconnect forgets the account locally. Providers cannot be disconnected programmatically.
func (s *Session) Disconnect() {
	s.clear()
}

func (s *Session) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateDisconnected
	s.account = common.Address{}
	s.isVerifier = false
	s.gen++
}

// CheckVerifierCapability fails closed: any ledger error reads as false.
func (s *Session) CheckVerifierCapability(ctx context.Context, account common.Address) bool {
	if s.checker == nil {
		return false
	}
	ok, err := s.checker.CheckIsVerifier(ctx, account)
	if err != nil {
		s.log.WarnContext(ctx, "verifier check failed", "account", account.Hex(), "error", err)
		return false
	}
	return ok
}

// Account returns the connected account, if any.
func (s *Session) Account() (common.Address, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.account, s.state == StateConnected
}

func (s *Session) IsVerifier() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateConnected && s.isVerifier
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{State: s.state}
	if s.state == StateConnected {
		a := s.account
		snap.Account = &a
		snap.IsVerifier = s.isVerifier
	}
	return snap
}
