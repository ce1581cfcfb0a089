package ledger

import (
	"errors"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// ErrTransactionInFlight is returned when the account already has a state-changing call pending.
var ErrTransactionInFlight = errors.New("a transaction from this account is already in flight")

// AccountLocks allows at most one in-flight state-changing call per account, so two writes
// never race for the same nonce at the wallet.
type AccountLocks struct {
	mu   sync.Mutex
	busy map[common.Address]struct{}
}

func NewAccountLocks() *AccountLocks {
	return &AccountLocks{busy: make(map[common.Address]struct{})}
}

// TryAcquire marks account busy. The returned release func is idempotent.
func (l *AccountLocks) TryAcquire(account common.Address) (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.busy[account]; ok {
		return nil, false
	}
	l.busy[account] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.busy, account)
			l.mu.Unlock()
		})
	}, true
}

// InFlight reports whether account currently holds the lock.
func (l *AccountLocks) InFlight(account common.Address) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.busy[account]
	return ok
}
