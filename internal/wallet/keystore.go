package wallet

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
)

// KeystoreProvider exposes the accounts of an encrypted keystore directory.
// Accounts are unlocked with the configured passphrase on RequestAccounts; keys added to or
// removed from the directory surface as account changes.
type KeystoreProvider struct {
	ks         *keystore.KeyStore
	passphrase string
	log        *slog.Logger

	mu       sync.Mutex
	unlocked bool
	order    []common.Address
	feed     event.Feed

	sub  event.Subscription
	done chan struct{}
}

// NewKeystoreProvider opens dir with standard scrypt parameters.
func NewKeystoreProvider(dir, passphrase string, log *slog.Logger) *KeystoreProvider {
	return newKeystoreProvider(keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP), passphrase, log)
}

func newKeystoreProvider(ks *keystore.KeyStore, passphrase string, log *slog.Logger) *KeystoreProvider {
	p := &KeystoreProvider{ks: ks, passphrase: passphrase, log: log, done: make(chan struct{})}
	events := make(chan accounts.WalletEvent, 8)
	p.sub = ks.Subscribe(events)
	go p.loop(events)
	return p
}

func (p *KeystoreProvider) loop(events chan accounts.WalletEvent) {
	defer close(p.done)
	for {
		select {
		case ev := <-events:
			p.log.Debug("keystore_wallet_event", "kind", ev.Kind, "url", ev.Wallet.URL().String())
			p.refresh()
		case <-p.sub.Err():
			return
		}
	}
}

// refresh recomputes the exposed list and notifies subscribers when it changed.
func (p *KeystoreProvider) refresh() {
	p.mu.Lock()
	if !p.unlocked {
		p.mu.Unlock()
		return
	}
	before := p.order
	p.order = p.mergeOrder(p.order)
	after := append([]common.Address(nil), p.order...)
	p.mu.Unlock()

	if !equalAccounts(before, after) {
		p.feed.Send(after)
	}
}

// mergeOrder keeps the current ordering for accounts still present and appends new ones.
func (p *KeystoreProvider) mergeOrder(prev []common.Address) []common.Address {
	present := map[common.Address]bool{}
	for _, a := range p.ks.Accounts() {
		present[a.Address] = true
	}
	out := make([]common.Address, 0, len(present))
	seen := map[common.Address]bool{}
	for _, a := range prev {
		if present[a] {
			out = append(out, a)
			seen[a] = true
		}
	}
	for _, a := range p.ks.Accounts() {
		if !seen[a.Address] {
			out = append(out, a.Address)
			seen[a.Address] = true
		}
	}
	return out
}

func (p *KeystoreProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	accs := p.ks.Accounts()
	if len(accs) == 0 {
		return nil, ErrNoAccounts
	}
	for _, a := range accs {
		if err := p.ks.Unlock(a, p.passphrase); err != nil {
			return nil, fmt.Errorf("%w: unlock %s: %v", ErrUserRejected, a.Address.Hex(), err)
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unlocked = true
	p.order = p.mergeOrder(p.order)
	return append([]common.Address(nil), p.order...), nil
}

func (p *KeystoreProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.unlocked {
		return nil, nil
	}
	return append([]common.Address(nil), p.order...), nil
}

func (p *KeystoreProvider) SignTx(ctx context.Context, from common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return p.ks.SignTx(accounts.Account{Address: from}, tx, chainID)
}

func (p *KeystoreProvider) SubscribeAccountsChanged(ch chan<- []common.Address) event.Subscription {
	return p.feed.Subscribe(ch)
}

// Select moves account to the front of the exposed list.
func (p *KeystoreProvider) Select(ctx context.Context, account common.Address) error {
	p.mu.Lock()
	if !p.unlocked {
		p.mu.Unlock()
		return fmt.Errorf("%w: wallet not connected", ErrNoAccounts)
	}
	idx := -1
	for i, a := range p.order {
		if a == account {
			idx = i
			break
		}
	}
	if idx < 0 {
		p.mu.Unlock()
		return fmt.Errorf("account %s is not in the keystore", account.Hex())
	}
	if idx == 0 {
		p.mu.Unlock()
		return nil
	}
	next := append([]common.Address{account}, p.order[:idx]...)
	next = append(next, p.order[idx+1:]...)
	p.order = next
	out := append([]common.Address(nil), next...)
	p.mu.Unlock()

	p.feed.Send(out)
	return nil
}

// Close stops watching the keystore directory.
func (p *KeystoreProvider) Close() {
	p.sub.Unsubscribe()
	<-p.done
}
