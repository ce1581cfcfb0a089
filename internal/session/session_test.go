package session

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docverify/internal/apperr"
	"docverify/internal/logging"
	"docverify/internal/wallet"
)

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	bob   = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	carol = common.HexToAddress("0x00000000000000000000000000000000000000c3")
)

type fakeProvider struct {
	mu         sync.Mutex
	requested  []common.Address
	requestErr error
	exposed    []common.Address
	block      chan struct{}
	feed       event.Feed
}

func (p *fakeProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requested, p.requestErr
}

func (p *fakeProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exposed, nil
}

func (p *fakeProvider) SignTx(ctx context.Context, from common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return nil, errors.New("not implemented")
}

func (p *fakeProvider) SubscribeAccountsChanged(ch chan<- []common.Address) event.Subscription {
	return p.feed.Subscribe(ch)
}

type selectingProvider struct {
	fakeProvider
}

func (p *selectingProvider) Select(ctx context.Context, account common.Address) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.exposed = []common.Address{account}
	return nil
}

type checkerFunc func(ctx context.Context, account common.Address) (bool, error)

func (f checkerFunc) CheckIsVerifier(ctx context.Context, account common.Address) (bool, error) {
	return f(ctx, account)
}

func verifiers(set ...common.Address) checkerFunc {
	return func(ctx context.Context, account common.Address) (bool, error) {
		for _, a := range set {
			if a == account {
				return true, nil
			}
		}
		return false, nil
	}
}

func TestSession_Connect(t *testing.T) {
	p := &fakeProvider{requested: []common.Address{alice, bob}}
	s := New(p, verifiers(alice), logging.Discard())
	assert.Equal(t, StateDisconnected, s.State())

	snap, err := s.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateConnected, snap.State)
	require.NotNil(t, snap.Account)
	assert.Equal(t, alice, *snap.Account)
	assert.True(t, snap.IsVerifier)

	acct, ok := s.Account()
	assert.True(t, ok)
	assert.Equal(t, alice, acct)
}

func TestSession_Connect_Failures(t *testing.T) {
	tests := []struct {
		name     string
		provider wallet.Provider
	}{
		{name: "no provider", provider: nil},
		{name: "user rejects", provider: &fakeProvider{requestErr: wallet.ErrUserRejected}},
		{name: "empty account list", provider: &fakeProvider{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.provider, verifiers(), logging.Discard())
			snap, err := s.Connect(context.Background())
			assert.ErrorIs(t, err, apperr.ErrWalletUnavailable)
			assert.Equal(t, StateDisconnected, snap.State)
			assert.Nil(t, snap.Account)
			_, ok := s.Account()
			assert.False(t, ok)
		})
	}
}

func TestSession_ConnectingIsObservable(t *testing.T) {
	p := &fakeProvider{requested: []common.Address{alice}, block: make(chan struct{})}
	s := New(p, verifiers(), logging.Discard())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Connect(context.Background())
	}()
	require.Eventually(t, func() bool { return s.State() == StateConnecting }, time.Second, time.Millisecond)
	_, ok := s.Account()
	assert.False(t, ok)

	close(p.block)
	<-done
	assert.Equal(t, StateConnected, s.State())
}

func TestSession_VerifierCheckFailsClosed(t *testing.T) {
	p := &fakeProvider{requested: []common.Address{alice}}
	s := New(p, checkerFunc(func(ctx context.Context, account common.Address) (bool, error) {
		return true, errors.New("ledger unreachable")
	}), logging.Discard())

	snap, err := s.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateConnected, snap.State)
	assert.False(t, snap.IsVerifier)
	assert.False(t, s.CheckVerifierCapability(context.Background(), alice))
}

func TestSession_AutoConnect(t *testing.T) {
	t.Run("exposed account", func(t *testing.T) {
		p := &fakeProvider{exposed: []common.Address{bob}}
		s := New(p, verifiers(bob), logging.Discard())
		s.AutoConnect(context.Background())
		snap := s.Snapshot()
		assert.Equal(t, StateConnected, snap.State)
		assert.Equal(t, bob, *snap.Account)
		assert.True(t, snap.IsVerifier)
	})

	t.Run("nothing exposed stays disconnected", func(t *testing.T) {
		s := New(&fakeProvider{}, verifiers(), logging.Discard())
		s.AutoConnect(context.Background())
		assert.Equal(t, StateDisconnected, s.State())
	})

	t.Run("no provider", func(t *testing.T) {
		s := New(nil, verifiers(), logging.Discard())
		s.AutoConnect(context.Background())
		assert.Equal(t, StateDisconnected, s.State())
	})
}

func TestSession_AccountsChanged(t *testing.T) {
	p := &fakeProvider{requested: []common.Address{alice}}
	s := New(p, verifiers(alice), logging.Discard())
	_, err := s.Connect(context.Background())
	require.NoError(t, err)

	s.accountsChanged(context.Background(), []common.Address{bob})
	acct, _ := s.Account()
	assert.Equal(t, bob, acct)
	assert.False(t, s.IsVerifier())

	s.accountsChanged(context.Background(), nil)
	assert.Equal(t, StateDisconnected, s.State())
	assert.False(t, s.IsVerifier())

	// Ignored while disconnected.
	s.accountsChanged(context.Background(), []common.Address{carol})
	assert.Equal(t, StateDisconnected, s.State())
}

func TestSession_StaleVerifierResultDiscarded(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	checker := checkerFunc(func(ctx context.Context, account common.Address) (bool, error) {
		if account == bob {
			close(entered)
			<-release
			return true, nil
		}
		return false, nil
	})
	p := &fakeProvider{requested: []common.Address{alice}}
	s := New(p, checker, logging.Discard())
	_, err := s.Connect(context.Background())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.accountsChanged(context.Background(), []common.Address{bob})
	}()
	<-entered
	s.accountsChanged(context.Background(), []common.Address{carol})
	close(release)
	<-done

	acct, _ := s.Account()
	assert.Equal(t, carol, acct)
	assert.False(t, s.IsVerifier())
}

func TestSession_Watch(t *testing.T) {
	p := &fakeProvider{requested: []common.Address{alice}}
	s := New(p, verifiers(bob), logging.Discard())
	_, err := s.Connect(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Watch(ctx)
	}()

	require.Eventually(t, func() bool {
		p.feed.Send([]common.Address{bob})
		acct, _ := s.Account()
		return acct == bob
	}, time.Second, 5*time.Millisecond)
	assert.True(t, s.IsVerifier())

	cancel()
	<-done
}

func TestSession_Select(t *testing.T) {
	t.Run("supported", func(t *testing.T) {
		p := &selectingProvider{fakeProvider{requested: []common.Address{alice}}}
		s := New(p, verifiers(carol), logging.Discard())
		_, err := s.Connect(context.Background())
		require.NoError(t, err)

		snap, err := s.Select(context.Background(), carol)
		require.NoError(t, err)
		assert.Equal(t, carol, *snap.Account)
		assert.True(t, snap.IsVerifier)
	})

	t.Run("unsupported", func(t *testing.T) {
		s := New(&fakeProvider{requested: []common.Address{alice}}, verifiers(), logging.Discard())
		_, err := s.Select(context.Background(), carol)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestSession_Disconnect(t *testing.T) {
	p := &fakeProvider{requested: []common.Address{alice}}
	s := New(p, verifiers(alice), logging.Discard())
	_, err := s.Connect(context.Background())
	require.NoError(t, err)

	s.Disconnect()
	snap := s.Snapshot()
	assert.Equal(t, StateDisconnected, snap.State)
	assert.Nil(t, snap.Account)
	assert.False(t, snap.IsVerifier)
}
