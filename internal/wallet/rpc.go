package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rpc"
)

const rpcMethodNotFound = -32601

// Caller is the subset of *rpc.Client used by RPCProvider.
type Caller interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

// RPCProvider uses accounts managed by the node itself (dev chains, unlocked node accounts).
// Account changes are detected by polling eth_accounts.
type RPCProvider struct {
	rpc      Caller
	interval time.Duration
	log      *slog.Logger

	feed event.Feed

	mu      sync.Mutex
	last    []common.Address
	polling bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewRPCProvider wraps a JSON-RPC client. interval <= 0 disables change polling.
func NewRPCProvider(c Caller, interval time.Duration, log *slog.Logger) *RPCProvider {
	return &RPCProvider{rpc: c, interval: interval, log: log, stop: make(chan struct{})}
}

func (p *RPCProvider) RequestAccounts(ctx context.Context) ([]common.Address, error) {
	var out []common.Address
	err := p.rpc.CallContext(ctx, &out, "eth_requestAccounts")
	var rpcErr rpc.Error
	if err != nil && errors.As(err, &rpcErr) && rpcErr.ErrorCode() == rpcMethodNotFound {
		out, err = p.Accounts(ctx)
	}
	if err != nil {
		return nil, err
	}
	p.remember(out)
	return out, nil
}

func (p *RPCProvider) Accounts(ctx context.Context) ([]common.Address, error) {
	var out []common.Address
	if err := p.rpc.CallContext(ctx, &out, "eth_accounts"); err != nil {
		return nil, err
	}
	return out, nil
}

type signTxArgs struct {
	From     common.Address  `json:"from"`
	To       *common.Address `json:"to,omitempty"`
	Gas      hexutil.Uint64  `json:"gas"`
	GasPrice *hexutil.Big    `json:"gasPrice"`
	Value    *hexutil.Big    `json:"value"`
	Nonce    hexutil.Uint64  `json:"nonce"`
	Data     hexutil.Bytes   `json:"data"`
	ChainID  *hexutil.Big    `json:"chainId,omitempty"`
}

type signTxResult struct {
	Raw hexutil.Bytes `json:"raw"`
}

// SignTx asks the node to sign with eth_signTransaction.
func (p *RPCProvider) SignTx(ctx context.Context, from common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	args := signTxArgs{
		From:     from,
		To:       tx.To(),
		Gas:      hexutil.Uint64(tx.Gas()),
		GasPrice: (*hexutil.Big)(tx.GasPrice()),
		Value:    (*hexutil.Big)(tx.Value()),
		Nonce:    hexutil.Uint64(tx.Nonce()),
		Data:     tx.Data(),
		ChainID:  (*hexutil.Big)(chainID),
	}
	var res signTxResult
	if err := p.rpc.CallContext(ctx, &res, "eth_signTransaction", args); err != nil {
		return nil, err
	}
	signed := new(types.Transaction)
	if err := signed.UnmarshalBinary(res.Raw); err != nil {
		return nil, fmt.Errorf("decode signed transaction: %w", err)
	}
	return signed, nil
}

// SubscribeAccountsChanged starts polling on first use.
func (p *RPCProvider) SubscribeAccountsChanged(ch chan<- []common.Address) event.Subscription {
	sub := p.feed.Subscribe(ch)
	p.mu.Lock()
	if !p.polling && p.interval > 0 {
		p.polling = true
		p.wg.Add(1)
		go p.poll()
	}
	p.mu.Unlock()
	return sub
}

func (p *RPCProvider) poll() {
	defer p.wg.Done()
	t := time.NewTicker(p.interval)
	defer t.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-t.C:
			ctx, cancel := context.WithTimeout(context.Background(), p.interval)
			accs, err := p.Accounts(ctx)
			cancel()
			if err != nil {
				p.log.Warn("wallet_poll_failed", "error", err)
				continue
			}
			if p.remember(accs) {
				p.feed.Send(accs)
			}
		}
	}
}

// remember stores accs and reports whether they differ from the previous list.
func (p *RPCProvider) remember(accs []common.Address) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	changed := !equalAccounts(p.last, accs)
	p.last = append([]common.Address(nil), accs...)
	return changed
}

// Close stops the polling loop.
func (p *RPCProvider) Close() {
	close(p.stop)
	p.wg.Wait()
}
