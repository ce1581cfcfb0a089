package ledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Backend is the node API the ledger client needs. *ethclient.Client satisfies it.
type Backend interface {
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
}

// PeerCounter is implemented by backends that can report connected peers.
type PeerCounter interface {
	PeerCount(ctx context.Context) (uint64, error)
}

// RPCBackend is an ethclient with access to the raw JSON-RPC connection.
type RPCBackend struct {
	*ethclient.Client
	rpc *rpc.Client
}

// Dial connects to a node over HTTP, WebSocket or IPC.
func Dial(ctx context.Context, url string) (*RPCBackend, error) {
	rc, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial ledger rpc: %w", err)
	}
	return &RPCBackend{Client: ethclient.NewClient(rc), rpc: rc}, nil
}

// PeerCount returns net_peerCount.
func (b *RPCBackend) PeerCount(ctx context.Context) (uint64, error) {
	var n hexutil.Uint64
	if err := b.rpc.CallContext(ctx, &n, "net_peerCount"); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// RPC exposes the underlying JSON-RPC client, used by node-managed wallets.
func (b *RPCBackend) RPC() *rpc.Client {
	return b.rpc
}
