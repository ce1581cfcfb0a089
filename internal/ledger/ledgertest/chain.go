// Package ledgertest provides an in-memory chain running the IdentityVerification contract
// rules, for tests that need a ledger.Backend without a node.
package ledgertest

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// DefaultGasEstimate is what EstimateGas returns for any call that would succeed.
const DefaultGasEstimate = 100_000

type document struct {
	hash     string
	docType  string
	status   string
	ts       int64
	verifier common.Address
	notes    string
}

// Chain is a single-contract simulated ledger. Fields in the fault-injection block may be set
// directly by tests before use.
type Chain struct {
	mu sync.Mutex

	abi       abi.ABI
	address   common.Address
	chainID   *big.Int
	gasPrice  *big.Int
	owner     common.Address
	docs      map[common.Address][]document
	verifiers map[common.Address]bool
	nonces    map[common.Address]uint64
	receipts  map[common.Hash]*types.Receipt
	logs      []types.Log
	block     uint64
	clock     int64
	stale     int

	// Fault injection.
	EstimateErr error
	SendErr     error
	NetworkErr  error
	RevertMined bool
	// CallHook runs before every eth_call and may fail it.
	CallHook func(method string, args []any) error

	// Recorded activity.
	Sent  []*types.Transaction
	Calls map[string]int
}

// NewChain deploys the contract at address with owner as its owner and first verifier.
func NewChain(contractABI abi.ABI, address, owner common.Address) *Chain {
	return &Chain{
		abi:       contractABI,
		address:   address,
		chainID:   big.NewInt(1337),
		gasPrice:  big.NewInt(20_000_000_000),
		owner:     owner,
		docs:      make(map[common.Address][]document),
		verifiers: map[common.Address]bool{owner: true},
		nonces:    make(map[common.Address]uint64),
		receipts:  make(map[common.Hash]*types.Receipt),
		block:     1,
		clock:     1_700_000_000,
		Calls:     make(map[string]int),
	}
}

// ChainIDValue is the simulated chain id.
func (c *Chain) ChainIDValue() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// SetGasPrice changes the suggested gas price.
func (c *Chain) SetGasPrice(wei *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gasPrice = wei
}

// AddVerifier grants verifier rights.
func (c *Chain) AddVerifier(a common.Address) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verifiers[a] = true
}

// Seed appends a document directly, bypassing transactions.
func (c *Chain) Seed(user common.Address, hash, docType, status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock++
	c.docs[user] = append(c.docs[user], document{hash: hash, docType: docType, status: status, ts: c.clock})
	c.appendUploadLog(user, docType, hash)
}

// StaleReads makes the next n getDocumentCount calls lag one record behind.
func (c *Chain) StaleReads(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stale = n
}

// Status returns the stored status string of a document.
func (c *Chain) Status(user common.Address, index int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.docs[user][index].status
}

func revert(reason string) error {
	return errors.New("execution reverted: " + reason)
}

func (c *Chain) decode(data []byte) (*abi.Method, []any, error) {
	if len(data) < 4 {
		return nil, nil, errors.New("calldata too short")
	}
	m, err := c.abi.MethodById(data[:4])
	if err != nil {
		return nil, nil, err
	}
	args, err := m.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, nil, err
	}
	return m, args, nil
}

func (c *Chain) CodeAt(ctx context.Context, account common.Address, _ *big.Int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.NetworkErr != nil {
		return nil, c.NetworkErr
	}
	if account == c.address {
		return []byte{0x60, 0x80, 0x60, 0x40}, nil
	}
	return nil, nil
}

func (c *Chain) CallContract(ctx context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.NetworkErr != nil {
		return nil, c.NetworkErr
	}
	if msg.To == nil || *msg.To != c.address {
		return nil, nil
	}
	m, args, err := c.decode(msg.Data)
	if err != nil {
		return nil, err
	}
	c.Calls[m.Name]++
	if c.CallHook != nil {
		if err := c.CallHook(m.Name, args); err != nil {
			return nil, err
		}
	}
	switch m.Name {
	case "getDocumentCount":
		n := len(c.docs[args[0].(common.Address)])
		if c.stale > 0 && n > 0 {
			c.stale--
			n--
		}
		return m.Outputs.Pack(big.NewInt(int64(n)))
	case "getDocument":
		user := args[0].(common.Address)
		idx := args[1].(*big.Int)
		if !idx.IsInt64() || idx.Int64() >= int64(len(c.docs[user])) {
			return nil, revert("Invalid index")
		}
		d := c.docs[user][idx.Int64()]
		return m.Outputs.Pack(d.hash, d.docType, d.status, big.NewInt(d.ts), d.verifier, d.notes)
	case "isVerifier", "verifiers":
		return m.Outputs.Pack(c.verifiers[args[0].(common.Address)])
	case "owner":
		return m.Outputs.Pack(c.owner)
	}
	return nil, revert("unsupported view " + m.Name)
}

// check applies the contract's require() rules for a state-changing call.
func (c *Chain) check(from common.Address, m *abi.Method, args []any) error {
	switch m.Name {
	case "uploadDocument":
		if args[0].(string) == "" {
			return revert("Document hash required")
		}
	case "verifyDocument":
		if !c.verifiers[from] {
			return revert("Not a verifier")
		}
		user := args[0].(common.Address)
		idx := args[1].(*big.Int)
		if !idx.IsInt64() || idx.Int64() >= int64(len(c.docs[user])) {
			return revert("Invalid index")
		}
	case "addVerifier", "removeVerifier":
		if from != c.owner {
			return revert("Only owner")
		}
	default:
		return revert("unsupported method " + m.Name)
	}
	return nil
}

func (c *Chain) apply(from common.Address, m *abi.Method, args []any) {
	c.clock++
	switch m.Name {
	case "uploadDocument":
		hash, docType := args[0].(string), args[1].(string)
		c.docs[from] = append(c.docs[from], document{hash: hash, docType: docType, status: "Pending", ts: c.clock})
		c.appendUploadLog(from, docType, hash)
	case "verifyDocument":
		user := args[0].(common.Address)
		idx := args[1].(*big.Int).Int64()
		d := &c.docs[user][idx]
		d.status = args[2].(string)
		d.notes = args[3].(string)
		d.verifier = from
	case "addVerifier":
		c.verifiers[args[0].(common.Address)] = true
	case "removeVerifier":
		delete(c.verifiers, args[0].(common.Address))
	}
}

func (c *Chain) appendUploadLog(user common.Address, docType, hash string) {
	ev := c.abi.Events["DocumentUploaded"]
	data, err := ev.Inputs.NonIndexed().Pack(docType, hash)
	if err != nil {
		panic(err)
	}
	c.logs = append(c.logs, types.Log{
		Address:     c.address,
		Topics:      []common.Hash{ev.ID, common.BytesToHash(user.Bytes())},
		Data:        data,
		BlockNumber: c.block,
	})
}

func (c *Chain) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.EstimateErr != nil {
		return 0, c.EstimateErr
	}
	m, args, err := c.decode(msg.Data)
	if err != nil {
		return 0, err
	}
	if err := c.check(msg.From, m, args); err != nil {
		return 0, err
	}
	return DefaultGasEstimate, nil
}

func (c *Chain) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.NetworkErr != nil {
		return nil, c.NetworkErr
	}
	return new(big.Int).Set(c.gasPrice), nil
}

func (c *Chain) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nonces[account], nil
}

func (c *Chain) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.SendErr != nil {
		return c.SendErr
	}
	from, err := types.Sender(types.LatestSignerForChainID(c.chainID), tx)
	if err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if tx.Nonce() != c.nonces[from] {
		return fmt.Errorf("nonce too low: have %d, want %d", tx.Nonce(), c.nonces[from])
	}
	c.nonces[from]++
	c.Sent = append(c.Sent, tx)
	c.block++

	receipt := &types.Receipt{
		TxHash:      tx.Hash(),
		BlockNumber: new(big.Int).SetUint64(c.block),
		GasUsed:     tx.Gas() * 8 / 10,
		Status:      types.ReceiptStatusSuccessful,
	}
	m, args, err := c.decode(tx.Data())
	if err != nil || c.RevertMined || c.check(from, m, args) != nil || tx.Gas() < DefaultGasEstimate {
		receipt.Status = types.ReceiptStatusFailed
	} else {
		c.apply(from, m, args)
	}
	c.receipts[tx.Hash()] = receipt
	return nil
}

func (c *Chain) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return r, nil
}

func (c *Chain) ChainID(ctx context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.NetworkErr != nil {
		return nil, c.NetworkErr
	}
	return new(big.Int).Set(c.chainID), nil
}

func (c *Chain) BlockNumber(ctx context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.NetworkErr != nil {
		return 0, c.NetworkErr
	}
	return c.block, nil
}

func (c *Chain) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.NetworkErr != nil {
		return nil, c.NetworkErr
	}
	var out []types.Log
	for _, l := range c.logs {
		if q.FromBlock != nil && l.BlockNumber < q.FromBlock.Uint64() {
			continue
		}
		if len(q.Topics) > 0 && len(q.Topics[0]) > 0 && l.Topics[0] != q.Topics[0][0] {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}
