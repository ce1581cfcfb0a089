// Package ledger talks to the IdentityVerification contract.
//
// Reads go through eth_call and writes follow a fixed gas policy: the node's estimate plus a
// configured margin, never a hard-coded limit. Every error leaving this package carries one of
// the apperr ledger kinds.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"docverify/internal/apperr"
	"docverify/internal/model"
)

// Reader is the read-only half of the ledger.
type Reader interface {
	FetchDocumentCount(ctx context.Context, account common.Address) (uint64, error)
	FetchDocument(ctx context.Context, account common.Address, index uint64) (*model.DocumentRecord, error)
	CheckIsVerifier(ctx context.Context, account common.Address) (bool, error)
	Owner(ctx context.Context) (common.Address, error)
	// ListSubmitters returns every account that has uploaded a document, in first-upload order.
	ListSubmitters(ctx context.Context) ([]common.Address, error)
}

// Writer submits state-changing calls and waits for them to be mined.
type Writer interface {
	SubmitDocument(ctx context.Context, from common.Address, contentID, documentType string) (*model.Receipt, error)
	SubmitVerification(ctx context.Context, from, subject common.Address, index uint64, decision model.Status, notes string) (*model.Receipt, error)
	// InFlight reports whether account has a write pending.
	InFlight(account common.Address) bool
}

// Inspector reports on the node and the deployed contract.
type Inspector interface {
	FetchNetworkInfo(ctx context.Context) model.NetworkInfo
	CheckContract(ctx context.Context) (*model.ContractInfo, error)
}

type Ledger interface {
	Reader
	Writer
	Inspector
}

// Signer signs transactions for an account. wallet.Provider satisfies it.
type Signer interface {
	SignTx(ctx context.Context, from common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// Options tunes the write path.
type Options struct {
	GasMarginPercent    int
	ReceiptPollInterval time.Duration
	LogsFromBlock       uint64
}

// Client implements Ledger against a single contract deployment.
type Client struct {
	backend Backend
	signer  Signer
	abi     abi.ABI
	address common.Address
	opts    Options
	locks   *AccountLocks
	log     *slog.Logger
	tracer  trace.Tracer
}

// New builds a ledger client. The contract address and ABI always come from configuration.
func New(backend Backend, signer Signer, address common.Address, contractABI abi.ABI, opts Options, log *slog.Logger) *Client {
	if opts.ReceiptPollInterval <= 0 {
		opts.ReceiptPollInterval = time.Second
	}
	if opts.GasMarginPercent < 0 {
		opts.GasMarginPercent = 0
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		backend: backend,
		signer:  signer,
		abi:     contractABI,
		address: address,
		opts:    opts,
		locks:   NewAccountLocks(),
		log:     log.With("component", "ledger"),
		tracer:  otel.Tracer("docverify/internal/ledger"),
	}
}

// Address is the contract address in use.
func (c *Client) Address() common.Address {
	return c.address
}

func (c *Client) call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	to := c.address
	out, err := c.backend.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("call %s: empty response, is the contract deployed at %s?", method, c.address.Hex())
	}
	vals, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	return vals, nil
}

func (c *Client) FetchDocumentCount(ctx context.Context, account common.Address) (uint64, error) {
	vals, err := c.call(ctx, methodGetDocumentCount, account)
	if err != nil {
		return 0, apperr.Wrap(apperr.ErrLedgerReadFailed, err)
	}
	n, ok := vals[0].(*big.Int)
	if !ok || !n.IsUint64() {
		return 0, apperr.Wrapf(apperr.ErrLedgerReadFailed, "unexpected document count %v", vals[0])
	}
	return n.Uint64(), nil
}

func (c *Client) FetchDocument(ctx context.Context, account common.Address, index uint64) (*model.DocumentRecord, error) {
	vals, err := c.call(ctx, methodGetDocument, account, new(big.Int).SetUint64(index))
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrLedgerReadFailed, fmt.Errorf("document %d of %s: %w", index, account.Hex(), err))
	}
	rec, err := decodeDocument(vals)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrLedgerReadFailed, fmt.Errorf("document %d of %s: %w", index, account.Hex(), err))
	}
	rec.Owner = account
	rec.Index = index
	return rec, nil
}

// decodeDocument maps getDocument's outputs
// (documentHash, documentType, status, timestamp, verifier, notes) onto a record.
func decodeDocument(vals []any) (*model.DocumentRecord, error) {
	if len(vals) != 6 {
		return nil, fmt.Errorf("getDocument returned %d values", len(vals))
	}
	hash, ok1 := vals[0].(string)
	docType, ok2 := vals[1].(string)
	rawStatus, ok3 := vals[2].(string)
	ts, ok4 := vals[3].(*big.Int)
	verifier, ok5 := vals[4].(common.Address)
	notes, ok6 := vals[5].(string)
	if !(ok1 && ok2 && ok3 && ok4 && ok5 && ok6) {
		return nil, errors.New("getDocument returned unexpected types")
	}
	status, err := model.ParseStatus(rawStatus)
	if err != nil {
		return nil, err
	}
	rec := &model.DocumentRecord{
		ContentID:    hash,
		DocumentType: docType,
		Status:       status,
		SubmittedAt:  ts.Int64(),
		Notes:        notes,
	}
	if verifier != (common.Address{}) {
		v := verifier
		rec.Verifier = &v
	}
	return rec, nil
}

func (c *Client) CheckIsVerifier(ctx context.Context, account common.Address) (bool, error) {
	vals, err := c.call(ctx, methodIsVerifier, account)
	if err != nil {
		return false, apperr.Wrap(apperr.ErrLedgerReadFailed, err)
	}
	ok, isBool := vals[0].(bool)
	if !isBool {
		return false, apperr.Wrapf(apperr.ErrLedgerReadFailed, "unexpected isVerifier result %v", vals[0])
	}
	return ok, nil
}

func (c *Client) Owner(ctx context.Context) (common.Address, error) {
	vals, err := c.call(ctx, methodOwner)
	if err != nil {
		return common.Address{}, apperr.Wrap(apperr.ErrLedgerReadFailed, err)
	}
	owner, ok := vals[0].(common.Address)
	if !ok {
		return common.Address{}, apperr.Wrapf(apperr.ErrLedgerReadFailed, "unexpected owner result %v", vals[0])
	}
	return owner, nil
}

func (c *Client) ListSubmitters(ctx context.Context) ([]common.Address, error) {
	ev, ok := c.abi.Events[eventDocumentUploaded]
	if !ok {
		return nil, apperr.Wrapf(apperr.ErrLedgerReadFailed, "abi has no %s event", eventDocumentUploaded)
	}
	logs, err := c.backend.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(c.opts.LogsFromBlock),
		Addresses: []common.Address{c.address},
		Topics:    [][]common.Hash{{ev.ID}},
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrLedgerReadFailed, fmt.Errorf("filter logs: %w", err))
	}
	seen := make(map[common.Address]struct{})
	out := make([]common.Address, 0)
	for _, l := range logs {
		if l.Removed || len(l.Topics) < 2 {
			continue
		}
		user := common.BytesToAddress(l.Topics[1].Bytes())
		if _, dup := seen[user]; dup {
			continue
		}
		seen[user] = struct{}{}
		out = append(out, user)
	}
	return out, nil
}

func (c *Client) CheckContract(ctx context.Context) (*model.ContractInfo, error) {
	info := &model.ContractInfo{Address: c.address}
	id, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrLedgerReadFailed, fmt.Errorf("chain id: %w", err))
	}
	info.ChainID = id.Uint64()
	code, err := c.backend.CodeAt(ctx, c.address, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrLedgerReadFailed, fmt.Errorf("code at %s: %w", c.address.Hex(), err))
	}
	info.HasCode = len(code) > 0
	if !info.HasCode {
		return info, nil
	}
	owner, err := c.Owner(ctx)
	if err != nil {
		c.log.WarnContext(ctx, "contract owner lookup failed", "error", err)
		return info, nil
	}
	info.Owner = &owner
	return info, nil
}

func (c *Client) InFlight(account common.Address) bool {
	return c.locks.InFlight(account)
}
