package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"docverify/internal/apperr"
	"docverify/internal/model"
	"docverify/internal/wallet"
)

// WithMargin returns estimate raised by percent, rounded down.
func WithMargin(estimate uint64, percent int) uint64 {
	if percent <= 0 {
		return estimate
	}
	return estimate * uint64(100+percent) / 100
}

// SubmitDocument records (contentID, documentType) for from. The new record starts Pending.
func (c *Client) SubmitDocument(ctx context.Context, from common.Address, contentID, documentType string) (*model.Receipt, error) {
	if contentID == "" {
		return nil, apperr.Validation("content id is required")
	}
	if documentType == "" {
		return nil, apperr.Validation("document type is required")
	}
	return c.transact(ctx, from, methodUploadDocument, contentID, documentType)
}

// SubmitVerification records decision for subject's document at index.
func (c *Client) SubmitVerification(ctx context.Context, from, subject common.Address, index uint64, decision model.Status, notes string) (*model.Receipt, error) {
	if !decision.IsDecision() {
		return nil, apperr.Validation(fmt.Sprintf("%q is not a verification decision", decision))
	}
	return c.transact(ctx, from, methodVerifyDocument, subject, new(big.Int).SetUint64(index), string(decision), notes)
}

func (c *Client) transact(ctx context.Context, from common.Address, method string, args ...any) (*model.Receipt, error) {
	ctx, span := c.tracer.Start(ctx, "ledger."+method)
	defer span.End()
	span.SetAttributes(attribute.String("ledger.from", from.Hex()))

	release, ok := c.locks.TryAcquire(from)
	if !ok {
		span.SetStatus(codes.Error, ErrTransactionInFlight.Error())
		return nil, apperr.Wrap(apperr.ErrLedgerWriteFailed, ErrTransactionInFlight)
	}
	defer release()

	rcpt, err := c.send(ctx, from, method, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.log.WarnContext(ctx, "ledger write failed", "method", method, "from", from.Hex(), "error", err)
		return nil, err
	}
	span.SetAttributes(attribute.String("ledger.tx", rcpt.TransactionHash))
	c.log.InfoContext(ctx, "ledger write mined",
		"method", method,
		"from", from.Hex(),
		"tx", rcpt.TransactionHash,
		"block", rcpt.BlockNumber,
		"gas_used", rcpt.GasUsed,
	)
	return rcpt, nil
}

func (c *Client) send(ctx context.Context, from common.Address, method string, args ...any) (*model.Receipt, error) {
	data, err := c.abi.Pack(method, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrLedgerWriteFailed, fmt.Errorf("pack %s: %w", method, err))
	}
	to := c.address

	// A failed estimate usually means the call would revert; nothing is sent.
	estimate, err := c.backend.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &to, Data: data})
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrLedgerWriteFailed, fmt.Errorf("estimate gas: %w", err))
	}
	gas := WithMargin(estimate, c.opts.GasMarginPercent)

	gasPrice, err := c.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrLedgerWriteFailed, fmt.Errorf("gas price: %w", err))
	}
	nonce, err := c.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrLedgerWriteFailed, fmt.Errorf("nonce: %w", err))
	}
	chainID, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrLedgerWriteFailed, fmt.Errorf("chain id: %w", err))
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &to,
		Data:     data,
	})
	signed, err := c.signer.SignTx(ctx, from, tx, chainID)
	if err != nil {
		return nil, classifySignerError(err)
	}
	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		return nil, classifySignerError(fmt.Errorf("send transaction: %w", err))
	}

	receipt, err := c.waitMined(ctx, signed.Hash())
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrLedgerWriteFailed, fmt.Errorf("wait for %s: %w", signed.Hash().Hex(), err))
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, apperr.Wrapf(apperr.ErrLedgerWriteFailed, "transaction %s reverted", signed.Hash().Hex())
	}
	out := &model.Receipt{
		TransactionHash: signed.Hash().Hex(),
		GasUsed:         receipt.GasUsed,
	}
	if receipt.BlockNumber != nil {
		out.BlockNumber = receipt.BlockNumber.Uint64()
	}
	return out, nil
}

func classifySignerError(err error) error {
	if wallet.IsUserRejection(err) {
		return apperr.Wrap(apperr.ErrLedgerWriteRejected, err)
	}
	return apperr.Wrap(apperr.ErrLedgerWriteFailed, err)
}

// waitMined polls for the receipt until it shows up or ctx ends.
func (c *Client) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(c.opts.ReceiptPollInterval)
	defer ticker.Stop()
	for {
		receipt, err := c.backend.TransactionReceipt(ctx, hash)
		if err == nil && receipt != nil {
			return receipt, nil
		}
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			c.log.DebugContext(ctx, "receipt lookup failed", "tx", hash.Hex(), "error", err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
