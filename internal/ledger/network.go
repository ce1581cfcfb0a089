package ledger

import (
	"context"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/params"

	"docverify/internal/model"
)

// FetchNetworkInfo never fails. Each sub-call is independent; whatever succeeded is returned
// and Connected is false when the chain id, the primary probe, could not be read.
func (c *Client) FetchNetworkInfo(ctx context.Context) model.NetworkInfo {
	var (
		info model.NetworkInfo
		errs []error
	)
	if id, err := c.backend.ChainID(ctx); err != nil {
		errs = append(errs, err)
	} else {
		v := id.Uint64()
		info.ChainID = &v
		info.Connected = true
	}
	if n, err := c.backend.BlockNumber(ctx); err != nil {
		errs = append(errs, err)
	} else {
		info.LatestBlock = &n
	}
	if price, err := c.backend.SuggestGasPrice(ctx); err != nil {
		errs = append(errs, err)
	} else {
		info.GasPriceGwei = ToGwei(price)
	}
	if pc, ok := c.backend.(PeerCounter); ok {
		if n, err := pc.PeerCount(ctx); err != nil {
			errs = append(errs, err)
		} else {
			info.PeerCount = &n
		}
	}
	if err := errors.Join(errs...); err != nil {
		info.Error = err.Error()
		c.log.DebugContext(ctx, "network info incomplete", "error", err)
	}
	return info
}

// ToGwei formats a wei amount in gwei without trailing zeros.
func ToGwei(wei *big.Int) string {
	if wei == nil {
		return ""
	}
	f := new(big.Float).SetPrec(256).SetInt(wei)
	f.Quo(f, new(big.Float).SetPrec(256).SetFloat64(params.GWei))
	return f.Text('f', -1)
}
