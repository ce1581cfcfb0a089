// Package wallet provides the signer capability that stands in for a browser wallet.
//
// A Provider exposes the four things the workflow needs from a wallet: request access to
// accounts, list the accounts already exposed, sign a transaction, and notify when the exposed
// accounts change. The first account of any list is the active one.
package wallet

import (
	"context"
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrUserRejected is returned when the account holder declines a request.
var ErrUserRejected = errors.New("user rejected the request")

// ErrNoAccounts is returned when the provider exposes no account.
var ErrNoAccounts = errors.New("no accounts available")

// eip1193UserRejected is the provider error code for a declined request.
const eip1193UserRejected = 4001

type Provider interface {
	// RequestAccounts asks for access (eth_requestAccounts); it may unlock or prompt.
	RequestAccounts(ctx context.Context) ([]common.Address, error)
	// Accounts lists the accounts already exposed (eth_accounts) without prompting.
	Accounts(ctx context.Context) ([]common.Address, error)
	// SignTx signs tx on behalf of from.
	SignTx(ctx context.Context, from common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
	// SubscribeAccountsChanged delivers the new account list whenever it changes.
	SubscribeAccountsChanged(ch chan<- []common.Address) event.Subscription
}

// Selector is implemented by providers that let the operator switch the active account.
type Selector interface {
	Select(ctx context.Context, account common.Address) error
}

// IsUserRejection reports whether err means the holder declined to sign or connect.
func IsUserRejection(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUserRejected) || errors.Is(err, keystore.ErrLocked) {
		return true
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == eip1193UserRejected {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "user denied") || strings.Contains(msg, "user rejected")
}

func equalAccounts(a, b []common.Address) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
