package model

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Status is the review state of a ledger document. The ledger stores it as a free string;
// only these three values are accepted past the ledger boundary.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusVerified Status = "Verified"
	StatusRejected Status = "Rejected"
)

// ParseStatus normalises a ledger status string.
func ParseStatus(s string) (Status, error) {
	v := strings.TrimSpace(s)
	for _, st := range []Status{StatusPending, StatusVerified, StatusRejected} {
		if strings.EqualFold(v, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unrecognised document status %q", s)
}

// IsTerminal reports whether no further decision may be recorded.
func (s Status) IsTerminal() bool {
	return s == StatusVerified || s == StatusRejected
}

// IsDecision reports whether s is a valid verification outcome.
func (s Status) IsDecision() bool {
	return s.IsTerminal()
}

// DocumentRecord is the ledger-side representation of one submission.
// The ledger is the only source of truth; this struct is never mutated to change status.
type DocumentRecord struct {
	Owner        common.Address  `json:"owner" swaggertype:"string"`
	Index        uint64          `json:"index"`
	ContentID    string          `json:"content_id"`
	DocumentType string          `json:"document_type"`
	Status       Status          `json:"status"`
	SubmittedAt  int64           `json:"submitted_at"`
	Verifier     *common.Address `json:"verifier,omitempty" swaggertype:"string"`
	Notes        string          `json:"notes,omitempty"`
	URL          string          `json:"url,omitempty"`
}

// Receipt is the outcome of a mined state-changing ledger call.
type Receipt struct {
	TransactionHash string `json:"transaction_hash"`
	BlockNumber     uint64 `json:"block_number"`
	GasUsed         uint64 `json:"gas_used"`
}

// NetworkInfo is a best-effort snapshot of the connected chain.
type NetworkInfo struct {
	Connected    bool    `json:"connected"`
	ChainID      *uint64 `json:"chain_id,omitempty"`
	LatestBlock  *uint64 `json:"latest_block,omitempty"`
	GasPriceGwei string  `json:"gas_price_gwei,omitempty"`
	PeerCount    *uint64 `json:"peer_count,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// ContractInfo describes the deployed ledger contract.
type ContractInfo struct {
	Address common.Address  `json:"address" swaggertype:"string"`
	ChainID uint64          `json:"chain_id"`
	HasCode bool            `json:"has_code"`
	Owner   *common.Address `json:"owner,omitempty" swaggertype:"string"`
}

// DocumentTypes are the document kinds offered to clients.
var DocumentTypes = []DocumentType{
	{Tag: "passport", Label: "Passport"},
	{Tag: "drivers_license", Label: "Driver's License"},
	{Tag: "national_id", Label: "National ID"},
	{Tag: "utility_bill", Label: "Utility Bill"},
	{Tag: "bank_statement", Label: "Bank Statement"},
}

type DocumentType struct {
	Tag   string `json:"tag"`
	Label string `json:"label"`
}
