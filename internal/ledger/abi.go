package ledger

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// defaultABI is the IdentityVerification contract interface.
//
//go:embed identity_verification.abi.json
var defaultABI []byte

// Contract surface names. Argument order matters to the deployed contract.
const (
	methodUploadDocument   = "uploadDocument"   // (string documentHash, string documentType)
	methodVerifyDocument   = "verifyDocument"   // (address user, uint256 docIndex, string status, string notes)
	methodGetDocument      = "getDocument"      // (address user, uint256 index)
	methodGetDocumentCount = "getDocumentCount" // (address user)
	methodIsVerifier       = "isVerifier"       // (address)
	methodOwner            = "owner"

	eventDocumentUploaded = "DocumentUploaded"
)

var requiredMethods = []string{
	methodUploadDocument,
	methodVerifyDocument,
	methodGetDocument,
	methodGetDocumentCount,
	methodIsVerifier,
	methodOwner,
}

// LoadABI parses the ABI at path, or the embedded default when path is empty.
// The ABI must expose every method the client calls.
func LoadABI(path string) (abi.ABI, error) {
	raw := defaultABI
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return abi.ABI{}, fmt.Errorf("read abi: %w", err)
		}
		raw = b
	}
	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse abi: %w", err)
	}
	for _, m := range requiredMethods {
		if _, ok := parsed.Methods[m]; !ok {
			return abi.ABI{}, fmt.Errorf("abi is missing method %s", m)
		}
	}
	return parsed, nil
}
