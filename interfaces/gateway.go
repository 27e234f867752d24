package interfaces

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// ChainCaller is the read-only view of the chain the gateway resolves against.
// *ethclient.Client satisfies it.
type ChainCaller interface {
	// CallContract executes an eth_call. A nil blockNumber selects the latest block.
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Resolver answers an inner resolver call for a single label.
type Resolver interface {
	// Resolve decodes calldata, substitutes labelhash for its node argument,
	// performs the read against the registry and returns the ABI-encoded result.
	Resolve(ctx context.Context, labelhash Labelhash, calldata []byte) ([]byte, error)
}

// AttestationSigner signs gateway responses for on-chain verification.
type AttestationSigner interface {
	// Sign attests that result answers request for sender. It returns the
	// expiry of the attestation and a 65-byte signature.
	Sign(request []byte, result []byte, sender common.Address) (expires uint64, signature []byte, err error)

	// Address is the Ethereum address of the signing key.
	Address() common.Address
}
