// Package interfaces defines the core interfaces and types shared by the
// gateway components. It provides the contract between the request pipeline
// and its collaborators without implementation details.
package interfaces

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ContractAddress represents an Ethereum contract address.
type ContractAddress [20]byte

// NewContractAddressFromBytes creates a new contract address from a 20-byte slice.
func NewContractAddressFromBytes(addr []byte) (ContractAddress, error) {
	if len(addr) != 20 {
		return ContractAddress{}, errors.New("invalid address length: must be 20 bytes")
	}

	var res ContractAddress
	copy(res[:], addr)
	return res, nil
}

// NewContractAddressFromHex parses a 40-character hex address, with or without 0x prefix.
func NewContractAddressFromHex(addr string) (ContractAddress, error) {
	clean := strings.TrimPrefix(addr, "0x")
	if len(clean) != 40 {
		return ContractAddress{}, errors.New("invalid address length: hex string must be 40 characters")
	}

	addrBytes, err := hex.DecodeString(clean)
	if err != nil {
		return ContractAddress{}, fmt.Errorf("invalid hex format: %w", err)
	}

	return NewContractAddressFromBytes(addrBytes)
}

// String returns the hex string representation of the contract address.
func (addr ContractAddress) String() string {
	return hex.EncodeToString(addr[:])
}

// Bytes returns the raw 20-byte address.
func (addr ContractAddress) Bytes() []byte {
	return addr[:]
}

// Address converts to the go-ethereum address type.
func (addr ContractAddress) Address() common.Address {
	return common.Address(addr)
}

// Labelhash is the keccak-256 hash of a single name label. The registry uses
// it as the record key, independent of the label's parent name.
type Labelhash [32]byte

// NewLabelhash hashes the UTF-8 bytes of label.
func NewLabelhash(label string) Labelhash {
	return Labelhash(crypto.Keccak256Hash([]byte(label)))
}

// Hex returns the 0x-prefixed hex form of the labelhash.
func (l Labelhash) Hex() string {
	return common.Hash(l).Hex()
}
