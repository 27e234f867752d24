package cryptoutils

import (
	"crypto/ecdsa"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// DefaultValidity is how long a signed response is accepted by the verifier
// when no validity is configured.
const DefaultValidity = 60 * time.Second

// digestPrefix namespaces the digest away from personal_sign (0x1945) and
// EIP-712 (0x1901) messages. The on-chain verifier expects exactly this prefix.
var digestPrefix = []byte{0x19, 0x00}

// ErrInvalidSignature is returned when a signature cannot be recovered.
var ErrInvalidSignature = errors.New("invalid signature")

// AttestationDigest computes the hash the gateway signs for a response:
//
//	keccak256(0x1900 ‖ sender ‖ uint64be(expires) ‖ keccak256(request) ‖ keccak256(result))
func AttestationDigest(sender common.Address, expires uint64, request []byte, result []byte) common.Hash {
	var expiresBytes [8]byte
	binary.BigEndian.PutUint64(expiresBytes[:], expires)

	return crypto.Keccak256Hash(
		digestPrefix,
		sender.Bytes(),
		expiresBytes[:],
		crypto.Keccak256(request),
		crypto.Keccak256(result),
	)
}

// Signer attests gateway responses with a secp256k1 key.
// It implements interfaces.AttestationSigner and is safe for concurrent use.
type Signer struct {
	key      *ecdsa.PrivateKey
	address  common.Address
	validity time.Duration
	now      func() time.Time
}

// NewSigner creates a signer whose attestations are valid for validity.
// A non-positive validity selects DefaultValidity.
func NewSigner(key *ecdsa.PrivateKey, validity time.Duration) (*Signer, error) {
	if key == nil {
		return nil, errors.New("signing key is required")
	}
	if validity <= 0 {
		validity = DefaultValidity
	}

	return &Signer{
		key:      key,
		address:  crypto.PubkeyToAddress(key.PublicKey),
		validity: validity,
		now:      time.Now,
	}, nil
}

// WithClock returns a copy of the signer that reads the time from now.
func (s *Signer) WithClock(now func() time.Time) *Signer {
	return &Signer{
		key:      s.key,
		address:  s.address,
		validity: s.validity,
		now:      now,
	}
}

// Address returns the Ethereum address of the signing key.
func (s *Signer) Address() common.Address {
	return s.address
}

// Validity returns how long attestations are valid for.
func (s *Signer) Validity() time.Duration {
	return s.validity
}

// Sign attests result as the answer to request for sender. The signature is
// r ‖ s ‖ v with v in {27, 28}.
func (s *Signer) Sign(request []byte, result []byte, sender common.Address) (uint64, []byte, error) {
	expires := uint64(s.now().Add(s.validity).Unix())
	digest := AttestationDigest(sender, expires, request, result)

	sig, err := crypto.Sign(digest.Bytes(), s.key)
	if err != nil {
		return 0, nil, fmt.Errorf("could not sign attestation: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27

	return expires, sig, nil
}

// RecoverSigner returns the address that produced signature over the
// attestation digest of the given fields. Both v encodings (0/1 and 27/28)
// are accepted. Expiry is not checked.
func RecoverSigner(sender common.Address, expires uint64, request []byte, result []byte, signature []byte) (common.Address, error) {
	if len(signature) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: length %d", ErrInvalidSignature, len(signature))
	}

	sig := common.CopyBytes(signature)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	digest := AttestationDigest(sender, expires, request, result)
	pubkey, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pubkey), nil
}

// LoadPrivateKey parses a hex-encoded secp256k1 private key, with or without 0x prefix.
func LoadPrivateKey(keyHex string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(keyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid signing key: %w", err)
	}
	return key, nil
}
