// Package ccip implements the wire formats of the CCIP-Read (EIP-3668)
// gateway protocol for ENSIP-10 wildcard resolution: DNS-encoded names, the
// resolve(bytes,bytes) call a resolver forwards, and the signed response
// envelope the resolver's callback verifies.
package ccip

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// ResolveSignature is the ENSIP-10 extended resolver entry point.
const ResolveSignature = "resolve(bytes,bytes)"

// ResolveSelector is the 4-byte selector of ResolveSignature (0x9061b923).
var ResolveSelector = crypto.Keccak256([]byte(ResolveSignature))[:4]

var (
	bytesTy  = mustType("bytes")
	uint64Ty = mustType("uint64")

	resolveArgs  = abi.Arguments{{Type: bytesTy}, {Type: bytesTy}}
	envelopeArgs = abi.Arguments{{Type: bytesTy}, {Type: uint64Ty}, {Type: bytesTy}}
)

func mustType(t string) abi.Type {
	ty, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return ty
}

// Request is a single CCIP-Read lookup as posted by a client.
type Request struct {
	// Sender is the resolver contract that raised OffchainLookup.
	Sender common.Address

	// Data is the ABI-encoded resolve(bytes,bytes) call.
	Data []byte
}

// AttestedResponse is the signed answer to a Request.
type AttestedResponse struct {
	// Result is the ABI-encoded return value of the inner call.
	Result []byte

	// Expires is the unix time after which the verifier rejects the response.
	Expires uint64

	// Signature is a 65-byte r‖s‖v secp256k1 signature over the attestation digest.
	Signature []byte
}

// DecodeResolveCall splits a resolve(bytes,bytes) call into the DNS-encoded
// name and the inner resolver calldata.
func DecodeResolveCall(data []byte) (name []byte, inner []byte, err error) {
	if len(data) < 4 || !bytes.Equal(data[:4], ResolveSelector) {
		return nil, nil, NewError(MalformedEnvelope, "Invalid resolve calldata", fmt.Errorf("selector is not %s", ResolveSignature))
	}

	values, err := resolveArgs.Unpack(data[4:])
	if err != nil {
		return nil, nil, NewError(MalformedEnvelope, "Invalid resolve calldata", err)
	}

	name, ok := values[0].([]byte)
	if !ok {
		return nil, nil, NewError(MalformedEnvelope, "Invalid resolve calldata", fmt.Errorf("unexpected name type %T", values[0]))
	}
	inner, ok = values[1].([]byte)
	if !ok {
		return nil, nil, NewError(MalformedEnvelope, "Invalid resolve calldata", fmt.Errorf("unexpected data type %T", values[1]))
	}

	return name, inner, nil
}

// EncodeResolveCall builds the resolve(bytes,bytes) call for a DNS-encoded
// name and inner calldata.
func EncodeResolveCall(name []byte, inner []byte) ([]byte, error) {
	packed, err := resolveArgs.Pack(name, inner)
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, ResolveSelector...), packed...), nil
}

// EncodeEnvelope packs a response as abi.encode(bytes, uint64, bytes).
func EncodeEnvelope(result []byte, expires uint64, signature []byte) ([]byte, error) {
	packed, err := envelopeArgs.Pack(result, expires, signature)
	if err != nil {
		return nil, NewError(InternalFault, GenericFailureMessage, err)
	}
	return packed, nil
}

// Encode packs r with EncodeEnvelope.
func (r *AttestedResponse) Encode() ([]byte, error) {
	return EncodeEnvelope(r.Result, r.Expires, r.Signature)
}

// DecodeEnvelope is the inverse of EncodeEnvelope.
func DecodeEnvelope(data []byte) (*AttestedResponse, error) {
	values, err := envelopeArgs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("invalid response envelope: %w", err)
	}

	result, ok1 := values[0].([]byte)
	expires, ok2 := values[1].(uint64)
	signature, ok3 := values[2].([]byte)
	if !ok1 || !ok2 || !ok3 {
		return nil, fmt.Errorf("invalid response envelope field types")
	}

	return &AttestedResponse{Result: result, Expires: expires, Signature: signature}, nil
}
