// Package cryptoutils provides the response attestation of the gateway.
//
// Every response is signed with a secp256k1 key over a digest that binds the
// requesting resolver, an expiry, the request and the result:
//
//	digest = keccak256(0x1900 ‖ sender (20 bytes) ‖ expires (8 bytes, big-endian)
//	                   ‖ keccak256(request) ‖ keccak256(result))
//
// The layout matches the verifier used by the resolver's callback function
// and must not change. Signatures are serialized as r ‖ s ‖ v (65 bytes)
// with v in {27, 28}, the form accepted by ecrecover-based verifiers.
//
// The gateway does not enforce expiry. A response whose expiry is already in
// the past is still well-formed; rejecting it is the verifier's job.
package cryptoutils
