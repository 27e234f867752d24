// Package gateway implements the CCIP-Read (EIP-3668) endpoint for ENSIP-10
// wildcard resolution.
//
// A request carries the resolver contract address (sender) and its
// resolve(bytes name, bytes data) calldata. The handler reads the first
// label of the DNS-encoded name, readdresses the inner resolver call to that
// label's labelhash, performs the read against the L2 registry and returns
// the result together with an expiry and a signature over both:
//
//	abi.encode(bytes result, uint64 expires, bytes signature)
//
// Failures are reported as {"message": ...} with a 4xx status for malformed
// or unsupported requests and a generic 500 for registry and signing
// failures. Internal causes are logged, never returned.
package gateway
