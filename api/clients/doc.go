/*
Package clients provides a client library for CCIP-Read gateways.

GatewayClient performs the client side of an EIP-3668 lookup for ENS names:

  - builds the resolve(bytes,bytes) call for a name and resolver function
  - posts it to the gateway together with the resolver (sender) address
  - decodes the abi.encode(bytes, uint64, bytes) response envelope
  - checks expiry and recovers the signer of the attestation
  - decodes the resolver result

Responses signed by a key other than the expected signer are rejected with
ErrUnexpectedSigner, and responses past their expiry with ErrExpired.
Gateway errors are returned as *GatewayError carrying the status code and
the gateway's message.
*/
package clients
