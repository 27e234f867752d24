// Package api defines the HTTP-facing types of the CCIP-Read gateway and the
// configuration of the server that hosts it.
package api

// GatewayRequest is the JSON body a CCIP-Read client posts to the gateway.
// Both fields are 0x-prefixed hex strings.
type GatewayRequest struct {
	// Sender is the resolver contract that raised OffchainLookup.
	Sender string `json:"sender"`

	// Data is the callData of the OffchainLookup, an ABI-encoded
	// resolve(bytes,bytes) call.
	Data string `json:"data"`
}

// GatewayResponse is the successful reply: the hex-encoded
// abi.encode(bytes result, uint64 expires, bytes signature).
type GatewayResponse struct {
	Data string `json:"data"`
}

// ErrorResponse is the reply to a failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}
