// Package main (cmd/gateway) runs the CCIP-Read gateway for ENS names.
//
// A resolver contract on L1 reverts lookups with OffchainLookup pointing at
// this gateway. The gateway reads the requested record for the first label
// of the name from a registry contract on L2, signs the answer and returns
// it for the resolver's callback to verify.
//
// Configuration comes from flags, each of the core settings also readable
// from the environment:
//
//	SIGNER_PRIVATE_KEY          --signer-key
//	REGISTRY_ADDRESS            --registry-address
//	RPC_URL                     --rpc-addr
//	CCIP_VALID_FOR_IN_SECONDS   --validity-seconds
//	GATEWAY_LISTEN_ADDR         --listen-addr
//
// The signer address is logged at startup; it must match the signer the
// resolver contract trusts.
//
// With --dev-records the gateway serves records from a JSON file through an
// in-memory registry and needs no RPC connection. Without a signer key it
// then uses an ephemeral one.
//
// Example usage:
//
//	ccip-gateway --rpc-addr=https://l2.example.org \
//	    --registry-address=0x00000000000000000000000000000000000000aa \
//	    --signer-key=$SIGNER_PRIVATE_KEY \
//	    --listen-addr=0.0.0.0:4000
package main
