// Package registry routes and performs resolver reads against an L2 registry
// contract on behalf of the gateway.
//
// The supported surface is a fixed table of resolver functions:
//
//	addr(bytes32)              returns (address)
//	addr(bytes32,uint256)      returns (bytes)
//	text(bytes32,string)       returns (string)
//	contenthash(bytes32)       returns (bytes)
//
// Calls with any other selector are rejected before the chain is contacted.
//
// The registry is indexed by labelhash rather than namehash: the node of
// every incoming call is replaced with the labelhash of the first label of
// the queried name. One registry can therefore serve the same subnames under
// any number of parent names. Two parents sharing a label share its records;
// the gateway does not scope records by parent name.
//
// MemoryRegistry is an in-memory implementation of the same read surface for
// tests and local development.
package registry
