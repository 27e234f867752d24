package registry

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ruteri/ccip-ens-gateway/ccip"
)

// FunctionKind identifies one of the resolver reads the gateway proxies.
type FunctionKind int

const (
	// AddrFunc is addr(bytes32) returns (address).
	AddrFunc FunctionKind = iota
	// AddrCoinTypeFunc is addr(bytes32,uint256) returns (bytes).
	AddrCoinTypeFunc
	// TextFunc is text(bytes32,string) returns (string).
	TextFunc
	// ContenthashFunc is contenthash(bytes32) returns (bytes).
	ContenthashFunc
)

// Function describes the ABI shape of a supported resolver read. The first
// input is always the node.
type Function struct {
	Kind      FunctionKind
	Signature string
	Selector  [4]byte

	// Inputs holds every argument, node first.
	Inputs abi.Arguments

	// Outputs holds the single return value.
	Outputs abi.Arguments
}

func (f *Function) String() string {
	return f.Signature
}

var (
	bytes32Ty = mustType("bytes32")
	uint256Ty = mustType("uint256")
	stringTy  = mustType("string")
	bytesTy   = mustType("bytes")
	addressTy = mustType("address")
)

func mustType(t string) abi.Type {
	ty, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return ty
}

func newFunction(kind FunctionKind, signature string, params []abi.Type, output abi.Type) *Function {
	f := &Function{
		Kind:      kind,
		Signature: signature,
		Inputs:    abi.Arguments{{Name: "node", Type: bytes32Ty}},
		Outputs:   abi.Arguments{{Type: output}},
	}
	copy(f.Selector[:], crypto.Keccak256([]byte(signature))[:4])
	for _, p := range params {
		f.Inputs = append(f.Inputs, abi.Argument{Type: p})
	}
	return f
}

// Functions lists every resolver read the gateway supports.
var Functions = []*Function{
	newFunction(AddrFunc, "addr(bytes32)", nil, addressTy),
	newFunction(AddrCoinTypeFunc, "addr(bytes32,uint256)", []abi.Type{uint256Ty}, bytesTy),
	newFunction(TextFunc, "text(bytes32,string)", []abi.Type{stringTy}, stringTy),
	newFunction(ContenthashFunc, "contenthash(bytes32)", nil, bytesTy),
}

var bySelector = func() map[[4]byte]*Function {
	table := make(map[[4]byte]*Function, len(Functions))
	for _, f := range Functions {
		table[f.Selector] = f
	}
	return table
}()

// LookupSelector returns the supported function with the given selector.
func LookupSelector(selector [4]byte) (*Function, error) {
	f, ok := bySelector[selector]
	if !ok {
		return nil, ccip.NewError(ccip.UnsupportedFunction,
			fmt.Sprintf("Unsupported function selector %s", hexutil.Encode(selector[:])), nil)
	}
	return f, nil
}

// FunctionFor returns the supported function of the given kind.
func FunctionFor(kind FunctionKind) *Function {
	for _, f := range Functions {
		if f.Kind == kind {
			return f
		}
	}
	panic(fmt.Sprintf("unknown function kind %d", kind))
}

// EncodeCall builds calldata for f with node and the remaining arguments.
func (f *Function) EncodeCall(node [32]byte, params ...interface{}) ([]byte, error) {
	packed, err := f.Inputs.Pack(append([]interface{}{node}, params...)...)
	if err != nil {
		return nil, fmt.Errorf("could not pack %s: %w", f.Signature, err)
	}
	return append(append([]byte{}, f.Selector[:]...), packed...), nil
}

// EncodeResult ABI-encodes a return value of f.
func (f *Function) EncodeResult(value interface{}) ([]byte, error) {
	return f.Outputs.Pack(value)
}

// DecodeResult decodes an ABI-encoded return value of f.
func (f *Function) DecodeResult(data []byte) (interface{}, error) {
	values, err := f.Outputs.Unpack(data)
	if err != nil {
		return nil, err
	}
	return values[0], nil
}

// InnerCall is a decoded resolver call.
type InnerCall struct {
	Function *Function

	// Node is the name identifier the call was made for.
	Node [32]byte

	// Params holds the arguments following the node, in declaration order.
	Params []interface{}
}

// DecodeInnerCall decodes resolver calldata against the supported functions.
func DecodeInnerCall(calldata []byte) (*InnerCall, error) {
	if len(calldata) < 4 {
		return nil, ccip.NewError(ccip.MalformedArguments, "Invalid function calldata",
			fmt.Errorf("calldata too short: %d bytes", len(calldata)))
	}

	var selector [4]byte
	copy(selector[:], calldata[:4])
	f, err := LookupSelector(selector)
	if err != nil {
		return nil, err
	}

	values, err := f.Inputs.Unpack(calldata[4:])
	if err != nil {
		return nil, ccip.NewError(ccip.MalformedArguments, "Invalid function calldata",
			fmt.Errorf("could not unpack %s: %w", f.Signature, err))
	}

	node, ok := values[0].([32]byte)
	if !ok {
		return nil, ccip.NewError(ccip.MalformedArguments, "Invalid function calldata",
			fmt.Errorf("unexpected node type %T", values[0]))
	}

	return &InnerCall{Function: f, Node: node, Params: values[1:]}, nil
}

// WithNode returns a copy of the call addressed to node. Params are unchanged.
func (c *InnerCall) WithNode(node [32]byte) *InnerCall {
	params := make([]interface{}, len(c.Params))
	copy(params, c.Params)
	return &InnerCall{Function: c.Function, Node: node, Params: params}
}

// Calldata encodes the call.
func (c *InnerCall) Calldata() ([]byte, error) {
	return c.Function.EncodeCall(c.Node, c.Params...)
}
