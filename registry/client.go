package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/ccip-ens-gateway/ccip"
	"github.com/ruteri/ccip-ens-gateway/interfaces"
)

// ErrEmptyResult is returned when the registry call returns no data, which is
// what eth_call yields for an address without code.
var ErrEmptyResult = errors.New("registry returned no data")

// Invoker performs resolver reads against an L2 registry contract. The
// registry is keyed by labelhash, so the node of every call is replaced by
// the labelhash of the name's first label before the call is made.
type Invoker struct {
	caller  interfaces.ChainCaller
	address common.Address
	timeout time.Duration
}

// NewInvoker creates an invoker for the registry contract at address.
func NewInvoker(caller interfaces.ChainCaller, address common.Address) *Invoker {
	return &Invoker{
		caller:  caller,
		address: address,
	}
}

// WithTimeout bounds every registry call by timeout. Zero disables the bound.
func (i *Invoker) WithTimeout(timeout time.Duration) *Invoker {
	return &Invoker{
		caller:  i.caller,
		address: i.address,
		timeout: timeout,
	}
}

// Address returns the registry contract address.
func (i *Invoker) Address() common.Address {
	return i.address
}

// Resolve implements interfaces.Resolver.
func (i *Invoker) Resolve(ctx context.Context, labelhash interfaces.Labelhash, calldata []byte) ([]byte, error) {
	call, err := DecodeInnerCall(calldata)
	if err != nil {
		return nil, err
	}

	result, _, err := i.Invoke(ctx, call, labelhash)
	return result, err
}

// Invoke calls the registry with call addressed to labelhash. It returns the
// ABI-encoded result together with the decoded value.
func (i *Invoker) Invoke(ctx context.Context, call *InnerCall, labelhash interfaces.Labelhash) ([]byte, interface{}, error) {
	calldata, err := call.WithNode(labelhash).Calldata()
	if err != nil {
		return nil, nil, ccip.NewError(ccip.InternalFault, ccip.GenericFailureMessage, err)
	}

	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	raw, err := i.caller.CallContract(ctx, ethereum.CallMsg{To: &i.address, Data: calldata}, nil)
	if err != nil {
		return nil, nil, ccip.NewError(ccip.UpstreamCallFailed, ccip.GenericFailureMessage,
			fmt.Errorf("%s call failed: %w", call.Function, err))
	}
	if len(raw) == 0 {
		return nil, nil, ccip.NewError(ccip.UpstreamCallFailed, ccip.GenericFailureMessage,
			fmt.Errorf("%s: %w", call.Function, ErrEmptyResult))
	}

	value, err := call.Function.DecodeResult(raw)
	if err != nil {
		return nil, nil, ccip.NewError(ccip.UpstreamCallFailed, ccip.GenericFailureMessage,
			fmt.Errorf("could not decode %s result: %w", call.Function, err))
	}

	// Re-encode so the attested bytes are the canonical encoding of the value.
	result, err := call.Function.EncodeResult(value)
	if err != nil {
		return nil, nil, ccip.NewError(ccip.InternalFault, ccip.GenericFailureMessage, err)
	}

	return result, value, nil
}
