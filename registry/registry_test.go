package registry

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ruteri/ccip-ens-gateway/ccip"
	"github.com/ruteri/ccip-ens-gateway/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var registryAddr = common.HexToAddress("0x00000000000000000000000000000000000000aa")

func namehash(name string) [32]byte {
	var node [32]byte
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		labelHash := crypto.Keccak256([]byte(labels[i]))
		node = crypto.Keccak256Hash(node[:], labelHash)
	}
	return node
}

func TestSelectorTable(t *testing.T) {
	expected := map[FunctionKind]string{
		AddrFunc:         "0x3b3b57de",
		AddrCoinTypeFunc: "0xf1cb7e06",
		TextFunc:         "0x59d1d43c",
		ContenthashFunc:  "0xbc1c58d1",
	}
	for kind, selector := range expected {
		f := FunctionFor(kind)
		assert.Equal(t, selector, hexutil.Encode(f.Selector[:]), f.Signature)

		found, err := LookupSelector(f.Selector)
		require.NoError(t, err)
		assert.Same(t, f, found)
	}

	_, err := LookupSelector([4]byte{0xde, 0xad, 0xbe, 0xef})
	require.Error(t, err)
	assert.Equal(t, ccip.UnsupportedFunction, ccip.KindOf(err))
	assert.Equal(t, "Unsupported function selector 0xdeadbeef", ccip.PublicMessage(err))
}

func TestDecodeInnerCall(t *testing.T) {
	node := namehash("chonk.eth")

	cases := []struct {
		kind   FunctionKind
		params []interface{}
	}{
		{AddrFunc, nil},
		{AddrCoinTypeFunc, []interface{}{big.NewInt(2147483658)}},
		{TextFunc, []interface{}{"bio"}},
		{ContenthashFunc, nil},
	}
	for _, tc := range cases {
		f := FunctionFor(tc.kind)
		t.Run(f.Signature, func(t *testing.T) {
			calldata, err := f.EncodeCall(node, tc.params...)
			require.NoError(t, err)

			call, err := DecodeInnerCall(calldata)
			require.NoError(t, err)
			assert.Same(t, f, call.Function)
			assert.Equal(t, node, call.Node)
			require.Len(t, call.Params, len(tc.params))
			for i := range tc.params {
				assert.Equal(t, tc.params[i], call.Params[i])
			}

			reencoded, err := call.Calldata()
			require.NoError(t, err)
			assert.Equal(t, calldata, reencoded)
		})
	}
}

func TestDecodeInnerCall_Malformed(t *testing.T) {
	text := FunctionFor(TextFunc)
	valid, err := text.EncodeCall(namehash("chonk.eth"), "bio")
	require.NoError(t, err)

	for name, calldata := range map[string][]byte{
		"empty":       nil,
		"short":       {0x59, 0xd1},
		"no args":     text.Selector[:],
		"truncated":   valid[:68],
		"bad offsets": append(append([]byte{}, valid[:36]...), make([]byte, 32)...),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeInnerCall(calldata)
			require.Error(t, err)
			assert.Equal(t, ccip.MalformedArguments, ccip.KindOf(err))
		})
	}
}

func TestResultRoundTrip(t *testing.T) {
	values := map[FunctionKind]interface{}{
		AddrFunc:         common.HexToAddress("0xd00d726b2aD6C81E894DC6B87BE6Ce9c5572D2cd"),
		AddrCoinTypeFunc: []byte{0x01, 0x02, 0x03},
		TextFunc:         "CHONK!!!",
		ContenthashFunc:  hexutil.MustDecode("0xe3010170122005b43a88130afedd1d8d99c271000298c8ec8dde7868be7f29fee5196ac91462"),
	}
	for kind, value := range values {
		f := FunctionFor(kind)
		encoded, err := f.EncodeResult(value)
		require.NoError(t, err, f.Signature)

		decoded, err := f.DecodeResult(encoded)
		require.NoError(t, err, f.Signature)
		assert.Equal(t, value, decoded, f.Signature)
	}
}

func TestWithNode(t *testing.T) {
	call := &InnerCall{
		Function: FunctionFor(TextFunc),
		Node:     namehash("chonk.eth"),
		Params:   []interface{}{"bio"},
	}
	labelhash := interfaces.NewLabelhash("chonk")

	rewritten := call.WithNode(labelhash)
	assert.Equal(t, [32]byte(labelhash), rewritten.Node)
	assert.Equal(t, call.Params, rewritten.Params)
	assert.Equal(t, namehash("chonk.eth"), call.Node, "original call must not change")
}

func newTestRegistry() *MemoryRegistry {
	reg := NewMemoryRegistry(registryAddr)
	reg.SetText("chonk", "bio", "CHONK!!!")
	reg.SetAddr("chonk", CoinTypeETH, common.HexToAddress("0x1111111111111111111111111111111111111111").Bytes())
	reg.SetAddr("chonk", 420, []byte{0x02})
	reg.SetContenthash("chonk", []byte{0xe3, 0x01})
	return reg
}

func TestInvoker_Resolve(t *testing.T) {
	invoker := NewInvoker(newTestRegistry(), registryAddr)
	labelhash := interfaces.NewLabelhash("chonk")
	ctx := context.Background()

	cases := []struct {
		kind     FunctionKind
		params   []interface{}
		expected interface{}
	}{
		{TextFunc, []interface{}{"bio"}, "CHONK!!!"},
		{TextFunc, []interface{}{"missing"}, ""},
		{AddrFunc, nil, common.HexToAddress("0x1111111111111111111111111111111111111111")},
		{AddrCoinTypeFunc, []interface{}{big.NewInt(420)}, []byte{0x02}},
		{AddrCoinTypeFunc, []interface{}{big.NewInt(0)}, []byte{}},
		{ContenthashFunc, nil, []byte{0xe3, 0x01}},
	}
	for _, tc := range cases {
		f := FunctionFor(tc.kind)
		calldata, err := f.EncodeCall(namehash("chonk.eth"), tc.params...)
		require.NoError(t, err)

		result, err := invoker.Resolve(ctx, labelhash, calldata)
		require.NoError(t, err, f.Signature)

		decoded, err := f.DecodeResult(result)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, decoded, f.Signature)
	}
}

func TestInvoker_UnknownLabelReadsZeroValues(t *testing.T) {
	invoker := NewInvoker(newTestRegistry(), registryAddr)

	call, err := DecodeInnerCall(mustEncode(t, AddrFunc, namehash("nobody.eth")))
	require.NoError(t, err)

	_, value, err := invoker.Invoke(context.Background(), call, interfaces.NewLabelhash("nobody"))
	require.NoError(t, err)
	assert.Equal(t, common.Address{}, value)
}

func TestInvoker_LabelSharedAcrossParents(t *testing.T) {
	invoker := NewInvoker(newTestRegistry(), registryAddr)
	labelhash := interfaces.NewLabelhash("chonk")

	var results [][]byte
	for _, parent := range []string{"unruggable.eth", "clowes.eth"} {
		calldata, err := FunctionFor(TextFunc).EncodeCall(namehash("chonk."+parent), "bio")
		require.NoError(t, err)

		result, err := invoker.Resolve(context.Background(), labelhash, calldata)
		require.NoError(t, err)
		results = append(results, result)
	}
	assert.Equal(t, results[0], results[1])
}

func TestInvoker_UnsupportedSelectorMakesNoCall(t *testing.T) {
	caller := new(MockChainCaller)
	invoker := NewInvoker(caller, registryAddr)

	_, err := invoker.Resolve(context.Background(), interfaces.NewLabelhash("chonk"), []byte{0xde, 0xad, 0xbe, 0xef})
	require.Error(t, err)
	assert.Equal(t, ccip.UnsupportedFunction, ccip.KindOf(err))
	caller.AssertNotCalled(t, "CallContract", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvoker_UpstreamFailure(t *testing.T) {
	labelhash := interfaces.NewLabelhash("chonk")
	expectedCalldata, err := FunctionFor(TextFunc).EncodeCall(labelhash, "bio")
	require.NoError(t, err)

	caller := new(MockChainCaller)
	caller.On("CallContract", mock.Anything, mock.MatchedBy(func(msg ethereum.CallMsg) bool {
		return *msg.To == registryAddr && string(msg.Data) == string(expectedCalldata)
	}), (*big.Int)(nil)).Return(nil, errors.New("dial tcp: connection refused")).Once()

	invoker := NewInvoker(caller, registryAddr)
	_, err = invoker.Resolve(context.Background(), labelhash, mustEncode(t, TextFunc, namehash("chonk.eth"), "bio"))
	require.Error(t, err)
	assert.Equal(t, ccip.UpstreamCallFailed, ccip.KindOf(err))
	assert.NotContains(t, ccip.PublicMessage(err), "connection refused")
	caller.AssertExpectations(t)
}

func TestInvoker_BadResults(t *testing.T) {
	for name, ret := range map[string][]byte{
		"no code":     {},
		"short data":  {0x01, 0x02},
		"bad offsets": make([]byte, 31),
	} {
		t.Run(name, func(t *testing.T) {
			caller := new(MockChainCaller)
			caller.On("CallContract", mock.Anything, mock.Anything, mock.Anything).Return(ret, nil)

			invoker := NewInvoker(caller, registryAddr)
			_, err := invoker.Resolve(context.Background(), interfaces.NewLabelhash("chonk"), mustEncode(t, ContenthashFunc, namehash("chonk.eth")))
			require.Error(t, err)
			assert.Equal(t, ccip.UpstreamCallFailed, ccip.KindOf(err))
		})
	}
}

func TestInvoker_WrongRegistryAddress(t *testing.T) {
	invoker := NewInvoker(newTestRegistry(), common.HexToAddress("0x00000000000000000000000000000000000000bb"))
	_, err := invoker.Resolve(context.Background(), interfaces.NewLabelhash("chonk"), mustEncode(t, ContenthashFunc, namehash("chonk.eth")))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestInvoker_Timeout(t *testing.T) {
	caller := new(MockChainCaller)
	caller.On("CallContract", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	invoker := NewInvoker(caller, registryAddr).WithTimeout(10 * time.Millisecond)
	assert.Equal(t, registryAddr, invoker.Address())

	_, err := invoker.Resolve(context.Background(), interfaces.NewLabelhash("chonk"), mustEncode(t, AddrFunc, namehash("chonk.eth")))
	require.Error(t, err)
	assert.Equal(t, ccip.UpstreamCallFailed, ccip.KindOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryRegistry_LoadRecords(t *testing.T) {
	reg := NewMemoryRegistry(registryAddr)
	err := reg.LoadRecords(strings.NewReader(`{
		"raffy": {
			"addrs": {"60": "0x51050ec063d393217b436747617ad1c2285aeeee"},
			"texts": {"avatar": "https://raffy.antistupid.com/ens.jpg"},
			"contenthash": "0xe301"
		}
	}`))
	require.NoError(t, err)

	invoker := NewInvoker(reg, registryAddr)
	_, value, err := invoker.Invoke(context.Background(), &InnerCall{
		Function: FunctionFor(TextFunc),
		Params:   []interface{}{"avatar"},
	}, interfaces.NewLabelhash("raffy"))
	require.NoError(t, err)
	assert.Equal(t, "https://raffy.antistupid.com/ens.jpg", value)

	_, value, err = invoker.Invoke(context.Background(), &InnerCall{Function: FunctionFor(AddrFunc)}, interfaces.NewLabelhash("raffy"))
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x51050ec063d393217b436747617ad1c2285aeeee"), value)

	assert.Error(t, reg.LoadRecords(strings.NewReader(`{"x": {"addrs": {"eth": "0x00"}}}`)))
	assert.Error(t, reg.LoadRecords(strings.NewReader(`not json`)))
}

func mustEncode(t *testing.T, kind FunctionKind, node [32]byte, params ...interface{}) []byte {
	t.Helper()
	calldata, err := FunctionFor(kind).EncodeCall(node, params...)
	require.NoError(t, err)
	return calldata
}
