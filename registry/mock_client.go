package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ruteri/ccip-ens-gateway/interfaces"
)

// CoinTypeETH is the SLIP-44 coin type addr(bytes32) reads.
const CoinTypeETH = 60

// MemoryRegistry is an in-memory L2 registry that answers eth_call for the
// supported resolver reads. It implements interfaces.ChainCaller and is used
// in tests and in development mode in place of a chain connection.
//
// Unset records read as zero values, like the on-chain resolver.
type MemoryRegistry struct {
	mutex   sync.RWMutex
	address common.Address
	records map[interfaces.Labelhash]*record
}

type record struct {
	addrs       map[uint64][]byte
	texts       map[string]string
	contenthash []byte
}

// NewMemoryRegistry creates an empty registry deployed at address.
func NewMemoryRegistry(address common.Address) *MemoryRegistry {
	return &MemoryRegistry{
		address: address,
		records: make(map[interfaces.Labelhash]*record),
	}
}

// Address returns the address calls must be sent to.
func (m *MemoryRegistry) Address() common.Address {
	return m.address
}

func (m *MemoryRegistry) recordFor(label string) *record {
	key := interfaces.NewLabelhash(label)
	r, ok := m.records[key]
	if !ok {
		r = &record{addrs: make(map[uint64][]byte), texts: make(map[string]string)}
		m.records[key] = r
	}
	return r
}

// SetAddr sets the address of label for coinType.
func (m *MemoryRegistry) SetAddr(label string, coinType uint64, addr []byte) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.recordFor(label).addrs[coinType] = common.CopyBytes(addr)
}

// SetText sets the text record key of label.
func (m *MemoryRegistry) SetText(label string, key string, value string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.recordFor(label).texts[key] = value
}

// SetContenthash sets the contenthash of label.
func (m *MemoryRegistry) SetContenthash(label string, hash []byte) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.recordFor(label).contenthash = common.CopyBytes(hash)
}

// CallContract implements interfaces.ChainCaller. Calls to any other address
// return no data, as eth_call does for an account without code.
func (m *MemoryRegistry) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if call.To == nil || *call.To != m.address {
		return nil, nil
	}

	inner, err := DecodeInnerCall(call.Data)
	if err != nil {
		return nil, fmt.Errorf("execution reverted: %w", err)
	}

	m.mutex.RLock()
	r := m.records[interfaces.Labelhash(inner.Node)]
	value := r.read(inner)
	m.mutex.RUnlock()

	return inner.Function.EncodeResult(value)
}

// read returns the value call asks for. A nil record holds no values.
func (r *record) read(call *InnerCall) interface{} {
	switch call.Function.Kind {
	case AddrFunc:
		if r == nil || len(r.addrs[CoinTypeETH]) != common.AddressLength {
			return common.Address{}
		}
		return common.BytesToAddress(r.addrs[CoinTypeETH])
	case AddrCoinTypeFunc:
		coinType := call.Params[0].(*big.Int)
		if r == nil || !coinType.IsUint64() {
			return []byte{}
		}
		return nonNil(r.addrs[coinType.Uint64()])
	case TextFunc:
		if r == nil {
			return ""
		}
		return r.texts[call.Params[0].(string)]
	case ContenthashFunc:
		if r == nil {
			return []byte{}
		}
		return nonNil(r.contenthash)
	default:
		panic(fmt.Sprintf("unhandled function %s", call.Function))
	}
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

// RecordsFile is the JSON format accepted by LoadRecords, keyed by label:
//
//	{
//	  "chonk": {
//	    "addrs": {"60": "0x..."},
//	    "texts": {"bio": "CHONK!!!"},
//	    "contenthash": "0xe301..."
//	  }
//	}
type RecordsFile map[string]struct {
	Addrs       map[string]hexutil.Bytes `json:"addrs"`
	Texts       map[string]string        `json:"texts"`
	Contenthash hexutil.Bytes            `json:"contenthash"`
}

// LoadRecords reads a RecordsFile and stores its records.
func (m *MemoryRegistry) LoadRecords(r io.Reader) error {
	var file RecordsFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return fmt.Errorf("could not parse records: %w", err)
	}

	for label, records := range file {
		for coinType, addr := range records.Addrs {
			ct, err := strconv.ParseUint(coinType, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid coin type %q for %q: %w", coinType, label, err)
			}
			m.SetAddr(label, ct, addr)
		}
		for key, value := range records.Texts {
			m.SetText(label, key, value)
		}
		if records.Contenthash != nil {
			m.SetContenthash(label, records.Contenthash)
		}
	}
	return nil
}
