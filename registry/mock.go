package registry

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/stretchr/testify/mock"
)

// MockChainCaller mocks the ChainCaller interface
type MockChainCaller struct {
	mock.Mock
}

// CallContract mocks the CallContract method
func (m *MockChainCaller) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	args := m.Called(ctx, call, blockNumber)
	result, _ := args.Get(0).([]byte)
	return result, args.Error(1)
}
