package ccip

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Namehash computes the ENS node of a dotted name. The empty name is the
// root node. Names are hashed as given; callers normalize beforehand.
func Namehash(name string) common.Hash {
	var node common.Hash
	name = strings.TrimSuffix(name, ".")
	if name == "" {
		return node
	}

	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		node = crypto.Keccak256Hash(node.Bytes(), crypto.Keccak256([]byte(labels[i])))
	}
	return node
}
