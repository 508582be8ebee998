// Package consensus defines network parameters and the validation rules a
// spend bundle must satisfy before it is signed or broadcast.
package consensus

import "github.com/coldspend/core/types"

// A Network encapsulates the consensus parameters that distinguish one coin
// ledger from another.
type Network struct {
	Name          string
	AddressPrefix string        // human-readable part of encoded addresses
	AggSigData    types.Hash256 // mixed into every signing message
	MaxBlockCost  uint64
}

func parseHash(s string) (h types.Hash256) {
	if err := h.UnmarshalText([]byte("h:" + s)); err != nil {
		panic(err)
	}
	return
}

// Mainnet returns the parameters of the main network.
func Mainnet() *Network {
	return &Network{
		Name:          "mainnet",
		AddressPrefix: "xch",
		AggSigData:    parseHash("ccd5bb71183532bff220ba46c268991a3ff07eb358e8255a65c30a2dce0e5fbb"),
		MaxBlockCost:  11_000_000_000,
	}
}

// Testnet returns the parameters of the test network.
func Testnet() *Network {
	return &Network{
		Name:          "testnet",
		AddressPrefix: "txch",
		AggSigData:    parseHash("ae83525ba8d1dd3f09b277de18ca3e43fc0af20d20c4b3e92ef2a48bd291ccb2"),
		MaxBlockCost:  11_000_000_000,
	}
}
