// Package wallet implements the two halves of the air-gapped spending
// workflow: building unsigned spend bundles from public key material on the
// online machine, and signing them offline with keys re-derived from the
// master seed.
package wallet

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/coldspend/core/bls"
	"github.com/coldspend/core/consensus"
	"github.com/coldspend/core/types"
)

var (
	// ErrInvalidChecksum is returned when an address string fails checksum
	// or payload validation.
	ErrInvalidChecksum = errors.New("invalid address checksum")

	// ErrUnknownPrefix is returned when an address was encoded for a
	// different network.
	ErrUnknownPrefix = errors.New("unknown address prefix")
)

// StandardAddress returns the address locking coins to pk: the hash of the
// standard puzzle for pk.
func StandardAddress(pk bls.PublicKey) types.Address {
	return types.Address(types.StandardPuzzle(pk).Hash())
}

// EncodeAddress encodes a puzzle hash as a bech32m string carrying the
// network's address prefix.
func EncodeAddress(n *consensus.Network, addr types.Address) string {
	conv, err := bech32.ConvertBits(addr[:], 8, 5, true)
	if err != nil {
		panic(err) // cannot fail for 8-to-5 with padding
	}
	s, err := bech32.EncodeM(n.AddressPrefix, conv)
	if err != nil {
		panic(err) // prefix and payload are valid by construction
	}
	return s
}

// DecodeAddress decodes a bech32m address, checking its checksum and that its
// prefix matches the network. It is the inverse of EncodeAddress.
func DecodeAddress(n *consensus.Network, s string) (types.Address, error) {
	prefix, data, version, err := bech32.DecodeGeneric(s)
	if err != nil {
		return types.Address{}, fmt.Errorf("%w: %v", ErrInvalidChecksum, err)
	}
	if version != bech32.VersionM {
		return types.Address{}, ErrInvalidChecksum
	}
	if prefix != n.AddressPrefix {
		return types.Address{}, fmt.Errorf("%w: %q", ErrUnknownPrefix, prefix)
	}
	conv, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil || len(conv) != len(types.Address{}) {
		return types.Address{}, fmt.Errorf("%w: bad payload", ErrInvalidChecksum)
	}
	var addr types.Address
	copy(addr[:], conv)
	return addr, nil
}
