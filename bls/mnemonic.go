package bls

import (
	"github.com/tyler-smith/go-bip39"
	"lukechampine.com/frand"
)

// NewMnemonic generates a fresh 24-word BIP-39 mnemonic from a secure entropy
// source.
func NewMnemonic() string {
	m, err := bip39.NewMnemonic(frand.Bytes(32))
	if err != nil {
		panic(err) // entropy length is fixed
	}
	return m
}

// SeedFromMnemonic stretches a BIP-39 mnemonic into a master seed. The
// passphrase may be empty. The mnemonic is validated against the wordlist
// and its checksum before stretching.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	return bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
}
