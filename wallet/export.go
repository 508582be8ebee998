package wallet

import (
	"encoding/json"

	"github.com/coldspend/core/bls"
)

// A KeyExport carries the public key at a hardened path prefix from the
// offline machine to the online machine, which can then mint unhardened
// child addresses without ever holding secret material. The hardened prefix
// itself cannot be recomputed from any public key, so the export reveals
// nothing about sibling trees.
type KeyExport struct {
	PublicKey bls.PublicKey `json:"publicKey"`
	Path      bls.Path      `json:"path"`
}

// ExportWalletKey derives the wallet's hardened path prefix from seed and
// returns the export document for the online machine.
func ExportWalletKey(seed []byte) (KeyExport, error) {
	master, err := bls.MasterKey(seed)
	if err != nil {
		return KeyExport{}, err
	}
	defer master.Wipe()
	prefix := bls.WalletPathPrefix()
	sk := master.Derive(prefix)
	defer sk.Wipe()
	return KeyExport{PublicKey: sk.PublicKey(), Path: prefix}, nil
}

// Ring derives the first n child keys of the exported key.
func (ke KeyExport) Ring(n int) (*KeyRing, error) {
	return NewKeyRing(ke.PublicKey, n)
}

// MarshalDocument returns the canonical serialization of the export.
func (ke KeyExport) MarshalDocument() ([]byte, error) {
	return json.Marshal(ke)
}

// ParseKeyExport parses a key export document.
func ParseKeyExport(b []byte) (ke KeyExport, err error) {
	err = json.Unmarshal(b, &ke)
	return
}
