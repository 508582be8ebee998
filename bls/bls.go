// Package bls implements the BLS12-381 key material and aggregate signature
// scheme used by the coldspend ledger.
//
// Signatures use the augmented scheme: the signed message is prefixed with
// the serialized public key before hashing to the curve, so aggregating
// signatures over distinct messages is safe against rogue-key attacks.
package bls

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"

	"github.com/coldspend/core/internal/secmem"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"lukechampine.com/frand"
)

const dst = "BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_AUG_"

var (
	g1Gen    bls12381.G1Affine
	identity Signature
)

func init() {
	_, _, g1Gen, _ = bls12381.Generators()
	var inf bls12381.G2Affine
	identity = Signature(inf.Bytes())
}

// A SecretKey is a BLS12-381 scalar in its canonical 32-byte big-endian
// encoding. Callers that are done with a key should Wipe it.
type SecretKey []byte

// A PublicKey is a compressed BLS12-381 G1 point.
type PublicKey [48]byte

// A Signature is a compressed BLS12-381 G2 point.
type Signature [96]byte

func (sk SecretKey) element() (e fr.Element) {
	e.SetBytes(sk)
	return
}

// PublicKey returns the public key corresponding to sk.
func (sk SecretKey) PublicKey() PublicKey {
	e := sk.element()
	var p bls12381.G1Affine
	p.ScalarMultiplication(&g1Gen, e.BigInt(new(big.Int)))
	return PublicKey(p.Bytes())
}

// Sign signs msg with sk.
func (sk SecretKey) Sign(msg []byte) Signature {
	pk := sk.PublicKey()
	h, err := bls12381.HashToG2(append(pk[:], msg...), []byte(dst))
	if err != nil {
		panic(err) // only possible with an invalid dst
	}
	e := sk.element()
	var p bls12381.G2Affine
	p.ScalarMultiplication(&h, e.BigInt(new(big.Int)))
	return Signature(p.Bytes())
}

// Wipe zeroes the scalar. The key must not be used afterward.
func (sk SecretKey) Wipe() { secmem.Zero(sk) }

// GenerateSecretKey creates a new secret key from a secure entropy source.
func GenerateSecretKey() SecretKey {
	seed := frand.Bytes(32)
	defer secmem.Zero(seed)
	sk, err := MasterKey(seed)
	if err != nil {
		panic(err) // seed length is fixed
	}
	return sk
}

func (pk PublicKey) point() (p bls12381.G1Affine, err error) {
	_, err = p.SetBytes(pk[:])
	return
}

// Verify reports whether sig is a valid signature of msg by pk.
func (pk PublicKey) Verify(msg []byte, sig Signature) bool {
	return AggregateVerify([]PublicKey{pk}, [][]byte{msg}, sig)
}

// IsIdentity reports whether sig is the additive identity. Unsigned bundles
// carry the identity signature as a placeholder.
func (sig Signature) IsIdentity() bool { return sig == identity }

// IdentitySignature returns the additive identity signature.
func IdentitySignature() Signature { return identity }

// Aggregate combines signatures by point addition. The result is independent
// of order. Aggregating an empty set yields the identity signature, which
// verifies only against an empty message set.
func Aggregate(sigs []Signature) (Signature, error) {
	var acc bls12381.G2Jac
	for _, sig := range sigs {
		var p bls12381.G2Affine
		if _, err := p.SetBytes(sig[:]); err != nil {
			return Signature{}, fmt.Errorf("invalid signature: %w", err)
		}
		acc.AddMixed(&p)
	}
	var sum bls12381.G2Affine
	sum.FromJacobian(&acc)
	return Signature(sum.Bytes()), nil
}

// AggregateVerify reports whether sig is a valid aggregate signature of msgs
// by pks, pairing each message with the key at the same index. An empty key
// set verifies only the identity signature.
func AggregateVerify(pks []PublicKey, msgs [][]byte, sig Signature) bool {
	if len(pks) != len(msgs) {
		return false
	}
	var sp bls12381.G2Affine
	if _, err := sp.SetBytes(sig[:]); err != nil {
		return false
	}
	if len(pks) == 0 {
		return sp.IsInfinity()
	}
	g1s := make([]bls12381.G1Affine, 0, len(pks)+1)
	g2s := make([]bls12381.G2Affine, 0, len(pks)+1)
	for i, pk := range pks {
		p, err := pk.point()
		if err != nil {
			return false
		}
		aug := make([]byte, len(pk)+len(msgs[i]))
		copy(aug, pk[:])
		copy(aug[len(pk):], msgs[i])
		h, err := bls12381.HashToG2(aug, []byte(dst))
		if err != nil {
			return false
		}
		g1s = append(g1s, p)
		g2s = append(g2s, h)
	}
	var negGen bls12381.G1Affine
	negGen.Neg(&g1Gen)
	g1s = append(g1s, negGen)
	g2s = append(g2s, sp)
	ok, err := bls12381.PairingCheck(g1s, g2s)
	return err == nil && ok
}

// Implementations of fmt.Stringer and encoding.Text(Un)marshaler

func stringerHex(prefix string, data []byte) string {
	return prefix + ":" + hex.EncodeToString(data)
}

func unmarshalHex(dst []byte, prefix string, data []byte) error {
	n, err := hex.Decode(dst, bytes.TrimPrefix(data, []byte(prefix+":")))
	if n < len(dst) {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		return fmt.Errorf("decoding %v:<hex> failed: %w", prefix, err)
	}
	return nil
}

// String implements fmt.Stringer.
func (pk PublicKey) String() string { return stringerHex("bls", pk[:]) }

// MarshalText implements encoding.TextMarshaler.
func (pk PublicKey) MarshalText() ([]byte, error) { return []byte(pk.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (pk *PublicKey) UnmarshalText(b []byte) error { return unmarshalHex(pk[:], "bls", b) }

// String implements fmt.Stringer.
func (sig Signature) String() string { return stringerHex("sig", sig[:]) }

// MarshalText implements encoding.TextMarshaler.
func (sig Signature) MarshalText() ([]byte, error) { return []byte(sig.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (sig *Signature) UnmarshalText(b []byte) error { return unmarshalHex(sig[:], "sig", b) }
