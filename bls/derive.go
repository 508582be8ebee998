package bls

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/coldspend/core/internal/secmem"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"golang.org/x/crypto/hkdf"
)

// Key trees use EIP-2333 for hardened steps, which require the parent secret
// key, and an additive scheme for unhardened steps, whose public branch is
// computable from the parent public key alone. Wallet policy keeps the top
// three levels of every path hardened, so a leaked child key never exposes
// its siblings to a holder of the parent public key.

// ErrHardenedPath is returned when a public-only derivation encounters a
// hardened path component.
var ErrHardenedPath = errors.New("hardened derivation requires the secret key")

// A PathComponent is a single derivation step.
type PathComponent struct {
	Index    uint32
	Hardened bool
}

// A Path is an ordered sequence of derivation steps from the master key.
type Path []PathComponent

// WalletPath returns the derivation path of the index'th wallet key:
// m/12381h/8444h/2h followed by index, hardened only when hardened is set.
func WalletPath(index uint32, hardened bool) Path {
	return append(WalletPathPrefix(), PathComponent{Index: index, Hardened: hardened})
}

// WalletPathPrefix returns the hardened prefix shared by all wallet keys.
func WalletPathPrefix() Path {
	return Path{
		{Index: 12381, Hardened: true}, // purpose
		{Index: 8444, Hardened: true},  // coin type
		{Index: 2, Hardened: true},     // wallet keys
	}
}

// MasterKey derives the tree's root secret key from seed via the EIP-2333
// key-generation function. The seed must be at least 32 bytes.
func MasterKey(seed []byte) (SecretKey, error) {
	if len(seed) < 32 {
		return nil, errors.New("seed must be at least 32 bytes")
	}
	return hkdfModR(seed, nil), nil
}

// Derive derives the child secret key at path, relative to sk.
func (sk SecretKey) Derive(path Path) SecretKey {
	child := append(SecretKey(nil), sk...)
	for _, pc := range path {
		var next SecretKey
		if pc.Hardened {
			next = deriveHardened(child, pc.Index)
		} else {
			next = deriveUnhardened(child, pc.Index)
		}
		child.Wipe()
		child = next
	}
	return child
}

// Derive derives the child public key at path, relative to pk, without any
// secret material. It fails if any component is hardened.
func (pk PublicKey) Derive(path Path) (PublicKey, error) {
	child := pk
	for _, pc := range path {
		if pc.Hardened {
			return PublicKey{}, ErrHardenedPath
		}
		var err error
		if child, err = child.deriveUnhardened(pc.Index); err != nil {
			return PublicKey{}, err
		}
	}
	return child, nil
}

// childDigest commits to the parent public key and the child index; it is the
// scalar offset between an unhardened parent and child.
func childDigest(pk PublicKey, index uint32) [32]byte {
	buf := make([]byte, len(pk)+4)
	copy(buf, pk[:])
	binary.BigEndian.PutUint32(buf[len(pk):], index)
	return sha256.Sum256(buf)
}

func deriveUnhardened(sk SecretKey, index uint32) SecretKey {
	h := childDigest(sk.PublicKey(), index)
	var a, b fr.Element
	a.SetBytes(sk)
	b.SetBytes(h[:])
	a.Add(&a, &b)
	out := a.Bytes()
	return out[:]
}

func (pk PublicKey) deriveUnhardened(index uint32) (PublicKey, error) {
	p, err := pk.point()
	if err != nil {
		return PublicKey{}, err
	}
	h := childDigest(pk, index)
	var e fr.Element
	e.SetBytes(h[:])
	var t bls12381.G1Affine
	t.ScalarMultiplication(&g1Gen, e.BigInt(new(big.Int)))
	var j bls12381.G1Jac
	j.FromAffine(&p)
	j.AddMixed(&t)
	p.FromJacobian(&j)
	return PublicKey(p.Bytes()), nil
}

// deriveHardened implements the EIP-2333 lamport parent-to-child derivation.
func deriveHardened(sk SecretKey, index uint32) SecretKey {
	salt := make([]byte, 4)
	binary.BigEndian.PutUint32(salt, index)

	ikm := make([]byte, 32)
	copy(ikm, sk)
	notIkm := make([]byte, len(ikm))
	for i := range ikm {
		notIkm[i] = ^ikm[i]
	}
	defer secmem.Zero(ikm)
	defer secmem.Zero(notIkm)

	// Two 255-chunk lamport secret keys, one from the key and one from its
	// complement; the child key is derived from the hash of their hashed
	// chunks.
	h := sha256.New()
	for _, input := range [][]byte{ikm, notIkm} {
		okm := make([]byte, 255*32)
		prk := hkdf.Extract(sha256.New, input, salt)
		readFull(hkdf.Expand(sha256.New, prk, nil), okm)
		for i := 0; i < 255; i++ {
			chunk := sha256.Sum256(okm[i*32 : (i+1)*32])
			h.Write(chunk[:])
		}
		secmem.Zero(okm)
	}
	lamportPK := h.Sum(nil)
	defer secmem.Zero(lamportPK)
	return hkdfModR(lamportPK, nil)
}

// hkdfModR is the HKDF_mod_r function of EIP-2333 and the IETF BLS signature
// draft: HKDF-SHA256 keyed by ikm, expanded to 48 bytes and reduced into the
// scalar field, rejecting the zero scalar.
func hkdfModR(ikm, keyInfo []byte) SecretKey {
	input := make([]byte, len(ikm)+1) // ikm || I2OSP(0, 1)
	copy(input, ikm)
	defer secmem.Zero(input)
	info := append(append([]byte(nil), keyInfo...), 0, 48) // I2OSP(L, 2)
	salt := []byte("BLS-SIG-KEYGEN-SALT-")
	for {
		sum := sha256.Sum256(salt)
		salt = sum[:]
		okm := make([]byte, 48)
		prk := hkdf.Extract(sha256.New, input, salt)
		readFull(hkdf.Expand(sha256.New, prk, info), okm)
		var e fr.Element
		e.SetBytes(okm)
		secmem.Zero(okm)
		if !e.IsZero() {
			out := e.Bytes()
			return out[:]
		}
	}
}

func readFull(r io.Reader, buf []byte) {
	if _, err := io.ReadFull(r, buf); err != nil {
		panic(err) // output length is within HKDF limits
	}
}

// String implements fmt.Stringer.
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString("m")
	for _, pc := range p {
		sb.WriteString("/")
		sb.WriteString(strconv.FormatUint(uint64(pc.Index), 10))
		if pc.Hardened {
			sb.WriteString("h")
		}
	}
	return sb.String()
}

// MarshalText implements encoding.TextMarshaler.
func (p Path) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Path) UnmarshalText(b []byte) error {
	parts := strings.Split(string(b), "/")
	if parts[0] != "m" {
		return errors.New("decoding m/<index> failed: missing m prefix")
	}
	path := make(Path, 0, len(parts)-1)
	for _, part := range parts[1:] {
		hardened := strings.HasSuffix(part, "h")
		index, err := strconv.ParseUint(strings.TrimSuffix(part, "h"), 10, 32)
		if err != nil {
			return fmt.Errorf("decoding m/<index> failed: %w", err)
		}
		path = append(path, PathComponent{Index: uint32(index), Hardened: hardened})
	}
	*p = path
	return nil
}

// ParsePath parses a derivation path from a string.
func ParsePath(s string) (p Path, err error) {
	err = p.UnmarshalText([]byte(s))
	return
}
