// Package types defines the essential types of the coldspend ledger.
package types

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/coldspend/core/bls"
)

// A Hash256 is a generic 256-bit cryptographic hash.
type Hash256 [32]byte

// An Address is the hash of the puzzle locking a coin, used as the
// destination of payments.
type Address Hash256

// A CoinID uniquely identifies a coin.
type CoinID Hash256

// A Program is an opaque serialized puzzle or solution.
type Program []byte

// A Coin is a value record in the ledger's unspent set. Its identity commits
// to its parent, its puzzle hash, and its amount; once created it is
// immutable until a spend removes it.
type Coin struct {
	ParentID   CoinID  `json:"parentID"`
	PuzzleHash Address `json:"puzzleHash"`
	Amount     uint64  `json:"amount"`
}

// ID returns the hash that uniquely identifies the coin.
func (c Coin) ID() CoinID {
	buf := make([]byte, 32+32+8)
	copy(buf[:32], c.ParentID[:])
	copy(buf[32:64], c.PuzzleHash[:])
	binary.BigEndian.PutUint64(buf[64:], c.Amount)
	return CoinID(HashBytes(buf))
}

// A CoinSpend reveals the puzzle locking a coin and supplies the solution
// whose conditions authorize the spend. The reveal must hash to the coin's
// puzzle hash.
type CoinSpend struct {
	Coin         Coin    `json:"coin"`
	PuzzleReveal Program `json:"puzzleReveal"`
	Solution     Program `json:"solution"`
}

// Conditions decodes the conditions emitted by the spend's solution.
func (cs CoinSpend) Conditions() ([]Condition, error) {
	return DecodeSolution(cs.Solution)
}

// SigningMessage returns the message the coin's owner must sign: the spend's
// conditions hash bound to the coin id and the network's signature domain.
func (cs CoinSpend) SigningMessage(domain Hash256) ([]byte, error) {
	if _, err := cs.Conditions(); err != nil {
		return nil, err
	}
	ch := ConditionsHash(cs.Solution)
	id := cs.Coin.ID()
	msg := make([]byte, 0, 96)
	msg = append(msg, ch[:]...)
	msg = append(msg, id[:]...)
	msg = append(msg, domain[:]...)
	return msg, nil
}

// A SpendBundle is the unit of ledger-state transition: a set of coin spends
// and one aggregate signature covering all of them. A bundle is atomic; a
// missing or mismatched spend invalidates the aggregate.
type SpendBundle struct {
	CoinSpends []CoinSpend   `json:"coinSpends"`
	Signature  bls.Signature `json:"aggregatedSignature"`
}

// Signed reports whether an aggregate signature has been attached. Unsigned
// bundles carry the identity signature as a placeholder.
func (sb *SpendBundle) Signed() bool {
	return sb.Signature != (bls.Signature{}) && !sb.Signature.IsIdentity()
}

// Additions returns the coins created by the bundle.
func (sb *SpendBundle) Additions() ([]Coin, error) {
	var coins []Coin
	for _, cs := range sb.CoinSpends {
		conds, err := cs.Conditions()
		if err != nil {
			return nil, err
		}
		id := cs.Coin.ID()
		for _, c := range conds {
			if cc, ok := c.(CreateCoin); ok {
				coins = append(coins, Coin{ParentID: id, PuzzleHash: cc.PuzzleHash, Amount: cc.Amount})
			}
		}
	}
	return coins, nil
}

// Fee returns the total fee reserved by the bundle.
func (sb *SpendBundle) Fee() (uint64, error) {
	var fee uint64
	for _, cs := range sb.CoinSpends {
		conds, err := cs.Conditions()
		if err != nil {
			return 0, err
		}
		for _, c := range conds {
			if rf, ok := c.(ReserveFee); ok {
				fee += rf.Amount
			}
		}
	}
	return fee, nil
}

// An Envelope is the exchange document passed across the air gap. It carries
// the bundle plus the metadata the offline signer displays before signing.
type Envelope struct {
	Bundle        SpendBundle `json:"bundle"`
	Fee           uint64      `json:"fee"`
	NetworkPrefix string      `json:"networkPrefix"`
}

// MarshalDocument returns the canonical serialization of the envelope.
// Parsing and re-marshaling a canonical document yields identical bytes.
func (e Envelope) MarshalDocument() ([]byte, error) {
	return json.Marshal(e)
}

// ParseEnvelope parses an exchange document.
func ParseEnvelope(b []byte) (e Envelope, err error) {
	err = json.Unmarshal(b, &e)
	return
}

// Implementations of fmt.Stringer, encoding.Text(Un)marshaler, and json.(Un)marshaler

func stringerHex(prefix string, data []byte) string {
	return prefix + ":" + hex.EncodeToString(data)
}

func marshalHex(prefix string, data []byte) ([]byte, error) {
	return []byte(stringerHex(prefix, data)), nil
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
func (h Hash256) String() string { return stringerHex("h", h[:]) }

// MarshalText implements encoding.TextMarshaler.
func (h Hash256) MarshalText() ([]byte, error) { return marshalHex("h", h[:]) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash256) UnmarshalText(b []byte) error { return unmarshalHex(h[:], "h", b) }

// String implements fmt.Stringer.
func (a Address) String() string { return stringerHex("ph", a[:]) }

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) { return marshalHex("ph", a[:]) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(b []byte) error { return unmarshalHex(a[:], "ph", b) }

// String implements fmt.Stringer.
func (id CoinID) String() string { return stringerHex("coin", id[:]) }

// MarshalText implements encoding.TextMarshaler.
func (id CoinID) MarshalText() ([]byte, error) { return marshalHex("coin", id[:]) }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *CoinID) UnmarshalText(b []byte) error { return unmarshalHex(id[:], "coin", b) }

// String implements fmt.Stringer.
func (p Program) String() string { return hex.EncodeToString(p) }

// MarshalText implements encoding.TextMarshaler.
func (p Program) MarshalText() ([]byte, error) { return []byte(hex.EncodeToString(p)), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Program) UnmarshalText(b []byte) error {
	buf := make([]byte, hex.DecodedLen(len(b)))
	if _, err := hex.Decode(buf, b); err != nil {
		return fmt.Errorf("decoding program hex failed: %w", err)
	}
	*p = buf
	return nil
}
