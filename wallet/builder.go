package wallet

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/coldspend/core/bls"
	"github.com/coldspend/core/consensus"
	"github.com/coldspend/core/types"
)

var (
	// ErrInsufficientFunds is returned when no subset of the candidate coins
	// covers the requested outputs plus fee.
	ErrInsufficientFunds = errors.New("coins do not cover the requested outputs and fee")

	// ErrNothingToSpend is returned for a request with no outputs and no
	// fee; the resulting bundle would be degenerate.
	ErrNothingToSpend = errors.New("nothing to spend")

	// ErrUnknownCoin is returned when a selected coin's puzzle hash does not
	// belong to any key in the ring.
	ErrUnknownCoin = errors.New("no ring key for the coin's puzzle hash")
)

// A Payment is a requested output.
type Payment struct {
	Address types.Address
	Amount  uint64
}

// A CoinSource supplies the unspent coins controlled by an address. It is
// implemented by the full-node collaborator on the online machine.
type CoinSource interface {
	UnspentCoins(addr types.Address) ([]types.Coin, error)
}

// A KeyRing holds the unhardened child public keys minted from an exported
// wallet key, indexed by puzzle hash. It contains no secret material and is
// safe to keep on the online machine.
type KeyRing struct {
	keys  []bls.PublicKey
	index map[types.Address]int
}

// NewKeyRing derives the first n unhardened child keys of the exported root.
func NewKeyRing(root bls.PublicKey, n int) (*KeyRing, error) {
	kr := &KeyRing{index: make(map[types.Address]int, n)}
	for i := 0; i < n; i++ {
		pk, err := root.Derive(bls.Path{{Index: uint32(i)}})
		if err != nil {
			return nil, err
		}
		kr.keys = append(kr.keys, pk)
		kr.index[StandardAddress(pk)] = i
	}
	return kr, nil
}

// Address returns the address of the i'th child key.
func (kr *KeyRing) Address(i int) types.Address { return StandardAddress(kr.keys[i]) }

// Addresses returns the addresses of all derived child keys.
func (kr *KeyRing) Addresses() []types.Address {
	addrs := make([]types.Address, len(kr.keys))
	for i := range kr.keys {
		addrs[i] = kr.Address(i)
	}
	return addrs
}

// PublicKey returns the child key owning addr, if the ring contains it.
func (kr *KeyRing) PublicKey(addr types.Address) (bls.PublicKey, bool) {
	i, ok := kr.index[addr]
	if !ok {
		return bls.PublicKey{}, false
	}
	return kr.keys[i], true
}

// UnspentCoins gathers the unspent coins of every ring address from src.
func (kr *KeyRing) UnspentCoins(src CoinSource) ([]types.Coin, error) {
	var coins []types.Coin
	for _, addr := range kr.Addresses() {
		cs, err := src.UnspentCoins(addr)
		if err != nil {
			return nil, err
		}
		coins = append(coins, cs...)
	}
	return coins, nil
}

// SelectCoins deterministically picks coins totalling at least amount:
// largest amount first, with the coin id as tie-break. Any deterministic rule
// would do; this one minimizes the number of inputs.
func SelectCoins(coins []types.Coin, amount uint64) ([]types.Coin, error) {
	sorted := append([]types.Coin(nil), coins...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Amount != sorted[j].Amount {
			return sorted[i].Amount > sorted[j].Amount
		}
		a, b := sorted[i].ID(), sorted[j].ID()
		return bytes.Compare(a[:], b[:]) < 0
	})
	var total uint64
	for i, c := range sorted {
		total += c.Amount
		if total >= amount {
			return sorted[:i+1], nil
		}
	}
	return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, total, amount)
}

// An UnsignedBundle pairs a bundle with the messages its signer must sign.
type UnsignedBundle struct {
	Bundle          types.SpendBundle
	SigningMessages [][]byte
	Fee             uint64
}

// Envelope wraps the unsigned bundle for transport across the air gap.
func (ub *UnsignedBundle) Envelope(n *consensus.Network) types.Envelope {
	return types.Envelope{Bundle: ub.Bundle, Fee: ub.Fee, NetworkPrefix: n.AddressPrefix}
}

// bundleDigest commits to the selected coin set and the primaries, giving
// every spend the same view of the bundle it belongs to.
func bundleDigest(coins []types.Coin, primaries []types.CreateCoin) types.Hash256 {
	buf := make([]byte, 0, 17+32*len(coins)+40*len(primaries))
	buf = append(buf, "coldspend/bundle|"...)
	for _, c := range coins {
		id := c.ID()
		buf = append(buf, id[:]...)
	}
	for _, p := range primaries {
		buf = append(buf, p.PuzzleHash[:]...)
		buf = binary.BigEndian.AppendUint64(buf, p.Amount)
	}
	return types.HashBytes(buf)
}

// BuildBundle selects coins covering payments plus fee and assembles an
// unsigned bundle. All primaries (payments and any change) are created by the
// first selected coin's spend only, so spending several inputs never
// duplicates an output. The first spend also reserves the fee and announces a
// digest of the whole spend set; every other spend asserts that announcement,
// so no subset of the spends can be stripped and re-bundled. Change, when the
// selection overshoots, is paid to changeAddr.
func BuildBundle(n *consensus.Network, kr *KeyRing, coins []types.Coin, payments []Payment, fee uint64, changeAddr types.Address) (*UnsignedBundle, error) {
	var required uint64
	for _, p := range payments {
		required += p.Amount
	}
	required += fee
	if required == 0 {
		return nil, ErrNothingToSpend
	}
	selected, err := SelectCoins(coins, required)
	if err != nil {
		return nil, err
	}
	var total uint64
	for _, c := range selected {
		total += c.Amount
	}

	primaries := make([]types.CreateCoin, 0, len(payments)+1)
	for _, p := range payments {
		primaries = append(primaries, types.CreateCoin{PuzzleHash: p.Address, Amount: p.Amount})
	}
	if change := total - required; change > 0 {
		primaries = append(primaries, types.CreateCoin{PuzzleHash: changeAddr, Amount: change})
	}

	digest := bundleDigest(selected, primaries)
	annID := types.AnnouncementID(selected[0].ID(), digest)

	sb := types.SpendBundle{Signature: bls.IdentitySignature()}
	msgs := make([][]byte, 0, len(selected))
	for i, c := range selected {
		pk, ok := kr.PublicKey(c.PuzzleHash)
		if !ok {
			return nil, fmt.Errorf("%w: coin %v", ErrUnknownCoin, c.ID())
		}
		var conds []types.Condition
		if i == 0 {
			for _, p := range primaries {
				conds = append(conds, p)
			}
			if fee > 0 {
				conds = append(conds, types.ReserveFee{Amount: fee})
			}
			conds = append(conds, types.CreateCoinAnnouncement{Message: digest})
		} else {
			conds = append(conds, types.AssertCoinAnnouncement{AnnouncementID: annID})
		}
		solution, err := types.EncodeConditions(conds)
		if err != nil {
			return nil, err
		}
		cs := types.CoinSpend{Coin: c, PuzzleReveal: types.StandardPuzzle(pk), Solution: solution}
		msg, err := cs.SigningMessage(n.AggSigData)
		if err != nil {
			return nil, err
		}
		sb.CoinSpends = append(sb.CoinSpends, cs)
		msgs = append(msgs, msg)
	}

	// reject anything the ledger would reject before it reaches the signer
	if err := n.ValidateBundle(&sb); err != nil {
		return nil, err
	}
	return &UnsignedBundle{Bundle: sb, SigningMessages: msgs, Fee: fee}, nil
}
