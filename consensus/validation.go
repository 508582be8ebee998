package consensus

import (
	"errors"
	"fmt"

	"github.com/coldspend/core/bls"
	"github.com/coldspend/core/types"
)

// Execution cost parameters. Every spend pays a fixed base cost standing in
// for puzzle execution, a per-byte cost on its reveal and solution, one
// signature-slot cost, and a cost per coin created.
const (
	CostPerByte       = 12_000
	CostPerSignature  = 1_200_000
	CostPerCreateCoin = 1_800_000
	CostPerSpendBase  = 2_500_000
)

var (
	// ErrCostExceeded is returned when a bundle's total execution cost
	// exceeds the network's per-block limit.
	ErrCostExceeded = errors.New("bundle cost exceeds the maximum block cost")

	// ErrEmptyBundle is returned for a degenerate bundle with no spends. Its
	// identity aggregate would verify vacuously, so it must never circulate.
	ErrEmptyBundle = errors.New("bundle contains no spends")

	// ErrInvalidPuzzleReveal is returned when a spend's puzzle reveal does
	// not hash to its coin's puzzle hash.
	ErrInvalidPuzzleReveal = errors.New("puzzle reveal does not hash to the coin's puzzle hash")

	// ErrUnbalancedBundle is returned when a bundle creates more value,
	// including its fee reservation, than it spends.
	ErrUnbalancedBundle = errors.New("bundle creates more value than it spends")

	// ErrMissingAnnouncement is returned when a spend asserts an announcement
	// that no spend in the bundle creates.
	ErrMissingAnnouncement = errors.New("asserted announcement is not created in the bundle")

	// ErrInvalidSignature is returned when a bundle's aggregate signature
	// does not verify against its spends.
	ErrInvalidSignature = errors.New("aggregate signature is invalid")
)

// SpendCost returns the execution cost of a single spend.
func SpendCost(cs types.CoinSpend) (uint64, error) {
	conds, err := cs.Conditions()
	if err != nil {
		return 0, err
	}
	cost := uint64(CostPerSpendBase + CostPerSignature)
	cost += uint64(len(cs.PuzzleReveal)+len(cs.Solution)) * CostPerByte
	for _, c := range conds {
		if _, ok := c.(types.CreateCoin); ok {
			cost += CostPerCreateCoin
		}
	}
	return cost, nil
}

// BundleCost returns the total execution cost of a bundle.
func BundleCost(sb *types.SpendBundle) (uint64, error) {
	var total uint64
	for _, cs := range sb.CoinSpends {
		cost, err := SpendCost(cs)
		if err != nil {
			return 0, err
		}
		total += cost
	}
	return total, nil
}

// ValidateCost checks a cost against a ceiling.
func ValidateCost(cost, maxCost uint64) error {
	if cost > maxCost {
		return fmt.Errorf("%w: %d > %d", ErrCostExceeded, cost, maxCost)
	}
	return nil
}

// ValidateBundle checks the structural validity of a bundle: it must contain
// at least one spend, every reveal must hash to its coin's puzzle hash, every
// asserted announcement must be created by some spend in the bundle, the
// created value plus reserved fee must not exceed the spent value, and the
// total cost must not exceed the network's block limit. Signature validity is
// checked separately by VerifyBundleSignature. The ledger repeats all of
// these checks at broadcast time; passing here is not authoritative.
func (n *Network) ValidateBundle(sb *types.SpendBundle) error {
	if len(sb.CoinSpends) == 0 {
		return ErrEmptyBundle
	}
	created := make(map[types.Hash256]bool)
	var asserted []types.Hash256
	var in, out uint64
	for _, cs := range sb.CoinSpends {
		if types.Address(cs.PuzzleReveal.Hash()) != cs.Coin.PuzzleHash {
			return fmt.Errorf("%w: coin %v", ErrInvalidPuzzleReveal, cs.Coin.ID())
		}
		conds, err := cs.Conditions()
		if err != nil {
			return err
		}
		if in += cs.Coin.Amount; in < cs.Coin.Amount {
			return fmt.Errorf("%w: input value overflows", ErrUnbalancedBundle)
		}
		id := cs.Coin.ID()
		for _, c := range conds {
			switch c := c.(type) {
			case types.CreateCoin:
				if out += c.Amount; out < c.Amount {
					return fmt.Errorf("%w: output value overflows", ErrUnbalancedBundle)
				}
			case types.ReserveFee:
				if out += c.Amount; out < c.Amount {
					return fmt.Errorf("%w: output value overflows", ErrUnbalancedBundle)
				}
			case types.CreateCoinAnnouncement:
				created[types.AnnouncementID(id, c.Message)] = true
			case types.AssertCoinAnnouncement:
				asserted = append(asserted, c.AnnouncementID)
			}
		}
	}
	if out > in {
		return ErrUnbalancedBundle
	}
	for _, id := range asserted {
		if !created[id] {
			return ErrMissingAnnouncement
		}
	}
	cost, err := BundleCost(sb)
	if err != nil {
		return err
	}
	return ValidateCost(cost, n.MaxBlockCost)
}

// VerifyBundleSignature verifies the aggregate signature against the public
// keys revealed by the bundle's own puzzles and each spend's signing message.
func (n *Network) VerifyBundleSignature(sb *types.SpendBundle) error {
	if len(sb.CoinSpends) == 0 {
		return ErrEmptyBundle
	}
	pks := make([]bls.PublicKey, 0, len(sb.CoinSpends))
	msgs := make([][]byte, 0, len(sb.CoinSpends))
	for _, cs := range sb.CoinSpends {
		pk, err := types.PuzzlePublicKey(cs.PuzzleReveal)
		if err != nil {
			return err
		}
		msg, err := cs.SigningMessage(n.AggSigData)
		if err != nil {
			return err
		}
		pks = append(pks, pk)
		msgs = append(msgs, msg)
	}
	if !bls.AggregateVerify(pks, msgs, sb.Signature) {
		return ErrInvalidSignature
	}
	return nil
}
