package wallet

import (
	"errors"
	"fmt"

	"github.com/coldspend/core/bls"
	"github.com/coldspend/core/consensus"
	"github.com/coldspend/core/internal/secmem"
	"github.com/coldspend/core/types"
)

var (
	// ErrPartialBundle is returned when a spend is missing its reveal or
	// solution. Signing aborts outright: a partial aggregate is
	// indistinguishable from a valid one until verification rejects it.
	ErrPartialBundle = errors.New("bundle is missing spend data")

	// ErrKeyPathMismatch is returned when no derived key owns a coin in the
	// bundle, indicating tampering or a wrong derivation path.
	ErrKeyPathMismatch = errors.New("no derived key matches the coin's puzzle hash")

	// ErrAlreadySigned is returned when a bundle already carries an
	// aggregate signature. A bundle is signed exactly once.
	ErrAlreadySigned = errors.New("bundle is already signed")
)

// SignBundle re-derives each coin's secret key from seed and attaches the
// bundle's aggregate signature. Keys are found by deriving the first window
// wallet keys under the hardened path prefix, both unhardened and hardened
// leaves, and matching their puzzle hashes against the bundle's coins, the
// same scan the key export's online ring performs. All secret material is
// wiped before returning, on error paths included.
func SignBundle(n *consensus.Network, seed []byte, sb *types.SpendBundle, window uint32) error {
	if len(sb.CoinSpends) == 0 {
		return consensus.ErrEmptyBundle
	}
	if sb.Signed() {
		return ErrAlreadySigned
	}
	for _, cs := range sb.CoinSpends {
		if len(cs.PuzzleReveal) == 0 || len(cs.Solution) == 0 {
			return fmt.Errorf("%w: coin %v", ErrPartialBundle, cs.Coin.ID())
		}
	}
	if err := n.ValidateBundle(sb); err != nil {
		return err
	}

	wanted := make(map[types.Address]bool)
	for _, cs := range sb.CoinSpends {
		wanted[cs.Coin.PuzzleHash] = true
	}

	master, err := bls.MasterKey(seed)
	if err != nil {
		return err
	}
	intermediate := master.Derive(bls.WalletPathPrefix())
	master.Wipe()
	defer intermediate.Wipe()

	keys := make(map[types.Address]bls.SecretKey)
	defer func() {
		for _, sk := range keys {
			sk.Wipe()
		}
	}()
	for i := uint32(0); i < window && len(keys) < len(wanted); i++ {
		for _, hardened := range []bool{false, true} {
			sk := intermediate.Derive(bls.Path{{Index: i, Hardened: hardened}})
			addr := StandardAddress(sk.PublicKey())
			if wanted[addr] && keys[addr] == nil {
				keys[addr] = sk
			} else {
				sk.Wipe()
			}
		}
	}

	sigs := make([]bls.Signature, 0, len(sb.CoinSpends))
	for _, cs := range sb.CoinSpends {
		sk, ok := keys[cs.Coin.PuzzleHash]
		if !ok {
			return fmt.Errorf("%w: coin %v", ErrKeyPathMismatch, cs.Coin.ID())
		}
		msg, err := cs.SigningMessage(n.AggSigData)
		if err != nil {
			return err
		}
		sigs = append(sigs, sk.Sign(msg))
	}
	agg, err := bls.Aggregate(sigs)
	if err != nil {
		return err
	}
	sb.Signature = agg

	// never emit a bundle whose aggregate does not verify
	if err := n.VerifyBundleSignature(sb); err != nil {
		sb.Signature = bls.IdentitySignature()
		return err
	}
	return nil
}

// SignEnvelope signs the bundle carried by an exchange document, deriving the
// seed from a mnemonic. The stretched seed is held in locked memory and wiped
// before returning. The envelope's network prefix must match n.
func SignEnvelope(n *consensus.Network, mnemonic, passphrase string, e *types.Envelope, window uint32) error {
	if e.NetworkPrefix != n.AddressPrefix {
		return fmt.Errorf("%w: %q", ErrUnknownPrefix, e.NetworkPrefix)
	}
	seed, err := bls.SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return err
	}
	buf := secmem.NewBuffer(len(seed))
	defer buf.Close()
	copy(buf.Bytes(), seed)
	secmem.Zero(seed)
	return SignBundle(n, buf.Bytes(), &e.Bundle, window)
}
