package types

import (
	"bytes"
	"crypto/sha256"
	"errors"

	"github.com/coldspend/core/bls"
)

// HashBytes computes the hash of b using the ledger's hash function.
func HashBytes(b []byte) Hash256 {
	return sha256.Sum256(b)
}

// The standard puzzle is a fixed versioned template binding a single BLS
// public key. Spending a coin locked by it emits the solution's conditions
// verbatim and demands one slot in the bundle's aggregate signature.
var standardPuzzlePrefix = []byte("coldspend/p2pk|\x01")

// ErrNonStandardPuzzle is returned when a puzzle reveal does not match the
// standard template.
var ErrNonStandardPuzzle = errors.New("puzzle is not the standard template")

// StandardPuzzle returns the standard puzzle locking a coin to pk.
func StandardPuzzle(pk bls.PublicKey) Program {
	p := make(Program, 0, len(standardPuzzlePrefix)+len(pk))
	p = append(p, standardPuzzlePrefix...)
	p = append(p, pk[:]...)
	return p
}

// PuzzlePublicKey extracts the public key embedded in a standard puzzle.
func PuzzlePublicKey(p Program) (bls.PublicKey, error) {
	if len(p) != len(standardPuzzlePrefix)+len(bls.PublicKey{}) || !bytes.HasPrefix(p, standardPuzzlePrefix) {
		return bls.PublicKey{}, ErrNonStandardPuzzle
	}
	var pk bls.PublicKey
	copy(pk[:], p[len(standardPuzzlePrefix):])
	return pk, nil
}

// Hash returns the puzzle hash committing to p.
func (p Program) Hash() Hash256 {
	buf := make([]byte, 0, 17+len(p))
	buf = append(buf, "coldspend/puzzle|"...)
	buf = append(buf, p...)
	return HashBytes(buf)
}

// ConditionsHash commits to the condition list encoded by a solution.
func ConditionsHash(solution Program) Hash256 {
	buf := make([]byte, 0, 21+len(solution))
	buf = append(buf, "coldspend/conditions|"...)
	buf = append(buf, solution...)
	return HashBytes(buf)
}

// AnnouncementID returns the bundle-wide id of an announcement made by the
// given coin.
func AnnouncementID(id CoinID, message Hash256) Hash256 {
	buf := make([]byte, 64)
	copy(buf[:32], id[:])
	copy(buf[32:], message[:])
	return HashBytes(buf)
}
