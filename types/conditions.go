package types

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Condition opcodes.
const (
	opCreateCoin             = 51
	opReserveFee             = 52
	opCreateCoinAnnouncement = 60
	opAssertCoinAnnouncement = 61
)

const solutionVersion = 1

// ErrMalformedSolution is returned when a solution does not decode to a
// well-formed condition list.
var ErrMalformedSolution = errors.New("malformed solution")

// A Condition is an obligation emitted by evaluating a puzzle and solution
// pair. The ledger enforces every condition of every spend in a bundle.
type Condition interface {
	isCondition()
}

// CreateCoin creates a new coin paying an amount to a puzzle hash.
type CreateCoin struct {
	PuzzleHash Address
	Amount     uint64
}

// ReserveFee declares the exact fee claimed by the bundle. The ledger rejects
// a bundle whose unspent value differs from its reservations, preventing fee
// tampering.
type ReserveFee struct {
	Amount uint64
}

// CreateCoinAnnouncement announces a message from the spent coin. Paired with
// AssertCoinAnnouncement it binds multiple spends into one non-separable set.
type CreateCoinAnnouncement struct {
	Message Hash256
}

// AssertCoinAnnouncement requires an announcement with the given id to be
// created elsewhere in the same bundle.
type AssertCoinAnnouncement struct {
	AnnouncementID Hash256
}

func (CreateCoin) isCondition()             {}
func (ReserveFee) isCondition()             {}
func (CreateCoinAnnouncement) isCondition() {}
func (AssertCoinAnnouncement) isCondition() {}

// EncodeConditions serializes a condition list as a solution program. The
// encoding is canonical: decoding and re-encoding yields identical bytes.
func EncodeConditions(conds []Condition) (Program, error) {
	if len(conds) > math.MaxUint8 {
		return nil, errors.New("too many conditions")
	}
	p := Program{solutionVersion, uint8(len(conds))}
	for _, c := range conds {
		switch c := c.(type) {
		case CreateCoin:
			p = append(p, opCreateCoin)
			p = append(p, c.PuzzleHash[:]...)
			p = binary.BigEndian.AppendUint64(p, c.Amount)
		case ReserveFee:
			p = append(p, opReserveFee)
			p = binary.BigEndian.AppendUint64(p, c.Amount)
		case CreateCoinAnnouncement:
			p = append(p, opCreateCoinAnnouncement)
			p = append(p, c.Message[:]...)
		case AssertCoinAnnouncement:
			p = append(p, opAssertCoinAnnouncement)
			p = append(p, c.AnnouncementID[:]...)
		default:
			return nil, fmt.Errorf("unhandled condition type %T", c)
		}
	}
	return p, nil
}

// DecodeSolution decodes the condition list emitted by a solution. This is
// the core's entire evaluation model: the standard puzzle passes its solution
// through as conditions, so evaluation reduces to decoding.
func DecodeSolution(p Program) ([]Condition, error) {
	if len(p) < 2 || p[0] != solutionVersion {
		return nil, ErrMalformedSolution
	}
	n := int(p[1])
	buf := p[2:]
	next := func(k int) ([]byte, bool) {
		if len(buf) < k {
			return nil, false
		}
		b := buf[:k]
		buf = buf[k:]
		return b, true
	}
	conds := make([]Condition, 0, n)
	for i := 0; i < n; i++ {
		op, ok := next(1)
		if !ok {
			return nil, ErrMalformedSolution
		}
		switch op[0] {
		case opCreateCoin:
			b, ok := next(40)
			if !ok {
				return nil, ErrMalformedSolution
			}
			var cc CreateCoin
			copy(cc.PuzzleHash[:], b[:32])
			cc.Amount = binary.BigEndian.Uint64(b[32:])
			conds = append(conds, cc)
		case opReserveFee:
			b, ok := next(8)
			if !ok {
				return nil, ErrMalformedSolution
			}
			conds = append(conds, ReserveFee{Amount: binary.BigEndian.Uint64(b)})
		case opCreateCoinAnnouncement:
			b, ok := next(32)
			if !ok {
				return nil, ErrMalformedSolution
			}
			var ca CreateCoinAnnouncement
			copy(ca.Message[:], b)
			conds = append(conds, ca)
		case opAssertCoinAnnouncement:
			b, ok := next(32)
			if !ok {
				return nil, ErrMalformedSolution
			}
			var aa AssertCoinAnnouncement
			copy(aa.AnnouncementID[:], b)
			conds = append(conds, aa)
		default:
			return nil, ErrMalformedSolution
		}
	}
	if len(buf) != 0 {
		return nil, ErrMalformedSolution
	}
	return conds, nil
}
