package types

import (
	"errors"
	"reflect"
	"testing"

	"lukechampine.com/frand"
)

func TestConditionsRoundTrip(t *testing.T) {
	conds := []Condition{
		CreateCoin{PuzzleHash: Address(randomHash()), Amount: frand.Uint64n(1e12)},
		CreateCoin{PuzzleHash: Address(randomHash()), Amount: 0},
		ReserveFee{Amount: 100},
		CreateCoinAnnouncement{Message: randomHash()},
		AssertCoinAnnouncement{AnnouncementID: randomHash()},
	}
	p, err := EncodeConditions(conds)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeSolution(p)
	if err != nil {
		t.Fatal(err)
	} else if !reflect.DeepEqual(decoded, conds) {
		t.Fatalf("expected %v, got %v", conds, decoded)
	}
	// canonical: re-encoding yields identical bytes
	p2, err := EncodeConditions(decoded)
	if err != nil {
		t.Fatal(err)
	} else if string(p) != string(p2) {
		t.Fatalf("encoding is not canonical:\n%x\n%x", p, p2)
	}
}

func TestConditionsEmpty(t *testing.T) {
	p, err := EncodeConditions(nil)
	if err != nil {
		t.Fatal(err)
	}
	conds, err := DecodeSolution(p)
	if err != nil {
		t.Fatal(err)
	} else if len(conds) != 0 {
		t.Fatalf("expected no conditions, got %v", conds)
	}
}

func TestDecodeSolutionMalformed(t *testing.T) {
	valid, err := EncodeConditions([]Condition{
		CreateCoin{PuzzleHash: Address(randomHash()), Amount: 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		desc string
		p    Program
	}{
		{"nil", nil},
		{"empty", Program{}},
		{"bad version", Program{0x02, 0x00}},
		{"truncated header", Program{solutionVersion}},
		{"missing op", Program{solutionVersion, 1}},
		{"unknown op", Program{solutionVersion, 1, 0xff}},
		{"truncated payload", valid[:len(valid)-1]},
		{"trailing bytes", append(append(Program{}, valid...), 0x00)},
		{"undercounted", append(Program{solutionVersion, 0}, valid[2:]...)},
	}
	for _, test := range tests {
		if _, err := DecodeSolution(test.p); !errors.Is(err, ErrMalformedSolution) {
			t.Errorf("%v: expected ErrMalformedSolution, got %v", test.desc, err)
		}
	}
}

func TestEncodeConditionsTooMany(t *testing.T) {
	conds := make([]Condition, 256)
	for i := range conds {
		conds[i] = ReserveFee{Amount: 1}
	}
	if _, err := EncodeConditions(conds); err == nil {
		t.Fatal("expected error for oversized condition list")
	}
}
