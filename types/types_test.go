package types

import (
	"bytes"
	"encoding"
	"fmt"
	"testing"

	"github.com/coldspend/core/bls"
	"lukechampine.com/frand"
)

func randomHash() (h Hash256) {
	frand.Read(h[:])
	return
}

func randomCoin() Coin {
	return Coin{
		ParentID:   CoinID(randomHash()),
		PuzzleHash: Address(randomHash()),
		Amount:     frand.Uint64n(1e12),
	}
}

func TestCoinID(t *testing.T) {
	c := randomCoin()
	id := c.ID()
	if c.ID() != id {
		t.Fatal("coin id should be deterministic")
	}
	// any field change must produce a different id
	mutations := []Coin{
		{ParentID: CoinID(randomHash()), PuzzleHash: c.PuzzleHash, Amount: c.Amount},
		{ParentID: c.ParentID, PuzzleHash: Address(randomHash()), Amount: c.Amount},
		{ParentID: c.ParentID, PuzzleHash: c.PuzzleHash, Amount: c.Amount + 1},
	}
	for i, m := range mutations {
		if m.ID() == id {
			t.Errorf("mutation %v did not change coin id", i)
		}
	}
}

func TestPuzzleRoundTrip(t *testing.T) {
	sk := bls.GenerateSecretKey()
	defer sk.Wipe()
	pk := sk.PublicKey()
	p := StandardPuzzle(pk)
	got, err := PuzzlePublicKey(p)
	if err != nil {
		t.Fatal(err)
	} else if got != pk {
		t.Fatalf("expected %v, got %v", pk, got)
	}
	for _, bad := range []Program{
		nil,
		p[:len(p)-1],
		append(Program{0xff}, p...),
	} {
		if _, err := PuzzlePublicKey(bad); err == nil {
			t.Errorf("expected error for puzzle %x", bad)
		}
	}
	if p.Hash() == Program(nil).Hash() {
		t.Error("distinct programs should have distinct hashes")
	}
}

func TestSigningMessage(t *testing.T) {
	solution, err := EncodeConditions([]Condition{
		CreateCoin{PuzzleHash: Address(randomHash()), Amount: 100},
	})
	if err != nil {
		t.Fatal(err)
	}
	cs := CoinSpend{
		Coin:         randomCoin(),
		PuzzleReveal: Program{0x01},
		Solution:     solution,
	}
	domain := randomHash()
	msg, err := cs.SigningMessage(domain)
	if err != nil {
		t.Fatal(err)
	} else if len(msg) != 96 {
		t.Fatalf("expected 96-byte message, got %v bytes", len(msg))
	}
	ch := ConditionsHash(solution)
	id := cs.Coin.ID()
	if !bytes.Equal(msg[:32], ch[:]) || !bytes.Equal(msg[32:64], id[:]) || !bytes.Equal(msg[64:], domain[:]) {
		t.Fatal("message does not commit to conditions, coin id, and domain")
	}

	cs.Solution = Program{0xff}
	if _, err := cs.SigningMessage(domain); err == nil {
		t.Fatal("expected error for malformed solution")
	}
}

func TestBundleAdditionsAndFee(t *testing.T) {
	dst := Address(randomHash())
	sol1, err := EncodeConditions([]Condition{
		CreateCoin{PuzzleHash: dst, Amount: 700},
		ReserveFee{Amount: 25},
	})
	if err != nil {
		t.Fatal(err)
	}
	sol2, err := EncodeConditions([]Condition{
		ReserveFee{Amount: 75},
	})
	if err != nil {
		t.Fatal(err)
	}
	c1, c2 := randomCoin(), randomCoin()
	sb := SpendBundle{
		CoinSpends: []CoinSpend{
			{Coin: c1, Solution: sol1},
			{Coin: c2, Solution: sol2},
		},
		Signature: bls.IdentitySignature(),
	}
	if sb.Signed() {
		t.Fatal("bundle with identity signature should not report signed")
	}
	adds, err := sb.Additions()
	if err != nil {
		t.Fatal(err)
	} else if len(adds) != 1 {
		t.Fatalf("expected 1 addition, got %v", len(adds))
	}
	exp := Coin{ParentID: c1.ID(), PuzzleHash: dst, Amount: 700}
	if adds[0] != exp {
		t.Fatalf("expected addition %v, got %v", exp, adds[0])
	}
	fee, err := sb.Fee()
	if err != nil {
		t.Fatal(err)
	} else if fee != 100 {
		t.Fatalf("expected fee 100, got %v", fee)
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	sol, err := EncodeConditions([]Condition{
		CreateCoin{PuzzleHash: Address(randomHash()), Amount: 1200},
		ReserveFee{Amount: 100},
		CreateCoinAnnouncement{Message: randomHash()},
	})
	if err != nil {
		t.Fatal(err)
	}
	e := Envelope{
		Bundle: SpendBundle{
			CoinSpends: []CoinSpend{{
				Coin:         randomCoin(),
				PuzzleReveal: Program(frand.Bytes(65)),
				Solution:     sol,
			}},
			Signature: bls.IdentitySignature(),
		},
		Fee:           100,
		NetworkPrefix: "xch",
	}
	doc, err := e.MarshalDocument()
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := ParseEnvelope(doc)
	if err != nil {
		t.Fatal(err)
	}
	doc2, err := parsed.MarshalDocument()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(doc, doc2) {
		t.Fatalf("canonical round trip mismatch:\n%s\n%s", doc, doc2)
	}
	if _, err := ParseEnvelope([]byte(`{"bundle":`)); err == nil {
		t.Fatal("expected error for truncated document")
	}
}

func TestMarshalText(t *testing.T) {
	h := randomHash()
	tests := []struct {
		val encoding.TextMarshaler
		exp string
	}{
		{h, fmt.Sprintf("h:%x", h[:])},
		{Address(h), fmt.Sprintf("ph:%x", h[:])},
		{CoinID(h), fmt.Sprintf("coin:%x", h[:])},
		{Program(h[:8]), fmt.Sprintf("%x", h[:8])},
	}
	for _, test := range tests {
		b, err := test.val.MarshalText()
		if err != nil {
			t.Fatal(err)
		} else if string(b) != test.exp {
			t.Errorf("expected %v, got %s", test.exp, b)
		}
	}

	var h2 Hash256
	if err := h2.UnmarshalText([]byte(h.String())); err != nil {
		t.Fatal(err)
	} else if h2 != h {
		t.Fatalf("expected %v, got %v", h, h2)
	}
	if err := h2.UnmarshalText([]byte("h:abcd")); err == nil {
		t.Fatal("expected error for truncated hash")
	}
	var p Program
	if err := p.UnmarshalText([]byte("0102ff")); err != nil {
		t.Fatal(err)
	} else if !bytes.Equal(p, []byte{0x01, 0x02, 0xff}) {
		t.Fatalf("unexpected program %x", p)
	}
}
