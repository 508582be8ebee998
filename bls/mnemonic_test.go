package bls

import (
	"encoding/hex"
	"math/big"
	"strings"
	"testing"
)

func TestSeedFromMnemonicVector(t *testing.T) {
	// BIP-39 reference vector (passphrase "TREZOR")
	seed, err := SeedFromMnemonic("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about", "TREZOR")
	if err != nil {
		t.Fatal(err)
	}
	exp := "c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04"
	if got := hex.EncodeToString(seed); got != exp {
		t.Errorf("expected seed %v, got %v", exp, got)
	}
}

func TestMasterKeyFromMnemonic(t *testing.T) {
	// full mnemonic -> seed -> master key pipeline: the BIP-39 reference
	// vector's seed is the seed of test case 0 of the EIP-2333 specification,
	// so the two published vectors chain end to end
	seed, err := SeedFromMnemonic("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about", "TREZOR")
	if err != nil {
		t.Fatal(err)
	}
	sk, err := MasterKey(seed)
	if err != nil {
		t.Fatal(err)
	}
	defer sk.Wipe()
	exp, _ := new(big.Int).SetString("6083874454709270928345386274498605044986640685124978867557563392430687146096", 10)
	if got := new(big.Int).SetBytes(sk); got.Cmp(exp) != 0 {
		t.Errorf("expected master key %v, got %v", exp, got)
	}
}

func TestSeedFromMnemonicInvalid(t *testing.T) {
	if _, err := SeedFromMnemonic("not a valid mnemonic", ""); err == nil {
		t.Fatal("expected error for invalid mnemonic")
	}
	// valid words, corrupted checksum
	if _, err := SeedFromMnemonic("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon", ""); err == nil {
		t.Fatal("expected error for bad checksum")
	}
}

func TestNewMnemonic(t *testing.T) {
	m := NewMnemonic()
	if len(strings.Fields(m)) != 24 {
		t.Fatalf("expected 24 words, got %d", len(strings.Fields(m)))
	}
	if _, err := SeedFromMnemonic(m, ""); err != nil {
		t.Fatalf("generated mnemonic should be valid: %v", err)
	}
	if NewMnemonic() == m {
		t.Error("mnemonics should not repeat")
	}
}
