package varcoin

import (
	"testing"

	"github.com/pkg/errors"
)

func makeAddress(t *testing.T) Address {
	t.Helper()

	spend, err := NewKeyPair()
	if err != nil {
		t.Fatalf("Failed to create spend keys : %s", err)
	}
	view, err := NewKeyPair()
	if err != nil {
		t.Fatalf("Failed to create view keys : %s", err)
	}
	return Address{SpendPublicKey: spend.Public, ViewPublicKey: view.Public}
}

func TestAddressRoundTrip(t *testing.T) {
	for _, tag := range []uint64{0, 6, 0x3d, 0x1234} {
		addr := makeAddress(t)
		coded := EncodeAccountAddress(tag, addr)

		restored, err := DecodeAccountAddress(tag, coded)
		if err != nil {
			t.Fatalf("Failed to decode address with tag %d : %s", tag, err)
		}
		if restored != addr {
			t.Errorf("Wrong address for tag %d : got %+v, want %+v", tag, restored, addr)
		}
	}
}

func TestAddressFixedWidth(t *testing.T) {
	addr := makeAddress(t)
	first := EncodeAccountAddress(0x3d, addr)
	second := EncodeAccountAddress(0x3d, makeAddress(t))
	if len(first) != len(second) {
		t.Errorf("Coded widths differ : %d != %d", len(first), len(second))
	}
}

func TestAddressBadChecksum(t *testing.T) {
	addr := makeAddress(t)
	coded := []byte(EncodeAccountAddress(0x3d, addr))

	// Flip one symbol. Pick a replacement that stays in the alphabet.
	if coded[4] == '2' {
		coded[4] = '3'
	} else {
		coded[4] = '2'
	}

	if _, err := DecodeAccountAddress(0x3d, string(coded)); err == nil {
		t.Errorf("Decoded address with corrupted symbol")
	}
}

func TestAddressWrongPrefix(t *testing.T) {
	addr := makeAddress(t)
	coded := EncodeAccountAddress(0x3d, addr)

	_, err := DecodeAccountAddress(0x3e, coded)
	if errors.Cause(err) != ErrWrongAddressPrefix {
		t.Errorf("Wrong error for wrong prefix : %v", err)
	}
}

func TestAddressInvalidSymbol(t *testing.T) {
	addr := makeAddress(t)
	coded := []byte(EncodeAccountAddress(0x3d, addr))
	coded[0] = '0' // not in the base58 alphabet

	if _, err := DecodeAccountAddress(0x3d, string(coded)); err == nil {
		t.Errorf("Decoded address with symbol outside the alphabet")
	}
}
