package txbuilder

import (
	"testing"

	"github.com/xqymain/Varcoin/api"
	"github.com/xqymain/Varcoin/currency"
	"github.com/xqymain/Varcoin/varcoin"
	"github.com/xqymain/Varcoin/wire"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

func TestBuildTransaction(t *testing.T) {
	cur := currency.Mainnet()
	sender := newTestAccount(t)
	recipient := newTestAccount(t)

	real := newOwnedOutput(t, cur, sender, 70000, 50)
	mixes := []api.Output{
		newDecoyOutput(t, 70000, 30),
		newDecoyOutput(t, 70000, 10),
		newDecoyOutput(t, 70000, 20),
	}

	builder := NewTxBuilder(cur, 0)
	paymentID := varcoin.FastHash([]byte("invoice 17"))
	builder.SetPaymentID(paymentID)

	if index := builder.AddOutput(60000, recipient.Address); index != 0 {
		t.Errorf("Wrong output index : got %d, want %d", index, 0)
	}
	if index := builder.AddOutput(9000, sender.Address); index != 1 {
		t.Errorf("Wrong output index : got %d, want %d", index, 1)
	}

	index, err := builder.AddInput(sender, real, mixes)
	if err != nil {
		t.Fatalf("Failed to add input : %s", err)
	}
	if index != 0 {
		t.Errorf("Wrong input index : got %d, want %d", index, 0)
	}

	if builder.InputValue() != 70000 {
		t.Errorf("Wrong input value : got %d, want %d", builder.InputValue(), 70000)
	}
	if builder.OutputValue() != 69000 {
		t.Errorf("Wrong output value : got %d, want %d", builder.OutputValue(), 69000)
	}
	if builder.Fee() != 1000 {
		t.Errorf("Wrong fee : got %d, want %d", builder.Fee(), 1000)
	}

	seed := varcoin.FastHash([]byte("wallet seed"))
	tx, err := builder.Sign(seed)
	if err != nil {
		t.Fatalf("Failed to sign : %s", err)
	}

	if tx.Version != cur.CurrentTransactionVersion {
		t.Errorf("Wrong version : got %d, want %d", tx.Version,
			cur.CurrentTransactionVersion)
	}
	if len(tx.Inputs) != 1 || len(tx.Outputs) != 2 {
		t.Fatalf("Wrong shape : %d inputs, %d outputs", len(tx.Inputs), len(tx.Outputs))
	}

	keyInput, ok := tx.Inputs[0].(*wire.KeyInput)
	if !ok {
		t.Fatalf("Wrong input type : %s", spew.Sdump(tx.Inputs[0]))
	}
	if keyInput.Amount != 70000 {
		t.Errorf("Wrong input amount : got %d, want %d", keyInput.Amount, 70000)
	}
	if !keyInput.KeyImage.Equal(&real.KeyImage) {
		t.Errorf("Wrong key image : got %s, want %s", keyInput.KeyImage, real.KeyImage)
	}

	absolute := wire.RelativeOutputOffsetsToAbsolute(keyInput.OutputIndexes)
	want := []uint32{10, 20, 30, 50}
	if len(absolute) != len(want) {
		t.Fatalf("Wrong ring size : got %d, want %d", len(absolute), len(want))
	}
	for i := range want {
		if absolute[i] != want[i] {
			t.Errorf("Wrong absolute offsets : got %v, want %v", absolute, want)
			break
		}
	}

	// The extra blob carries the deterministic transaction key and the payment id.
	parsed, err := wire.ParseExtra(tx.Extra)
	if err != nil {
		t.Fatalf("Failed to parse extra : %s", err)
	}
	txPublicKey, ok := parsed.PublicKey()
	if !ok {
		t.Fatalf("Extra missing transaction public key")
	}
	inputsHash, err := tx.InputsHash()
	if err != nil {
		t.Fatalf("Failed to hash inputs : %s", err)
	}
	wantKeys, err := DeterministicTxKeys(inputsHash, seed)
	if err != nil {
		t.Fatalf("Failed to derive tx keys : %s", err)
	}
	if txPublicKey != wantKeys.Public {
		t.Errorf("Wrong tx public key : got %s, want %s", txPublicKey, wantKeys.Public)
	}
	gotID, ok := parsed.PaymentID()
	if !ok || gotID != paymentID {
		t.Errorf("Wrong payment id : got %s, want %s", gotID, paymentID)
	}

	// Each output key must re-derive from the tx secret and its final ordinal, and the
	// recipient must recognize theirs with only the view secret.
	for i := range tx.Outputs {
		var addr varcoin.Address
		switch tx.Outputs[i].Amount {
		case 60000:
			addr = recipient.Address
		case 9000:
			addr = sender.Address
		default:
			t.Fatalf("Unexpected output amount : %d", tx.Outputs[i].Amount)
		}

		derivation, err := varcoin.GenerateKeyDerivation(addr.ViewPublicKey,
			wantKeys.Secret)
		if err != nil {
			t.Fatalf("Failed to derive : %s", err)
		}
		wantTarget, err := varcoin.DerivePublicKey(derivation, uint32(i),
			addr.SpendPublicKey)
		if err != nil {
			t.Fatalf("Failed to derive target : %s", err)
		}
		if tx.Outputs[i].Target != wantTarget {
			t.Errorf("Wrong stealth key for output %d", i)
		}
	}
	recipientDerivation, err := varcoin.GenerateKeyDerivation(txPublicKey,
		recipient.ViewSecretKey)
	if err != nil {
		t.Fatalf("Failed recipient derivation : %s", err)
	}
	recognized := false
	for i := range tx.Outputs {
		target, err := varcoin.DerivePublicKey(recipientDerivation, uint32(i),
			recipient.Address.SpendPublicKey)
		if err != nil {
			t.Fatalf("Failed to derive : %s", err)
		}
		if target == tx.Outputs[i].Target {
			if tx.Outputs[i].Amount != 60000 {
				t.Errorf("Recipient recognized wrong output : amount %d",
					tx.Outputs[i].Amount)
			}
			recognized = true
		}
	}
	if !recognized {
		t.Errorf("Recipient did not recognize any output")
	}

	// Ring signatures must verify against the prefix hash.
	prefixHash, err := tx.PrefixHash()
	if err != nil {
		t.Fatalf("Failed to hash prefix : %s", err)
	}
	if len(tx.Signatures) != 1 || len(tx.Signatures[0]) != 4 {
		t.Fatalf("Wrong signature shape : %v", len(tx.Signatures))
	}
	ring := make([]varcoin.PublicKey, 0, len(builder.inputDescs[0].Outputs))
	for _, out := range builder.inputDescs[0].Outputs {
		ring = append(ring, out.PublicKey)
	}
	if !varcoin.CheckRingSignature(prefixHash, keyInput.KeyImage, ring,
		tx.Signatures[0]) {
		t.Errorf("Ring signature does not verify")
	}

	// The builder is consumed.
	if _, err := builder.Sign(seed); errors.Cause(err) != ErrAlreadySigned {
		t.Errorf("Wrong error for double sign : %v", err)
	}
}

func TestAddInputKeyImageMismatch(t *testing.T) {
	cur := currency.Mainnet()
	sender := newTestAccount(t)

	real := newOwnedOutput(t, cur, sender, 1000, 5)
	real.KeyImage[0] ^= 0x01

	builder := NewTxBuilder(cur, 0)
	_, err := builder.AddInput(sender, real, []api.Output{newDecoyOutput(t, 1000, 9)})
	if errors.Cause(err) != ErrKeyImageMismatch {
		t.Errorf("Wrong error for key image mismatch : %v", err)
	}
}

func TestAddInputWrongKeys(t *testing.T) {
	cur := currency.Mainnet()
	sender := newTestAccount(t)
	other := newTestAccount(t)

	real := newOwnedOutput(t, cur, sender, 1000, 5)

	// Another wallet's keys derive a different key image.
	builder := NewTxBuilder(cur, 0)
	_, err := builder.AddInput(other, real, []api.Output{newDecoyOutput(t, 1000, 9)})
	if errors.Cause(err) != ErrKeyImageMismatch {
		t.Errorf("Wrong error for wrong keys : %v", err)
	}
}

func TestAddInputMixAmountMismatch(t *testing.T) {
	cur := currency.Mainnet()
	sender := newTestAccount(t)

	real := newOwnedOutput(t, cur, sender, 1000, 5)
	mixes := []api.Output{
		newDecoyOutput(t, 1000, 9),
		newDecoyOutput(t, 900, 12),
	}

	builder := NewTxBuilder(cur, 0)
	_, err := builder.AddInput(sender, real, mixes)
	if errors.Cause(err) != ErrMixAmountMismatch {
		t.Errorf("Wrong error for mix amount mismatch : %v", err)
	}
}

// TestDeterministicTxKey rebuilds the same transaction from the same inputs and seed and
// expects identical key material.
func TestDeterministicTxKey(t *testing.T) {
	cur := currency.Mainnet()
	sender := newTestAccount(t)
	recipient := newTestAccount(t)

	real := newOwnedOutput(t, cur, sender, 1000, 5)
	seed := varcoin.FastHash([]byte("persisted wallet seed"))

	build := func(s varcoin.Hash32) *wire.MsgTx {
		builder := NewTxBuilder(cur, 0)
		builder.AddOutput(900, recipient.Address)
		if _, err := builder.AddInput(sender, real,
			[]api.Output{newDecoyOutput(t, 1000, 9)}); err != nil {
			t.Fatalf("Failed to add input : %s", err)
		}
		tx, err := builder.Sign(s)
		if err != nil {
			t.Fatalf("Failed to sign : %s", err)
		}
		return tx
	}

	first := build(seed)
	second := build(seed)

	firstExtra, err := wire.ParseExtra(first.Extra)
	if err != nil {
		t.Fatalf("Failed to parse extra : %s", err)
	}
	secondExtra, err := wire.ParseExtra(second.Extra)
	if err != nil {
		t.Fatalf("Failed to parse extra : %s", err)
	}

	firstKey, _ := firstExtra.PublicKey()
	secondKey, _ := secondExtra.PublicKey()
	if firstKey != secondKey {
		t.Errorf("Tx public key not deterministic : %s != %s", firstKey, secondKey)
	}
	if first.Outputs[0].Target != second.Outputs[0].Target {
		t.Errorf("Stealth key not deterministic")
	}

	third := build(varcoin.FastHash([]byte("different seed")))
	thirdExtra, err := wire.ParseExtra(third.Extra)
	if err != nil {
		t.Fatalf("Failed to parse extra : %s", err)
	}
	thirdKey, _ := thirdExtra.PublicKey()
	if thirdKey == firstKey {
		t.Errorf("Different seeds derived the same tx key")
	}
}

func TestSetExtraNonce(t *testing.T) {
	builder := NewTxBuilder(currency.Mainnet(), 0)
	nonce := []byte{0x01, 0x02, 0x03}
	if err := builder.SetExtraNonce(nonce); err != nil {
		t.Fatalf("Failed to set nonce : %s", err)
	}

	parsed, err := wire.ParseExtra(builder.tx.Extra)
	if err != nil {
		t.Fatalf("Failed to parse extra : %s", err)
	}
	if string(parsed.Nonce()) != string(nonce) {
		t.Errorf("Wrong nonce : got %x, want %x", parsed.Nonce(), nonce)
	}
}

func TestDecomposeAmount(t *testing.T) {
	tests := []struct {
		amount uint64
		pieces []uint64
	}{
		{0, nil},
		{7, []uint64{7}},
		{1010, []uint64{1000, 10}},
		{123456, []uint64{100000, 20000, 3000, 400, 50, 6}},
	}

	for _, tt := range tests {
		pieces := DecomposeAmount(tt.amount)
		if len(pieces) != len(tt.pieces) {
			t.Errorf("Wrong piece count for %d : got %v, want %v", tt.amount, pieces,
				tt.pieces)
			continue
		}

		sum := uint64(0)
		for i, piece := range pieces {
			if piece != tt.pieces[i] {
				t.Errorf("Wrong pieces for %d : got %v, want %v", tt.amount, pieces,
					tt.pieces)
				break
			}
			if currency.IsDust(piece) {
				t.Errorf("Non canonical piece %d for %d", piece, tt.amount)
			}
			sum += piece
		}
		if sum != tt.amount {
			t.Errorf("Pieces of %d sum to %d", tt.amount, sum)
		}
	}
}

func TestMaximumTxSizeShape(t *testing.T) {
	base := MaximumTxSize(1, 2, 6)
	if MaximumTxSize(2, 2, 6) <= base {
		t.Errorf("Size does not grow with inputs")
	}
	if MaximumTxSize(1, 3, 6) <= base {
		t.Errorf("Size does not grow with outputs")
	}
	if MaximumTxSize(1, 2, 7) <= base {
		t.Errorf("Size does not grow with anonymity")
	}
}
