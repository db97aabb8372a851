package walletstore

import (
	"context"
	"io/ioutil"
	"os"
	"testing"

	"github.com/xqymain/Varcoin/api"
	"github.com/xqymain/Varcoin/varcoin"

	"github.com/go-test/deep"
	"github.com/pkg/errors"
)

func TestDeriveTxDerivationSeed(t *testing.T) {
	view, err := varcoin.NewKeyPair()
	if err != nil {
		t.Fatalf("Failed to create view keys : %s", err)
	}
	spend, err := varcoin.NewKeyPair()
	if err != nil {
		t.Fatalf("Failed to create spend keys : %s", err)
	}

	first := DeriveTxDerivationSeed(view.Secret, spend.Secret)
	second := DeriveTxDerivationSeed(view.Secret, spend.Secret)
	if first != second {
		t.Errorf("Seed not deterministic : %s != %s", first, second)
	}

	other, err := varcoin.NewKeyPair()
	if err != nil {
		t.Fatalf("Failed to create keys : %s", err)
	}
	third := DeriveTxDerivationSeed(view.Secret, other.Secret)
	if first == third {
		t.Errorf("Different wallets derived the same seed")
	}
}

func TestStoreFind(t *testing.T) {
	spend, err := varcoin.NewKeyPair()
	if err != nil {
		t.Fatalf("Failed to create spend keys : %s", err)
	}
	view, err := varcoin.NewKeyPair()
	if err != nil {
		t.Fatalf("Failed to create view keys : %s", err)
	}

	store := &Store{
		ViewSecretKey: view.Secret,
		Records: map[varcoin.PublicKey]WalletRecord{
			spend.Public: {SpendPublicKey: spend.Public, SpendSecretKey: spend.Secret},
		},
	}

	record, err := store.Find(spend.Public)
	if err != nil {
		t.Fatalf("Failed to find record : %s", err)
	}
	if record.SpendSecretKey != spend.Secret {
		t.Errorf("Wrong record secret")
	}

	other, err := varcoin.NewKeyPair()
	if err != nil {
		t.Fatalf("Failed to create keys : %s", err)
	}
	if _, err := store.Find(other.Public); errors.Cause(err) != ErrUnknownAddress {
		t.Errorf("Wrong error for unknown address : %v", err)
	}
}

func testUnspentSnapshot(t *testing.T) *UnspentSnapshot {
	t.Helper()

	pair, err := varcoin.NewKeyPair()
	if err != nil {
		t.Fatalf("Failed to create keys : %s", err)
	}
	return &UnspentSnapshot{
		WalletID: "primary",
		Height:   1234,
		Unspents: []api.Output{{
			Amount:               70000,
			GlobalIndex:          17,
			TransactionPublicKey: pair.Public,
			PublicKey:            pair.Public,
			Height:               1200,
			Address:              "some address",
		}},
	}
}

func TestUnspentsRoundTripMock(t *testing.T) {
	ctx := context.Background()
	store := NewMockStorage()
	snapshot := testUnspentSnapshot(t)

	if err := SaveUnspents(ctx, store, snapshot); err != nil {
		t.Fatalf("Failed to save unspents : %s", err)
	}

	restored, err := LoadUnspents(ctx, store, "primary")
	if err != nil {
		t.Fatalf("Failed to load unspents : %s", err)
	}
	if diff := deep.Equal(restored, snapshot); diff != nil {
		t.Errorf("Round trip mismatch : %v", diff)
	}

	if _, err := LoadUnspents(ctx, store, "missing"); errors.Cause(err) != ErrNotFound {
		t.Errorf("Wrong error for missing wallet : %v", err)
	}
}

func TestUnspentsRoundTripFilesystem(t *testing.T) {
	dir, err := ioutil.TempDir("", "walletstore_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir : %s", err)
	}
	defer os.RemoveAll(dir)

	ctx := context.Background()
	store := NewFilesystemStorage(dir)
	snapshot := testUnspentSnapshot(t)

	if err := SaveUnspents(ctx, store, snapshot); err != nil {
		t.Fatalf("Failed to save unspents : %s", err)
	}

	restored, err := LoadUnspents(ctx, store, "primary")
	if err != nil {
		t.Fatalf("Failed to load unspents : %s", err)
	}
	if diff := deep.Equal(restored, snapshot); diff != nil {
		t.Errorf("Round trip mismatch : %v", diff)
	}

	if err := store.Remove(ctx, "wallets/primary/unspents"); err != nil {
		t.Fatalf("Failed to remove : %s", err)
	}
	if _, err := LoadUnspents(ctx, store, "primary"); errors.Cause(err) != ErrNotFound {
		t.Errorf("Wrong error after remove : %v", err)
	}
}
