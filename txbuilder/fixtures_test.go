package txbuilder

import (
	"testing"

	"github.com/xqymain/Varcoin/api"
	"github.com/xqymain/Varcoin/currency"
	"github.com/xqymain/Varcoin/varcoin"
)

// newTestCurrency returns small parameters so selector tests can use round numbers.
func newTestCurrency() *currency.Currency {
	return &currency.Currency{
		Net:                         "test",
		CurrentTransactionVersion:   1,
		MinimumFee:                  10,
		DefaultDustThreshold:        10,
		AddressPrefix:               0x3d,
		MaxBlockHeight:              500000000,
		MinedMoneyUnlockWindow:      10,
		LockedTxAllowedDeltaBlocks:  1,
		LockedTxAllowedDeltaSeconds: 86400,
	}
}

func newTestAccount(t *testing.T) varcoin.AccountKeys {
	t.Helper()

	spend, err := varcoin.NewKeyPair()
	if err != nil {
		t.Fatalf("Failed to create spend keys : %s", err)
	}
	view, err := varcoin.NewKeyPair()
	if err != nil {
		t.Fatalf("Failed to create view keys : %s", err)
	}

	return varcoin.AccountKeys{
		Address: varcoin.Address{
			SpendPublicKey: spend.Public,
			ViewPublicKey:  view.Public,
		},
		SpendSecretKey: spend.Secret,
		ViewSecretKey:  view.Secret,
	}
}

// newOwnedOutput creates an on chain output spendable by the account, with the key image
// the wallet would have precomputed.
func newOwnedOutput(t *testing.T, cur *currency.Currency, keys varcoin.AccountKeys,
	amount uint64, globalIndex uint32) api.Output {
	t.Helper()

	txKeys, err := varcoin.NewKeyPair()
	if err != nil {
		t.Fatalf("Failed to create tx keys : %s", err)
	}

	const indexInTransaction = uint32(0)
	derivation, err := varcoin.GenerateKeyDerivation(keys.Address.ViewPublicKey,
		txKeys.Secret)
	if err != nil {
		t.Fatalf("Failed to derive : %s", err)
	}
	target, err := varcoin.DerivePublicKey(derivation, indexInTransaction,
		keys.Address.SpendPublicKey)
	if err != nil {
		t.Fatalf("Failed to derive target : %s", err)
	}

	_, keyImage, err := generateKeyImageHelper(keys, txKeys.Public, indexInTransaction)
	if err != nil {
		t.Fatalf("Failed to generate key image : %s", err)
	}

	return api.Output{
		Amount:               amount,
		GlobalIndex:          globalIndex,
		TransactionPublicKey: txKeys.Public,
		IndexInTransaction:   indexInTransaction,
		PublicKey:            target,
		KeyImage:             keyImage,
		Height:               1,
		UnlockTime:           0,
		Address:              cur.AccountAddressAsString(keys.Address),
	}
}

// newDecoyOutput creates a foreign output usable as a ring member.
func newDecoyOutput(t *testing.T, amount uint64, globalIndex uint32) api.Output {
	t.Helper()

	pair, err := varcoin.NewKeyPair()
	if err != nil {
		t.Fatalf("Failed to create decoy keys : %s", err)
	}
	txKeys, err := varcoin.NewKeyPair()
	if err != nil {
		t.Fatalf("Failed to create decoy tx keys : %s", err)
	}

	return api.Output{
		Amount:               amount,
		GlobalIndex:          globalIndex,
		TransactionPublicKey: txKeys.Public,
		IndexInTransaction:   0,
		PublicKey:            pair.Public,
		Height:               1,
	}
}

// newUnspent creates a bare confirmed pool entry for selector tests.
func newUnspent(amount uint64, globalIndex uint32) api.Output {
	return api.Output{
		Amount:      amount,
		GlobalIndex: globalIndex,
		Height:      1,
	}
}
