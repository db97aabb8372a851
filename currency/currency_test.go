package currency

import (
	"testing"

	"github.com/xqymain/Varcoin/varcoin"
)

func TestIsDust(t *testing.T) {
	tests := []struct {
		amount uint64
		dust   bool
	}{
		{0, true},
		{1, false},
		{9, false},
		{10, false},
		{11, true},
		{73, true},
		{700, false},
		{900000, false},
		{910000, true},
		{1000000000000, false},
	}

	for _, tt := range tests {
		if got := IsDust(tt.amount); got != tt.dust {
			t.Errorf("Wrong dust for %d : got %t, want %t", tt.amount, got, tt.dust)
		}
	}
}

func TestIsTransactionSpendTimeUnlocked(t *testing.T) {
	cur := Mainnet()

	tests := []struct {
		name        string
		unlockTime  uint64
		blockHeight uint32
		blockTime   uint64
		unlocked    bool
	}{
		{"zero unlock", 0, 10, 1000, true},
		{"height reached", 100, 100, 1000, true},
		{"height within delta", 100, 99, 1000, true},
		{"height not reached", 100, 50, 1000, false},
		{"time reached", 600000000, 10, 600000000, true},
		{"time within delta", 600000100, 10, 600000000, true},
		{"time not reached", 700000000, 10, 600000000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cur.IsTransactionSpendTimeUnlocked(tt.unlockTime, tt.blockHeight,
				tt.blockTime)
			if got != tt.unlocked {
				t.Errorf("Wrong unlock : got %t, want %t", got, tt.unlocked)
			}
		})
	}
}

func TestIsMinedMoneyUnlocked(t *testing.T) {
	cur := Mainnet()

	tests := []struct {
		name        string
		minedHeight uint32
		blockHeight uint32
		unlocked    bool
	}{
		{"just mined", 100, 100, false},
		{"one short of window", 100, 109, false},
		{"window reached", 100, 110, true},
		{"well past window", 100, 1000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cur.IsMinedMoneyUnlocked(tt.minedHeight, tt.blockHeight)
			if got != tt.unlocked {
				t.Errorf("Wrong maturity : got %t, want %t", got, tt.unlocked)
			}
		})
	}
}

func TestParseAccountAddressString(t *testing.T) {
	cur := Mainnet()

	spend, err := varcoin.NewKeyPair()
	if err != nil {
		t.Fatalf("Failed to create spend keys : %s", err)
	}
	view, err := varcoin.NewKeyPair()
	if err != nil {
		t.Fatalf("Failed to create view keys : %s", err)
	}
	addr := varcoin.Address{SpendPublicKey: spend.Public, ViewPublicKey: view.Public}

	coded := cur.AccountAddressAsString(addr)
	restored, err := cur.ParseAccountAddressString(coded)
	if err != nil {
		t.Fatalf("Failed to parse address : %s", err)
	}
	if restored != addr {
		t.Errorf("Wrong address : got %+v, want %+v", restored, addr)
	}

	// A mainnet address must not parse as testnet.
	if _, err := Testnet().ParseAccountAddressString(coded); err == nil {
		t.Errorf("Parsed mainnet address as testnet")
	}
}

func TestNewCurrency(t *testing.T) {
	if _, err := NewCurrency(MainNet); err != nil {
		t.Errorf("Failed to create mainnet : %s", err)
	}
	if _, err := NewCurrency(TestNet); err != nil {
		t.Errorf("Failed to create testnet : %s", err)
	}
	if _, err := NewCurrency("other"); err == nil {
		t.Errorf("Created unknown network")
	}
}
