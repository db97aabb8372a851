// Package currency holds the network wide parameters and rules the transaction core
// depends on.
package currency

import (
	"github.com/xqymain/Varcoin/varcoin"

	"github.com/pkg/errors"
)

const (
	MainNet = "mainnet"
	TestNet = "testnet"
)

var (
	ErrUnknownNetwork = errors.New("Unknown network")
)

// Currency is the parameter set of one network.
type Currency struct {
	Net string

	CurrentTransactionVersion uint64
	MinimumFee                uint64
	DefaultDustThreshold      uint64

	// AddressPrefix is the varint tag leading every coded account address.
	AddressPrefix uint64

	// MaxBlockHeight separates height based unlock times from timestamp based ones.
	MaxBlockHeight uint64

	// MinedMoneyUnlockWindow is how many blocks a coinbase output must mature before it
	// is spendable.
	MinedMoneyUnlockWindow uint32

	LockedTxAllowedDeltaBlocks  uint64
	LockedTxAllowedDeltaSeconds uint64
}

// Mainnet returns the production network parameters.
func Mainnet() *Currency {
	return &Currency{
		Net:                         MainNet,
		CurrentTransactionVersion:   1,
		MinimumFee:                  1000000,
		DefaultDustThreshold:        1000000,
		AddressPrefix:               0x3d,
		MaxBlockHeight:              500000000,
		MinedMoneyUnlockWindow:      10,
		LockedTxAllowedDeltaBlocks:  1,
		LockedTxAllowedDeltaSeconds: 86400,
	}
}

// Testnet returns the test network parameters.
func Testnet() *Currency {
	result := Mainnet()
	result.Net = TestNet
	result.AddressPrefix = 0x3e
	return result
}

// NewCurrency returns the parameters for the named network.
func NewCurrency(net string) (*Currency, error) {
	switch net {
	case MainNet:
		return Mainnet(), nil
	case TestNet:
		return Testnet(), nil
	}
	return nil, errors.Wrap(ErrUnknownNetwork, net)
}

// IsDust returns true when the amount is not a canonical single digit denomination
// d·10^k. Such amounts only appear as change residue and are consumed opportunistically.
func IsDust(amount uint64) bool {
	if amount == 0 {
		return true
	}
	for amount%10 == 0 {
		amount /= 10
	}
	return amount > 9
}

// IsDust routes to the package level rule; the threshold itself only shapes fees.
func (c *Currency) IsDust(amount uint64) bool {
	return IsDust(amount)
}

// IsTransactionSpendTimeUnlocked reports whether an output with the given unlock time is
// spendable at the given block height and time. Small unlock values are heights, large
// ones timestamps.
func (c *Currency) IsTransactionSpendTimeUnlocked(unlockTime uint64, blockHeight uint32,
	blockTime uint64) bool {

	if unlockTime < c.MaxBlockHeight { // interpret as block height
		return uint64(blockHeight) + c.LockedTxAllowedDeltaBlocks >= unlockTime
	}
	return blockTime + c.LockedTxAllowedDeltaSeconds >= unlockTime
}

// IsMinedMoneyUnlocked reports whether a coinbase output mined at the given height has
// matured for spending at the given block height.
func (c *Currency) IsMinedMoneyUnlocked(minedHeight, blockHeight uint32) bool {
	return uint64(minedHeight)+uint64(c.MinedMoneyUnlockWindow) <= uint64(blockHeight)
}

// AccountAddressAsString codes an address for this network.
func (c *Currency) AccountAddressAsString(addr varcoin.Address) string {
	return varcoin.EncodeAccountAddress(c.AddressPrefix, addr)
}

// ParseAccountAddressString decodes an address, checking it belongs to this network.
func (c *Currency) ParseAccountAddressString(s string) (varcoin.Address, error) {
	return varcoin.DecodeAccountAddress(c.AddressPrefix, s)
}
