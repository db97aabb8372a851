package txbuilder

import (
	"github.com/xqymain/Varcoin/varcoin"

	"github.com/pkg/errors"
)

// derivePublicKey computes the stealth key for an output to the given address, using the
// transaction secret and the output's ordinal.
func derivePublicKey(to varcoin.Address, txSecret varcoin.SecretKey,
	outputIndex uint32) (varcoin.PublicKey, error) {

	derivation, err := varcoin.GenerateKeyDerivation(to.ViewPublicKey, txSecret)
	if err != nil {
		return varcoin.PublicKey{}, errors.Wrap(err, "derivation")
	}
	return varcoin.DerivePublicKey(derivation, outputIndex, to.SpendPublicKey)
}

// AddOutput appends a pending output. The stealth key is derived later by Sign, once the
// transaction key exists. Returns the output's pre shuffle index.
func (b *TxBuilder) AddOutput(amount uint64, to varcoin.Address) int {
	b.outputsAmount += amount
	b.outputDescs = append(b.outputDescs, OutputDesc{Amount: amount, Addr: to})
	return len(b.outputDescs) - 1
}

// DecomposeAmount splits an amount into canonical d·10^k denominations, largest first.
// Change is paid out in these pieces so the wallet's coin stack stays denominated.
func DecomposeAmount(amount uint64) []uint64 {
	var result []uint64
	order := uint64(1)
	for amount > 0 {
		digit := amount % 10
		if digit != 0 {
			result = append(result, digit*order)
		}
		amount /= 10
		order *= 10
	}
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result
}
