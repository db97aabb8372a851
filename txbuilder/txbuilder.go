package txbuilder

import (
	"github.com/xqymain/Varcoin/api"
	"github.com/xqymain/Varcoin/currency"
	"github.com/xqymain/Varcoin/varcoin"
	"github.com/xqymain/Varcoin/wire"
)

const (
	SubSystem = "TxBuilder" // For logger
)

// InputDesc pairs a prepared consensus input with the data needed to sign it.
type InputDesc struct {
	Input wire.KeyInput

	// Outputs is the full ring sorted by global index, the real one included.
	Outputs []api.Output

	// RealOutputIndex is the real output's position within Outputs.
	RealOutputIndex int

	// EphKeys is the real output's one time key pair.
	EphKeys varcoin.KeyPair
}

// OutputDesc is a pending payment before its one time key exists.
type OutputDesc struct {
	Amount uint64
	Addr   varcoin.Address
}

// TxBuilder assembles a transaction from selected inputs and desired outputs. It is
// created empty, filled by AddInput and AddOutput, and consumed by Sign.
type TxBuilder struct {
	tx    wire.MsgTx
	extra wire.Extra

	inputDescs  []InputDesc
	outputDescs []OutputDesc

	inputsAmount  uint64
	outputsAmount uint64

	signed bool
}

// NewTxBuilder begins construction of a transaction with the network's current version
// and the given unlock time.
func NewTxBuilder(cur *currency.Currency, unlockTime uint64) *TxBuilder {
	b := &TxBuilder{}
	b.tx.Version = cur.CurrentTransactionVersion
	b.tx.UnlockTime = unlockTime
	return b
}

// SetPaymentID installs a payment id in the extra blob's nonce field, replacing any
// previous payment id or extra nonce. The public key field is untouched.
func (b *TxBuilder) SetPaymentID(id varcoin.Hash32) {
	b.extra.SetPaymentID(id)
	b.tx.Extra = b.extra.Serialize()
}

// SetExtraNonce installs an arbitrary nonce field in the extra blob.
func (b *TxBuilder) SetExtraNonce(nonce []byte) error {
	if err := b.extra.SetNonce(nonce); err != nil {
		return err
	}
	b.tx.Extra = b.extra.Serialize()
	return nil
}

// InputValue returns the sum of the amounts added so far as inputs.
func (b *TxBuilder) InputValue() uint64 {
	return b.inputsAmount
}

// OutputValue returns the sum of the amounts added so far as outputs.
func (b *TxBuilder) OutputValue() uint64 {
	return b.outputsAmount
}

// Fee returns the implicit fee, inputs minus outputs.
func (b *TxBuilder) Fee() uint64 {
	if b.outputsAmount > b.inputsAmount {
		return 0
	}
	return b.inputsAmount - b.outputsAmount
}
