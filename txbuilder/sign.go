package txbuilder

import (
	"crypto/rand"
	"math/big"

	"github.com/xqymain/Varcoin/varcoin"
	"github.com/xqymain/Varcoin/wire"

	"github.com/pkg/errors"
)

// DeterministicTxKeys derives the transaction key pair from the finalized input list and
// the wallet's derivation seed. The same inputs and seed always yield the same key, so a
// wallet can reconstruct historical transactions without storing per transaction
// randomness.
func DeterministicTxKeys(inputsHash varcoin.Hash32,
	seed varcoin.Hash32) (varcoin.KeyPair, error) {

	secret := varcoin.HashToScalar(inputsHash[:], seed[:])
	public, err := varcoin.SecretKeyToPublicKey(secret)
	if err != nil {
		return varcoin.KeyPair{}, err
	}
	return varcoin.KeyPair{Secret: secret, Public: public}, nil
}

// cryptoShuffle is a Fisher-Yates shuffle drawing from crypto/rand.
func cryptoShuffle(n int, swap func(i, j int)) error {
	for i := n - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return err
		}
		swap(i, int(j.Int64()))
	}
	return nil
}

// Sign finalizes the transaction. The order is mandatory: inputs and outputs are
// shuffled, the transaction key is derived from the shuffled input list, the extra blob
// is completed before the prefix hash, and the prefix hash precedes signing because the
// signatures commit to it. The builder is consumed; a failed sign discards it.
func (b *TxBuilder) Sign(txDerivationSeed varcoin.Hash32) (*wire.MsgTx, error) {
	if b.signed {
		return nil, ErrAlreadySigned
	}
	b.signed = true

	if err := cryptoShuffle(len(b.outputDescs), func(i, j int) {
		b.outputDescs[i], b.outputDescs[j] = b.outputDescs[j], b.outputDescs[i]
	}); err != nil {
		return nil, errors.Wrap(err, "shuffle outputs")
	}
	if err := cryptoShuffle(len(b.inputDescs), func(i, j int) {
		b.inputDescs[i], b.inputDescs[j] = b.inputDescs[j], b.inputDescs[i]
	}); err != nil {
		return nil, errors.Wrap(err, "shuffle inputs")
	}

	b.tx.Inputs = make([]wire.TxInput, len(b.inputDescs))
	for i := range b.inputDescs {
		b.tx.Inputs[i] = &b.inputDescs[i].Input
	}

	inputsHash, err := b.tx.InputsHash()
	if err != nil {
		return nil, errors.Wrap(err, "inputs hash")
	}
	txKeys, err := DeterministicTxKeys(inputsHash, txDerivationSeed)
	if err != nil {
		return nil, errors.Wrap(err, "tx keys")
	}

	b.extra.SetPublicKey(txKeys.Public)
	b.tx.Extra = b.extra.Serialize()

	// Now that the tx key exists the output keys can be derived.
	b.tx.Outputs = make([]wire.TxOutput, len(b.outputDescs))
	for i, desc := range b.outputDescs {
		outKey, err := derivePublicKey(desc.Addr, txKeys.Secret, uint32(i))
		if err != nil {
			return nil, errors.Wrap(ErrOutputKeyDerivation, err.Error())
		}
		b.tx.Outputs[i] = wire.TxOutput{Amount: desc.Amount, Target: outKey}
	}

	prefixHash, err := b.tx.PrefixHash()
	if err != nil {
		return nil, errors.Wrap(err, "prefix hash")
	}

	b.tx.Signatures = make([][]varcoin.Signature, len(b.inputDescs))
	for i := range b.inputDescs {
		desc := &b.inputDescs[i]
		ring := make([]varcoin.PublicKey, 0, len(desc.Outputs))
		for _, out := range desc.Outputs {
			ring = append(ring, out.PublicKey)
		}

		sigs, err := varcoin.GenerateRingSignature(prefixHash, desc.Input.KeyImage, ring,
			desc.EphKeys.Secret, desc.RealOutputIndex)
		if err != nil {
			return nil, errors.Wrap(ErrRingSignature, err.Error())
		}
		b.tx.Signatures[i] = sigs
	}

	return &b.tx, nil
}
