package txbuilder

import (
	"sort"

	"github.com/xqymain/Varcoin/api"
	"github.com/xqymain/Varcoin/varcoin"
	"github.com/xqymain/Varcoin/wire"

	"github.com/pkg/errors"
)

// generateKeyImageHelper recovers the one time key pair of an output the wallet owns and
// derives its key image.
func generateKeyImageHelper(ack varcoin.AccountKeys, txPublicKey varcoin.PublicKey,
	realOutputIndex uint32) (varcoin.KeyPair, varcoin.KeyImage, error) {

	recvDerivation, err := varcoin.GenerateKeyDerivation(txPublicKey, ack.ViewSecretKey)
	if err != nil {
		return varcoin.KeyPair{}, varcoin.KeyImage{}, errors.Wrap(err, "derivation")
	}

	ephPublic, err := varcoin.DerivePublicKey(recvDerivation, realOutputIndex,
		ack.Address.SpendPublicKey)
	if err != nil {
		return varcoin.KeyPair{}, varcoin.KeyImage{}, errors.Wrap(err, "public")
	}

	ephSecret, err := varcoin.DeriveSecretKey(recvDerivation, realOutputIndex,
		ack.SpendSecretKey)
	if err != nil {
		return varcoin.KeyPair{}, varcoin.KeyImage{}, errors.Wrap(err, "secret")
	}

	keyImage, err := varcoin.GenerateKeyImage(ephPublic, ephSecret)
	if err != nil {
		return varcoin.KeyPair{}, varcoin.KeyImage{}, errors.Wrap(err, "key image")
	}

	return varcoin.KeyPair{Secret: ephSecret, Public: ephPublic}, keyImage, nil
}

// AddInput appends a pending input spending realOutput hidden among mixOutputs. The ring
// is ordered by global index and the real output inserted at its sorted position, so its
// position carries no information. Returns the input's pre shuffle index.
func (b *TxBuilder) AddInput(senderKeys varcoin.AccountKeys, realOutput api.Output,
	mixOutputs []api.Output) (int, error) {

	if b.signed {
		return 0, ErrAlreadySigned
	}

	desc := InputDesc{}
	desc.Input.Amount = realOutput.Amount
	desc.Outputs = make([]api.Output, len(mixOutputs))
	copy(desc.Outputs, mixOutputs)
	sort.Slice(desc.Outputs, func(i, j int) bool {
		return desc.Outputs[i].GlobalIndex < desc.Outputs[j].GlobalIndex
	})
	desc.RealOutputIndex = sort.Search(len(desc.Outputs), func(i int) bool {
		return desc.Outputs[i].GlobalIndex >= realOutput.GlobalIndex
	})
	desc.Outputs = append(desc.Outputs, api.Output{})
	copy(desc.Outputs[desc.RealOutputIndex+1:], desc.Outputs[desc.RealOutputIndex:])
	desc.Outputs[desc.RealOutputIndex] = realOutput

	ephKeys, keyImage, err := generateKeyImageHelper(senderKeys,
		realOutput.TransactionPublicKey, realOutput.IndexInTransaction)
	if err != nil {
		return 0, errors.Wrap(ErrKeyImageGeneration, err.Error())
	}
	if !keyImage.Equal(&realOutput.KeyImage) {
		return 0, errors.Wrapf(ErrKeyImageMismatch, "derived %s, recorded %s",
			keyImage, realOutput.KeyImage)
	}
	desc.EphKeys = ephKeys
	desc.Input.KeyImage = keyImage

	absolute := make([]uint32, 0, len(desc.Outputs))
	for _, out := range desc.Outputs {
		if out.Amount != realOutput.Amount {
			return 0, errors.Wrapf(ErrMixAmountMismatch, "%d != %d", out.Amount,
				realOutput.Amount)
		}
		absolute = append(absolute, out.GlobalIndex)
	}

	desc.Input.OutputIndexes, err = wire.AbsoluteOutputOffsetsToRelative(absolute)
	if err != nil {
		return 0, errors.Wrap(err, "offsets")
	}

	b.inputsAmount += realOutput.Amount
	b.inputDescs = append(b.inputDescs, desc)
	return len(b.inputDescs) - 1, nil
}
