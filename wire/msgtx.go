package wire

import (
	"bytes"
	"io"

	"github.com/xqymain/Varcoin/varcoin"

	"github.com/pkg/errors"
)

const (
	// TagKeyInput marks an input spending a key output through a ring.
	TagKeyInput = 0x02

	// TagCoinbaseInput marks the miner reward input of a coinbase transaction.
	TagCoinbaseInput = 0xff

	// TagKeyOutput marks an output paying to a one time key.
	TagKeyOutput = 0x02
)

var (
	ErrUnknownInputTag  = errors.New("Unknown input tag")
	ErrUnknownOutputTag = errors.New("Unknown output tag")
)

// TxInput is one arm of the consensus input variant. The builder only ever emits key
// inputs; coinbase inputs appear when introspecting chain data.
type TxInput interface {
	Serialize(w io.Writer) error
	SerializeSize() int

	// Tag returns the consensus variant tag.
	Tag() byte
}

// KeyInput spends one output hidden in a ring of same amount outputs.
type KeyInput struct {
	Amount uint64

	// OutputIndexes are the ring members' global output indexes in relative form: the
	// first is absolute, the rest are deltas from the previous one.
	OutputIndexes []uint32

	KeyImage varcoin.KeyImage
}

func (in *KeyInput) Tag() byte { return TagKeyInput }

func (in *KeyInput) Serialize(w io.Writer) error {
	if _, err := w.Write([]byte{TagKeyInput}); err != nil {
		return err
	}
	if err := WriteVarInt(w, in.Amount); err != nil {
		return err
	}
	if err := WriteVarInt(w, uint64(len(in.OutputIndexes))); err != nil {
		return err
	}
	for _, offset := range in.OutputIndexes {
		if err := WriteVarInt(w, uint64(offset)); err != nil {
			return err
		}
	}
	_, err := w.Write(in.KeyImage[:])
	return err
}

func (in *KeyInput) SerializeSize() int {
	result := 1 + VarIntSerializeSize(in.Amount) +
		VarIntSerializeSize(uint64(len(in.OutputIndexes))) + varcoin.Hash32Size
	for _, offset := range in.OutputIndexes {
		result += VarIntSerializeSize(uint64(offset))
	}
	return result
}

// CoinbaseInput is the block reward input, identified by block height.
type CoinbaseInput struct {
	BlockIndex uint32
}

func (in *CoinbaseInput) Tag() byte { return TagCoinbaseInput }

func (in *CoinbaseInput) Serialize(w io.Writer) error {
	if _, err := w.Write([]byte{TagCoinbaseInput}); err != nil {
		return err
	}
	return WriteVarInt(w, uint64(in.BlockIndex))
}

func (in *CoinbaseInput) SerializeSize() int {
	return 1 + VarIntSerializeSize(uint64(in.BlockIndex))
}

// DeserializeInput reads one tagged input.
func DeserializeInput(r io.Reader) (TxInput, error) {
	var tag [1]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return nil, err
	}

	switch tag[0] {
	case TagKeyInput:
		in := &KeyInput{}
		var err error
		if in.Amount, err = ReadVarInt(r); err != nil {
			return nil, errors.Wrap(err, "amount")
		}
		count, err := ReadVarInt(r)
		if err != nil {
			return nil, errors.Wrap(err, "offset count")
		}
		in.OutputIndexes = make([]uint32, count)
		for i := range in.OutputIndexes {
			offset, err := ReadVarInt(r)
			if err != nil {
				return nil, errors.Wrapf(err, "offset %d", i)
			}
			in.OutputIndexes[i] = uint32(offset)
		}
		if _, err := io.ReadFull(r, in.KeyImage[:]); err != nil {
			return nil, errors.Wrap(err, "key image")
		}
		return in, nil

	case TagCoinbaseInput:
		in := &CoinbaseInput{}
		blockIndex, err := ReadVarInt(r)
		if err != nil {
			return nil, errors.Wrap(err, "block index")
		}
		in.BlockIndex = uint32(blockIndex)
		return in, nil
	}

	return nil, errors.Wrapf(ErrUnknownInputTag, "0x%02x", tag[0])
}

// TxOutput pays an amount to a one time key.
type TxOutput struct {
	Amount uint64
	Target varcoin.PublicKey
}

func (out *TxOutput) Serialize(w io.Writer) error {
	if err := WriteVarInt(w, out.Amount); err != nil {
		return err
	}
	if _, err := w.Write([]byte{TagKeyOutput}); err != nil {
		return err
	}
	_, err := w.Write(out.Target[:])
	return err
}

func (out *TxOutput) SerializeSize() int {
	return VarIntSerializeSize(out.Amount) + 1 + varcoin.Hash32Size
}

func deserializeOutput(r io.Reader) (*TxOutput, error) {
	out := &TxOutput{}
	var err error
	if out.Amount, err = ReadVarInt(r); err != nil {
		return nil, errors.Wrap(err, "amount")
	}

	var tag [1]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		return nil, err
	}
	if tag[0] != TagKeyOutput {
		return nil, errors.Wrapf(ErrUnknownOutputTag, "0x%02x", tag[0])
	}

	if _, err := io.ReadFull(r, out.Target[:]); err != nil {
		return nil, errors.Wrap(err, "target")
	}
	return out, nil
}

// TxPrefix is the unsigned portion of a transaction, the bytes signatures commit to.
type TxPrefix struct {
	Version    uint64
	UnlockTime uint64
	Inputs     []TxInput
	Outputs    []TxOutput
	Extra      []byte
}

func (tx *TxPrefix) Serialize(w io.Writer) error {
	if err := WriteVarInt(w, tx.Version); err != nil {
		return err
	}
	if err := WriteVarInt(w, tx.UnlockTime); err != nil {
		return err
	}

	if err := WriteVarInt(w, uint64(len(tx.Inputs))); err != nil {
		return err
	}
	for _, in := range tx.Inputs {
		if err := in.Serialize(w); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(tx.Outputs))); err != nil {
		return err
	}
	for i := range tx.Outputs {
		if err := tx.Outputs[i].Serialize(w); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(tx.Extra))); err != nil {
		return err
	}
	_, err := w.Write(tx.Extra)
	return err
}

func (tx *TxPrefix) Deserialize(r io.Reader) error {
	var err error
	if tx.Version, err = ReadVarInt(r); err != nil {
		return errors.Wrap(err, "version")
	}
	if tx.UnlockTime, err = ReadVarInt(r); err != nil {
		return errors.Wrap(err, "unlock time")
	}

	inputCount, err := ReadVarInt(r)
	if err != nil {
		return errors.Wrap(err, "input count")
	}
	tx.Inputs = make([]TxInput, inputCount)
	for i := range tx.Inputs {
		if tx.Inputs[i], err = DeserializeInput(r); err != nil {
			return errors.Wrapf(err, "input %d", i)
		}
	}

	outputCount, err := ReadVarInt(r)
	if err != nil {
		return errors.Wrap(err, "output count")
	}
	tx.Outputs = make([]TxOutput, outputCount)
	for i := range tx.Outputs {
		out, err := deserializeOutput(r)
		if err != nil {
			return errors.Wrapf(err, "output %d", i)
		}
		tx.Outputs[i] = *out
	}

	extraSize, err := ReadVarInt(r)
	if err != nil {
		return errors.Wrap(err, "extra size")
	}
	tx.Extra = make([]byte, extraSize)
	if _, err := io.ReadFull(r, tx.Extra); err != nil {
		return errors.Wrap(err, "extra")
	}
	return nil
}

func (tx *TxPrefix) SerializeSize() int {
	result := VarIntSerializeSize(tx.Version) + VarIntSerializeSize(tx.UnlockTime) +
		VarIntSerializeSize(uint64(len(tx.Inputs))) +
		VarIntSerializeSize(uint64(len(tx.Outputs))) +
		VarIntSerializeSize(uint64(len(tx.Extra))) + len(tx.Extra)
	for _, in := range tx.Inputs {
		result += in.SerializeSize()
	}
	for i := range tx.Outputs {
		result += tx.Outputs[i].SerializeSize()
	}
	return result
}

// PrefixHash returns the hash the ring signatures commit to.
func (tx *TxPrefix) PrefixHash() (varcoin.Hash32, error) {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return varcoin.Hash32{}, err
	}
	return varcoin.FastHash(buf.Bytes()), nil
}

// InputsHash returns the hash of the finalized input list, the binding for the
// deterministic transaction key.
func (tx *TxPrefix) InputsHash() (varcoin.Hash32, error) {
	var buf bytes.Buffer
	if err := WriteVarInt(&buf, uint64(len(tx.Inputs))); err != nil {
		return varcoin.Hash32{}, err
	}
	for _, in := range tx.Inputs {
		if err := in.Serialize(&buf); err != nil {
			return varcoin.Hash32{}, err
		}
	}
	return varcoin.FastHash(buf.Bytes()), nil
}

// MsgTx is a full transaction: the prefix plus one signature vector per input, each of
// ring size length.
type MsgTx struct {
	TxPrefix

	Signatures [][]varcoin.Signature
}

func (tx *MsgTx) Serialize(w io.Writer) error {
	if err := tx.TxPrefix.Serialize(w); err != nil {
		return err
	}
	for _, sigs := range tx.Signatures {
		for i := range sigs {
			if _, err := w.Write(sigs[i][:]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (tx *MsgTx) Deserialize(r io.Reader) error {
	if err := tx.TxPrefix.Deserialize(r); err != nil {
		return err
	}

	tx.Signatures = make([][]varcoin.Signature, len(tx.Inputs))
	for i, in := range tx.Inputs {
		keyInput, ok := in.(*KeyInput)
		if !ok {
			continue // coinbase inputs carry no signatures
		}
		sigs := make([]varcoin.Signature, len(keyInput.OutputIndexes))
		for s := range sigs {
			if _, err := io.ReadFull(r, sigs[s][:]); err != nil {
				return errors.Wrapf(err, "signature %d of input %d", s, i)
			}
		}
		tx.Signatures[i] = sigs
	}
	return nil
}

func (tx *MsgTx) SerializeSize() int {
	result := tx.TxPrefix.SerializeSize()
	for _, sigs := range tx.Signatures {
		result += len(sigs) * varcoin.SignatureSize
	}
	return result
}

// TxHash returns the transaction id.
func (tx *MsgTx) TxHash() (varcoin.Hash32, error) {
	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return varcoin.Hash32{}, err
	}
	return varcoin.FastHash(buf.Bytes()), nil
}
