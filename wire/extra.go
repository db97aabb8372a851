package wire

import (
	"bytes"
	"io"

	"github.com/xqymain/Varcoin/varcoin"

	"github.com/pkg/errors"
)

const (
	ExtraTagPadding = 0x00
	ExtraTagPubKey  = 0x01
	ExtraTagNonce   = 0x02

	// ExtraNoncePaymentID is the first nonce byte marking a 32 byte payment id.
	ExtraNoncePaymentID = 0x00

	ExtraNonceMaxSize = 255
)

var (
	ErrExtraNonceTooLarge = errors.New("Extra nonce too large")
	ErrUnknownExtraTag    = errors.New("Unknown extra tag")
)

// Extra holds the tagged fields of the transaction extra blob. Fields are serialized in
// tag order: public key first, then the nonce.
type Extra struct {
	publicKey *varcoin.PublicKey
	nonce     []byte
}

// SetPublicKey installs the transaction public key field.
func (e *Extra) SetPublicKey(pk varcoin.PublicKey) {
	e.publicKey = &pk
}

// SetNonce installs an arbitrary nonce field, replacing any previous one.
func (e *Extra) SetNonce(nonce []byte) error {
	if len(nonce) > ExtraNonceMaxSize {
		return errors.Wrapf(ErrExtraNonceTooLarge, "%d bytes", len(nonce))
	}
	e.nonce = make([]byte, len(nonce))
	copy(e.nonce, nonce)
	return nil
}

// SetPaymentID installs a payment id nonce, replacing any previous nonce. Other fields are
// untouched.
func (e *Extra) SetPaymentID(id varcoin.Hash32) {
	nonce := make([]byte, 1+varcoin.Hash32Size)
	nonce[0] = ExtraNoncePaymentID
	copy(nonce[1:], id[:])
	e.nonce = nonce
}

// PublicKey returns the transaction public key field if present.
func (e *Extra) PublicKey() (varcoin.PublicKey, bool) {
	if e.publicKey == nil {
		return varcoin.PublicKey{}, false
	}
	return *e.publicKey, true
}

// PaymentID returns the payment id if the nonce field holds one.
func (e *Extra) PaymentID() (varcoin.Hash32, bool) {
	if len(e.nonce) != 1+varcoin.Hash32Size || e.nonce[0] != ExtraNoncePaymentID {
		return varcoin.Hash32{}, false
	}
	result := varcoin.Hash32{}
	copy(result[:], e.nonce[1:])
	return result, true
}

// Nonce returns the raw nonce field.
func (e *Extra) Nonce() []byte {
	return e.nonce
}

// Serialize returns the extra blob bytes.
func (e *Extra) Serialize() []byte {
	var buf bytes.Buffer
	if e.publicKey != nil {
		buf.WriteByte(ExtraTagPubKey)
		buf.Write(e.publicKey[:])
	}
	if e.nonce != nil {
		buf.WriteByte(ExtraTagNonce)
		buf.WriteByte(byte(len(e.nonce)))
		buf.Write(e.nonce)
	}
	return buf.Bytes()
}

// ParseExtra decodes an extra blob into its tagged fields.
func ParseExtra(data []byte) (*Extra, error) {
	result := &Extra{}
	r := bytes.NewReader(data)
	for {
		tag, err := r.ReadByte()
		if err == io.EOF {
			return result, nil
		}
		if err != nil {
			return nil, err
		}

		switch tag {
		case ExtraTagPadding:
			// Padding runs to the end of the blob and must be all zero.
			for {
				b, err := r.ReadByte()
				if err == io.EOF {
					return result, nil
				}
				if err != nil {
					return nil, err
				}
				if b != 0 {
					return nil, errors.Wrap(ErrUnknownExtraTag, "non zero padding")
				}
			}

		case ExtraTagPubKey:
			pk := varcoin.PublicKey{}
			if _, err := io.ReadFull(r, pk[:]); err != nil {
				return nil, errors.Wrap(err, "public key")
			}
			result.publicKey = &pk

		case ExtraTagNonce:
			size, err := r.ReadByte()
			if err != nil {
				return nil, errors.Wrap(err, "nonce size")
			}
			nonce := make([]byte, size)
			if _, err := io.ReadFull(r, nonce); err != nil {
				return nil, errors.Wrap(err, "nonce")
			}
			result.nonce = nonce

		default:
			return nil, errors.Wrapf(ErrUnknownExtraTag, "0x%02x", tag)
		}
	}
}
