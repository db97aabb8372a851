package varcoin

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/pkg/errors"
)

// KeyImage is a curve point uniquely bound to an output and its owner. Publishing the same
// image twice is a double spend, so the chain tracks them.
type KeyImage [32]byte

// HashToPoint deterministically maps data onto the prime order subgroup. The Keccak output
// is re-hashed until it decodes as a curve point, then the cofactor is cleared.
func HashToPoint(data []byte) *edwards25519.Point {
	h := FastHash(data)
	for {
		p, err := new(edwards25519.Point).SetBytes(h[:])
		if err == nil {
			return p.MultByCofactor(p)
		}
		h = FastHash(h[:])
	}
}

// GenerateKeyImage computes sec·Hp(pub) for an output's ephemeral key pair.
func GenerateKeyImage(pub PublicKey, sec SecretKey) (KeyImage, error) {
	s, err := sec.Scalar()
	if err != nil {
		return KeyImage{}, errors.Wrap(err, "key image scalar")
	}

	hp := HashToPoint(pub[:])
	image := new(edwards25519.Point).ScalarMult(s, hp)

	result := KeyImage{}
	copy(result[:], image.Bytes())
	return result, nil
}

// Point converts the key image to an edwards25519 point.
func (ki KeyImage) Point() (*edwards25519.Point, error) {
	p, err := new(edwards25519.Point).SetBytes(ki[:])
	if err != nil {
		return nil, errors.Wrap(ErrNotValidPoint, err.Error())
	}
	return p, nil
}

func (ki KeyImage) Bytes() []byte {
	return ki[:]
}

func (ki KeyImage) IsZero() bool {
	var zero KeyImage
	return ki == zero
}

func (ki *KeyImage) Equal(o *KeyImage) bool {
	if ki == nil {
		return o == nil
	}
	if o == nil {
		return false
	}
	return *ki == *o
}

func (ki KeyImage) String() string {
	return hex.EncodeToString(ki[:])
}

func (ki *KeyImage) SetString(s string) error {
	return setHex32(ki[:], s)
}

func (ki KeyImage) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("\"%s\"", ki.String())), nil
}

func (ki *KeyImage) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || !bytes.HasPrefix(data, []byte("\"")) || !bytes.HasSuffix(data, []byte("\"")) {
		return fmt.Errorf("Missing quotes in key image json: %s", string(data))
	}
	return ki.SetString(string(data[1 : len(data)-1]))
}
