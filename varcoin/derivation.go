package varcoin

import (
	"filippo.io/edwards25519"
	"github.com/pkg/errors"
)

// KeyDerivation is the shared secret point 8·a·B between a secret scalar and a public point.
// Both sides of a transfer arrive at the same derivation: the sender from the recipient's
// view public key and the transaction secret, the recipient from the transaction public key
// and the view secret.
type KeyDerivation [32]byte

// GenerateKeyDerivation computes 8·sec·pub. The cofactor multiplication clears any small
// order component of the public point.
func GenerateKeyDerivation(pub PublicKey, sec SecretKey) (KeyDerivation, error) {
	p, err := pub.Point()
	if err != nil {
		return KeyDerivation{}, errors.Wrap(err, "derivation point")
	}
	s, err := sec.Scalar()
	if err != nil {
		return KeyDerivation{}, errors.Wrap(err, "derivation scalar")
	}

	shared := new(edwards25519.Point).ScalarMult(s, p)
	shared.MultByCofactor(shared)

	result := KeyDerivation{}
	copy(result[:], shared.Bytes())
	return result, nil
}

func (d KeyDerivation) Bytes() []byte {
	return d[:]
}

// derivationToScalar computes Hs(D ‖ varint(outputIndex)).
func derivationToScalar(derivation KeyDerivation, outputIndex uint32) *edwards25519.Scalar {
	buf := make([]byte, 0, len(derivation)+5)
	buf = append(buf, derivation[:]...)
	buf = appendVarInt(buf, uint64(outputIndex))
	return reduce32(FastHash(buf))
}

// appendVarInt appends v in the consensus varint encoding, 7 bit groups little endian.
func appendVarInt(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v&0x7f|0x80))
		v >>= 7
	}
	return append(buf, byte(v))
}

// DerivePublicKey computes the one time output key Hs(D ‖ i)·G + base for the output at
// the given index.
func DerivePublicKey(derivation KeyDerivation, outputIndex uint32, base PublicKey) (PublicKey, error) {
	basePoint, err := base.Point()
	if err != nil {
		return PublicKey{}, errors.Wrap(err, "base point")
	}

	hs := derivationToScalar(derivation, outputIndex)
	p := new(edwards25519.Point).ScalarBaseMult(hs)
	p.Add(p, basePoint)
	return pointToPublicKey(p), nil
}

// DeriveSecretKey computes the one time output secret Hs(D ‖ i) + base for the output at
// the given index. Only the owner of the base spend secret can produce it.
func DeriveSecretKey(derivation KeyDerivation, outputIndex uint32, base SecretKey) (SecretKey, error) {
	baseScalar, err := base.Scalar()
	if err != nil {
		return SecretKey{}, errors.Wrap(err, "base scalar")
	}

	hs := derivationToScalar(derivation, outputIndex)
	return scalarToSecretKey(new(edwards25519.Scalar).Add(hs, baseScalar)), nil
}
