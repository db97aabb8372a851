package varcoin

import (
	"filippo.io/edwards25519"
	"github.com/pkg/errors"
)

const (
	SignatureSize = 64
)

// Signature is one ring member's share of a ring signature, the scalars c ‖ r.
type Signature [SignatureSize]byte

func (s Signature) Bytes() []byte {
	return s[:]
}

func (s *Signature) scalars() (*edwards25519.Scalar, *edwards25519.Scalar, error) {
	c, err := new(edwards25519.Scalar).SetCanonicalBytes(s[:32])
	if err != nil {
		return nil, nil, errors.Wrap(ErrNotCanonicalScalar, "c")
	}
	r, err := new(edwards25519.Scalar).SetCanonicalBytes(s[32:])
	if err != nil {
		return nil, nil, errors.Wrap(ErrNotCanonicalScalar, "r")
	}
	return c, r, nil
}

func (s *Signature) setScalars(c, r *edwards25519.Scalar) {
	copy(s[:32], c.Bytes())
	copy(s[32:], r.Bytes())
}

// GenerateRingSignature signs prefixHash with the secret key of ring[realIndex], producing
// one signature per ring member. A verifier learns that one member signed, not which.
func GenerateRingSignature(prefixHash Hash32, image KeyImage, ring []PublicKey, sec SecretKey,
	realIndex int) ([]Signature, error) {

	if realIndex < 0 || realIndex >= len(ring) {
		return nil, errors.Errorf("Real index %d outside ring of %d", realIndex, len(ring))
	}

	secScalar, err := sec.Scalar()
	if err != nil {
		return nil, errors.Wrap(err, "secret")
	}

	imagePoint, err := image.Point()
	if err != nil {
		return nil, errors.Wrap(err, "key image")
	}

	kSec, err := RandomScalar()
	if err != nil {
		return nil, errors.Wrap(err, "nonce")
	}
	k, _ := new(edwards25519.Scalar).SetCanonicalBytes(kSec[:])

	sigs := make([]Signature, len(ring))
	sum := new(edwards25519.Scalar)
	buf := make([]byte, 0, Hash32Size+len(ring)*64)
	buf = append(buf, prefixHash[:]...)

	for i, pub := range ring {
		pubPoint, err := pub.Point()
		if err != nil {
			return nil, errors.Wrapf(err, "ring member %d", i)
		}

		var l, r *edwards25519.Point
		if i == realIndex {
			l = new(edwards25519.Point).ScalarBaseMult(k)
			r = new(edwards25519.Point).ScalarMult(k, HashToPoint(pub[:]))
		} else {
			cSec, err := RandomScalar()
			if err != nil {
				return nil, errors.Wrap(err, "nonce c")
			}
			rSec, err := RandomScalar()
			if err != nil {
				return nil, errors.Wrap(err, "nonce r")
			}
			c, _ := new(edwards25519.Scalar).SetCanonicalBytes(cSec[:])
			rr, _ := new(edwards25519.Scalar).SetCanonicalBytes(rSec[:])

			// L = c·P + r·G ; R = r·Hp(P) + c·I
			l = new(edwards25519.Point).VarTimeDoubleScalarBaseMult(c, pubPoint, rr)
			r = new(edwards25519.Point).ScalarMult(rr, HashToPoint(pub[:]))
			r.Add(r, new(edwards25519.Point).ScalarMult(c, imagePoint))

			sigs[i].setScalars(c, rr)
			sum.Add(sum, c)
		}

		buf = append(buf, l.Bytes()...)
		buf = append(buf, r.Bytes()...)
	}

	h := reduce32(FastHash(buf))

	// Close the ring: c_real = h − Σc, r_real = k − c_real·x.
	cReal := new(edwards25519.Scalar).Subtract(h, sum)
	rReal := new(edwards25519.Scalar).Subtract(k,
		new(edwards25519.Scalar).Multiply(cReal, secScalar))
	sigs[realIndex].setScalars(cReal, rReal)

	return sigs, nil
}

// CheckRingSignature verifies a ring signature over prefixHash.
func CheckRingSignature(prefixHash Hash32, image KeyImage, ring []PublicKey,
	sigs []Signature) bool {

	if len(sigs) != len(ring) || len(ring) == 0 {
		return false
	}

	imagePoint, err := image.Point()
	if err != nil {
		return false
	}

	sum := new(edwards25519.Scalar)
	buf := make([]byte, 0, Hash32Size+len(ring)*64)
	buf = append(buf, prefixHash[:]...)

	for i, pub := range ring {
		pubPoint, err := pub.Point()
		if err != nil {
			return false
		}
		c, r, err := sigs[i].scalars()
		if err != nil {
			return false
		}

		l := new(edwards25519.Point).VarTimeDoubleScalarBaseMult(c, pubPoint, r)
		rp := new(edwards25519.Point).ScalarMult(r, HashToPoint(pub[:]))
		rp.Add(rp, new(edwards25519.Point).ScalarMult(c, imagePoint))

		buf = append(buf, l.Bytes()...)
		buf = append(buf, rp.Bytes()...)
		sum.Add(sum, c)
	}

	h := reduce32(FastHash(buf))
	return h.Equal(sum) == 1
}
