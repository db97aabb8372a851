package varcoin

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/pkg/errors"
)

var (
	ErrNotCanonicalScalar = errors.New("Not a canonical scalar")
	ErrNotValidPoint      = errors.New("Not a valid curve point")
)

// SecretKey is a canonical ed25519 scalar in little endian format.
type SecretKey [32]byte

// PublicKey is a compressed ed25519 curve point.
type PublicKey [32]byte

// KeyPair holds a secret scalar and the matching public point.
type KeyPair struct {
	Secret SecretKey
	Public PublicKey
}

// NewKeyPair generates a random key pair.
func NewKeyPair() (KeyPair, error) {
	sec, err := RandomScalar()
	if err != nil {
		return KeyPair{}, errors.Wrap(err, "random scalar")
	}
	pub, err := SecretKeyToPublicKey(sec)
	if err != nil {
		return KeyPair{}, errors.Wrap(err, "public key")
	}
	return KeyPair{Secret: sec, Public: pub}, nil
}

// RandomScalar returns a uniformly random scalar drawn from crypto/rand.
func RandomScalar() (SecretKey, error) {
	var wide [64]byte
	if _, err := rand.Read(wide[:]); err != nil {
		return SecretKey{}, err
	}
	s, err := new(edwards25519.Scalar).SetUniformBytes(wide[:])
	if err != nil {
		return SecretKey{}, err
	}
	result := SecretKey{}
	copy(result[:], s.Bytes())
	return result, nil
}

// SecretKeyToPublicKey computes the public point for a secret scalar.
func SecretKeyToPublicKey(sec SecretKey) (PublicKey, error) {
	s, err := sec.Scalar()
	if err != nil {
		return PublicKey{}, err
	}
	p := new(edwards25519.Point).ScalarBaseMult(s)
	result := PublicKey{}
	copy(result[:], p.Bytes())
	return result, nil
}

// HashToScalar hashes the concatenation of the data with Keccak-256 and reduces the result
// mod the group order.
func HashToScalar(data ...[]byte) SecretKey {
	h := FastHash(data...)
	result := SecretKey{}
	copy(result[:], reduce32(h).Bytes())
	return result
}

// reduce32 widens a 32 byte hash to 64 bytes so SetUniformBytes reduces it mod l.
func reduce32(h Hash32) *edwards25519.Scalar {
	var wide [64]byte
	copy(wide[:], h[:])
	s, _ := new(edwards25519.Scalar).SetUniformBytes(wide[:]) // only fails on wrong length
	return s
}

// Scalar converts the secret key to an edwards25519 scalar. Non-canonical encodings are
// rejected, they indicate corrupted key material.
func (k SecretKey) Scalar() (*edwards25519.Scalar, error) {
	s, err := new(edwards25519.Scalar).SetCanonicalBytes(k[:])
	if err != nil {
		return nil, errors.Wrap(ErrNotCanonicalScalar, err.Error())
	}
	return s, nil
}

func (k SecretKey) Bytes() []byte {
	return k[:]
}

func (k SecretKey) IsZero() bool {
	var zero SecretKey
	return k == zero
}

func (k SecretKey) String() string {
	return hex.EncodeToString(k[:])
}

func (k *SecretKey) SetString(s string) error {
	return setHex32(k[:], s)
}

func (k SecretKey) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("\"%s\"", k.String())), nil
}

func (k *SecretKey) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return err
	}
	return k.SetString(s)
}

// Point converts the public key to an edwards25519 point.
func (p PublicKey) Point() (*edwards25519.Point, error) {
	pt, err := new(edwards25519.Point).SetBytes(p[:])
	if err != nil {
		return nil, errors.Wrap(ErrNotValidPoint, err.Error())
	}
	return pt, nil
}

func (p PublicKey) Bytes() []byte {
	return p[:]
}

func (p PublicKey) IsZero() bool {
	var zero PublicKey
	return p == zero
}

func (p *PublicKey) Equal(o *PublicKey) bool {
	if p == nil {
		return o == nil
	}
	if o == nil {
		return false
	}
	return *p == *o
}

func (p PublicKey) String() string {
	return hex.EncodeToString(p[:])
}

func (p *PublicKey) SetString(s string) error {
	return setHex32(p[:], s)
}

func (p PublicKey) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("\"%s\"", p.String())), nil
}

func (p *PublicKey) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return err
	}
	return p.SetString(s)
}

// MarshalText allows public keys as json map keys.
func (p PublicKey) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PublicKey) UnmarshalText(text []byte) error {
	return p.SetString(string(text))
}

func pointToPublicKey(p *edwards25519.Point) PublicKey {
	result := PublicKey{}
	copy(result[:], p.Bytes())
	return result
}

func scalarToSecretKey(s *edwards25519.Scalar) SecretKey {
	result := SecretKey{}
	copy(result[:], s.Bytes())
	return result
}

func setHex32(dst []byte, s string) error {
	if len(s) != 64 {
		return errors.Wrapf(ErrWrongSize, "hex: got %d, want %d", len(s), 64)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return errors.Wrap(err, "decode hex")
	}
	copy(dst, b)
	return nil
}

func unquote(data []byte) (string, error) {
	if len(data) < 2 || !bytes.HasPrefix(data, []byte("\"")) || !bytes.HasSuffix(data, []byte("\"")) {
		return "", fmt.Errorf("Missing quotes in json: %s", string(data))
	}
	return string(data[1 : len(data)-1]), nil
}
