package varcoin

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

const (
	Hash32Size = 32
)

var (
	ErrWrongSize = errors.New("Wrong size")
)

// Hash32 is a 32 byte hash.
type Hash32 [Hash32Size]byte

func NewHash32(b []byte) (*Hash32, error) {
	if len(b) != Hash32Size {
		return nil, errors.Wrapf(ErrWrongSize, "got %d, want %d", len(b), Hash32Size)
	}
	result := Hash32{}
	copy(result[:], b)
	return &result, nil
}

func NewHash32FromStr(s string) (*Hash32, error) {
	result := &Hash32{}
	if err := result.SetString(s); err != nil {
		return nil, err
	}
	return result, nil
}

// FastHash returns the Keccak-256 hash of the concatenation of the data.
func FastHash(data ...[]byte) Hash32 {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	result := Hash32{}
	copy(result[:], h.Sum(nil))
	return result
}

// Bytes returns the data for the hash.
func (h Hash32) Bytes() []byte {
	return h[:]
}

// SetBytes sets the value of the hash.
func (h *Hash32) SetBytes(b []byte) error {
	if len(b) != Hash32Size {
		return errors.Wrapf(ErrWrongSize, "got %d, want %d", len(b), Hash32Size)
	}
	copy(h[:], b)
	return nil
}

// String returns the hex for the hash.
func (h Hash32) String() string {
	return hex.EncodeToString(h[:])
}

// SetString decodes a hex string into the hash.
func (h *Hash32) SetString(s string) error {
	if len(s) != 2*Hash32Size {
		return errors.Wrapf(ErrWrongSize, "hex: got %d, want %d", len(s), Hash32Size*2)
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return errors.Wrap(err, "decode hex")
	}

	copy(h[:], b)
	return nil
}

// Equal returns true if the parameter has the same value.
func (h *Hash32) Equal(o *Hash32) bool {
	if h == nil {
		return o == nil
	}
	if o == nil {
		return false
	}
	return *h == *o
}

func (h Hash32) IsZero() bool {
	var zero Hash32
	return h == zero
}

// Serialize writes the hash into a writer.
func (h Hash32) Serialize(w io.Writer) error {
	_, err := w.Write(h[:])
	return err
}

func DeserializeHash32(r io.Reader) (*Hash32, error) {
	result := Hash32{}
	if _, err := io.ReadFull(r, result[:]); err != nil {
		return nil, err
	}
	return &result, nil
}

// MarshalJSON converts to json.
func (h Hash32) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("\"%s\"", h.String())), nil
}

// UnmarshalJSON converts from json.
func (h *Hash32) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || !bytes.HasPrefix(data, []byte("\"")) || !bytes.HasSuffix(data, []byte("\"")) {
		return fmt.Errorf("Missing quotes in hash json: %s", string(data))
	}
	return h.SetString(string(data[1 : len(data)-1]))
}
