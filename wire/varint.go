package wire

import (
	"io"

	"github.com/pkg/errors"
)

var (
	ErrVarIntOverflow     = errors.New("Varint overflow")
	ErrVarIntNotCanonical = errors.New("Varint not canonical")
)

// WriteVarInt serializes val as 7 bit little endian groups, high bit set on all but the
// last group.
func WriteVarInt(w io.Writer, val uint64) error {
	var buf [10]byte
	n := PutVarInt(buf[:], val)
	_, err := w.Write(buf[:n])
	return err
}

// PutVarInt writes val into buf and returns the number of bytes written.
func PutVarInt(buf []byte, val uint64) int {
	n := 0
	for val >= 0x80 {
		buf[n] = byte(val&0x7f | 0x80)
		val >>= 7
		n++
	}
	buf[n] = byte(val)
	return n + 1
}

// ReadVarInt deserializes a varint, rejecting overflowing and non-canonical codings.
func ReadVarInt(r io.Reader) (uint64, error) {
	var value uint64
	var one [1]byte
	for i := 0; ; i++ {
		if _, err := io.ReadFull(r, one[:]); err != nil {
			return 0, err
		}
		piece := one[0]
		if i*7 > 63 || (i*7 == 63 && piece > 1) {
			return 0, ErrVarIntOverflow
		}
		value |= uint64(piece&0x7f) << uint(i*7)
		if piece&0x80 == 0 {
			if piece == 0 && i != 0 {
				return 0, ErrVarIntNotCanonical
			}
			return value, nil
		}
	}
}

// VarIntSerializeSize returns the number of bytes needed to serialize val.
func VarIntSerializeSize(val uint64) int {
	n := 1
	for val >= 0x80 {
		val >>= 7
		n++
	}
	return n
}
