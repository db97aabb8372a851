package varcoin

import (
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/pkg/errors"
)

var (
	ErrBadAddress         = errors.New("Bad address")
	ErrBadAddressChecksum = errors.New("Bad address checksum")
	ErrWrongAddressPrefix = errors.New("Wrong address prefix")
)

const (
	addressChecksumSize = 4

	// Addresses are base58 coded in blocks of 8 bytes so the coded form has a fixed width.
	fullBlockSize        = 8
	fullEncodedBlockSize = 11

	// zeroSymbol is the alphabet's zero value, used to left pad partial codings.
	zeroSymbol = '1'
)

// encodedBlockSizes[n] is the coded width of a partial block of n bytes.
var encodedBlockSizes = [fullBlockSize + 1]int{0, 2, 3, 5, 6, 7, 9, 10, 11}

// Address is a public account address, the spend and view public points.
type Address struct {
	SpendPublicKey PublicKey `json:"spend_public_key"`
	ViewPublicKey  PublicKey `json:"view_public_key"`
}

// AccountKeys is an address together with the owner's secrets.
type AccountKeys struct {
	Address        Address
	SpendSecretKey SecretKey
	ViewSecretKey  SecretKey
}

// EncodeAccountAddress codes an address as base58 with the network tag and a hash checksum.
func EncodeAccountAddress(tag uint64, addr Address) string {
	data := appendVarInt(nil, tag)
	data = append(data, addr.SpendPublicKey[:]...)
	data = append(data, addr.ViewPublicKey[:]...)
	checksum := FastHash(data)
	data = append(data, checksum[:addressChecksumSize]...)
	return encodeBlocks(data)
}

// DecodeAccountAddress decodes a base58 address and checks the checksum and network tag.
func DecodeAccountAddress(tag uint64, s string) (Address, error) {
	data, err := decodeBlocks(s)
	if err != nil {
		return Address{}, err
	}
	if len(data) < addressChecksumSize {
		return Address{}, errors.Wrap(ErrBadAddress, "too short")
	}

	body := data[:len(data)-addressChecksumSize]
	checksum := FastHash(body)
	if string(checksum[:addressChecksumSize]) != string(data[len(body):]) {
		return Address{}, ErrBadAddressChecksum
	}

	gotTag, tagSize, err := readVarIntBytes(body)
	if err != nil {
		return Address{}, errors.Wrap(ErrBadAddress, err.Error())
	}
	if gotTag != tag {
		return Address{}, errors.Wrapf(ErrWrongAddressPrefix, "got %d, want %d", gotTag, tag)
	}

	body = body[tagSize:]
	if len(body) != 2*32 {
		return Address{}, errors.Wrapf(ErrBadAddress, "body size %d", len(body))
	}

	result := Address{}
	copy(result.SpendPublicKey[:], body[:32])
	copy(result.ViewPublicKey[:], body[32:])
	return result, nil
}

func encodeBlocks(data []byte) string {
	result := make([]byte, 0, (len(data)+fullBlockSize-1)/fullBlockSize*fullEncodedBlockSize)
	for len(data) > 0 {
		n := fullBlockSize
		if len(data) < n {
			n = len(data)
		}
		result = append(result, encodeBlock(data[:n])...)
		data = data[n:]
	}
	return string(result)
}

// encodeBlock codes one block, left padded with the zero symbol to the fixed coded width.
func encodeBlock(block []byte) []byte {
	coded := base58.Encode(block)
	want := encodedBlockSizes[len(block)]
	result := make([]byte, want)
	pad := want - len(coded)
	for i := 0; i < pad; i++ {
		result[i] = zeroSymbol
	}
	copy(result[pad:], coded)
	return result
}

func decodeBlocks(s string) ([]byte, error) {
	result := make([]byte, 0, len(s)*fullBlockSize/fullEncodedBlockSize)
	for len(s) > 0 {
		n := fullEncodedBlockSize
		if len(s) < n {
			n = len(s)
		}
		block, err := decodeBlock(s[:n])
		if err != nil {
			return nil, err
		}
		result = append(result, block...)
		s = s[n:]
	}
	return result, nil
}

func decodeBlock(coded string) ([]byte, error) {
	want := -1
	for size, codedSize := range encodedBlockSizes {
		if codedSize == len(coded) {
			want = size
			break
		}
	}
	if want <= 0 {
		return nil, errors.Wrapf(ErrBadAddress, "coded block size %d", len(coded))
	}

	block := base58.Decode(coded)
	if len(block) == 0 && len(coded) != 0 {
		return nil, errors.Wrap(ErrBadAddress, "invalid symbol")
	}

	// The coded block is a fixed width big endian value. base58.Decode turns leading zero
	// symbols into zero bytes, drop them and right align the value instead.
	value := block
	for len(value) > 0 && value[0] == 0 {
		value = value[1:]
	}
	if len(value) > want {
		return nil, errors.Wrap(ErrBadAddress, "block overflow")
	}

	result := make([]byte, want)
	copy(result[want-len(value):], value)
	return result, nil
}

// readVarIntBytes reads a consensus varint from the front of a buffer.
func readVarIntBytes(data []byte) (uint64, int, error) {
	var value uint64
	for i := 0; ; i++ {
		if i >= len(data) {
			return 0, 0, errors.New("varint truncated")
		}
		if i*7 > 63 {
			return 0, 0, errors.New("varint overflow")
		}
		piece := data[i]
		value |= uint64(piece&0x7f) << uint(i*7)
		if piece&0x80 == 0 {
			if piece == 0 && i != 0 {
				return 0, 0, errors.New("varint not canonical")
			}
			return value, i + 1, nil
		}
	}
}
