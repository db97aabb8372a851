package wire

import (
	"github.com/pkg/errors"
)

var (
	ErrOffsetsNotIncreasing = errors.New("Output offsets not strictly increasing")
)

// AbsoluteOutputOffsetsToRelative converts a strictly increasing list of global output
// indexes into the consensus relative form: the first stays absolute, each following one
// becomes the delta from its predecessor.
func AbsoluteOutputOffsetsToRelative(offsets []uint32) ([]uint32, error) {
	result := make([]uint32, len(offsets))
	copy(result, offsets)
	for i := len(result) - 1; i > 0; i-- {
		if offsets[i] <= offsets[i-1] {
			return nil, errors.Wrapf(ErrOffsetsNotIncreasing, "index %d", i)
		}
		result[i] = offsets[i] - offsets[i-1]
	}
	return result, nil
}

// RelativeOutputOffsetsToAbsolute is the inverse of AbsoluteOutputOffsetsToRelative.
func RelativeOutputOffsetsToAbsolute(offsets []uint32) []uint32 {
	result := make([]uint32, len(offsets))
	copy(result, offsets)
	for i := 1; i < len(result); i++ {
		result[i] += result[i-1]
	}
	return result
}
