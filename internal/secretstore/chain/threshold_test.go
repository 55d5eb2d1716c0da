package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSerializeThreshold(t *testing.T) {
	for _, threshold := range []int{0, 1, 2, 127, 254, 255} {
		serialized, err := SerializeThreshold(threshold)
		assert.NoError(t, err)
		assert.Equal(t, uint8(threshold), serialized)
	}
}

func TestSerializeThresholdOutOfRange(t *testing.T) {
	for _, threshold := range []int{256, 257, 1 << 16, -1} {
		_, err := SerializeThreshold(threshold)
		assert.Error(t, err)
	}
}
