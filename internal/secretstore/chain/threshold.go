package chain

import (
	"math"

	"github.com/pkg/errors"
)

// SerializeThreshold narrows a session threshold into the single byte the
// service contract encodes (at most 256 key servers).
func SerializeThreshold(threshold int) (uint8, error) {
	if threshold < 0 || threshold > math.MaxUint8 {
		return 0, errors.Errorf("invalid threshold to use in service contract: %d", threshold)
	}
	return uint8(threshold), nil
}
