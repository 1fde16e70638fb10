package hash

import (
	"fmt"
	"io"
)

// readRandom fills buf from r. A short read counts as a failure.
func readRandom(r io.Reader, buf []byte) error {
	if r == nil {
		return ErrRandomSourceUnavailable
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("%w: %v", ErrRandomSourceUnavailable, err)
	}
	return nil
}
