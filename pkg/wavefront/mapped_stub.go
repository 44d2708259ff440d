//go:build !unix

package wavefront

import (
	"errors"
	"os"
)

var errMapUnsupported = errors.New("memory mapping not supported on this platform")

// mapFile always fails here; the cache falls back to copying entries into
// memory.
func mapFile(f *os.File, size int) ([]byte, error) {
	return nil, errMapUnsupported
}

func munmapBytes(b []byte) error {
	return nil
}
