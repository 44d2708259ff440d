//go:build unix

package wavefront

import (
	"os"

	"golang.org/x/sys/unix"
)

// mapFile maps size bytes of f read-only. The mapping is private, so the
// holder never mutates the file and later writers never mutate the view.
func mapFile(f *os.File, size int) ([]byte, error) {
	return unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_PRIVATE)
}

func munmapBytes(b []byte) error {
	return unix.Munmap(b)
}
