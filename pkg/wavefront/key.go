package wavefront

import (
	"fmt"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// rootObjectName is the key sentinel for the unnamed root object.
const rootObjectName = "root"

// Options configures a Cache. The two options combine independently.
type Options struct {
	// LoadMappedData memory-maps cache entries instead of copying them into
	// process memory.
	LoadMappedData bool

	// HashUsingFileContents derives cache keys from a hash of the source
	// bytes instead of the source path, so entries survive a file move and
	// identical content at different paths shares entries.
	HashUsingFileContents bool
}

// deriveKey computes the cache key for one object of a source. Identity mode
// needs a source path; a source constructed from raw bytes has none, so ok is
// false and the cache is bypassed for it.
func deriveKey(path string, source []byte, name string, hashContents bool) (key string, ok bool) {
	if name == "" {
		name = rootObjectName
	}
	if hashContents {
		return fmt.Sprintf("%016x-%s", xxhash.Sum64(source), escapeKey(name)), true
	}
	if path == "" {
		return "", false
	}
	key = escapeKey(filepath.Clean(path)) + "-" + escapeKey(name)
	if len(key) > maxKeyLen {
		// Stay under filename length limits for deeply nested paths.
		key = fmt.Sprintf("%016x-%s", xxhash.Sum64String(key), escapeKey(name))
	}
	return key, true
}

// maxKeyLen keeps escaped keys valid as file names on common filesystems.
const maxKeyLen = 200

// escapeKey percent-encodes every byte outside [A-Za-z0-9._-] so the result
// is usable as a file name.
func escapeKey(s string) string {
	const hex = "0123456789ABCDEF"

	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '.', c == '_', c == '-':
			out = append(out, c)
		default:
			out = append(out, '%', hex[c>>4], hex[c&0x0f])
		}
	}
	return string(out)
}
