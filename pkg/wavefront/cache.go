package wavefront

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Cache entry files hold a fixed header followed by the raw packed buffer:
//
//	magic "WOBJ"  [4]byte
//	formatVersion uint32
//	vertexCount   uint32
//	positionSize  uint8
//	normalSize    uint8
//	texCoordSize  uint8
//	(padding)     uint8
//	bufferLen     uint32
//
// The buffer holds raw float32 bytes; the format is not portable across hosts
// with different float representations and the cache is disposable, not an
// exchange format. Any mismatch on read (magic, version, lengths) is treated
// as a miss and the entry is re-parsed and overwritten.
const (
	cacheMagic    = "WOBJ"
	formatVersion = 1
	headerSize    = 20
)

// ErrCacheInit indicates the cache directory could not be created or opened.
var ErrCacheInit = errors.New("cache init failed")

// Cache is a disk-backed store of packed object buffers, one file per key.
// A single Cache may be shared by multiple Files; lookup and insert are safe
// for concurrent use because entries are written to a temporary file and
// renamed into place.
type Cache struct {
	name string
	dir  string
	opts Options

	mu      sync.Mutex
	enabled bool
}

// NewCache opens the named cache under the user cache directory, creating
// the directory if needed.
func NewCache(name string, opts Options) (*Cache, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheInit, err)
	}
	c, err := NewCacheAt(filepath.Join(base, "wavefront", name), opts)
	if err != nil {
		return nil, err
	}
	c.name = name
	return c, nil
}

// NewCacheAt opens a cache rooted at an explicit directory, creating it if needed.
func NewCacheAt(dir string, opts Options) (*Cache, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty cache directory", ErrCacheInit)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheInit, err)
	}
	return &Cache{name: filepath.Base(dir), dir: dir, opts: opts, enabled: true}, nil
}

// Name returns the cache name.
func (c *Cache) Name() string { return c.name }

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// Options returns the options the cache was opened with.
func (c *Cache) Options() Options { return c.opts }

// Enabled reports whether the cache is consulted and written to.
func (c *Cache) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// SetEnabled toggles the cache. Disabling affects future lookups and inserts
// only; objects already loaded keep their buffers.
func (c *Cache) SetEnabled(enabled bool) {
	c.mu.Lock()
	c.enabled = enabled
	c.mu.Unlock()
}

// Clear removes every entry in the cache directory.
func (c *Cache) Clear() error {
	dirents, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache dir: %w", err)
	}

	var firstErr error
	for _, de := range dirents {
		if !de.Type().IsRegular() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, de.Name())); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Entries returns the keys currently stored, in directory order.
func (c *Cache) Entries() ([]string, error) {
	dirents, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("reading cache dir: %w", err)
	}

	var keys []string
	for _, de := range dirents {
		if !de.Type().IsRegular() || isTempEntry(de.Name()) {
			continue
		}
		keys = append(keys, de.Name())
	}
	return keys, nil
}

// isTempEntry matches the names CreateTemp produces in insert.
func isTempEntry(name string) bool {
	return strings.HasPrefix(name, "insert-") && strings.HasSuffix(name, ".tmp")
}

// entry is a decoded cache entry: layout metadata plus a view of the packed
// buffer.
type entry struct {
	vertexCount int
	posSize     int
	normSize    int
	texSize     int
	view        *view
}

// lookup returns the entry stored under key. Disabled cache, missing file and
// corrupt or version-mismatched entries are all misses.
func (c *Cache) lookup(key string) (*entry, bool) {
	if !c.Enabled() {
		return nil, false
	}

	f, err := os.Open(filepath.Join(c.dir, key))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	e, err := readEntry(f, c.opts.LoadMappedData)
	if err != nil {
		return nil, false
	}
	return e, true
}

func readEntry(f *os.File, mapData bool) (*entry, error) {
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := info.Size()
	if size < headerSize {
		return nil, fmt.Errorf("entry too small: %d bytes", size)
	}

	var hdr [headerSize]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		return nil, err
	}
	if string(hdr[0:4]) != cacheMagic {
		return nil, fmt.Errorf("bad magic %q", hdr[0:4])
	}
	if v := binary.LittleEndian.Uint32(hdr[4:8]); v != formatVersion {
		return nil, fmt.Errorf("format version %d, want %d", v, formatVersion)
	}

	e := &entry{
		vertexCount: int(binary.LittleEndian.Uint32(hdr[8:12])),
		posSize:     int(hdr[12]),
		normSize:    int(hdr[13]),
		texSize:     int(hdr[14]),
	}

	bufLen := int(binary.LittleEndian.Uint32(hdr[16:20]))
	stride := (e.posSize + e.normSize + e.texSize) * floatSize
	if bufLen != int(size)-headerSize || bufLen != e.vertexCount*stride {
		return nil, fmt.Errorf("inconsistent entry lengths")
	}

	if mapData {
		if m, err := mapFile(f, int(size)); err == nil {
			e.view = &view{full: m, data: m[headerSize:], mapped: true}
			return e, nil
		}
		// Fall back to an in-memory copy.
	}

	buf := make([]byte, bufLen)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, err
	}
	e.view = newCopyView(buf)
	return e, nil
}

// insert stores an object's buffer under key, replacing any existing entry.
// The write is best-effort: false means the object simply is not cached.
func (c *Cache) insert(key string, o *Object) bool {
	if !c.Enabled() {
		return false
	}

	tmp, err := os.CreateTemp(c.dir, "insert-*.tmp")
	if err != nil {
		return false
	}

	buf := o.Buffer()
	hdr := make([]byte, headerSize)
	copy(hdr[0:4], cacheMagic)
	binary.LittleEndian.PutUint32(hdr[4:8], formatVersion)
	binary.LittleEndian.PutUint32(hdr[8:12], uint32(o.VertexCount))
	hdr[12] = byte(o.PositionSize)
	hdr[13] = byte(o.NormalSize)
	hdr[14] = byte(o.TextureCoordSize)
	binary.LittleEndian.PutUint32(hdr[16:20], uint32(len(buf)))

	_, err = tmp.Write(hdr)
	if err == nil {
		_, err = tmp.Write(buf)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return false
	}

	// Atomic replace so concurrent readers never see a torn entry.
	if err := os.Rename(tmp.Name(), filepath.Join(c.dir, key)); err != nil {
		os.Remove(tmp.Name())
		return false
	}
	return true
}
