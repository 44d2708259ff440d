package wavefront

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

type parseState int

const (
	stateUnparsed parseState = iota
	stateParsing
	stateParsed
	stateFailed
)

// File is a Wavefront .obj source together with an optional disk cache.
// Objects is computed once: lazily for path sources, eagerly for byte
// sources. A File is not safe for concurrent use; the Cache it holds is.
type File struct {
	path  string
	data  []byte
	cache *Cache

	state   parseState
	objects []*Object
	err     error
}

// NewFile wraps the .obj file at path. The source is read and parsed on the
// first Objects call. cache may be nil to disable caching.
func NewFile(path string, cache *Cache) *File {
	return &File{path: path, cache: cache}
}

// NewFileData wraps in-memory .obj source text and parses it immediately.
// cache may be nil to disable caching; with a path-keyed cache the source has
// no identity to key on, so the cache is bypassed.
func NewFileData(data []byte, cache *Cache) (*File, error) {
	f := &File{data: data, cache: cache}
	if _, err := f.Objects(); err != nil {
		return nil, err
	}
	return f, nil
}

// Path returns the source path, or "" for byte sources.
func (f *File) Path() string { return f.path }

// Cache returns the cache the file consults, or nil.
func (f *File) Cache() *Cache { return f.cache }

// Objects returns the file's objects in source order, loading them from the
// cache when every object is present there and parsing the source otherwise.
// The result is computed once; later calls return the same objects or the
// same error.
func (f *File) Objects() ([]*Object, error) {
	switch f.state {
	case stateParsed:
		return f.objects, nil
	case stateFailed:
		return nil, f.err
	}

	f.state = stateParsing
	objs, err := f.load()
	if err != nil {
		f.state = stateFailed
		f.err = err
		return nil, err
	}
	f.state = stateParsed
	f.objects = objs
	return objs, nil
}

// Close releases every object's backing view. Buffers of memory-mapped
// objects become invalid.
func (f *File) Close() error {
	var firstErr error
	for _, o := range f.objects {
		if err := o.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.objects = nil
	return firstErr
}

func (f *File) load() ([]*Object, error) {
	src := f.data
	if src == nil {
		b, err := os.ReadFile(f.path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.path, err)
		}
		src = b
	}

	if objs, ok := f.fromCache(src); ok {
		return objs, nil
	}
	return f.parseAndStore(src)
}

// fromCache serves the whole file from the cache. Every pre-scanned object
// must hit; a single miss abandons the attempt and the source is re-parsed.
func (f *File) fromCache(src []byte) ([]*Object, bool) {
	if f.cache == nil || !f.cache.Enabled() {
		return nil, false
	}

	cands := scanObjects(src)
	if len(cands) == 0 {
		return nil, false
	}

	objs := make([]*Object, 0, len(cands))
	for _, cand := range cands {
		key, ok := deriveKey(f.path, src, cand.name, f.cache.opts.HashUsingFileContents)
		if !ok {
			releaseAll(objs)
			return nil, false
		}
		e, ok := f.cache.lookup(key)
		if !ok {
			releaseAll(objs)
			return nil, false
		}
		objs = append(objs, &Object{
			Name:             cand.name,
			Range:            Range{Start: cand.start, End: cand.end},
			PositionSize:     e.posSize,
			NormalSize:       e.normSize,
			TextureCoordSize: e.texSize,
			VertexCount:      e.vertexCount,
			view:             e.view,
		})
	}
	return objs, true
}

// parseAndStore runs the parser and packer over the source and writes every
// resulting object through to the cache.
func (f *File) parseAndStore(src []byte) ([]*Object, error) {
	records, err := parse(src)
	if err != nil {
		return nil, err
	}

	objs := make([]*Object, len(records))
	for i, r := range records {
		objs[i] = &Object{
			Name:             r.name,
			Range:            Range{Start: r.start, End: r.end},
			PositionSize:     r.posSize,
			NormalSize:       r.normSize,
			TextureCoordSize: r.texSize,
			VertexCount:      r.vertexCount,
			view:             newCopyView(pack(r)),
		}
	}

	if f.cache != nil {
		for _, o := range objs {
			key, ok := deriveKey(f.path, src, o.Name, f.cache.opts.HashUsingFileContents)
			if !ok {
				break
			}
			f.cache.insert(key, o)
		}
	}
	return objs, nil
}

func releaseAll(objs []*Object) {
	for _, o := range objs {
		o.Close()
	}
}

// candidate is a cheaply pre-scanned object: enough to derive its cache key
// and byte range without resolving any geometry.
type candidate struct {
	name  string
	start int
	end   int
}

// scanObjects finds object boundaries with a directive-name-only pass over
// the source. The unnamed root candidate is included only when a face
// directive precedes the first o/g directive, mirroring the parser.
func scanObjects(src []byte) []candidate {
	var cands []candidate
	rootFace := false

	offset := 0
	for offset < len(src) {
		lineEnd := len(src)
		next := lineEnd
		if i := bytes.IndexByte(src[offset:], '\n'); i >= 0 {
			lineEnd = offset + i
			next = lineEnd + 1
		}

		fields := strings.Fields(strings.TrimSuffix(string(src[offset:lineEnd]), "\r"))
		if len(fields) > 0 {
			switch fields[0] {
			case "o", "g":
				name := ""
				if len(fields) > 1 {
					name = fields[1]
				}
				if n := len(cands); n > 0 {
					cands[n-1].end = offset
				}
				cands = append(cands, candidate{name: name, start: offset, end: len(src)})
			case "f":
				if len(cands) == 0 {
					rootFace = true
				}
			}
		}
		offset = next
	}

	if rootFace {
		end := len(src)
		if len(cands) > 0 {
			end = cands[0].start
		}
		cands = append([]candidate{{name: "", start: 0, end: end}}, cands...)
	}
	return cands
}
