package wavefront

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a structural error in .obj source text. Parsing aborts at
// the first error; no partial results are returned.
type ParseError struct {
	Line int // 1-based source line number
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Msg)
}

// record holds one object's resolved geometry before packing. Attribute
// slices are flat: posSize components per vertex in positions, and so on.
// The schema (component counts) is fixed by the first face-vertex of the
// object; every later face-vertex must match it.
type record struct {
	name  string
	start int
	end   int

	schemaSet bool
	posSize   int
	normSize  int
	texSize   int

	vertexCount int
	positions   []float32
	normals     []float32
	texcoords   []float32
}

// parser resolves .obj directives against the global attribute pools.
type parser struct {
	src  []byte
	line int

	positions [][]float32 // 3 or 4 components each
	normals   [][3]float32
	texcoords [][]float32 // 2 or 3 components each

	records []*record
	cur     *record
}

// parse interprets the full source and returns one record per object, in
// source order. The unnamed root record appears only when faces precede the
// first o/g directive.
func parse(src []byte) ([]*record, error) {
	p := &parser{src: src}

	offset := 0
	for offset < len(src) {
		lineEnd := len(src)
		next := lineEnd
		if i := bytes.IndexByte(src[offset:], '\n'); i >= 0 {
			lineEnd = offset + i
			next = lineEnd + 1
		}
		p.line++

		if err := p.directive(offset, string(src[offset:lineEnd])); err != nil {
			return nil, err
		}
		offset = next
	}

	if p.cur != nil {
		p.cur.end = len(src)
	}
	return p.records, nil
}

func (p *parser) directive(lineStart int, line string) error {
	fields := strings.Fields(strings.TrimSuffix(line, "\r"))
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	switch fields[0] {
	case "v":
		return p.parseFloats(fields[1:], 3, 4, func(c []float32) {
			p.positions = append(p.positions, c)
		})
	case "vn":
		return p.parseFloats(fields[1:], 3, 3, func(c []float32) {
			p.normals = append(p.normals, [3]float32{c[0], c[1], c[2]})
		})
	case "vt":
		return p.parseFloats(fields[1:], 2, 3, func(c []float32) {
			p.texcoords = append(p.texcoords, c)
		})
	case "f":
		return p.parseFace(fields[1:])
	case "o", "g":
		name := ""
		if len(fields) > 1 {
			name = fields[1]
		}
		p.openRecord(name, lineStart)
		return nil
	default:
		// Unrecognized directives are skipped for forward compatibility.
		return nil
	}
}

func (p *parser) openRecord(name string, start int) {
	if p.cur != nil {
		p.cur.end = start
	}
	p.cur = &record{name: name, start: start}
	p.records = append(p.records, p.cur)
}

func (p *parser) errf(format string, args ...any) error {
	return &ParseError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

// parseFloats parses between lo and hi float components and hands the result
// to emit.
func (p *parser) parseFloats(fields []string, lo, hi int, emit func([]float32)) error {
	if len(fields) < lo || len(fields) > hi {
		return p.errf("expected %d to %d components, got %d", lo, hi, len(fields))
	}
	comps := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return p.errf("invalid float %q", f)
		}
		comps[i] = float32(v)
	}
	emit(comps)
	return nil
}

// faceVertex is one corner of a face with its attributes resolved against the
// global pools. Absent attributes are nil.
type faceVertex struct {
	position []float32
	normal   []float32
	texcoord []float32
}

func (p *parser) parseFace(fields []string) error {
	if len(fields) < 3 {
		return p.errf("face with %d vertices, need at least 3", len(fields))
	}

	if p.cur == nil {
		// Faces before the first o/g directive belong to the root object.
		p.openRecord("", 0)
	}

	face := make([]faceVertex, len(fields))
	for i, tok := range fields {
		fv, err := p.resolveFaceVertex(tok)
		if err != nil {
			return err
		}
		face[i] = fv
	}

	// Fan triangulation: (v0,v1,v2), (v0,v2,v3), ...
	for i := 1; i+1 < len(face); i++ {
		for _, fv := range []faceVertex{face[0], face[i], face[i+1]} {
			if err := p.emit(fv); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveFaceVertex interprets a face token of the form v, v/vt, v//vn or
// v/vt/vn, resolving 1-based and negative indices against the pools.
func (p *parser) resolveFaceVertex(tok string) (faceVertex, error) {
	parts := strings.Split(tok, "/")
	if len(parts) > 3 {
		return faceVertex{}, p.errf("malformed face vertex %q", tok)
	}

	var fv faceVertex

	pos, err := p.resolveIndex(parts[0], len(p.positions), tok)
	if err != nil {
		return faceVertex{}, err
	}
	fv.position = p.positions[pos]

	if len(parts) > 1 && parts[1] != "" {
		tex, err := p.resolveIndex(parts[1], len(p.texcoords), tok)
		if err != nil {
			return faceVertex{}, err
		}
		fv.texcoord = p.texcoords[tex]
	}

	if len(parts) > 2 && parts[2] != "" {
		norm, err := p.resolveIndex(parts[2], len(p.normals), tok)
		if err != nil {
			return faceVertex{}, err
		}
		fv.normal = p.normals[norm][:]
	}

	return fv, nil
}

// resolveIndex converts a 1-based .obj index to a 0-based pool index.
// Negative indices count back from the end of the pool (-1 = last).
func (p *parser) resolveIndex(s string, poolLen int, tok string) (int, error) {
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, p.errf("malformed face vertex %q", tok)
	}
	if idx == 0 {
		return 0, p.errf("face vertex %q: index 0 is invalid", tok)
	}

	resolved := idx - 1
	if idx < 0 {
		resolved = poolLen + idx
	}
	if resolved < 0 || resolved >= poolLen {
		return 0, p.errf("face vertex %q: index %d out of range (pool has %d)", tok, idx, poolLen)
	}
	return resolved, nil
}

// emit appends one resolved face-vertex to the current record, fixing the
// object schema on first emission and rejecting later contradictions.
func (p *parser) emit(fv faceVertex) error {
	r := p.cur

	if !r.schemaSet {
		r.schemaSet = true
		r.posSize = len(fv.position)
		r.normSize = len(fv.normal)
		r.texSize = len(fv.texcoord)
	} else if len(fv.position) != r.posSize || len(fv.normal) != r.normSize || len(fv.texcoord) != r.texSize {
		return p.errf("object %q: face vertex attributes contradict the object's layout (%d/%d/%d vs %d/%d/%d)",
			r.name, len(fv.position), len(fv.normal), len(fv.texcoord), r.posSize, r.normSize, r.texSize)
	}

	r.positions = append(r.positions, fv.position...)
	r.normals = append(r.normals, fv.normal...)
	r.texcoords = append(r.texcoords, fv.texcoord...)
	r.vertexCount++
	return nil
}
