// Package wavefront parses Wavefront .obj geometry into GPU-ready interleaved
// vertex buffers and caches the packed result on disk.
package wavefront

const floatSize = 4

// Range is a half-open byte range [Start, End) within the source text.
type Range struct {
	Start int
	End   int
}

// Object is one named object (or the unnamed root object) of a .obj file.
// Its buffer holds VertexCount vertices, each packed as
// [position..., normal..., texcoord...] float32 components.
//
// The layout maps directly onto vertex attribute pointers:
//
//	glVertexAttribPointer(pos, obj.PositionSize, GL_FLOAT, false, obj.Stride(), obj.PositionOffset())
//	glVertexAttribPointer(nrm, obj.NormalSize, GL_FLOAT, false, obj.Stride(), obj.NormalOffset())
//	glVertexAttribPointer(tex, obj.TextureCoordSize, GL_FLOAT, false, obj.Stride(), obj.TextureCoordOffset())
type Object struct {
	// Name is the object name, or "" for the unnamed root object.
	Name string

	// Range spans the object's directives in the source text.
	Range Range

	// PositionSize is the number of position components per vertex (3 or 4),
	// or 0 if the object has no vertices.
	PositionSize int

	// NormalSize is the number of normal components per vertex (3 or 0).
	NormalSize int

	// TextureCoordSize is the number of texture coordinate components per
	// vertex (2 or 3), or 0 if absent.
	TextureCoordSize int

	// VertexCount is the number of vertices after face triangulation.
	VertexCount int

	view *view
}

// Stride returns the byte distance between consecutive vertices.
func (o *Object) Stride() int {
	return (o.PositionSize + o.NormalSize + o.TextureCoordSize) * floatSize
}

// PositionOffset returns the byte offset of the position components.
func (o *Object) PositionOffset() int {
	return 0
}

// NormalOffset returns the byte offset of the normal components.
func (o *Object) NormalOffset() int {
	return o.PositionSize * floatSize
}

// TextureCoordOffset returns the byte offset of the texture coordinates.
func (o *Object) TextureCoordOffset() int {
	return (o.PositionSize + o.NormalSize) * floatSize
}

// Buffer returns the packed vertex data. The slice may be backed by a
// memory-mapped cache entry; callers must treat it as read-only and must not
// retain it past Close. Use CopyBuffer for a mutable or long-lived copy.
func (o *Object) Buffer() []byte {
	if o.view == nil {
		return nil
	}
	return o.view.data
}

// CopyBuffer returns a private copy of the packed vertex data. The copy is
// independent of any underlying memory mapping.
func (o *Object) CopyBuffer() []byte {
	if o.view == nil {
		return nil
	}
	buf := make([]byte, len(o.view.data))
	copy(buf, o.view.data)
	return buf
}

// Close releases the buffer's backing view. For memory-mapped objects this
// unmaps the cache entry; buffers obtained from Buffer become invalid.
func (o *Object) Close() error {
	if o.view == nil {
		return nil
	}
	v := o.view
	o.view = nil
	return v.release()
}
