package wavefront

import (
	"encoding/binary"
	"math"
)

// pack lays out one record's vertices as a single interleaved buffer:
// [position..., normal..., texcoord...] per vertex, float32 components in the
// order faces were emitted. Pure function of the record.
func pack(r *record) []byte {
	stride := (r.posSize + r.normSize + r.texSize) * floatSize
	buf := make([]byte, 0, r.vertexCount*stride)

	for v := 0; v < r.vertexCount; v++ {
		buf = appendFloats(buf, r.positions[v*r.posSize:(v+1)*r.posSize])
		buf = appendFloats(buf, r.normals[v*r.normSize:(v+1)*r.normSize])
		buf = appendFloats(buf, r.texcoords[v*r.texSize:(v+1)*r.texSize])
	}
	return buf
}

func appendFloats(buf []byte, comps []float32) []byte {
	for _, c := range comps {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(c))
	}
	return buf
}
