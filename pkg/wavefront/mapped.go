package wavefront

// view is a read-only window onto an object's packed buffer. full holds the
// complete backing slice (the whole file mapping, header included, when
// mapped); data is the payload portion handed out through Object.
type view struct {
	full   []byte
	data   []byte
	mapped bool
}

// newCopyView wraps an in-memory buffer owned by the caller.
func newCopyView(data []byte) *view {
	return &view{full: data, data: data}
}

// release unmaps the backing file for mapped views. Copy views have nothing
// to release.
func (v *view) release() error {
	if !v.mapped {
		return nil
	}
	return munmapBytes(v.full)
}
