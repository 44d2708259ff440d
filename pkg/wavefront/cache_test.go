package wavefront

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// testObject parses a small source and returns its single object.
func testObject(t *testing.T) *Object {
	t.Helper()
	src := "o Cube\nv 0 0 0\nv 1 0 0\nv 1 1 0\nvn 0 0 1\nf 1//1 2//1 3//1\n"
	return loadObjects(t, src)[0]
}

func expectEntryMatches(t *testing.T, e *entry, obj *Object) {
	t.Helper()
	if e.vertexCount != obj.VertexCount {
		t.Errorf("expected %d vertices, got %d", obj.VertexCount, e.vertexCount)
	}
	if e.posSize != obj.PositionSize || e.normSize != obj.NormalSize || e.texSize != obj.TextureCoordSize {
		t.Errorf("expected layout %d/%d/%d, got %d/%d/%d",
			obj.PositionSize, obj.NormalSize, obj.TextureCoordSize,
			e.posSize, e.normSize, e.texSize)
	}
	if !bytes.Equal(e.view.data, obj.Buffer()) {
		t.Error("cached buffer differs from original")
	}
}

func TestCache_InsertLookup(t *testing.T) {
	c, err := NewCacheAt(t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("NewCacheAt failed: %v", err)
	}

	obj := testObject(t)
	if !c.insert("cube", obj) {
		t.Fatal("insert failed")
	}

	// Repeated lookups return the same entry until overwrite or clear.
	for i := 0; i < 3; i++ {
		e, ok := c.lookup("cube")
		if !ok {
			t.Fatalf("lookup %d missed", i)
		}
		expectEntryMatches(t, e, obj)
	}
}

func TestCache_LookupMissing(t *testing.T) {
	c, err := NewCacheAt(t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("NewCacheAt failed: %v", err)
	}

	if _, ok := c.lookup("absent"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestCache_Disabled(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCacheAt(dir, Options{})
	if err != nil {
		t.Fatalf("NewCacheAt failed: %v", err)
	}

	obj := testObject(t)
	if !c.insert("cube", obj) {
		t.Fatal("insert failed while enabled")
	}

	c.SetEnabled(false)

	if c.insert("cube2", obj) {
		t.Error("expected insert to fail while disabled")
	}
	if _, ok := c.lookup("cube"); ok {
		t.Error("expected lookup to miss while disabled")
	}
	if _, err := os.Stat(filepath.Join(dir, "cube2")); !os.IsNotExist(err) {
		t.Error("disabled insert touched the disk")
	}

	c.SetEnabled(true)
	if _, ok := c.lookup("cube"); !ok {
		t.Error("expected the earlier entry to survive the disabled window")
	}
}

func TestCache_Clear(t *testing.T) {
	c, err := NewCacheAt(t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("NewCacheAt failed: %v", err)
	}

	obj := testObject(t)
	c.insert("a", obj)
	c.insert("b", obj)

	keys, err := c.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(keys))
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	keys, err = c.Entries()
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("expected empty cache, got %d entries", len(keys))
	}
	if _, ok := c.lookup("a"); ok {
		t.Error("expected miss after clear")
	}
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCacheAt(dir, Options{})
	if err != nil {
		t.Fatalf("NewCacheAt failed: %v", err)
	}

	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte("WOBJ")},
		{"bad magic", append([]byte("NOPE"), make([]byte, headerSize)...)},
		{"truncated buffer", validEntryBytes(t)[:headerSize+4]},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := os.WriteFile(filepath.Join(dir, "bad"), tc.data, 0644); err != nil {
				t.Fatalf("writing corrupt entry: %v", err)
			}
			if _, ok := c.lookup("bad"); ok {
				t.Error("expected corrupt entry to read as miss")
			}
		})
	}
}

func TestCache_VersionMismatchIsMiss(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCacheAt(dir, Options{})
	if err != nil {
		t.Fatalf("NewCacheAt failed: %v", err)
	}

	data := validEntryBytes(t)
	binary.LittleEndian.PutUint32(data[4:8], formatVersion+1)
	if err := os.WriteFile(filepath.Join(dir, "stale"), data, 0644); err != nil {
		t.Fatalf("writing entry: %v", err)
	}

	if _, ok := c.lookup("stale"); ok {
		t.Error("expected version mismatch to read as miss")
	}
}

func TestCache_OverwriteReplacesEntry(t *testing.T) {
	c, err := NewCacheAt(t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("NewCacheAt failed: %v", err)
	}

	a := loadObjects(t, "o A\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")[0]
	b := loadObjects(t, "o B\nv 9 9 9\nv 8 8 8\nv 7 7 7\nf 1 2 3\n")[0]

	c.insert("k", a)
	c.insert("k", b)

	e, ok := c.lookup("k")
	if !ok {
		t.Fatal("lookup missed after overwrite")
	}
	expectEntryMatches(t, e, b)
}

func TestCache_ZeroVertexEntry(t *testing.T) {
	c, err := NewCacheAt(t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("NewCacheAt failed: %v", err)
	}

	empty := loadObjects(t, "o Empty\nv 0 0 0\no Full\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")[0]
	if empty.VertexCount != 0 {
		t.Fatalf("fixture object should be empty, has %d vertices", empty.VertexCount)
	}

	if !c.insert("empty", empty) {
		t.Fatal("insert failed")
	}
	e, ok := c.lookup("empty")
	if !ok {
		t.Fatal("lookup missed")
	}
	expectEntryMatches(t, e, empty)
}

func TestCache_MappedLookup(t *testing.T) {
	c, err := NewCacheAt(t.TempDir(), Options{LoadMappedData: true})
	if err != nil {
		t.Fatalf("NewCacheAt failed: %v", err)
	}

	obj := testObject(t)
	if !c.insert("cube", obj) {
		t.Fatal("insert failed")
	}

	e, ok := c.lookup("cube")
	if !ok {
		t.Fatal("lookup missed")
	}
	expectEntryMatches(t, e, obj)

	// A private copy must be independent of the mapping.
	mapped := &Object{
		PositionSize:     e.posSize,
		NormalSize:       e.normSize,
		TextureCoordSize: e.texSize,
		VertexCount:      e.vertexCount,
		view:             e.view,
	}
	private := mapped.CopyBuffer()
	if !bytes.Equal(private, obj.Buffer()) {
		t.Error("copied buffer differs from original")
	}

	if err := mapped.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if mapped.Buffer() != nil {
		t.Error("expected nil buffer after Close")
	}
	if !bytes.Equal(private, obj.Buffer()) {
		t.Error("private copy invalidated by Close")
	}
}

// validEntryBytes builds a well-formed cache entry file image.
func validEntryBytes(t *testing.T) []byte {
	t.Helper()
	dir := t.TempDir()
	c, err := NewCacheAt(dir, Options{})
	if err != nil {
		t.Fatalf("NewCacheAt failed: %v", err)
	}
	if !c.insert("seed", testObject(t)) {
		t.Fatal("insert failed")
	}
	data, err := os.ReadFile(filepath.Join(dir, "seed"))
	if err != nil {
		t.Fatalf("reading entry: %v", err)
	}
	return data
}
