package wavefront

import (
	"strings"
	"testing"
)

func TestDeriveKey_ContentMode(t *testing.T) {
	src := []byte("v 0 0 0\nf 1 1 1\n")

	a, ok := deriveKey("/models/a.obj", src, "Cube", true)
	if !ok {
		t.Fatal("expected content-mode key derivation to succeed")
	}
	b, ok := deriveKey("/elsewhere/b.obj", src, "Cube", true)
	if !ok {
		t.Fatal("expected content-mode key derivation to succeed")
	}

	// Identical content at different paths shares a key.
	if a != b {
		t.Errorf("expected identical keys for identical content, got %q and %q", a, b)
	}

	c, _ := deriveKey("/models/a.obj", []byte("v 1 1 1\nf 1 1 1\n"), "Cube", true)
	if a == c {
		t.Error("expected different keys for different content")
	}

	d, _ := deriveKey("/models/a.obj", src, "Other", true)
	if a == d {
		t.Error("expected different keys for different object names")
	}
}

func TestDeriveKey_IdentityMode(t *testing.T) {
	src := []byte("v 0 0 0\nf 1 1 1\n")

	a, ok := deriveKey("/models/a.obj", src, "Cube", false)
	if !ok {
		t.Fatal("expected identity-mode key derivation to succeed")
	}
	b, _ := deriveKey("/elsewhere/b.obj", src, "Cube", false)

	// Identical content at different paths keys differently.
	if a == b {
		t.Errorf("expected different keys for different paths, got %q", a)
	}

	// Cleaned paths key identically.
	c, _ := deriveKey("/models/./a.obj", src, "Cube", false)
	if a != c {
		t.Errorf("expected equal keys for equivalent paths, got %q and %q", a, c)
	}
}

func TestDeriveKey_ByteSourceIdentityMode(t *testing.T) {
	// A raw byte source has no path identity to key on.
	if _, ok := deriveKey("", []byte("v 0 0 0\n"), "Cube", false); ok {
		t.Error("expected identity-mode derivation to fail without a path")
	}
	if _, ok := deriveKey("", []byte("v 0 0 0\n"), "Cube", true); !ok {
		t.Error("expected content-mode derivation to succeed without a path")
	}
}

func TestDeriveKey_RootSentinel(t *testing.T) {
	src := []byte("f 1 1 1\n")

	root, _ := deriveKey("/a.obj", src, "", true)
	named, _ := deriveKey("/a.obj", src, rootObjectName, true)

	// The unnamed object and an object literally named "root" collide by
	// design of the sentinel.
	if root != named {
		t.Errorf("expected root sentinel key %q, got %q", named, root)
	}
}

func TestDeriveKey_FilesystemSafe(t *testing.T) {
	src := []byte("f 1 1 1\n")

	key, _ := deriveKey(`/models/weird name/#1%.obj`, src, `obj/with:stuff`, false)
	for _, c := range []string{"/", "\\", ":", " ", "#"} {
		if strings.Contains(key, c) {
			t.Errorf("key %q contains illegal character %q", key, c)
		}
	}
}

func TestDeriveKey_LongPathsStayShort(t *testing.T) {
	src := []byte("f 1 1 1\n")

	long := "/" + strings.Repeat("deeply/nested/", 30) + "model.obj"
	key, ok := deriveKey(long, src, "Cube", false)
	if !ok {
		t.Fatal("expected derivation to succeed")
	}
	if len(key) > maxKeyLen {
		t.Errorf("key length %d exceeds %d", len(key), maxKeyLen)
	}

	// Still distinct per path.
	other, _ := deriveKey(long+"x", src, "Cube", false)
	if key == other {
		t.Error("expected distinct keys for distinct long paths")
	}
}

func TestEscapeKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Cube", "Cube"},
		{"a/b", "a%2Fb"},
		{"a b", "a%20b"},
		{"100%", "100%25"},
		{"model.obj", "model.obj"},
	}

	for _, tc := range cases {
		if got := escapeKey(tc.in); got != tc.want {
			t.Errorf("escapeKey(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}
