package normalize

import (
	"strings"
	"sync"
	"testing"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name      string
		fragments []string
		expected  string
	}{
		{"no fragments", nil, ""},
		{"blank fragments", []string{"", "  ", "\t"}, ""},
		{"single segment", []string{"a"}, "a"},
		{"leaf replaced", []string{"a", "b"}, "b"},
		{"directory joined", []string{"a/", "b"}, "a/b"},
		{"absolute sibling", []string{"/a/b", "c"}, "/a/c"},
		{"absolute directory", []string{"/a/b/", "c"}, "/a/b/c"},
		{"absolute parent", []string{"/a/b", "../c"}, "/c"},
		{"absolute directory parent", []string{"/a/b/", "../c"}, "/a/c"},
		{"unresolved ascent kept", []string{"a/../../b"}, "../b"},
		{"ascent bounded by root", []string{"/a", "../../b"}, "/b"},
		{"dot segments", []string{"/a//b/./c"}, "/a/b/c"},
		{"trailing slash dropped", []string{"a/b/"}, "a/b"},
		{"trailing slash dropped relative", []string{"x/y/"}, "x/y"},
		{"root only", []string{"/"}, "/"},
		{"root parent", []string{"/.."}, "/"},
		{"double root", []string{"//"}, "/"},
		{"later absolute wins", []string{"a/b/", "/c/d", "e"}, "/c/e"},
		{"relative keeps earlier root", []string{"/x/", "y/", "../z"}, "/x/z"},
		{"dotdot leaf", []string{"a/b/.."}, "a"},
		{"dot leaf", []string{"a/", "b/."}, "a/b"},
		{"dotdot fragment", []string{".."}, ".."},
		{"dotdot chain", []string{"../.."}, "../.."},
		{"cancelled to dotdot", []string{"a/../.."}, ".."},
		{"cancel then descend", []string{"../a/../b"}, "../b"},
		{"dot fragment", []string{"."}, ""},
		{"module id", []string{"/lib/foo", "./bar"}, "/lib/bar"},
		{"whitespace inside segment kept", []string{" a /b"}, " a /b"},
		{"blank skipped between", []string{"/a/", " ", "b"}, "/a/b"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(tc.fragments...)
			if got != tc.expected {
				t.Fatalf("Resolve(%q) expected %q, got %q", tc.fragments, tc.expected, got)
			}
		})
	}
}

func TestResolveIdempotent(t *testing.T) {
	inputs := []string{"a", "a/b", "/a/b/c", "../b", "../..", "/", "", "lib/util.js"}
	for _, p := range inputs {
		once := Resolve(p)
		if twice := Resolve(once); twice != once {
			t.Fatalf("Resolve not idempotent for %q: %q then %q", p, once, twice)
		}
	}
}

func TestResolveAbsoluteOverride(t *testing.T) {
	relatives := []string{"a", "a/b/", "../x", "./y/z"}
	tails := [][]string{nil, {"c"}, {"../d", "e/"}, {"..", ".."}}
	for _, r := range relatives {
		for _, tail := range tails {
			withRelative := append([]string{r, "/abs/path"}, tail...)
			withoutRelative := append([]string{"/abs/path"}, tail...)
			if got, want := Resolve(withRelative...), Resolve(withoutRelative...); got != want {
				t.Fatalf("expected %q to override %q: got %q, want %q", "/abs/path", r, got, want)
			}
		}
	}
}

func TestResolveNeverAscendsAboveRoot(t *testing.T) {
	fragments := []string{"/a/b/"}
	for i := 0; i < 6; i++ {
		fragments = append(fragments, "..")
		got := Resolve(fragments...)
		if !strings.HasPrefix(got, "/") {
			t.Fatalf("expected rooted result, got %q", got)
		}
		for _, segment := range strings.Split(got, "/") {
			if segment == ".." {
				t.Fatalf("expected no unresolved ascent, got %q", got)
			}
		}
	}
}

func TestResolveConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := Resolve("/lib/", "a/../b/", "c"); got != "/lib/b/c" {
					t.Errorf("unexpected result %q", got)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestResolveRelative(t *testing.T) {
	cases := []struct {
		parent   string
		child    string
		expected string
	}{
		{"/lib/foo", "./bar", "/lib/bar"},
		{"/lib/foo", "baz/qux", "baz/qux"},
		{"/lib/foo/bar", "../baz", "/lib/baz"},
		{"lib/foo", "../../x", "../x"},
		{"/lib/foo", ".hidden", "/lib/.hidden"},
		{"/lib/foo", "", ""},
		{"/lib/foo", "/abs", "/abs"},
	}

	for _, tc := range cases {
		got := ResolveRelative(tc.parent, tc.child)
		if got != tc.expected {
			t.Fatalf("ResolveRelative(%q, %q) expected %q, got %q", tc.parent, tc.child, tc.expected, got)
		}
	}
}
