package normalize

import "strings"

const separator = "/"

// resolver holds the state folded across the fragments of a single Resolve
// call. root is "" until an absolute fragment is seen and "/" afterwards.
type resolver struct {
	root     string
	elements []string
	leaf     string
}

// Resolve resolves an arbitrary number of forward-slash path fragments
// relative to each other and returns the normalized result.
//
// Each fragment is resolved against the path built so far the way a relative
// reference is resolved against a file: the last segment of a fragment is its
// leaf and is replaced by the leaf of the next fragment. An absolute fragment
// discards everything accumulated before it. Unresolvable ".." segments are
// kept for relative paths and dropped once an absolute root is known.
//
// Resolve never fails and does not consult the filesystem, the working
// directory or the host path separator.
func Resolve(fragments ...string) string {
	r := resolver{}
	for _, fragment := range fragments {
		r.add(fragment)
	}
	return r.String()
}

// ResolveRelative resolves child against parent only when child is a
// relative module id, i.e. starts with ".". Any other child is returned
// unchanged.
func ResolveRelative(parent, child string) string {
	if strings.HasPrefix(child, ".") {
		return Resolve(parent, child)
	}
	return child
}

func (r *resolver) add(fragment string) {
	if strings.TrimSpace(fragment) == "" {
		return
	}

	parts := strings.Split(fragment, separator)
	if strings.HasPrefix(fragment, separator) {
		r.root = parts[0] + separator
		parts = parts[1:]
		r.elements = r.elements[:0]
	}

	// leaf is overwritten even when the fragment was absolute; the reset
	// above only touches elements.
	last := len(parts) - 1
	switch parts[last] {
	case ".", "..":
		r.leaf = ""
	default:
		r.leaf = parts[last]
		parts = parts[:last]
	}

	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			r.ascend()
		default:
			r.elements = append(r.elements, part)
		}
	}
}

func (r *resolver) ascend() {
	if n := len(r.elements); n > 0 && r.elements[n-1] != ".." {
		r.elements = r.elements[:n-1]
		return
	}
	if r.root == "" {
		r.elements = append(r.elements, "..")
	}
}

func (r *resolver) String() string {
	body := strings.Join(r.elements, separator)
	// An empty leaf never leaves a trailing separator behind the body.
	if body != "" && r.leaf != "" {
		body += separator
	}
	return r.root + body + r.leaf
}
