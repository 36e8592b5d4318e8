package normalize

import (
	"net/url"
	"strings"
)

const defaultDecodeDepth = 2

// Options controls how a raw, possibly URI-encoded fragment is prepared.
type Options struct {
	MaxDecodeDepth int
	Lowercase      bool
	Resolve        bool
}

type Result struct {
	Raw        string
	Normalized string
}

func Apply(input string, opts Options) Result {
	res := Result{Raw: input, Normalized: input}

	depth := opts.MaxDecodeDepth
	if depth <= 0 {
		depth = defaultDecodeDepth
	}

	decoded := res.Normalized
	for i := 0; i < depth; i++ {
		next, ok := decodeOnce(decoded)
		if !ok || next == decoded {
			break
		}
		decoded = next
	}

	res.Normalized = decoded

	if opts.Resolve {
		res.Normalized = Resolve(res.Normalized)
	}
	if opts.Lowercase {
		res.Normalized = strings.ToLower(res.Normalized)
	}

	return res
}

// ApplyAll prepares every fragment with opts and resolves them together.
// Per-fragment resolution is skipped so that a trailing separator on one
// fragment still marks its last segment as a directory for the next.
func ApplyAll(fragments []string, opts Options) string {
	opts.Resolve = false
	prepared := make([]string, len(fragments))
	for i, fragment := range fragments {
		prepared[i] = Apply(fragment, opts).Normalized
	}
	return Resolve(prepared...)
}

func decodeOnce(input string) (string, bool) {
	decoded, err := url.PathUnescape(input)
	if err != nil {
		return input, false
	}
	return decoded, true
}
