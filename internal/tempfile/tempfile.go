// Package tempfile creates empty temporary files. It is the only part of the
// module that touches the filesystem.
package tempfile

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const (
	MinPrefixLength = 3
	DefaultSuffix   = ".tmp"
)

var (
	ErrPrefixTooShort      = errors.New("prefix must be at least three characters long")
	ErrPatternHasSeparator = errors.New("prefix and suffix must not contain a path separator")
)

// CreationError reports that a temporary file could not be created. It is
// returned for invalid arguments as well as host failures and is never
// retried.
type CreationError struct {
	Prefix string
	Suffix string
	Dir    string
	Err    error
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("create temp file %s*%s in %s: %v", e.Prefix, e.Suffix, e.Dir, e.Err)
}

func (e *CreationError) Unwrap() error {
	return e.Err
}

// Create makes a new empty file named prefix + random + suffix in dir and
// returns its path. An empty dir selects os.TempDir and an empty suffix
// selects DefaultSuffix.
func Create(dir, prefix, suffix string) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if suffix == "" {
		suffix = DefaultSuffix
	}

	fail := func(err error) (string, error) {
		return "", &CreationError{Prefix: prefix, Suffix: suffix, Dir: dir, Err: err}
	}

	if len(prefix) < MinPrefixLength {
		return fail(errors.WithMessagef(ErrPrefixTooShort, "got %q", prefix))
	}
	if strings.ContainsRune(prefix+suffix, os.PathSeparator) || strings.Contains(prefix+suffix, "/") {
		return fail(ErrPatternHasSeparator)
	}

	file, err := os.CreateTemp(dir, prefix+"*"+suffix)
	if err != nil {
		return fail(errors.Wrap(err, "open"))
	}
	name := file.Name()
	if err := file.Close(); err != nil {
		_ = os.Remove(name)
		return fail(errors.Wrap(err, "close"))
	}
	return name, nil
}

// IsCreationFailure reports whether err is, or wraps, a *CreationError.
func IsCreationFailure(err error) bool {
	var cerr *CreationError
	return errors.As(err, &cerr)
}
