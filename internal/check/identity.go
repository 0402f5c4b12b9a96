package check

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathEscapesRoot is returned when a path resolves outside the archive root.
var ErrPathEscapesRoot = errors.New("path escapes archive root")

// Normalize canonicalizes a native filesystem path into a platform-independent
// identity: relative to root, forward-slash separated. Two files are the same
// identity iff their normalized strings are equal. Comparison is
// case-sensitive and no Unicode normalization is applied, so paths differing
// only in case or normalization form are distinct identities.
func Normalize(nativePath, root string) (string, error) {
	rel, err := filepath.Rel(root, nativePath)
	if err != nil {
		return "", fmt.Errorf("relativizing %q against %q: %w", nativePath, root, err)
	}

	identity := filepath.ToSlash(rel)
	if identity == ".." || strings.HasPrefix(identity, "../") {
		return "", fmt.Errorf("%q: %w", nativePath, ErrPathEscapesRoot)
	}
	if identity == "." || identity == "" {
		return "", fmt.Errorf("%q is the archive root, not a file within it", nativePath)
	}
	return identity, nil
}
