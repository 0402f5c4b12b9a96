// Package exclude evaluates the regex exclusion rules applied during a scan.
// Three rule classes exist, mirroring the option surface: directory-name
// rules prune whole subtrees, file-name rules skip individual files, and
// path rules match against the full normalized identity.
package exclude

import (
	"fmt"
	"regexp"
)

// Matcher is a compiled set of exclusion rules.
type Matcher struct {
	dirs  []*regexp.Regexp
	files []*regexp.Regexp
	paths []*regexp.Regexp
}

// Compile builds a Matcher from raw regex strings. A bad pattern is a
// configuration error and is reported before any scan begins.
func Compile(dirs, files, paths []string) (*Matcher, error) {
	m := &Matcher{}
	var err error
	if m.dirs, err = compileAll(dirs); err != nil {
		return nil, fmt.Errorf("exclude-directory: %w", err)
	}
	if m.files, err = compileAll(files); err != nil {
		return nil, fmt.Errorf("exclude-file: %w", err)
	}
	if m.paths, err = compileAll(paths); err != nil {
		return nil, fmt.Errorf("exclude-path: %w", err)
	}
	return m, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compiling %q: %w", p, err)
		}
		res = append(res, re)
	}
	return res, nil
}

// MatchDir reports whether a directory with the given base name should be
// pruned from the walk.
func (m *Matcher) MatchDir(name string) bool { return matchAny(m.dirs, name) }

// MatchFile reports whether a file with the given base name should be skipped.
func (m *Matcher) MatchFile(name string) bool { return matchAny(m.files, name) }

// MatchPath reports whether a full identity should be skipped.
func (m *Matcher) MatchPath(identity string) bool { return matchAny(m.paths, identity) }

func matchAny(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
