// Package ioc loads static indicator-of-compromise hash lists and matches
// digests against them.
package ioc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/K0NGR3SS/triagekit/internal/hashing"
)

var hashPattern = regexp.MustCompile(`^(?:[A-Fa-f0-9]{32}|[A-Fa-f0-9]{40}|[A-Fa-f0-9]{64})$`)

// Set is a collection of lowercase MD5/SHA1/SHA256 hex digests.
type Set map[string]struct{}

// Load reads an IOC list from disk. Only a missing or unreadable file is an
// error; malformed lines are dropped.
func Load(path string) (Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &hashing.FileAccessError{Path: path, Err: err}
	}
	defer f.Close()

	set, err := Parse(f)
	if err != nil {
		return nil, &hashing.FileAccessError{Path: path, Err: err}
	}
	return set, nil
}

// Parse reads one indicator per line. Blank lines, '#' comments and anything
// that is not a 32, 40 or 64 character hex string are discarded.
func Parse(r io.Reader) (Set, error) {
	set := make(Set)
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			set.addLine(line)
		}
		if errors.Is(err, io.EOF) {
			return set, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read ioc list: %w", err)
		}
	}
}

func (s Set) addLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	if hashPattern.MatchString(line) {
		s[strings.ToLower(line)] = struct{}{}
	}
}

// Contains reports whether digest is in the set, ignoring case.
func (s Set) Contains(digest string) bool {
	_, ok := s[strings.ToLower(strings.TrimSpace(digest))]
	return ok
}

func (s Set) Len() int { return len(s) }

// Verdict lists which digests of a file were found in the set.
type Verdict struct {
	Matches []string
}

func (v Verdict) Hit() bool { return len(v.Matches) > 0 }

// checkOrder is the order matches are reported in.
var checkOrder = []string{hashing.MD5, hashing.SHA1, hashing.SHA256}

// Check tests every digest in sums (keyed by algorithm name) against the set.
func Check(set Set, sums map[string]string) Verdict {
	var v Verdict
	for _, algo := range checkOrder {
		sum, ok := sums[algo]
		if ok && set.Contains(sum) {
			v.Matches = append(v.Matches, algo)
		}
	}
	return v
}
