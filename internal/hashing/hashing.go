// Package hashing streams files through cryptographic digests.
package hashing

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"sort"
	"strings"
)

// ChunkSize is the read buffer used while streaming a file.
const ChunkSize = 1024 * 1024

const (
	MD5    = "md5"
	SHA1   = "sha1"
	SHA256 = "sha256"
	SHA512 = "sha512"
)

var registry = map[string]func() hash.Hash{
	MD5:    md5.New,
	SHA1:   sha1.New,
	SHA256: sha256.New,
	SHA512: sha512.New,
}

// FileAccessError is returned when the target file is missing or cannot be
// opened or read.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// UnsupportedAlgorithmError is returned for digest names not in the registry.
type UnsupportedAlgorithmError struct {
	Name string
}

func (e *UnsupportedAlgorithmError) Error() string {
	return fmt.Sprintf("unsupported hash algorithm %q (supported: %s)", e.Name, strings.Join(Algorithms(), ", "))
}

// Algorithms lists the supported digest names in sorted order.
func Algorithms() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sum returns the lowercase hex digest of the file at path.
func Sum(path, algo string) (string, error) {
	sums, err := SumAll(path, algo)
	if err != nil {
		return "", err
	}
	return sums[strings.ToLower(algo)], nil
}

// SumAll reads the file once and feeds every requested digest. The returned map
// is keyed by the lowercased algorithm name.
func SumAll(path string, algos ...string) (map[string]string, error) {
	hashers := make(map[string]hash.Hash, len(algos))
	writers := make([]io.Writer, 0, len(algos))
	for _, algo := range algos {
		name := strings.ToLower(algo)
		newHash, ok := registry[name]
		if !ok {
			return nil, &UnsupportedAlgorithmError{Name: algo}
		}
		if _, dup := hashers[name]; dup {
			continue
		}
		h := newHash()
		hashers[name] = h
		writers = append(writers, h)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &FileAccessError{Path: path, Err: err}
	}
	defer f.Close()

	dst := io.MultiWriter(writers...)
	buf := make([]byte, ChunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			// hash.Hash writes never fail
			_, _ = dst.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &FileAccessError{Path: path, Err: err}
		}
	}

	sums := make(map[string]string, len(hashers))
	for name, h := range hashers {
		sums[name] = hex.EncodeToString(h.Sum(nil))
	}
	return sums, nil
}
