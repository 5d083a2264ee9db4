package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/K0NGR3SS/triagekit/internal/models"
	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

const stampLayout = "20060102_150405"

// maxStemAttempts bounds how many disambiguated names are tried before
// giving up.
const maxStemAttempts = 5

const (
	tempPattern  = ".triage-*.tmp"
	staleTempAge = time.Hour
)

type Writer struct {
	Dir string
	// Compress also writes a zstd copy of the JSON next to it.
	Compress bool
}

func NewWriter(dir string, compress bool) *Writer {
	return &Writer{Dir: dir, Compress: compress}
}

// Stem is the file name prefix for a report, e.g. triage_ws-042_20261016_090000.
func Stem(r *models.Report) string {
	return fmt.Sprintf("triage_%s_%s", safeName(r.Host.Hostname), r.Timestamp.Format(stampLayout))
}

func safeName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
	s = strings.Trim(s, ".")
	if s == "" {
		return "unknown"
	}
	return s
}

// Write persists the JSON and text renderings of r and returns their absolute
// paths. Existing files are never overwritten: on a name clash a short random
// suffix is added to the stem. Every rendering is fully staged under a
// temporary name before any of them is published, so a published file is never
// partially written. Temporaries left behind by an interrupted run are removed
// once they are older than staleTempAge.
func (w *Writer) Write(r *models.Report) (Paths, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("failed to create output directory: %w", err)
	}
	dir, err := filepath.Abs(w.Dir)
	if err != nil {
		return Paths{}, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	removeStaleTemps(dir, time.Now())

	jsonData, err := RenderJSON(r)
	if err != nil {
		return Paths{}, err
	}

	stem := Stem(r)
	for attempt := 0; ; attempt++ {
		if attempt == maxStemAttempts {
			return Paths{}, fmt.Errorf("no free report name for %s in %s", Stem(r), dir)
		}
		paths := w.paths(dir, stem)
		if !anyExists(paths) {
			err := w.publish(dir, r, paths, jsonData)
			if err == nil {
				return paths, nil
			}
			if !errors.Is(err, fs.ErrExist) {
				return Paths{}, err
			}
		}
		stem = Stem(r) + "_" + uuid.NewString()[:8]
	}
}

func (w *Writer) paths(dir, stem string) Paths {
	p := Paths{
		JSON: filepath.Join(dir, stem+".json"),
		Text: filepath.Join(dir, stem+".txt"),
	}
	if w.Compress {
		p.Compressed = p.JSON + ".zst"
	}
	return p
}

type staged struct {
	tmp, final string
}

func (w *Writer) publish(dir string, r *models.Report, paths Paths, jsonData []byte) (err error) {
	files := []struct {
		path string
		data []byte
	}{
		{paths.JSON, jsonData},
		{paths.Text, []byte(RenderText(r, paths) + "\n")},
	}
	if paths.Compressed != "" {
		enc, encErr := zstd.NewWriter(nil)
		if encErr != nil {
			return fmt.Errorf("failed to create zstd encoder: %w", encErr)
		}
		compressed := enc.EncodeAll(jsonData, nil)
		_ = enc.Close()
		files = append(files, struct {
			path string
			data []byte
		}{paths.Compressed, compressed})
	}

	var stage []staged
	defer func() {
		for _, s := range stage {
			_ = os.Remove(s.tmp)
		}
	}()

	for _, f := range files {
		tmp, err := writeTemp(dir, f.data)
		if err != nil {
			return err
		}
		stage = append(stage, staged{tmp: tmp, final: f.path})
	}

	var published []string
	for _, s := range stage {
		if err := link(s.tmp, s.final); err != nil {
			for _, p := range published {
				_ = os.Remove(p)
			}
			return err
		}
		published = append(published, s.final)
	}
	return nil
}

func writeTemp(dir string, data []byte) (string, error) {
	f, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	name := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("failed to chmod %s: %w", name, err)
	}
	return name, nil
}

// link publishes tmp as final without replacing an existing file. Hard links
// fail with fs.ErrExist on a clash; filesystems without hard links fall back
// to a checked rename.
func link(tmp, final string) error {
	err := os.Link(tmp, final)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("refusing to overwrite %s: %w", final, fs.ErrExist)
	}
	if _, statErr := os.Lstat(final); statErr == nil {
		return fmt.Errorf("refusing to overwrite %s: %w", final, fs.ErrExist)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("failed to publish %s: %w", final, err)
	}
	return nil
}

// removeStaleTemps deletes staging files from earlier runs. Recent ones may
// belong to a concurrent writer and are left alone.
func removeStaleTemps(dir string, now time.Time) {
	matches, err := filepath.Glob(filepath.Join(dir, tempPattern))
	if err != nil {
		return
	}
	for _, m := range matches {
		info, err := os.Lstat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if now.Sub(info.ModTime()) > staleTempAge {
			_ = os.Remove(m)
		}
	}
}

func anyExists(p Paths) bool {
	for _, path := range []string{p.JSON, p.Text, p.Compressed} {
		if path == "" {
			continue
		}
		if _, err := os.Lstat(path); err == nil {
			return true
		}
	}
	return false
}
