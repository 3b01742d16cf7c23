// Package logdump writes Transfer CFT log records to a local file.
package logdump

import (
	"bufio"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cftops/cftctl/internal/cft"
	"github.com/klauspost/pgzip"
)

const tempFilePrefix = "cftctl-logs-temp"

// GzipSuffix marks destinations written gzip compressed.
const GzipSuffix = ".gz"

var ErrNoDirectory = errors.New("destination directory does not exist")

// Options controls how Dump replaces the destination.
type Options struct {
	// Force replaces the destination even if its content is unchanged.
	Force bool
	// Check reports whether the destination would change without touching it.
	Check bool
}

// Dump writes one line per record to dest. The records are first written to
// a temporary file next to dest, which then replaces dest only when the
// content differs or opts.Force is set. It reports whether dest changed.
func Dump(records []cft.LogRecord, dest string, opts Options) (bool, error) {
	dir := filepath.Dir(dest)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return false, fmt.Errorf("%w: %s", ErrNoDirectory, dir)
	}

	tmp, sum, err := writeTemp(records, dir, compressed(dest))
	if err != nil {
		return false, err
	}
	defer os.Remove(tmp)

	current, err := Checksum(dest)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	changed := opts.Force || sum != current
	if !changed || opts.Check {
		return changed, nil
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		return false, err
	}
	if err := os.Rename(tmp, dest); err != nil {
		return false, fmt.Errorf("moving logs into %s: %w", dest, err)
	}
	return true, nil
}

// Checksum returns the hex sha1 of the uncompressed content of path.
func Checksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var r io.Reader = f
	if compressed(path) {
		gr, err := pgzip.NewReader(f)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", path, err)
		}
		defer gr.Close()
		r = gr
	}
	h := sha1.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return digest(h), nil
}

func writeTemp(records []cft.LogRecord, dir string, gz bool) (string, string, error) {
	f, err := os.CreateTemp(dir, tempFilePrefix)
	if err != nil {
		return "", "", err
	}
	name := f.Name()
	fail := func(err error) (string, string, error) {
		f.Close()
		os.Remove(name)
		return "", "", err
	}

	// chained writers -> bw buffers into gw (when compressing) -> temporary file
	var (
		out io.Writer = f
		gw  *pgzip.Writer
	)
	if gz {
		gw = pgzip.NewWriter(f)
		out = gw
	}
	bw := bufio.NewWriter(out)
	h := sha1.New()
	w := io.MultiWriter(bw, h)

	for _, rec := range records {
		if _, err := io.WriteString(w, strings.TrimRight(rec.Line(), "\n")+"\n"); err != nil {
			return fail(err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fail(err)
	}
	if gw != nil {
		if err := gw.Close(); err != nil {
			return fail(err)
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", "", err
	}
	return name, digest(h), nil
}

func compressed(path string) bool {
	return strings.HasSuffix(path, GzipSuffix)
}

func digest(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}
